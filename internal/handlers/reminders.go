package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/auth"
	"github.com/ukonnect/ukonnect-api/internal/httpx"
	"github.com/ukonnect/ukonnect-api/internal/models"
)

type ReminderHandler struct {
	DB *gorm.DB
}

func NewReminderHandler(db *gorm.DB) *ReminderHandler { return &ReminderHandler{DB: db} }

// List returns the caller's recently sent reminders, newest first.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	reminders := []models.Reminder{}
	if err := h.DB.WithContext(r.Context()).
		Where("user_id = ? AND sent_at IS NOT NULL", uid).
		Order("sent_at DESC").
		Limit(30).
		Find(&reminders).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "reminders": reminders})
}
