package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/httpx"
	"github.com/ukonnect/ukonnect-api/internal/models"
	"github.com/ukonnect/ukonnect-api/internal/validation"
)

// DirectoryHandler serves the public local-services directory and the FAQ.
type DirectoryHandler struct {
	DB *gorm.DB
}

func NewDirectoryHandler(db *gorm.DB) *DirectoryHandler { return &DirectoryHandler{DB: db} }

// Services lists directory entries filtered by city, category and name.
func (h *DirectoryHandler) Services(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := q.Get("city")
	category := q.Get("category")
	name := q.Get("q")

	v := validation.Violations{}
	validation.OneOf("category", category, models.ServiceCategories, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_query", v)
		return
	}

	dbq := h.DB.WithContext(r.Context()).Model(&models.LocalService{})
	if city != "" {
		dbq = dbq.Where("lower(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	if category != "" {
		dbq = dbq.Where("category = ?", category)
	}
	if name != "" {
		dbq = dbq.Where("lower(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	services := []models.LocalService{}
	if err := dbq.Order("name ASC").Limit(50).Find(&services).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "services": services})
}

// Faq lists FAQ entries. City/visaType filters also match entries with no
// scope, so general answers are always included.
func (h *DirectoryHandler) Faq(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	topic := q.Get("topic")
	city := q.Get("city")
	visaType := q.Get("visaType")

	dbq := h.DB.WithContext(r.Context()).Model(&models.FaqEntry{})
	if topic != "" {
		dbq = dbq.Where("lower(topic) LIKE ?", "%"+strings.ToLower(topic)+"%")
	}
	if city != "" {
		dbq = dbq.Where("city = '' OR lower(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	if visaType != "" {
		dbq = dbq.Where("visa_type = '' OR lower(visa_type) LIKE ?", "%"+strings.ToLower(visaType)+"%")
	}

	entries := []models.FaqEntry{}
	if err := dbq.Order("created_at DESC").Limit(50).Find(&entries).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "entries": entries})
}
