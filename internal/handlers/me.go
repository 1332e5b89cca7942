package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/auth"
	"github.com/ukonnect/ukonnect-api/internal/httpx"
	"github.com/ukonnect/ukonnect-api/internal/models"
	"github.com/ukonnect/ukonnect-api/internal/validation"
)

type MeHandler struct {
	DB *gorm.DB
}

func NewMeHandler(db *gorm.DB) *MeHandler { return &MeHandler{DB: db} }

func (h *MeHandler) loadProfile(r *http.Request, uid string) (*models.Profile, error) {
	var p models.Profile
	err := h.DB.WithContext(r.Context()).Where("user_id = ?", uid).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfile returns the caller's email and profile (null if none exists).
func (h *MeHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var user models.User
	if err := h.DB.WithContext(r.Context()).First(&user, "id = ?", uid).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	profile, err := h.loadProfile(r, uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"email": user.Email, "profile": profile})
}

// PutProfile upserts the caller's settlement details.
func (h *MeHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var body struct {
		FullName    string `json:"fullName"`
		Nationality string `json:"nationality"`
		City        string `json:"city"`
		VisaType    string `json:"visaType"`
		Purpose     string `json:"purpose"`
		Goals       string `json:"goals"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	profile, err := h.loadProfile(r, uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if profile == nil {
		profile = &models.Profile{UserID: uid}
	}
	profile.FullName = body.FullName
	profile.Nationality = body.Nationality
	profile.City = body.City
	profile.VisaType = body.VisaType
	profile.Purpose = body.Purpose
	profile.Goals = body.Goals

	if err := h.DB.WithContext(r.Context()).Save(profile).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "profile": profile})
}

// VerifyVisa stores the caller's visa share code and expiry date.
func (h *MeHandler) VerifyVisa(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var body struct {
		VisaShareCode  string `json:"visaShareCode"`
		VisaExpiryDate string `json:"visaExpiryDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("visaShareCode", body.VisaShareCode, v)
	expiry, err := time.Parse(time.RFC3339, body.VisaExpiryDate)
	if err != nil {
		if expiry, err = time.Parse("2006-01-02", body.VisaExpiryDate); err != nil {
			v["visaExpiryDate"] = "invalid_value"
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	profile, err := h.loadProfile(r, uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if profile == nil {
		profile = &models.Profile{UserID: uid}
	}
	profile.VisaShareCode = body.VisaShareCode
	profile.VisaExpiryDate = &expiry

	if err := h.DB.WithContext(r.Context()).Save(profile).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Visa information stored successfully", "profile": profile})
}

type settingsView struct {
	Notifications struct {
		Email bool `json:"email"`
		Push  bool `json:"push"`
	} `json:"notifications"`
	Privacy struct {
		ProfileVisible  bool `json:"profileVisible"`
		ShowNationality bool `json:"showNationality"`
		ShowLocation    bool `json:"showLocation"`
	} `json:"privacy"`
}

func settingsFromProfile(p *models.Profile) settingsView {
	var s settingsView
	s.Notifications.Email = p.NotificationEmail
	s.Notifications.Push = p.NotificationPush
	s.Privacy.ProfileVisible = p.ProfileVisible
	s.Privacy.ShowNationality = p.ShowNationality
	s.Privacy.ShowLocation = p.ShowLocation
	return s
}

// GetSettings returns notification and privacy settings.
func (h *MeHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	profile, err := h.loadProfile(r, uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if profile == nil {
		httpx.JSONError(w, http.StatusNotFound, "profile_not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "settings": settingsFromProfile(profile)})
}

// PutSettings updates any subset of notification and privacy settings.
func (h *MeHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var body struct {
		NotificationEmail *bool `json:"notificationEmail"`
		NotificationPush  *bool `json:"notificationPush"`
		ProfileVisible    *bool `json:"profileVisible"`
		ShowNationality   *bool `json:"showNationality"`
		ShowLocation      *bool `json:"showLocation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	profile, err := h.loadProfile(r, uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if profile == nil {
		profile = &models.Profile{UserID: uid}
	}
	if body.NotificationEmail != nil {
		profile.NotificationEmail = *body.NotificationEmail
	}
	if body.NotificationPush != nil {
		profile.NotificationPush = *body.NotificationPush
	}
	if body.ProfileVisible != nil {
		profile.ProfileVisible = *body.ProfileVisible
	}
	if body.ShowNationality != nil {
		profile.ShowNationality = *body.ShowNationality
	}
	if body.ShowLocation != nil {
		profile.ShowLocation = *body.ShowLocation
	}

	if err := h.DB.WithContext(r.Context()).Save(profile).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Settings updated successfully", "settings": settingsFromProfile(profile)})
}
