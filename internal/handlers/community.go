package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/auth"
	"github.com/ukonnect/ukonnect-api/internal/httpx"
	"github.com/ukonnect/ukonnect-api/internal/models"
	"github.com/ukonnect/ukonnect-api/internal/validation"
)

type CommunityHandler struct {
	DB *gorm.DB
}

func NewCommunityHandler(db *gorm.DB) *CommunityHandler { return &CommunityHandler{DB: db} }

// Stats returns headline numbers for the community page.
func (h *CommunityHandler) Stats(w http.ResponseWriter, r *http.Request) {
	db := h.DB.WithContext(r.Context())

	var members, countries, stories, answers int64
	if err := db.Model(&models.User{}).Count(&members).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if err := db.Model(&models.Profile{}).
		Where("nationality <> ''").
		Distinct("nationality").
		Count(&countries).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if err := db.Model(&models.Post{}).
		Where("tags LIKE ?", "%success%").
		Count(&stories).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if err := db.Model(&models.Reply{}).Count(&answers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"stats": map[string]int64{
			"activeMembers":     members,
			"countries":         countries,
			"successStories":    stories,
			"questionsAnswered": answers,
		},
	})
}

// ListPosts returns the newest posts, each with its first replies.
func (h *CommunityHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	db := h.DB.WithContext(r.Context())

	posts := []models.Post{}
	if err := db.Preload("User.Profile").
		Order("created_at DESC").
		Limit(50).
		Find(&posts).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}

	// The replies cap applies per post; a preload limit would cap the whole
	// batch and let one busy thread crowd the others out.
	for i := range posts {
		replies := []models.Reply{}
		if err := db.Preload("User.Profile").
			Where("post_id = ?", posts[i].ID).
			Order("created_at ASC").
			Limit(10).
			Find(&replies).Error; err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
			return
		}
		posts[i].Replies = replies
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "posts": posts})
}

// CreatePost creates a forum post, snapshotting the author's city.
func (h *CommunityHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var body struct {
		Body string `json:"body"`
		Tags string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.MinLen("body", body.Body, 10, v)
	validation.MaxLen("body", body.Body, 2000, v)
	validation.MaxLen("tags", body.Tags, 120, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var profile models.Profile
	city := ""
	if err := h.DB.WithContext(r.Context()).Where("user_id = ?", uid).First(&profile).Error; err == nil {
		city = profile.City
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}

	post := models.Post{UserID: uid, Body: body.Body, Tags: body.Tags, City: city}
	if err := h.DB.WithContext(r.Context()).Create(&post).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"ok": true, "post": post})
}

// CreateReply adds a reply to an existing post.
func (h *CommunityHandler) CreateReply(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	postID := r.PathValue("id")

	var body struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.MinLen("body", body.Body, 2, v)
	validation.MaxLen("body", body.Body, 2000, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var count int64
	if err := h.DB.WithContext(r.Context()).Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if count == 0 {
		httpx.JSONError(w, http.StatusNotFound, "post_not_found", nil)
		return
	}

	reply := models.Reply{PostID: postID, UserID: uid, Body: body.Body}
	if err := h.DB.WithContext(r.Context()).Create(&reply).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"ok": true, "reply": reply})
}
