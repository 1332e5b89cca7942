package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/httpx"
	"github.com/ukonnect/ukonnect-api/internal/models"
	"github.com/ukonnect/ukonnect-api/internal/validation"
)

// Handler serves register/login/refresh.
type Handler struct {
	DB            *gorm.DB
	AccessSecret  []byte
	RefreshSecret []byte
}

func NewHandler(db *gorm.DB, accessSecret, refreshSecret []byte) *Handler {
	return &Handler{DB: db, AccessSecret: accessSecret, RefreshSecret: refreshSecret}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.register)
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/refresh", h.refresh)
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) issueTokens(userID string) (tokenPair, error) {
	access, err := GenerateAccessToken(h.AccessSecret, userID)
	if err != nil {
		return tokenPair{}, err
	}
	refresh, err := GenerateRefreshToken(h.RefreshSecret, userID)
	if err != nil {
		return tokenPair{}, err
	}
	// Keep a digest of the refresh token so leaked DB rows cannot be replayed.
	if err := h.DB.Create(&models.RefreshToken{UserID: userID, TokenHash: hashRefreshToken(refresh)}).Error; err != nil {
		return tokenPair{}, err
	}
	return tokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// hashRefreshToken reduces a refresh token to a fixed-size digest for storage.
// Signed JWTs run well past bcrypt's 72-byte input limit, so the raw token
// cannot go through a password hash.
func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
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
	body.Email = strings.TrimSpace(strings.ToLower(body.Email))

	v := validation.Violations{}
	validation.Required("email", body.Email, v)
	validation.Required("password", body.Password, v)
	if _, ok := v["password"]; !ok {
		validation.MinLen("password", body.Password, 8, v)
	}
	if !strings.Contains(body.Email, "@") {
		v["email"] = "invalid_value"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", body.Email).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if count > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_already_exists", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "hash_error", nil)
		return
	}
	user := models.User{Email: body.Email, PasswordHash: string(hash)}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}

	// Profile is created at registration, possibly empty.
	profile := models.Profile{
		UserID:      user.ID,
		FullName:    body.FullName,
		Nationality: body.Nationality,
		City:        body.City,
		VisaType:    body.VisaType,
		Purpose:     body.Purpose,
		Goals:       body.Goals,
	}
	if err := h.DB.Create(&profile).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}

	tokens, err := h.issueTokens(user.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "token_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"ok":           true,
		"user":         map[string]string{"id": user.ID, "email": user.Email},
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	body.Email = strings.TrimSpace(strings.ToLower(body.Email))

	var user models.User
	if err := h.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	tokens, err := h.issueTokens(user.ID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "token_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"user":         map[string]string{"id": user.ID, "email": user.Email},
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		httpx.JSONError(w, http.StatusBadRequest, "refresh_token_required", nil)
		return
	}

	userID, err := ParseToken(h.RefreshSecret, body.RefreshToken)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_refresh_token", nil)
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if count == 0 {
		httpx.JSONError(w, http.StatusUnauthorized, "user_not_found", nil)
		return
	}

	tokens, err := h.issueTokens(userID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "token_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}
