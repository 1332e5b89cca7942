package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/auth"
	"github.com/ukonnect/ukonnect-api/internal/httpx"
	"github.com/ukonnect/ukonnect-api/internal/models"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// DocumentHandler stores uploaded files on disk and their metadata in the DB.
type DocumentHandler struct {
	DB        *gorm.DB
	UploadDir string
}

func NewDocumentHandler(db *gorm.DB, uploadDir string) *DocumentHandler {
	return &DocumentHandler{DB: db, UploadDir: uploadDir}
}

// Upload accepts a multipart "file" field.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_upload", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "file_required", nil)
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "upload_failed", nil)
		return
	}
	storedName := uuid.NewString() + filepath.Ext(header.Filename)
	storedPath := filepath.Join(h.UploadDir, storedName)

	dst, err := os.Create(storedPath)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "upload_failed", nil)
		return
	}
	size, err := io.Copy(dst, file)
	closeErr := dst.Close()
	if err != nil || closeErr != nil {
		os.Remove(storedPath)
		httpx.JSONError(w, http.StatusInternalServerError, "upload_failed", nil)
		return
	}

	doc := models.Document{
		UserID:      uid,
		FileName:    filepath.Base(header.Filename),
		StoredPath:  storedPath,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   size,
	}
	if err := h.DB.WithContext(r.Context()).Create(&doc).Error; err != nil {
		os.Remove(storedPath)
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"ok": true, "document": doc})
}

// List returns the caller's documents, newest first.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	docs := []models.Document{}
	if err := h.DB.WithContext(r.Context()).
		Where("user_id = ?", uid).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "documents": docs})
}

func (h *DocumentHandler) findOwned(r *http.Request, uid, id string) (*models.Document, error) {
	var doc models.Document
	err := h.DB.WithContext(r.Context()).Where("id = ? AND user_id = ?", id, uid).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Download streams a document's bytes back to its owner.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	doc, err := h.findOwned(r, uid, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "document_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+doc.FileName+"\"")
	if doc.ContentType != "" {
		w.Header().Set("Content-Type", doc.ContentType)
	}
	http.ServeFile(w, r, doc.StoredPath)
}

// Delete removes the metadata row and best-effort removes the file.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	doc, err := h.findOwned(r, uid, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "document_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	if err := h.DB.WithContext(r.Context()).Delete(&models.Document{}, "id = ?", doc.ID).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	_ = os.Remove(doc.StoredPath)
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
