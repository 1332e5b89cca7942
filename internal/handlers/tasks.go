package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ukonnect/ukonnect-api/internal/auth"
	"github.com/ukonnect/ukonnect-api/internal/httpx"
	"github.com/ukonnect/ukonnect-api/internal/models"
	"github.com/ukonnect/ukonnect-api/internal/tasks"
	"github.com/ukonnect/ukonnect-api/internal/validation"
)

var (
	taskStatuses   = []string{string(models.StatusPending), string(models.StatusCompleted)}
	taskPriorities = []string{string(models.PriorityLow), string(models.PriorityMedium), string(models.PriorityHigh), string(models.PriorityUrgent)}
	taskCategories = []string{
		string(models.CategoryLegal), string(models.CategoryHealthcare), string(models.CategoryFinancial),
		string(models.CategoryAccommodation), string(models.CategoryConnectivity), string(models.CategorySocial),
		string(models.CategoryEducation),
	}
)

type TaskHandler struct {
	Svc *tasks.Service
}

func NewTaskHandler(svc *tasks.Service) *TaskHandler { return &TaskHandler{Svc: svc} }

// Generate triggers one-time task generation for the caller.
func (h *TaskHandler) Generate(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	created, err := h.Svc.Generate(r.Context(), uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "created": created})
}

// List returns the caller's tasks, optionally filtered by status, category
// and priority query parameters.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	q := r.URL.Query()
	f := tasks.Filters{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Priority: q.Get("priority"),
	}
	v := validation.Violations{}
	validation.OneOf("status", f.Status, taskStatuses, v)
	validation.OneOf("category", f.Category, taskCategories, v)
	validation.OneOf("priority", f.Priority, taskPriorities, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_filters", v)
		return
	}

	list, err := h.Svc.List(r.Context(), uid, f)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "tasks": list})
}

// Update applies a partial patch to one of the caller's tasks.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	taskID := r.PathValue("id")
	if taskID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}

	// dueAt and notes are raw so an explicit null (clear the field) can be
	// told apart from the field being absent (leave it alone).
	var body struct {
		Status   *string         `json:"status"`
		Priority *string         `json:"priority"`
		DueAt    json.RawMessage `json:"dueAt"`
		Notes    json.RawMessage `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := validation.Violations{}
	patch := tasks.Patch{}
	if body.Status != nil {
		validation.OneOf("status", *body.Status, taskStatuses, v)
		st := models.TaskStatus(*body.Status)
		patch.Status = &st
	}
	if body.Priority != nil {
		validation.OneOf("priority", *body.Priority, taskPriorities, v)
		pr := models.TaskPriority(*body.Priority)
		patch.Priority = &pr
	}
	if len(body.DueAt) > 0 {
		if string(body.DueAt) == "null" {
			patch.ClearDueAt = true
		} else {
			var raw string
			if err := json.Unmarshal(body.DueAt, &raw); err != nil {
				v["dueAt"] = "invalid_value"
			} else if due, err := time.Parse(time.RFC3339, raw); err != nil {
				v["dueAt"] = "invalid_value"
			} else {
				patch.DueAt = &due
			}
		}
	}
	if len(body.Notes) > 0 {
		if string(body.Notes) == "null" {
			patch.ClearNotes = true
		} else {
			var raw string
			if err := json.Unmarshal(body.Notes, &raw); err != nil {
				v["notes"] = "invalid_value"
			} else {
				validation.MaxLen("notes", raw, 2000, v)
				patch.Notes = &raw
			}
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	updated, err := h.Svc.Update(r.Context(), uid, taskID, patch)
	if err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "task_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "task": updated})
}

// Dashboard returns the aggregated read model for the caller.
func (h *TaskHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	view, err := h.Svc.Dashboard(r.Context(), uid)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "storage_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"ok": true, "dashboard": view})
}
