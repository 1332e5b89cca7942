package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ukonnect/ukonnect-api/internal/models"
)

const reminderLead = 48 * time.Hour

// ErrTaskNotFound covers both a missing task and a task owned by someone
// else, so callers cannot tell whether a foreign id exists.
var ErrTaskNotFound = errors.New("task not found")

// Service wraps task generation, querying and updates.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Generate creates the user's task list from applicable templates, exactly
// once per user. Repeat calls (or calls when any task already exists) return
// an empty list. Each created task gets a paired reminder 48h before its due
// date. Inserts are insert-ignore on (user_id, template_id): a row a
// concurrent or partial prior run already owns is skipped and generation
// continues.
func (s *Service) Generate(ctx context.Context, userID string) ([]models.UserTask, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.UserTask{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	if count > 0 {
		return []models.UserTask{}, nil
	}

	var profile models.Profile
	if err := db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load profile: %w", err)
		}
		// Absent profile: every concrete predicate fails, wildcards still apply.
		profile = models.Profile{}
	}

	var templates []models.TaskTemplate
	if err := db.Order("sort_order ASC").Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	now := s.now()
	created := []models.UserTask{}
	for _, tpl := range templates {
		if !Applicable(tpl, profile) {
			continue
		}

		priority := NormalizePriority(tpl.DefaultPriority)
		dueAt := now.Add(time.Duration(DueDays(priority)) * 24 * time.Hour)

		task := models.UserTask{
			UserID:      userID,
			TemplateID:  tpl.ID,
			Title:       tpl.Title,
			Description: tpl.Description,
			Category:    tpl.Category,
			URL:         tpl.OfficialURL,
			Priority:    priority,
			Status:      models.StatusPending,
			DueAt:       &dueAt,
		}
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "template_id"}},
			DoNothing: true,
		}).Create(&task)
		if res.Error != nil {
			return nil, fmt.Errorf("create task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Another run already created this row.
			continue
		}

		reminder := models.Reminder{
			UserID:     userID,
			UserTaskID: task.ID,
			RemindAt:   dueAt.Add(-reminderLead),
		}
		if err := db.Create(&reminder).Error; err != nil {
			return nil, fmt.Errorf("create reminder: %w", err)
		}

		created = append(created, task)
	}

	return created, nil
}

// Filters restrict List; empty fields mean no restriction.
type Filters struct {
	Status   string
	Category string
	Priority string
}

// List returns the user's tasks ordered by status (pending first), then due
// date (earliest first, nulls last), then priority (urgent first).
func (s *Service) List(ctx context.Context, userID string, f Filters) ([]models.UserTask, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}

	tasks := []models.UserTask{}
	err := q.
		Order("CASE status WHEN 'PENDING' THEN 0 ELSE 1 END ASC").
		Order("due_at ASC NULLS LAST").
		Order("CASE priority WHEN 'URGENT' THEN 3 WHEN 'HIGH' THEN 2 WHEN 'MEDIUM' THEN 1 ELSE 0 END DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Patch describes a partial update; nil fields are left untouched. The Clear
// flags carry an explicit null from the request, which is distinct from the
// field being absent.
type Patch struct {
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	DueAt      *time.Time
	ClearDueAt bool
	Notes      *string
	ClearNotes bool
}

// Update applies a partial update to one of the user's tasks. Transitioning
// to COMPLETED stamps completedAt (preserved if already completed);
// transitioning to PENDING clears it. Reminders are not recomputed when the
// due date changes.
func (s *Service) Update(ctx context.Context, userID, taskID string, p Patch) (*models.UserTask, error) {
	db := s.db.WithContext(ctx)

	var task models.UserTask
	if err := db.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("load task: %w", err)
	}

	updates := map[string]any{}
	if p.Status != nil {
		updates["status"] = *p.Status
		switch *p.Status {
		case models.StatusCompleted:
			if task.CompletedAt == nil {
				updates["completed_at"] = s.now()
			}
		case models.StatusPending:
			updates["completed_at"] = nil
		}
	}
	if p.Priority != nil {
		updates["priority"] = *p.Priority
	}
	switch {
	case p.ClearDueAt:
		updates["due_at"] = nil
	case p.DueAt != nil:
		updates["due_at"] = *p.DueAt
	}
	switch {
	case p.ClearNotes:
		updates["notes"] = nil
	case p.Notes != nil:
		updates["notes"] = *p.Notes
	}

	if len(updates) == 0 {
		return &task, nil
	}

	if err := db.Model(&models.UserTask{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	// Reload into a fresh struct: scanning into the loaded one would leave
	// stale pointer fields in place when a column went back to NULL.
	var updated models.UserTask
	if err := db.First(&updated, "id = ?", task.ID).Error; err != nil {
		return nil, fmt.Errorf("reload task: %w", err)
	}
	return &updated, nil
}
