package tasks

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/models"
)

// DashboardView is the aggregated read model for the dashboard page.
type DashboardView struct {
	Total          int64             `json:"total"`
	Completed      int64             `json:"completed"`
	Pending        int64             `json:"pending"`
	CompletionRate int               `json:"completionRate"`
	Upcoming       []models.UserTask `json:"upcoming"`
	Reminders      []models.Reminder `json:"reminders"`
	Profile        *models.Profile   `json:"profile"`
}

// Dashboard composes profile, task counts, upcoming tasks and pending
// reminders in one read-only pass. Nothing is mutated here.
func (s *Service) Dashboard(ctx context.Context, userID string) (*DashboardView, error) {
	db := s.db.WithContext(ctx)

	var total, completed int64
	if err := db.Model(&models.UserTask{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	if err := db.Model(&models.UserTask{}).
		Where("user_id = ? AND status = ?", userID, models.StatusCompleted).
		Count(&completed).Error; err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}

	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(completed) / float64(total) * 100))
	}

	upcoming := []models.UserTask{}
	if err := db.Where("user_id = ? AND due_at IS NOT NULL", userID).
		Order("due_at ASC").
		Find(&upcoming).Error; err != nil {
		return nil, fmt.Errorf("load upcoming: %w", err)
	}

	reminders := []models.Reminder{}
	if err := db.Where("user_id = ? AND sent_at IS NULL", userID).
		Order("remind_at ASC").
		Find(&reminders).Error; err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}

	var profile *models.Profile
	var p models.Profile
	err := db.Where("user_id = ?", userID).First(&p).Error
	switch {
	case err == nil:
		profile = &p
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = nil
	default:
		return nil, fmt.Errorf("load profile: %w", err)
	}

	return &DashboardView{
		Total:          total,
		Completed:      completed,
		Pending:        total - completed,
		CompletionRate: rate,
		Upcoming:       upcoming,
		Reminders:      reminders,
		Profile:        profile,
	}, nil
}
