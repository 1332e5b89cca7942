package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task enums. Stored as text; ordering for listings is computed in SQL
// because the textual order does not match the semantic one.
type TaskCategory string

const (
	CategoryLegal         TaskCategory = "LEGAL"
	CategoryHealthcare    TaskCategory = "HEALTHCARE"
	CategoryFinancial     TaskCategory = "FINANCIAL"
	CategoryAccommodation TaskCategory = "ACCOMMODATION"
	CategoryConnectivity  TaskCategory = "CONNECTIVITY"
	CategorySocial        TaskCategory = "SOCIAL"
	CategoryEducation     TaskCategory = "EDUCATION"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusCompleted TaskStatus = "COMPLETED"
)

// TaskTemplate is an admin-seeded rule describing a settlement task and the
// profile conditions under which it applies. The four *Match fields are
// substring patterns; empty means wildcard.
type TaskTemplate struct {
	ID              string       `gorm:"primaryKey;size:36" json:"id"`
	Title           string       `gorm:"not null" json:"title"`
	Description     string       `json:"description"`
	Category        TaskCategory `gorm:"size:32;not null" json:"category"`
	DefaultPriority string       `gorm:"size:32" json:"defaultPriority"`
	OfficialURL     string       `json:"officialUrl,omitempty"`
	SortOrder       int          `gorm:"index" json:"sortOrder"`

	VisaTypeMatch    string `json:"visaTypeMatch,omitempty"`
	PurposeMatch     string `json:"purposeMatch,omitempty"`
	CityMatch        string `json:"cityMatch,omitempty"`
	NationalityMatch string `json:"nationalityMatch,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *TaskTemplate) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// UserTask is a per-user instantiation of a TaskTemplate. Template fields are
// copied at creation time, not live-linked. The composite unique index keeps
// generation idempotent under concurrent calls.
type UserTask struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	UserID     string `gorm:"size:36;not null;uniqueIndex:idx_user_template" json:"userId"`
	TemplateID string `gorm:"size:36;not null;uniqueIndex:idx_user_template" json:"templateId"`

	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	Category    TaskCategory `gorm:"size:32;not null" json:"category"`
	URL         string       `json:"url,omitempty"`

	Priority    TaskPriority `gorm:"size:32;not null" json:"priority"`
	Status      TaskStatus   `gorm:"size:32;not null;default:'PENDING'" json:"status"`
	DueAt       *time.Time   `json:"dueAt"`
	CompletedAt *time.Time   `json:"completedAt"` // non-nil iff Status == COMPLETED
	Notes       *string      `json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *UserTask) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Reminder is a one-shot notification tied to a UserTask. RemindAt is fixed
// at creation (dueAt - 48h) and never recomputed, even if the task's due date
// is edited later. Terminal once SentAt is set.
type Reminder struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     string     `gorm:"index;size:36;not null" json:"userId"`
	UserTaskID string     `gorm:"index;size:36;not null" json:"userTaskId"`
	RemindAt   time.Time  `gorm:"index" json:"remindAt"`
	SentAt     *time.Time `json:"sentAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (r *Reminder) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
