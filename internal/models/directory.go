package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocalService is an admin-seeded directory entry (GP finders, banks, SIM
// providers and so on) searchable by city/category/name.
type LocalService struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"index;not null" json:"name"`
	Category    string    `gorm:"size:32;index" json:"category"`
	City        string    `gorm:"index" json:"city"`
	Website     string    `json:"website,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *LocalService) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ServiceCategories are the accepted values for LocalService.Category.
var ServiceCategories = []string{"BANK", "EDUCATION", "GP", "HOSPITAL", "LOCAL COUNCIL", "MOBILE", "TRANSPORT"}

// FaqEntry is a curated question/answer pair, optionally scoped to a city or
// visa type (empty means it applies everywhere).
type FaqEntry struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Topic       string    `gorm:"index" json:"topic"`
	Question    string    `gorm:"not null" json:"question"`
	Answer      string    `gorm:"not null" json:"answer"`
	OfficialURL string    `json:"officialUrl,omitempty"`
	City        string    `json:"city,omitempty"`
	VisaType    string    `json:"visaType,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (f *FaqEntry) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
