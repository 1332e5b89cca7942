package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an authenticated user in the system.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	Profile      *Profile  `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Profile carries the settlement details a user fills in via settings.
// The four match-relevant fields (visa type, purpose, city, nationality)
// are optional free text; empty means unknown.
type Profile struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	UserID      string `gorm:"uniqueIndex;size:36;not null" json:"userId"`
	FullName    string `json:"fullName"`
	Nationality string `json:"nationality"`
	City        string `json:"city"`
	VisaType    string `json:"visaType"`
	Purpose     string `json:"purpose"`
	Goals       string `json:"goals"`

	VisaShareCode  string     `json:"visaShareCode,omitempty"`
	VisaExpiryDate *time.Time `json:"visaExpiryDate,omitempty"`

	NotificationEmail bool `gorm:"default:true" json:"notificationEmail"`
	NotificationPush  bool `gorm:"default:false" json:"notificationPush"`
	ProfileVisible    bool `gorm:"default:true" json:"profileVisible"`
	ShowNationality   bool `gorm:"default:true" json:"showNationality"`
	ShowLocation      bool `gorm:"default:true" json:"showLocation"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// RefreshToken stores a bcrypt hash of an issued refresh token.
type RefreshToken struct {
	ID        string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"index;size:36;not null"`
	TokenHash string `gorm:"size:255;not null"`
	CreatedAt time.Time
}

func (t *RefreshToken) BeforeCreate(*gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
