package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identity and timestamps shared by every record.
// The JSON names match what the studio admin panel already reads.
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller has not set one.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b *Base) GetID() string { return b.ID }

// Stamp fills identity and timestamps for stores that do not run gorm hooks.
func (b *Base) Stamp(now time.Time) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// Record is implemented by every persisted collection model.
type Record interface {
	GetID() string
	Stamp(now time.Time)
}
