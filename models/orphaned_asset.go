package models

import "time"

// OrphanedAsset records a media object whose cleanup delete failed.
// The sweeper retries it until the host confirms deletion.
type OrphanedAsset struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Provider      string    `gorm:"size:32;not null" json:"provider"`
	PublicID      string    `gorm:"size:1024;not null" json:"publicId"`
	URL           string    `gorm:"size:1024" json:"url"`
	Kind          string    `gorm:"size:16" json:"kind"`
	Attempts      int       `gorm:"default:0" json:"attempts"`
	LastError     string    `gorm:"size:1024" json:"lastError"`
	NextAttemptAt time.Time `gorm:"index" json:"nextAttemptAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
