package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event is a studio event or exhibition.
type Event struct {
	Base
	Title         string                      `gorm:"size:255;not null" json:"title"`
	Tagline       string                      `gorm:"size:255" json:"tagline"`
	Description   string                      `gorm:"type:text" json:"description"`
	Date          *time.Time                  `gorm:"index" json:"date,omitempty"`
	Categories    datatypes.JSON              `json:"categories,omitempty"`
	MainImage     string                      `gorm:"size:1024;not null" json:"mainImage"`
	GalleryImages datatypes.JSONSlice[string] `json:"galleryImages"`
}
