package models

import "gorm.io/datatypes"

// Project is a portfolio entry. area, quote and the list fields are free-form JSON
// edited by the admin panel.
type Project struct {
	Base
	Title         string                      `gorm:"size:255;not null" json:"title"`
	Subtitle      string                      `gorm:"size:255" json:"subtitle"`
	Location      string                      `gorm:"size:255" json:"location"`
	ProjectType   string                      `gorm:"size:128" json:"projectType"`
	Category      string                      `gorm:"size:128;index" json:"category"`
	Status        string                      `gorm:"size:64;index" json:"status"`
	Year          string                      `gorm:"size:16" json:"year"`
	Client        string                      `gorm:"size:255" json:"client"`
	Description   string                      `gorm:"type:text" json:"description"`
	Area          datatypes.JSON              `json:"area,omitempty"`
	Quote         datatypes.JSON              `json:"quote,omitempty"`
	KeyFeatures   datatypes.JSON              `json:"keyFeatures,omitempty"`
	MaterialsUsed datatypes.JSON              `json:"materialsUsed,omitempty"`
	SEOTags       datatypes.JSON              `gorm:"column:seo_tags" json:"seoTags,omitempty"`
	MainImage     string                      `gorm:"size:1024;not null" json:"mainImage"`
	GalleryImages datatypes.JSONSlice[string] `json:"galleryImages"`
}
