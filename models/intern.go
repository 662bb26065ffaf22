package models

type Intern struct {
	Base
	Name       string `gorm:"size:128;not null" json:"name"`
	University string `gorm:"size:255" json:"university"`
	Bio        string `gorm:"type:text" json:"bio"`
	Year       string `gorm:"size:16" json:"year"`
	Image      string `gorm:"size:1024;not null" json:"image"`
	Order      int    `gorm:"column:sort_order;default:0;index" json:"order"`
}
