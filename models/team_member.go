package models

// TeamMember is shown on the team page, sorted by Order.
type TeamMember struct {
	Base
	Name      string `gorm:"size:128;not null" json:"name"`
	Role      string `gorm:"size:128;not null" json:"role"`
	Specialty string `gorm:"size:255" json:"specialty"`
	Bio       string `gorm:"type:text" json:"bio"`
	Image     string `gorm:"size:1024;not null" json:"image"`
	Order     int    `gorm:"column:sort_order;default:0;index" json:"order"`
}
