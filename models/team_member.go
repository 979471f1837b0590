package models

import "time"

// TeamMember is a profile shown on the public team page.
type TeamMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64;not null" json:"name"`
	Title     string    `gorm:"size:128;not null" json:"title"`
	Avatar    string    `gorm:"size:1024" json:"avatar"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Research  string    `gorm:"type:text" json:"research"`
	Education string    `gorm:"type:text" json:"education"`
	Order     int       `gorm:"column:sort_order;index;not null;default:0" json:"order"`
	Active    bool      `gorm:"index;not null" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
