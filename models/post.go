package models

import "time"

// Post is a news article written in the back-office.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Content     string     `gorm:"type:text" json:"content"`
	Excerpt     string     `gorm:"type:text" json:"excerpt"`
	CoverImage  string     `gorm:"size:1024" json:"coverImage"`
	Published   bool       `gorm:"index;not null;default:false" json:"published"`
	PublishedAt *time.Time `gorm:"index" json:"publishedAt"`
	AuthorID    uint       `gorm:"index;not null" json:"authorId"`
	CategoryID  *uint      `gorm:"index" json:"categoryId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Author      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Category    *Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category"`
	Files       []File     `json:"files,omitempty"`
}
