package models

import "time"

// Publication is a paper or book chapter listed on the research page.
type Publication struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:512;not null" json:"title"`
	Abstract  string    `gorm:"type:text" json:"abstract"`
	Authors   string    `gorm:"size:1024;not null" json:"authors"`
	Journal   string    `gorm:"size:255;not null" json:"journal"`
	Year      int       `gorm:"index;not null" json:"year"`
	Volume    string    `gorm:"size:32" json:"volume"`
	Issue     string    `gorm:"size:32" json:"issue"`
	Pages     string    `gorm:"size:32" json:"pages"`
	DOI       string    `gorm:"column:doi;size:255" json:"doi"`
	URL       string    `gorm:"column:url;size:1024" json:"url"`
	PDFURL    string    `gorm:"column:pdf_url;size:1024" json:"pdfUrl"`
	AuthorID  uint      `gorm:"index;not null" json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
