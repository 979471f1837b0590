package models

import "time"

// File records an uploaded object. Path is the public path, e.g. /uploads/<filename>.
type File struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Filename     string    `gorm:"size:255;not null;uniqueIndex" json:"filename"`
	OriginalName string    `gorm:"size:255;not null" json:"originalName"`
	Path         string    `gorm:"size:1024;not null" json:"path"`
	Size         int64     `gorm:"not null" json:"size"`
	Mimetype     string    `gorm:"size:128" json:"mimetype"`
	UploadedByID uint      `gorm:"index;not null" json:"uploadedById"`
	PostID       *uint     `gorm:"index" json:"postId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	UploadedBy   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"uploadedBy"`
}
