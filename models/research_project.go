package models

import "time"

// Research project lifecycle states.
const (
	ProjectPlanning  = "PLANNING"
	ProjectActive    = "ACTIVE"
	ProjectCompleted = "COMPLETED"
	ProjectSuspended = "SUSPENDED"
)

// ResearchProject is a funded project listed on the research page.
type ResearchProject struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:512;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   time.Time  `gorm:"index;not null" json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Status      string     `gorm:"size:16;index;not null;default:PLANNING" json:"status"`
	Funding     string     `gorm:"size:255" json:"funding"`
	Budget      *float64   `json:"budget"`
	AuthorID    uint       `gorm:"index;not null" json:"authorId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Author      User       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectCompleted, ProjectSuspended:
		return true
	}
	return false
}
