package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID             string         `json:"id" gorm:"primaryKey"`
	UserID         string         `json:"userId" gorm:"index;not null"`
	Name           string         `json:"name" gorm:"not null"`
	Color          *string        `json:"color"`
	MilestoneTitle *string        `json:"milestoneTitle"`
	MilestoneDueAt *time.Time     `json:"milestoneDueAt"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
	Tasks          []Task         `json:"tasks,omitempty" gorm:"foreignKey:ProjectID"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = "proj_" + uuid.NewString()
	}
	return nil
}

type CreateProjectRequest struct {
	Name           string     `json:"name" validate:"required"`
	Color          *string    `json:"color"`
	MilestoneTitle *string    `json:"milestoneTitle"`
	MilestoneDueAt *time.Time `json:"milestoneDueAt"`
}

type UpdateProjectRequest struct {
	Name           *string    `json:"name"`
	Color          *string    `json:"color"`
	MilestoneTitle *string    `json:"milestoneTitle"`
	MilestoneDueAt *time.Time `json:"milestoneDueAt"`
}
