package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Task struct {
	ID              string         `json:"id" gorm:"primaryKey"`
	UserID          string         `json:"userId" gorm:"index;not null;uniqueIndex:idx_task_user_request"`
	Title           string         `json:"title" gorm:"not null"`
	Description     *string        `json:"description"`
	Status          Status         `json:"status" gorm:"index;not null;default:'backlog'"`
	Size            *Size          `json:"size"` // xs, s, m, l, xl
	EffortMinutes   *int           `json:"effortMinutes"`
	HardDueAt       *time.Time     `json:"hardDueAt"`
	SoftDueAt       *time.Time     `json:"softDueAt"`
	Energy          *Energy        `json:"energy"` // low, medium, high
	SortOrder       float64        `json:"sortOrder" gorm:"not null;default:0"`
	ProjectID       *string        `json:"projectId" gorm:"index"`
	GoalID          *string        `json:"goalId" gorm:"index"` // legacy single-goal pointer, projected from task_goals
	ClientRequestID *string        `json:"clientRequestId,omitempty" gorm:"uniqueIndex:idx_task_user_request"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
	Tags            []Tag          `json:"tags,omitempty" gorm:"many2many:task_tags"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = "task_" + uuid.NewString()
	}
	return nil
}

type CreateTaskRequest struct {
	Title           string     `json:"title" validate:"required"`
	Description     *string    `json:"description"`
	Status          *Status    `json:"status"`
	Size            *Size      `json:"size"`
	EffortMinutes   *int       `json:"effortMinutes"`
	HardDueAt       *time.Time `json:"hardDueAt"`
	SoftDueAt       *time.Time `json:"softDueAt"`
	Energy          *Energy    `json:"energy"`
	SortOrder       *float64   `json:"sortOrder"`
	ProjectID       *string    `json:"projectId"`
	GoalID          *string    `json:"goalId"`
	GoalIDs         []string   `json:"goalIds"`
	Tags            []string   `json:"tags"`
	ClientRequestID *string    `json:"clientRequestId"`
}

type UpdateTaskRequest struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	Status        *Status    `json:"status"`
	Size          *Size      `json:"size"`
	EffortMinutes *int       `json:"effortMinutes"`
	HardDueAt     *time.Time `json:"hardDueAt"`
	SoftDueAt     *time.Time `json:"softDueAt"`
	Energy        *Energy    `json:"energy"`
	SortOrder     *float64   `json:"sortOrder"`
	ProjectID     *string    `json:"projectId"`
	GoalID        *string    `json:"goalId"`
	GoalIDs       *[]string  `json:"goalIds"`
	Tags          *[]string  `json:"tags"`
}

type PromoteWeekRequest struct {
	TaskIDs []string `json:"taskIds" validate:"required"`
}

type PromoteWeekResponse struct {
	Updated int      `json:"updated"`
	IDs     []string `json:"ids"`
}

type ImportResult struct {
	ImportedCount int      `json:"importedCount"`
	TaskIDs       []string `json:"taskIds"`
}
