package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskGoal links a task to a goal with an optional contribution weight.
// One row per (task, goal) pair, enforced by the composite index; rows
// are hard-deleted so a re-link never collides with a dead one.
type TaskGoal struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	TaskID    string    `json:"taskId" gorm:"not null;uniqueIndex:idx_task_goal"`
	GoalID    string    `json:"goalId" gorm:"not null;index;uniqueIndex:idx_task_goal"`
	UserID    string    `json:"userId" gorm:"index;not null"`
	Weight    *float64  `json:"weight"`
	CreatedAt time.Time `json:"createdAt"`
}

func (tg *TaskGoal) BeforeCreate(tx *gorm.DB) error {
	if tg.ID == "" {
		tg.ID = "tg_" + uuid.NewString()
	}
	return nil
}

// EffectiveWeight treats an unset weight as 1.0.
func (tg *TaskGoal) EffectiveWeight() float64 {
	if tg.Weight == nil {
		return 1
	}
	return *tg.Weight
}

type LinkTaskRequest struct {
	GoalID string   `json:"goalId" validate:"required"`
	Weight *float64 `json:"weight"`
}

type LinkTasksRequest struct {
	TaskIDs []string `json:"taskIds" validate:"required"`
	Weight  *float64 `json:"weight"`
}

type LinkTasksResponse struct {
	Linked int      `json:"linked"`
	IDs    []string `json:"ids"`
}
