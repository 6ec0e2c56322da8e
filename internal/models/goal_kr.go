package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoalKR is a measurable key result under a goal. TargetValue is
// required; baseline defaults to zero when unset. CurrentValue, when
// recorded, overrides task-derived projection in progress reports.
type GoalKR struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	GoalID        string    `json:"goalId" gorm:"index;not null"`
	Name          string    `json:"name" gorm:"not null"`
	TargetValue   float64   `json:"targetValue" gorm:"not null"`
	BaselineValue *float64  `json:"baselineValue"`
	CurrentValue  *float64  `json:"currentValue"`
	Unit          *string   `json:"unit"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (kr *GoalKR) BeforeCreate(tx *gorm.DB) error {
	if kr.ID == "" {
		kr.ID = "kr_" + uuid.NewString()
	}
	return nil
}

// Baseline returns the baseline value, zero when unset.
func (kr *GoalKR) Baseline() float64 {
	if kr.BaselineValue == nil {
		return 0
	}
	return *kr.BaselineValue
}

type CreateKRRequest struct {
	Name          string   `json:"name" validate:"required"`
	TargetValue   *float64 `json:"targetValue" validate:"required"`
	BaselineValue *float64 `json:"baselineValue"`
	CurrentValue  *float64 `json:"currentValue"`
	Unit          *string  `json:"unit"`
}

type UpdateKRRequest struct {
	Name          *string  `json:"name"`
	TargetValue   *float64 `json:"targetValue"`
	BaselineValue *float64 `json:"baselineValue"`
	CurrentValue  *float64 `json:"currentValue"`
	Unit          *string  `json:"unit"`
}
