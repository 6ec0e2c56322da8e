package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoalType places a goal in the planning hierarchy. Quarterly goals hang
// off annual ones, weekly goals off quarterly ones.
type GoalType string

const (
	GoalTypeAnnual    GoalType = "annual"
	GoalTypeQuarterly GoalType = "quarterly"
	GoalTypeWeekly    GoalType = "weekly"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalTypeAnnual, GoalTypeQuarterly, GoalTypeWeekly:
		return true
	}
	return false
}

// ParentType returns the type a parent goal must carry, and whether this
// type takes a parent at all.
func (t GoalType) ParentType() (GoalType, bool) {
	switch t {
	case GoalTypeQuarterly:
		return GoalTypeAnnual, true
	case GoalTypeWeekly:
		return GoalTypeQuarterly, true
	}
	return "", false
}

// GoalStatus is the owner's health assessment of a goal.
type GoalStatus string

const (
	GoalStatusOnTarget  GoalStatus = "on_target"
	GoalStatusAtRisk    GoalStatus = "at_risk"
	GoalStatusOffTarget GoalStatus = "off_target"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusOnTarget, GoalStatusAtRisk, GoalStatusOffTarget:
		return true
	}
	return false
}

type Goal struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	UserID       string         `json:"userId" gorm:"index;not null"`
	Title        string         `json:"title" gorm:"not null"`
	Description  *string        `json:"description"`
	Type         GoalType       `json:"type" gorm:"not null;default:'weekly'"`      // annual, quarterly, weekly
	Status       GoalStatus     `json:"status" gorm:"not null;default:'on_target'"` // on_target, at_risk, off_target
	ParentGoalID *string        `json:"parentGoalId" gorm:"index"`
	EndDate      *time.Time     `json:"endDate"`
	Priority     int            `json:"priority" gorm:"default:0"`
	IsClosed     bool           `json:"isClosed" gorm:"default:false"`
	ClosedAt     *time.Time     `json:"closedAt"`
	IsArchived   bool           `json:"isArchived" gorm:"default:false"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
	KeyResults   []GoalKR       `json:"keyResults,omitempty" gorm:"foreignKey:GoalID"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = "goal_" + uuid.NewString()
	}
	return nil
}

type CreateGoalRequest struct {
	Title        string      `json:"title" validate:"required"`
	Description  *string     `json:"description"`
	Type         GoalType    `json:"type" validate:"required"`
	Status       *GoalStatus `json:"status"`
	ParentGoalID *string     `json:"parentGoalId"`
	EndDate      *time.Time  `json:"endDate"`
	Priority     *int        `json:"priority"`
}

type UpdateGoalRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Status      *GoalStatus `json:"status"`
	EndDate     *time.Time  `json:"endDate"`
	Priority    *int        `json:"priority"`
	IsArchived  *bool       `json:"isArchived"`
}

// GoalTaskLink pairs a linked task with the weight its link carries.
type GoalTaskLink struct {
	Task   Task     `json:"task"`
	Weight *float64 `json:"weight"`
}

// GoalDetail is the expanded read model: the goal plus its key results
// and the tasks linked through task_goals.
type GoalDetail struct {
	Goal
	LinkedTasks []GoalTaskLink `json:"linkedTasks"`
}

// KRProgress reports one key result's standing. When the KR carries a
// recorded current value the progress is measured from it; otherwise it
// is projected from weighted task completion. A key result whose target
// equals its baseline cannot express progress: it is flagged degenerate
// and reported at zero rather than treated as an error.
type KRProgress struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Unit           *string  `json:"unit"`
	BaselineValue  float64  `json:"baselineValue"`
	TargetValue    float64  `json:"targetValue"`
	CurrentValue   *float64 `json:"currentValue,omitempty"`
	ProjectedValue float64  `json:"projectedValue"`
	ProgressPct    float64  `json:"progressPct"`
	Measured       bool     `json:"measured"`
	Degenerate     bool     `json:"degenerate"`
}

type GoalProgress struct {
	GoalID          string       `json:"goalId"`
	CompletionRatio float64      `json:"completionRatio"`
	WeightedDone    float64      `json:"weightedDone"`
	WeightTotal     float64      `json:"weightTotal"`
	TaskCount       int          `json:"taskCount"`
	DoneCount       int          `json:"doneCount"`
	KeyResults      []KRProgress `json:"keyResults"`
}
