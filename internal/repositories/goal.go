package repositories

import (
	"errors"

	"github.com/tractionhq/traction-api/internal/models"
	"gorm.io/gorm"
)

type GoalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

func (r *GoalRepository) WithTx(tx *gorm.DB) *GoalRepository {
	return &GoalRepository{db: tx}
}

type GoalFilter struct {
	Type            *models.GoalType
	IsClosed        *bool
	IncludeArchived bool
	Skip            int
	Limit           int
}

func (r *GoalRepository) Create(goal *models.Goal) error {
	return r.db.Create(goal).Error
}

func (r *GoalRepository) GetByUser(id, userID string) (*models.Goal, error) {
	var goal models.Goal
	err := r.db.First(&goal, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

// GetDetail loads the goal with its key results.
func (r *GoalRepository) GetDetail(id, userID string) (*models.Goal, error) {
	var goal models.Goal
	err := r.db.Preload("KeyResults", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at asc").Order("id asc")
	}).First(&goal, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (r *GoalRepository) ListByUser(userID string, f GoalFilter) ([]models.Goal, error) {
	q := r.db.Where("user_id = ?", userID)
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.IsClosed != nil {
		q = q.Where("is_closed = ?", *f.IsClosed)
	}
	if !f.IncludeArchived {
		q = q.Where("is_archived = ?", false)
	}
	q = q.Order("priority desc").Order("created_at asc").Order("id asc")
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var goals []models.Goal
	if err := q.Find(&goals).Error; err != nil {
		return nil, err
	}
	return goals, nil
}

// ListOpenByUser returns goals still in play: not closed, not archived.
// The recommendation scorer treats only these as alignment targets.
func (r *GoalRepository) ListOpenByUser(userID string) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.Where("user_id = ? AND is_closed = ? AND is_archived = ?",
		userID, false, false).Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *GoalRepository) Save(goal *models.Goal) error {
	return r.db.Save(goal).Error
}

func (r *GoalRepository) DeleteByUser(id, userID string) error {
	return r.db.Delete(&models.Goal{}, "id = ? AND user_id = ?", id, userID).Error
}

func (r *GoalRepository) AddKR(kr *models.GoalKR) error {
	return r.db.Create(kr).Error
}

func (r *GoalRepository) GetKR(goalID, krID string) (*models.GoalKR, error) {
	var kr models.GoalKR
	err := r.db.First(&kr, "id = ? AND goal_id = ?", krID, goalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &kr, nil
}

func (r *GoalRepository) SaveKR(kr *models.GoalKR) error {
	return r.db.Save(kr).Error
}

func (r *GoalRepository) DeleteKR(goalID, krID string) error {
	return r.db.Delete(&models.GoalKR{}, "id = ? AND goal_id = ?", krID, goalID).Error
}

func (r *GoalRepository) DeleteKRsByGoal(goalID string) error {
	return r.db.Delete(&models.GoalKR{}, "goal_id = ?", goalID).Error
}
