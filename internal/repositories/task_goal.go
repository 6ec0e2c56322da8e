package repositories

import (
	"errors"

	"github.com/tractionhq/traction-api/internal/models"
	"gorm.io/gorm"
)

// TaskGoalRepository owns the task/goal junction. Rows are hard-deleted;
// the (task_id, goal_id) composite index stays clean across unlink and
// re-link cycles.
type TaskGoalRepository struct {
	db *gorm.DB
}

func NewTaskGoalRepository(db *gorm.DB) *TaskGoalRepository {
	return &TaskGoalRepository{db: db}
}

func (r *TaskGoalRepository) WithTx(tx *gorm.DB) *TaskGoalRepository {
	return &TaskGoalRepository{db: tx}
}

func (r *TaskGoalRepository) Get(taskID, goalID, userID string) (*models.TaskGoal, error) {
	var link models.TaskGoal
	err := r.db.First(&link,
		"task_id = ? AND goal_id = ? AND user_id = ?", taskID, goalID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *TaskGoalRepository) Create(link *models.TaskGoal) error {
	return r.db.Create(link).Error
}

func (r *TaskGoalRepository) Save(link *models.TaskGoal) error {
	return r.db.Save(link).Error
}

// Delete removes the link if present and reports whether a row existed.
func (r *TaskGoalRepository) Delete(taskID, goalID, userID string) (bool, error) {
	res := r.db.Delete(&models.TaskGoal{},
		"task_id = ? AND goal_id = ? AND user_id = ?", taskID, goalID, userID)
	return res.RowsAffected > 0, res.Error
}

func (r *TaskGoalRepository) ListByGoal(goalID, userID string) ([]models.TaskGoal, error) {
	var links []models.TaskGoal
	err := r.db.Where("goal_id = ? AND user_id = ?", goalID, userID).
		Order("created_at asc").Order("id asc").Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *TaskGoalRepository) ListByTask(taskID, userID string) ([]models.TaskGoal, error) {
	var links []models.TaskGoal
	err := r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		Order("created_at asc").Order("id asc").Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

// ListByTasks batch-loads links for the scorer, oldest first.
func (r *TaskGoalRepository) ListByTasks(userID string, taskIDs []string) ([]models.TaskGoal, error) {
	var links []models.TaskGoal
	if len(taskIDs) == 0 {
		return links, nil
	}
	err := r.db.Where("user_id = ? AND task_id IN ?", userID, taskIDs).
		Order("created_at asc").Order("id asc").Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *TaskGoalRepository) DeleteByTask(taskID, userID string) error {
	return r.db.Delete(&models.TaskGoal{}, "task_id = ? AND user_id = ?", taskID, userID).Error
}

func (r *TaskGoalRepository) DeleteByGoal(goalID, userID string) error {
	return r.db.Delete(&models.TaskGoal{}, "goal_id = ? AND user_id = ?", goalID, userID).Error
}

// OldestForTask returns the task's earliest surviving link, the one the
// legacy goal_id column projects.
func (r *TaskGoalRepository) OldestForTask(taskID, userID string) (*models.TaskGoal, error) {
	var link models.TaskGoal
	err := r.db.Where("task_id = ? AND user_id = ?", taskID, userID).
		Order("created_at asc").Order("id asc").First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}
