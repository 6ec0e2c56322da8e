package repositories

import (
	"errors"
	"strings"

	"github.com/tractionhq/traction-api/internal/models"
	"gorm.io/gorm"
)

// TaskRepository owns task rows and their tag associations. Every lookup
// carries the owning user in the WHERE clause; rows of other users are
// unreachable from here up.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns the repository bound to the given transaction.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

type TaskFilter struct {
	Statuses        []models.Status
	ProjectID       *string
	IncludeArchived bool
	Skip            int
	Limit           int
}

func (r *TaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

func (r *TaskRepository) GetByUser(id, userID string) (*models.Task, error) {
	var task models.Task
	err := r.db.Preload("Tags").First(&task, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) GetByClientRequestID(userID, requestID string) (*models.Task, error) {
	var task models.Task
	err := r.db.Preload("Tags").
		First(&task, "user_id = ? AND client_request_id = ?", userID, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByUser(userID string, f TaskFilter) ([]models.Task, error) {
	q := r.db.Preload("Tags").Where("user_id = ?", userID)
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	} else if !f.IncludeArchived {
		q = q.Where("status IN ?", models.ActiveStatuses())
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	q = q.Order("status asc").Order("sort_order asc").Order("created_at asc").Order("id asc")
	if f.Skip > 0 {
		q = q.Offset(f.Skip)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) ListByIDs(userID string, ids []string) ([]models.Task, error) {
	var tasks []models.Task
	if len(ids) == 0 {
		return tasks, nil
	}
	err := r.db.Where("user_id = ? AND id IN ?", userID, ids).Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Save(task *models.Task) error {
	return r.db.Save(task).Error
}

func (r *TaskRepository) DeleteByUser(id, userID string) error {
	return r.db.Delete(&models.Task{}, "id = ? AND user_id = ?", id, userID).Error
}

// SetGoalRef points the legacy goal_id column without touching any other
// field.
func (r *TaskRepository) SetGoalRef(taskID string, goalID *string) error {
	return r.db.Model(&models.Task{}).Where("id = ?", taskID).
		Update("goal_id", goalID).Error
}

// ClearGoalRef nulls the legacy goal_id on every task pointing at the
// given goal.
func (r *TaskRepository) ClearGoalRef(userID, goalID string) error {
	return r.db.Model(&models.Task{}).
		Where("user_id = ? AND goal_id = ?", userID, goalID).
		Update("goal_id", nil).Error
}

// ClearProjectRef detaches every task from the given project.
func (r *TaskRepository) ClearProjectRef(userID, projectID string) error {
	return r.db.Model(&models.Task{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Update("project_id", nil).Error
}

// GetOrCreateTags resolves tag names to rows, creating missing ones.
// Names are trimmed; empties and duplicates are dropped.
func (r *TaskRepository) GetOrCreateTags(names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		var tag models.Tag
		if err := r.db.FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *TaskRepository) ReplaceTags(task *models.Task, tags []models.Tag) error {
	if len(tags) == 0 {
		return r.db.Model(task).Association("Tags").Clear()
	}
	return r.db.Model(task).Association("Tags").Replace(tags)
}
