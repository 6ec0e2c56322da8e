package repositories

import (
	"errors"

	"github.com/tractionhq/traction-api/internal/models"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) WithTx(tx *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

func (r *ProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

func (r *ProjectRepository) GetByUser(id, userID string) (*models.Project, error) {
	var project models.Project
	err := r.db.First(&project, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) ListByUser(userID string, skip, limit int) ([]models.Project, error) {
	q := r.db.Where("user_id = ?", userID).
		Order("created_at asc").Order("id asc")
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var projects []models.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListByIDs loads the given projects for the scorer's milestone factor.
func (r *ProjectRepository) ListByIDs(userID string, ids []string) ([]models.Project, error) {
	var projects []models.Project
	if len(ids) == 0 {
		return projects, nil
	}
	err := r.db.Where("user_id = ? AND id IN ?", userID, ids).Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepository) Save(project *models.Project) error {
	return r.db.Save(project).Error
}

func (r *ProjectRepository) DeleteByUser(id, userID string) error {
	return r.db.Delete(&models.Project{}, "id = ? AND user_id = ?", id, userID).Error
}
