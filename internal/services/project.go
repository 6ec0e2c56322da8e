package services

import (
	"strings"

	"github.com/tractionhq/traction-api/internal/apperrors"
	"github.com/tractionhq/traction-api/internal/models"
	"github.com/tractionhq/traction-api/internal/repositories"
	"gorm.io/gorm"
)

type ProjectService struct {
	db       *gorm.DB
	projects *repositories.ProjectRepository
	tasks    *repositories.TaskRepository
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{
		db:       db,
		projects: repositories.NewProjectRepository(db),
		tasks:    repositories.NewTaskRepository(db),
	}
}

func (s *ProjectService) Create(userID string, req *models.CreateProjectRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name must not be empty")
	}
	project := &models.Project{
		UserID:         userID,
		Name:           name,
		Color:          req.Color,
		MilestoneTitle: req.MilestoneTitle,
		MilestoneDueAt: req.MilestoneDueAt,
	}
	if err := s.projects.Create(project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Get(userID, projectID string) (*models.Project, error) {
	project, err := s.projects.GetByUser(projectID, userID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperrors.NotFound("Project", projectID)
	}
	return project, nil
}

func (s *ProjectService) List(userID string, skip, limit int) ([]models.Project, error) {
	if skip < 0 {
		return nil, apperrors.Validation("skip must be non-negative")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		return nil, apperrors.Validation("limit must be at most 1000")
	}
	return s.projects.ListByUser(userID, skip, limit)
}

func (s *ProjectService) Update(userID, projectID string, req *models.UpdateProjectRequest) (*models.Project, error) {
	project, err := s.Get(userID, projectID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("name must not be empty")
		}
		project.Name = name
	}
	if req.Color != nil {
		project.Color = req.Color
	}
	if req.MilestoneTitle != nil {
		project.MilestoneTitle = req.MilestoneTitle
	}
	if req.MilestoneDueAt != nil {
		project.MilestoneDueAt = req.MilestoneDueAt
	}
	if err := s.projects.Save(project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project and detaches its tasks.
func (s *ProjectService) Delete(userID, projectID string) error {
	project, err := s.projects.GetByUser(projectID, userID)
	if err != nil {
		return err
	}
	if project == nil {
		return apperrors.NotFound("Project", projectID)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.tasks.WithTx(tx).ClearProjectRef(userID, projectID); err != nil {
			return err
		}
		return s.projects.WithTx(tx).DeleteByUser(projectID, userID)
	})
}
