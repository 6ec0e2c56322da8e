package services

import (
	"sort"
	"strings"
	"time"

	"github.com/tractionhq/traction-api/internal/apperrors"
	"github.com/tractionhq/traction-api/internal/models"
	"github.com/tractionhq/traction-api/internal/repositories"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

// TaskService owns task business rules. Writes that touch more than one
// row run inside a single transaction.
type TaskService struct {
	db       *gorm.DB
	tasks    *repositories.TaskRepository
	projects *repositories.ProjectRepository
	goals    *repositories.GoalRepository
	links    *repositories.TaskGoalRepository
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{
		db:       db,
		tasks:    repositories.NewTaskRepository(db),
		projects: repositories.NewProjectRepository(db),
		goals:    repositories.NewGoalRepository(db),
		links:    repositories.NewTaskGoalRepository(db),
	}
}

func (s *TaskService) Create(userID string, req *models.CreateTaskRequest) (*models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.Validation("title must not be empty")
	}
	status := models.StatusBacklog
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.Validation("invalid status: " + string(*req.Status))
		}
		status = *req.Status
	}
	if req.Size != nil && !req.Size.Valid() {
		return nil, apperrors.Validation("invalid size: " + string(*req.Size))
	}
	if req.Energy != nil && !req.Energy.Valid() {
		return nil, apperrors.Validation("invalid energy: " + string(*req.Energy))
	}

	if req.ClientRequestID != nil && *req.ClientRequestID != "" {
		existing, err := s.tasks.GetByClientRequestID(userID, *req.ClientRequestID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	goalIDs := dedupeIDs(req.GoalIDs, req.GoalID)

	task := &models.Task{
		UserID:          userID,
		Title:           title,
		Description:     req.Description,
		Status:          status,
		Size:            req.Size,
		EffortMinutes:   req.EffortMinutes,
		HardDueAt:       req.HardDueAt,
		SoftDueAt:       req.SoftDueAt,
		Energy:          req.Energy,
		ProjectID:       req.ProjectID,
		ClientRequestID: req.ClientRequestID,
	}
	if req.SortOrder != nil {
		task.SortOrder = *req.SortOrder
	} else {
		task.SortOrder = float64(time.Now().UnixMilli())
	}
	if len(goalIDs) > 0 {
		task.GoalID = &goalIDs[0]
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		goals := s.goals.WithTx(tx)
		links := s.links.WithTx(tx)

		if req.ProjectID != nil {
			project, err := s.projects.WithTx(tx).GetByUser(*req.ProjectID, userID)
			if err != nil {
				return err
			}
			if project == nil {
				return apperrors.NotFound("Project", *req.ProjectID)
			}
		}
		for _, gid := range goalIDs {
			goal, err := goals.GetByUser(gid, userID)
			if err != nil {
				return err
			}
			if goal == nil {
				return apperrors.NotFound("Goal", gid)
			}
		}
		if len(req.Tags) > 0 {
			tags, err := tasks.GetOrCreateTags(req.Tags)
			if err != nil {
				return err
			}
			task.Tags = tags
		}
		if err := tasks.Create(task); err != nil {
			return err
		}
		for _, gid := range goalIDs {
			link := &models.TaskGoal{TaskID: task.ID, GoalID: gid, UserID: userID}
			if err := links.Create(link); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent request with the same client id can win the race
		// to the unique index; hand back its row.
		if req.ClientRequestID != nil && *req.ClientRequestID != "" {
			if existing, lookupErr := s.tasks.GetByClientRequestID(userID, *req.ClientRequestID); lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Get(userID, taskID string) (*models.Task, error) {
	task, err := s.tasks.GetByUser(taskID, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperrors.NotFound("Task", taskID)
	}
	return task, nil
}

func (s *TaskService) List(userID string, statuses []string, projectID *string, includeArchived bool, skip, limit int) ([]models.Task, error) {
	if skip < 0 {
		return nil, apperrors.Validation("skip must be non-negative")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		return nil, apperrors.Validation("limit must be at most 1000")
	}
	parsed := make([]models.Status, 0, len(statuses))
	for _, raw := range statuses {
		st := models.Status(raw)
		if !st.Valid() {
			return nil, apperrors.Validation("invalid status: " + raw)
		}
		parsed = append(parsed, st)
	}
	return s.tasks.ListByUser(userID, repositories.TaskFilter{
		Statuses:        parsed,
		ProjectID:       projectID,
		IncludeArchived: includeArchived,
		Skip:            skip,
		Limit:           limit,
	})
}

func (s *TaskService) Update(userID, taskID string, req *models.UpdateTaskRequest) (*models.Task, error) {
	task, err := s.tasks.GetByUser(taskID, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperrors.NotFound("Task", taskID)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.Validation("title must not be empty")
		}
		task.Title = title
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.Validation("invalid status: " + string(*req.Status))
		}
		task.Status = *req.Status
	}
	if req.Size != nil {
		if !req.Size.Valid() {
			return nil, apperrors.Validation("invalid size: " + string(*req.Size))
		}
		task.Size = req.Size
	}
	if req.Energy != nil {
		if !req.Energy.Valid() {
			return nil, apperrors.Validation("invalid energy: " + string(*req.Energy))
		}
		task.Energy = req.Energy
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.EffortMinutes != nil {
		task.EffortMinutes = req.EffortMinutes
	}
	if req.HardDueAt != nil {
		task.HardDueAt = req.HardDueAt
	}
	if req.SoftDueAt != nil {
		task.SoftDueAt = req.SoftDueAt
	}
	if req.SortOrder != nil {
		task.SortOrder = *req.SortOrder
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		goals := s.goals.WithTx(tx)
		links := s.links.WithTx(tx)

		if req.ProjectID != nil {
			project, err := s.projects.WithTx(tx).GetByUser(*req.ProjectID, userID)
			if err != nil {
				return err
			}
			if project == nil {
				return apperrors.NotFound("Project", *req.ProjectID)
			}
			task.ProjectID = req.ProjectID
		}
		if req.Tags != nil {
			tags, err := tasks.GetOrCreateTags(*req.Tags)
			if err != nil {
				return err
			}
			if err := tasks.ReplaceTags(task, tags); err != nil {
				return err
			}
			task.Tags = tags
		}
		if req.GoalIDs != nil {
			if err := reconcileTaskLinks(tasks, goals, links, task, userID, *req.GoalIDs); err != nil {
				return err
			}
		} else if req.GoalID != nil {
			// Legacy single-goal write: upsert the junction row and point
			// the column at it.
			if _, err := upsertTaskGoal(links, userID, task.ID, *req.GoalID, nil, goals); err != nil {
				return err
			}
			task.GoalID = req.GoalID
		}
		return tasks.Save(task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(userID, taskID string) error {
	task, err := s.tasks.GetByUser(taskID, userID)
	if err != nil {
		return err
	}
	if task == nil {
		return apperrors.NotFound("Task", taskID)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.links.WithTx(tx).DeleteByTask(taskID, userID); err != nil {
			return err
		}
		return s.tasks.WithTx(tx).DeleteByUser(taskID, userID)
	})
}

// PromoteToWeek moves the given tasks to the week status. Ids that do
// not resolve to an owned task are skipped.
func (s *TaskService) PromoteToWeek(userID string, taskIDs []string) (*models.PromoteWeekResponse, error) {
	resp := &models.PromoteWeekResponse{IDs: []string{}}
	if len(taskIDs) == 0 {
		return resp, nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		found, err := tasks.ListByIDs(userID, taskIDs)
		if err != nil {
			return err
		}
		for i := range found {
			found[i].Status = models.StatusWeek
			if err := tasks.Save(&found[i]); err != nil {
				return err
			}
			resp.IDs = append(resp.IDs, found[i].ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(resp.IDs)
	resp.Updated = len(resp.IDs)
	return resp, nil
}

// Link attaches a task to a goal with an optional weight. Linking an
// already linked pair updates the weight in place; there is never a
// second row.
func (s *TaskService) Link(userID, taskID, goalID string, weight *float64) (*models.TaskGoal, error) {
	if weight != nil && *weight < 0 {
		return nil, apperrors.Validation("weight must be non-negative")
	}
	var link *models.TaskGoal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		goals := s.goals.WithTx(tx)
		links := s.links.WithTx(tx)

		task, err := tasks.GetByUser(taskID, userID)
		if err != nil {
			return err
		}
		if task == nil {
			return apperrors.NotFound("Task", taskID)
		}
		link, err = upsertTaskGoal(links, userID, taskID, goalID, weight, goals)
		if err != nil {
			return err
		}
		if task.GoalID == nil {
			if err := tasks.SetGoalRef(taskID, &goalID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// Unlink removes the junction row if present; an absent link is a no-op.
// The legacy goal_id column is re-pointed at the oldest remaining link.
func (s *TaskService) Unlink(userID, taskID, goalID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		tasks := s.tasks.WithTx(tx)
		links := s.links.WithTx(tx)

		task, err := tasks.GetByUser(taskID, userID)
		if err != nil {
			return err
		}
		if task == nil {
			return apperrors.NotFound("Task", taskID)
		}
		if _, err := links.Delete(taskID, goalID, userID); err != nil {
			return err
		}
		if task.GoalID != nil && *task.GoalID == goalID {
			oldest, err := links.OldestForTask(taskID, userID)
			if err != nil {
				return err
			}
			var next *string
			if oldest != nil {
				next = &oldest.GoalID
			}
			if err := tasks.SetGoalRef(taskID, next); err != nil {
				return err
			}
		}
		return nil
	})
}

// upsertTaskGoal validates the goal and creates or updates the link row.
// The caller is responsible for validating the task.
func upsertTaskGoal(links *repositories.TaskGoalRepository, userID, taskID, goalID string, weight *float64, goals *repositories.GoalRepository) (*models.TaskGoal, error) {
	goal, err := goals.GetByUser(goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, apperrors.NotFound("Goal", goalID)
	}
	existing, err := links.Get(taskID, goalID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Weight = weight
		if err := links.Save(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	link := &models.TaskGoal{TaskID: taskID, GoalID: goalID, UserID: userID, Weight: weight}
	if err := links.Create(link); err != nil {
		return nil, err
	}
	return link, nil
}

// reconcileTaskLinks makes the junction match the desired goal set,
// keeping the weights of links that survive, then re-projects the legacy
// goal_id column.
func reconcileTaskLinks(tasks *repositories.TaskRepository, goals *repositories.GoalRepository, links *repositories.TaskGoalRepository, task *models.Task, userID string, desired []string) error {
	want := dedupeIDs(desired, nil)
	for _, gid := range want {
		goal, err := goals.GetByUser(gid, userID)
		if err != nil {
			return err
		}
		if goal == nil {
			return apperrors.NotFound("Goal", gid)
		}
	}
	existing, err := links.ListByTask(task.ID, userID)
	if err != nil {
		return err
	}
	wantSet := make(map[string]bool, len(want))
	for _, gid := range want {
		wantSet[gid] = true
	}
	haveSet := make(map[string]bool, len(existing))
	for _, link := range existing {
		haveSet[link.GoalID] = true
		if !wantSet[link.GoalID] {
			if _, err := links.Delete(task.ID, link.GoalID, userID); err != nil {
				return err
			}
		}
	}
	for _, gid := range want {
		if haveSet[gid] {
			continue
		}
		link := &models.TaskGoal{TaskID: task.ID, GoalID: gid, UserID: userID}
		if err := links.Create(link); err != nil {
			return err
		}
	}
	oldest, err := links.OldestForTask(task.ID, userID)
	if err != nil {
		return err
	}
	if oldest != nil {
		task.GoalID = &oldest.GoalID
	} else {
		task.GoalID = nil
	}
	return nil
}

// dedupeIDs merges an optional single id with a list, dropping empties
// and duplicates while preserving first-seen order.
func dedupeIDs(ids []string, first *string) []string {
	out := make([]string, 0, len(ids)+1)
	seen := make(map[string]bool, len(ids)+1)
	if first != nil && *first != "" {
		seen[*first] = true
		out = append(out, *first)
	}
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
