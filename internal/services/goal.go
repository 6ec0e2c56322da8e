package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tractionhq/traction-api/internal/apperrors"
	"github.com/tractionhq/traction-api/internal/models"
	"github.com/tractionhq/traction-api/internal/repositories"
	"gorm.io/gorm"
)

// GoalService owns the goal hierarchy, lifecycle, key results, and
// progress computation.
type GoalService struct {
	db    *gorm.DB
	goals *repositories.GoalRepository
	tasks *repositories.TaskRepository
	links *repositories.TaskGoalRepository
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{
		db:    db,
		goals: repositories.NewGoalRepository(db),
		tasks: repositories.NewTaskRepository(db),
		links: repositories.NewTaskGoalRepository(db),
	}
}

func (s *GoalService) Create(userID string, req *models.CreateGoalRequest) (*models.Goal, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.Validation("title must not be empty")
	}
	if !req.Type.Valid() {
		return nil, apperrors.Validation("invalid goal type: " + string(req.Type))
	}
	status := models.GoalStatusOnTarget
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.Validation("invalid goal status: " + string(*req.Status))
		}
		status = *req.Status
	}

	parentType, needsParent := req.Type.ParentType()
	if !needsParent && req.ParentGoalID != nil {
		return nil, apperrors.Validation("annual goals cannot have a parent")
	}
	if needsParent {
		if req.ParentGoalID == nil {
			return nil, apperrors.Validation(
				fmt.Sprintf("%s goals require a parent of type %s", req.Type, parentType))
		}
		parent, err := s.goals.GetByUser(*req.ParentGoalID, userID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperrors.NotFound("Goal", *req.ParentGoalID)
		}
		if parent.Type != parentType {
			return nil, apperrors.Validation(
				fmt.Sprintf("parent of a %s goal must be %s, got %s", req.Type, parentType, parent.Type))
		}
	}

	goal := &models.Goal{
		UserID:       userID,
		Title:        title,
		Description:  req.Description,
		Type:         req.Type,
		Status:       status,
		ParentGoalID: req.ParentGoalID,
		EndDate:      req.EndDate,
	}
	if req.Priority != nil {
		goal.Priority = *req.Priority
	}
	if err := s.goals.Create(goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *GoalService) Get(userID, goalID string) (*models.Goal, error) {
	goal, err := s.goals.GetByUser(goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, apperrors.NotFound("Goal", goalID)
	}
	return goal, nil
}

// GetDetail returns the goal with its key results and linked tasks.
func (s *GoalService) GetDetail(userID, goalID string) (*models.GoalDetail, error) {
	goal, err := s.goals.GetDetail(goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, apperrors.NotFound("Goal", goalID)
	}
	links, err := s.links.ListByGoal(goalID, userID)
	if err != nil {
		return nil, err
	}
	taskIDs := make([]string, 0, len(links))
	for _, link := range links {
		taskIDs = append(taskIDs, link.TaskID)
	}
	tasks, err := s.tasks.ListByIDs(userID, taskIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	detail := &models.GoalDetail{Goal: *goal, LinkedTasks: []models.GoalTaskLink{}}
	for _, link := range links {
		task, ok := byID[link.TaskID]
		if !ok {
			continue
		}
		detail.LinkedTasks = append(detail.LinkedTasks, models.GoalTaskLink{
			Task:   task,
			Weight: link.Weight,
		})
	}
	return detail, nil
}

func (s *GoalService) List(userID string, goalType *string, isClosed *bool, includeArchived bool, skip, limit int) ([]models.Goal, error) {
	if skip < 0 {
		return nil, apperrors.Validation("skip must be non-negative")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		return nil, apperrors.Validation("limit must be at most 1000")
	}
	f := repositories.GoalFilter{
		IsClosed:        isClosed,
		IncludeArchived: includeArchived,
		Skip:            skip,
		Limit:           limit,
	}
	if goalType != nil {
		t := models.GoalType(*goalType)
		if !t.Valid() {
			return nil, apperrors.Validation("invalid goal type: " + *goalType)
		}
		f.Type = &t
	}
	return s.goals.ListByUser(userID, f)
}

func (s *GoalService) Update(userID, goalID string, req *models.UpdateGoalRequest) (*models.Goal, error) {
	goal, err := s.Get(userID, goalID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.Validation("title must not be empty")
		}
		goal.Title = title
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.Validation("invalid goal status: " + string(*req.Status))
		}
		goal.Status = *req.Status
	}
	if req.Description != nil {
		goal.Description = req.Description
	}
	if req.EndDate != nil {
		goal.EndDate = req.EndDate
	}
	if req.Priority != nil {
		goal.Priority = *req.Priority
	}
	if req.IsArchived != nil {
		goal.IsArchived = *req.IsArchived
	}
	if err := s.goals.Save(goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// Close marks the goal closed. Closing an already closed goal is a
// no-op success.
func (s *GoalService) Close(userID, goalID string) (*models.Goal, error) {
	goal, err := s.Get(userID, goalID)
	if err != nil {
		return nil, err
	}
	if !goal.IsClosed {
		now := time.Now().UTC()
		goal.IsClosed = true
		goal.ClosedAt = &now
		if err := s.goals.Save(goal); err != nil {
			return nil, err
		}
	}
	return goal, nil
}

// Reopen clears the closed state. Reopening an open goal is a no-op
// success.
func (s *GoalService) Reopen(userID, goalID string) (*models.Goal, error) {
	goal, err := s.Get(userID, goalID)
	if err != nil {
		return nil, err
	}
	if goal.IsClosed {
		goal.IsClosed = false
		goal.ClosedAt = nil
		if err := s.goals.Save(goal); err != nil {
			return nil, err
		}
	}
	return goal, nil
}

// Delete removes the goal, its key results, its links, and re-points the
// legacy goal_id of affected tasks, all in one transaction.
func (s *GoalService) Delete(userID, goalID string) error {
	goal, err := s.goals.GetByUser(goalID, userID)
	if err != nil {
		return err
	}
	if goal == nil {
		return apperrors.NotFound("Goal", goalID)
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		goals := s.goals.WithTx(tx)
		tasks := s.tasks.WithTx(tx)
		links := s.links.WithTx(tx)

		affected, err := links.ListByGoal(goalID, userID)
		if err != nil {
			return err
		}
		if err := links.DeleteByGoal(goalID, userID); err != nil {
			return err
		}
		if err := tasks.ClearGoalRef(userID, goalID); err != nil {
			return err
		}
		for _, link := range affected {
			oldest, err := links.OldestForTask(link.TaskID, userID)
			if err != nil {
				return err
			}
			if oldest != nil {
				if err := tasks.SetGoalRef(link.TaskID, &oldest.GoalID); err != nil {
					return err
				}
			}
		}
		if err := goals.DeleteKRsByGoal(goalID); err != nil {
			return err
		}
		return goals.DeleteByUser(goalID, userID)
	})
}

func (s *GoalService) AddKeyResult(userID, goalID string, req *models.CreateKRRequest) (*models.GoalKR, error) {
	if _, err := s.Get(userID, goalID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.Validation("name must not be empty")
	}
	if req.TargetValue == nil {
		return nil, apperrors.Validation("targetValue is required")
	}
	kr := &models.GoalKR{
		GoalID:        goalID,
		Name:          name,
		TargetValue:   *req.TargetValue,
		BaselineValue: req.BaselineValue,
		CurrentValue:  req.CurrentValue,
		Unit:          req.Unit,
	}
	if err := s.goals.AddKR(kr); err != nil {
		return nil, err
	}
	return kr, nil
}

func (s *GoalService) UpdateKeyResult(userID, goalID, krID string, req *models.UpdateKRRequest) (*models.GoalKR, error) {
	if _, err := s.Get(userID, goalID); err != nil {
		return nil, err
	}
	kr, err := s.goals.GetKR(goalID, krID)
	if err != nil {
		return nil, err
	}
	if kr == nil {
		return nil, apperrors.NotFound("Key result", krID)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperrors.Validation("name must not be empty")
		}
		kr.Name = name
	}
	if req.TargetValue != nil {
		kr.TargetValue = *req.TargetValue
	}
	if req.BaselineValue != nil {
		kr.BaselineValue = req.BaselineValue
	}
	if req.CurrentValue != nil {
		kr.CurrentValue = req.CurrentValue
	}
	if req.Unit != nil {
		kr.Unit = req.Unit
	}
	if err := s.goals.SaveKR(kr); err != nil {
		return nil, err
	}
	return kr, nil
}

func (s *GoalService) DeleteKeyResult(userID, goalID, krID string) error {
	if _, err := s.Get(userID, goalID); err != nil {
		return err
	}
	kr, err := s.goals.GetKR(goalID, krID)
	if err != nil {
		return err
	}
	if kr == nil {
		return apperrors.NotFound("Key result", krID)
	}
	return s.goals.DeleteKR(goalID, krID)
}

// LinkTasks attaches a batch of tasks to the goal with a shared optional
// weight. Every task must be owned; already linked tasks get the weight
// updated in place.
func (s *GoalService) LinkTasks(userID, goalID string, taskIDs []string, weight *float64) (*models.LinkTasksResponse, error) {
	if weight != nil && *weight < 0 {
		return nil, apperrors.Validation("weight must be non-negative")
	}
	resp := &models.LinkTasksResponse{IDs: []string{}}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		goals := s.goals.WithTx(tx)
		tasks := s.tasks.WithTx(tx)
		links := s.links.WithTx(tx)

		goal, err := goals.GetByUser(goalID, userID)
		if err != nil {
			return err
		}
		if goal == nil {
			return apperrors.NotFound("Goal", goalID)
		}
		for _, taskID := range dedupeIDs(taskIDs, nil) {
			task, err := tasks.GetByUser(taskID, userID)
			if err != nil {
				return err
			}
			if task == nil {
				return apperrors.NotFound("Task", taskID)
			}
			if _, err := upsertTaskGoal(links, userID, taskID, goalID, weight, goals); err != nil {
				return err
			}
			if task.GoalID == nil {
				if err := tasks.SetGoalRef(taskID, &goalID); err != nil {
					return err
				}
			}
			resp.IDs = append(resp.IDs, taskID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(resp.IDs)
	resp.Linked = len(resp.IDs)
	return resp, nil
}

// Progress computes weighted completion over the goal's linked tasks and
// projects it onto each key result. A link without a weight counts as
// 1.0; a task counts as done only in the done status. A key result whose
// target equals its baseline is reported degenerate with zero progress.
func (s *GoalService) Progress(userID, goalID string) (*models.GoalProgress, error) {
	goal, err := s.goals.GetDetail(goalID, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, apperrors.NotFound("Goal", goalID)
	}
	links, err := s.links.ListByGoal(goalID, userID)
	if err != nil {
		return nil, err
	}
	taskIDs := make([]string, 0, len(links))
	for _, link := range links {
		taskIDs = append(taskIDs, link.TaskID)
	}
	tasks, err := s.tasks.ListByIDs(userID, taskIDs)
	if err != nil {
		return nil, err
	}
	statusByID := make(map[string]models.Status, len(tasks))
	for _, t := range tasks {
		statusByID[t.ID] = t.Status
	}

	var weightTotal, weightedDone float64
	doneCount := 0
	for i := range links {
		w := links[i].EffectiveWeight()
		weightTotal += w
		if statusByID[links[i].TaskID] == models.StatusDone {
			weightedDone += w
			doneCount++
		}
	}
	ratio := 0.0
	if weightTotal > 0 {
		ratio = weightedDone / weightTotal
	}

	progress := &models.GoalProgress{
		GoalID:          goalID,
		CompletionRatio: ratio,
		WeightedDone:    weightedDone,
		WeightTotal:     weightTotal,
		TaskCount:       len(links),
		DoneCount:       doneCount,
		KeyResults:      make([]models.KRProgress, 0, len(goal.KeyResults)),
	}
	for i := range goal.KeyResults {
		kr := &goal.KeyResults[i]
		baseline := kr.Baseline()
		span := kr.TargetValue - baseline
		entry := models.KRProgress{
			ID:            kr.ID,
			Name:          kr.Name,
			Unit:          kr.Unit,
			BaselineValue: baseline,
			TargetValue:   kr.TargetValue,
			CurrentValue:  kr.CurrentValue,
		}
		switch {
		case span == 0:
			entry.Degenerate = true
			entry.ProjectedValue = baseline
		case kr.CurrentValue != nil:
			entry.Measured = true
			entry.ProjectedValue = *kr.CurrentValue
			entry.ProgressPct = round1((*kr.CurrentValue - baseline) / span * 100)
		default:
			entry.ProjectedValue = baseline + ratio*span
			entry.ProgressPct = round1(ratio * 100)
		}
		progress.KeyResults = append(progress.KeyResults, entry)
	}
	return progress, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
