package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tractionhq/traction-api/internal/apperrors"
	"github.com/tractionhq/traction-api/internal/models"
	"github.com/tractionhq/traction-api/internal/repositories"
	"gorm.io/gorm"
)

// Scoring weights. Raw scores normalize to 0..100 against the sum.
const (
	weightStatusBoost = 10.0
	weightDueSoon     = 5.0
	weightGoalTag     = 2.0
	weightGoalLinked  = 8.0
	weightProjectDue  = 4.0
	maxRawScore       = weightStatusBoost + weightDueSoon + weightGoalTag + weightGoalLinked + weightProjectDue
)

const (
	defaultNextLimit    = 3
	maxNextLimit        = 50
	defaultSuggestLimit = 5
	maxSuggestLimit     = 20

	nextDueWindow    = 24 * time.Hour
	suggestDueWindow = 7 * 24 * time.Hour
)

// RecommendationService ranks tasks deterministically. All status checks
// go through the models.Status constants; identical snapshots always
// produce identical orderings.
type RecommendationService struct {
	db       *gorm.DB
	tasks    *repositories.TaskRepository
	goals    *repositories.GoalRepository
	links    *repositories.TaskGoalRepository
	projects *repositories.ProjectRepository
}

func NewRecommendationService(db *gorm.DB) *RecommendationService {
	return &RecommendationService{
		db:       db,
		tasks:    repositories.NewTaskRepository(db),
		goals:    repositories.NewGoalRepository(db),
		links:    repositories.NewTaskGoalRepository(db),
		projects: repositories.NewProjectRepository(db),
	}
}

// nextCandidateStatuses are the statuses a task can be picked up from.
func nextCandidateStatuses() []models.Status {
	return []models.Status{
		models.StatusBacklog,
		models.StatusDoing,
		models.StatusToday,
		models.StatusWeek,
	}
}

// Next returns the top candidates to work on now.
func (s *RecommendationService) Next(userID string, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		limit = defaultNextLimit
	}
	if limit > maxNextLimit {
		return nil, apperrors.Validation(fmt.Sprintf("limit must be at most %d", maxNextLimit))
	}
	candidates, err := s.tasks.ListByUser(userID, repositories.TaskFilter{
		Statuses: nextCandidateStatuses(),
	})
	if err != nil {
		return nil, err
	}
	ranked, err := s.rank(userID, candidates, nextDueWindow)
	if err != nil {
		return nil, err
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// SuggestWeek ranks backlog tasks as candidates for the coming week.
func (s *RecommendationService) SuggestWeek(userID string, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		limit = defaultSuggestLimit
	}
	if limit > maxSuggestLimit {
		return nil, apperrors.Validation(fmt.Sprintf("limit must be at most %d", maxSuggestLimit))
	}
	candidates, err := s.tasks.ListByUser(userID, repositories.TaskFilter{
		Statuses: []models.Status{models.StatusBacklog},
	})
	if err != nil {
		return nil, err
	}
	ranked, err := s.rank(userID, candidates, suggestDueWindow)
	if err != nil {
		return nil, err
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

func (s *RecommendationService) rank(userID string, tasks []models.Task, dueWindow time.Duration) ([]models.Recommendation, error) {
	taskIDs := make([]string, 0, len(tasks))
	projectIDs := make([]string, 0)
	for i := range tasks {
		taskIDs = append(taskIDs, tasks[i].ID)
		if tasks[i].ProjectID != nil {
			projectIDs = append(projectIDs, *tasks[i].ProjectID)
		}
	}

	links, err := s.links.ListByTasks(userID, taskIDs)
	if err != nil {
		return nil, err
	}
	openGoals, err := s.goals.ListOpenByUser(userID)
	if err != nil {
		return nil, err
	}
	openByID := make(map[string]models.Goal, len(openGoals))
	for _, g := range openGoals {
		openByID[g.ID] = g
	}
	// Oldest open-goal link per task drives the goal_linked factor and
	// the why text.
	linkedGoal := make(map[string]models.Goal, len(links))
	for _, link := range links {
		goal, open := openByID[link.GoalID]
		if !open {
			continue
		}
		if _, seen := linkedGoal[link.TaskID]; !seen {
			linkedGoal[link.TaskID] = goal
		}
	}

	projectList, err := s.projects.ListByIDs(userID, projectIDs)
	if err != nil {
		return nil, err
	}
	projectByID := make(map[string]models.Project, len(projectList))
	for _, p := range projectList {
		projectByID[p.ID] = p
	}

	now := time.Now().UTC()
	out := make([]models.Recommendation, 0, len(tasks))
	for i := range tasks {
		task := tasks[i]
		factors := map[string]float64{
			"status_boost":          0,
			"due_proximity":         0,
			"goal_align":            0,
			"goal_linked":           0,
			"project_due_proximity": 0,
		}
		raw := 0.0
		if task.Status == models.StatusToday {
			factors["status_boost"] = 1
			raw += weightStatusBoost
		}
		if dueWithin(task.HardDueAt, now, dueWindow) || dueWithin(task.SoftDueAt, now, dueWindow) {
			factors["due_proximity"] = 1
			raw += weightDueSoon
		}
		if hasGoalTag(task.Tags) {
			factors["goal_align"] = 1
			raw += weightGoalTag
		}
		goal, isLinked := linkedGoal[task.ID]
		if isLinked {
			factors["goal_linked"] = 1
			raw += weightGoalLinked
		}
		if task.ProjectID != nil {
			if p, ok := projectByID[*task.ProjectID]; ok && dueWithin(p.MilestoneDueAt, now, dueWindow) {
				factors["project_due_proximity"] = 1
				raw += weightProjectDue
			}
		}
		out = append(out, models.Recommendation{
			Task:    task,
			Score:   round1(raw / maxRawScore * 100),
			Factors: factors,
			Why:     whyFromFactors(factors, goal.Title),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Task.SortOrder != out[j].Task.SortOrder {
			return out[i].Task.SortOrder < out[j].Task.SortOrder
		}
		if !out[i].Task.CreatedAt.Equal(out[j].Task.CreatedAt) {
			return out[i].Task.CreatedAt.Before(out[j].Task.CreatedAt)
		}
		return out[i].Task.ID < out[j].Task.ID
	})
	return out, nil
}

// dueWithin reports whether due falls on or before the end of the
// window. Overdue dates count as due.
func dueWithin(due *time.Time, now time.Time, window time.Duration) bool {
	if due == nil {
		return false
	}
	return due.Sub(now) <= window
}

func hasGoalTag(tags []models.Tag) bool {
	for _, tag := range tags {
		if strings.EqualFold(tag.Name, "goal") {
			return true
		}
	}
	return false
}

func whyFromFactors(factors map[string]float64, goalTitle string) string {
	parts := []string{}
	if factors["due_proximity"] > 0 {
		parts = append(parts, "due soon")
	}
	if factors["goal_linked"] > 0 {
		parts = append(parts, fmt.Sprintf("linked to goal '%s'", goalTitle))
	} else if factors["goal_align"] > 0 {
		parts = append(parts, "aligned with a goal")
	}
	if factors["project_due_proximity"] > 0 {
		parts = append(parts, "project milestone approaching")
	}
	if factors["status_boost"] > 0 {
		parts = append(parts, "ready to start")
	}
	if len(parts) == 0 {
		return "No strong signals (baseline order)"
	}
	why := strings.Join(parts, " and ")
	return strings.ToUpper(why[:1]) + why[1:]
}
