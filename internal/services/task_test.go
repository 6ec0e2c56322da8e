package services

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tractionhq/traction-api/internal/apperrors"
	"github.com/tractionhq/traction-api/internal/models"
)

func TestTaskService_Create(t *testing.T) {
	tests := []struct {
		name           string
		req            models.CreateTaskRequest
		errorAssertion func(t *testing.T, err error)
		check          func(t *testing.T, task *models.Task)
	}{
		{
			name: "should create task with defaults",
			req:  models.CreateTaskRequest{Title: "Write report"},
			check: func(t *testing.T, task *models.Task) {
				assert.Equal(t, "Write report", task.Title)
				assert.Equal(t, models.StatusBacklog, task.Status)
				assert.NotEmpty(t, task.ID)
				assert.Greater(t, task.SortOrder, float64(0))
			},
		},
		{
			name: "should trim title whitespace",
			req:  models.CreateTaskRequest{Title: "  Write report  "},
			check: func(t *testing.T, task *models.Task) {
				assert.Equal(t, "Write report", task.Title)
			},
		},
		{
			name: "should accept explicit status and size",
			req: models.CreateTaskRequest{
				Title:  "Plan sprint",
				Status: statusPtr(models.StatusToday),
				Size:   sizePtr(models.SizeM),
			},
			check: func(t *testing.T, task *models.Task) {
				assert.Equal(t, models.StatusToday, task.Status)
				require.NotNil(t, task.Size)
				assert.Equal(t, models.SizeM, *task.Size)
			},
		},
		{
			name: "should reject empty title",
			req:  models.CreateTaskRequest{Title: ""},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidation(err))
			},
		},
		{
			name: "should reject whitespace-only title",
			req:  models.CreateTaskRequest{Title: "   "},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidation(err))
			},
		},
		{
			name: "should reject unknown status",
			req:  models.CreateTaskRequest{Title: "Plan", Status: statusPtr(models.Status("todo"))},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidation(err))
				assert.Contains(t, err.Error(), "invalid status")
			},
		},
		{
			name: "should reject unknown size",
			req:  models.CreateTaskRequest{Title: "Plan", Size: sizePtr(models.Size("huge"))},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidation(err))
			},
		},
		{
			name: "should reject unknown project",
			req:  models.CreateTaskRequest{Title: "Plan", ProjectID: stringPtr("proj_missing")},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsNotFound(err))
			},
		},
		{
			name: "should reject unknown goal",
			req:  models.CreateTaskRequest{Title: "Plan", GoalIDs: []string{"goal_missing"}},
			errorAssertion: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsNotFound(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			userID := seedUser(t, db, "create@example.com")
			service := NewTaskService(db)

			task, err := service.Create(userID, &tt.req)

			if tt.errorAssertion != nil {
				tt.errorAssertion(t, err)
				assert.Nil(t, task)
			} else {
				require.NoError(t, err)
				require.NotNil(t, task)
				tt.check(t, task)
			}
		})
	}
}

func TestTaskService_Create_WithTagsAndGoals(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "tags@example.com")
	service := NewTaskService(db)
	goalA := seedGoal(t, db, userID, "Ship v1", models.GoalTypeWeekly)
	goalB := seedGoal(t, db, userID, "Grow revenue", models.GoalTypeWeekly)

	task, err := service.Create(userID, &models.CreateTaskRequest{
		Title:   "Draft launch post",
		Tags:    []string{"writing", "launch"},
		GoalID:  &goalA.ID,
		GoalIDs: []string{goalB.ID, goalA.ID},
	})
	require.NoError(t, err)

	assert.Len(t, task.Tags, 2)
	// The legacy pointer follows the single-goal field when both are sent.
	require.NotNil(t, task.GoalID)
	assert.Equal(t, goalA.ID, *task.GoalID)
	assert.EqualValues(t, 1, linkCount(t, db, task.ID, goalA.ID))
	assert.EqualValues(t, 1, linkCount(t, db, task.ID, goalB.ID))
}

func TestTaskService_Create_ClientRequestID(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "idempotent@example.com")
	service := NewTaskService(db)

	req := &models.CreateTaskRequest{Title: "Pay invoice", ClientRequestID: stringPtr("req-123")}
	first, err := service.Create(userID, req)
	require.NoError(t, err)

	second, err := service.Create(userID, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// A different user may reuse the same client id.
	otherID := seedUser(t, db, "other@example.com")
	other, err := service.Create(otherID, req)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestTaskService_Get(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "get@example.com")
	otherID := seedUser(t, db, "stranger@example.com")
	service := NewTaskService(db)
	task := seedTask(t, db, userID, "Review PR", models.StatusToday)

	found, err := service.Get(userID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, found.ID)

	_, err = service.Get(userID, "task_missing")
	assert.True(t, apperrors.IsNotFound(err))

	// Another user's task looks like it does not exist.
	_, err = service.Get(otherID, task.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTaskService_List(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "list@example.com")
	otherID := seedUser(t, db, "neighbour@example.com")
	service := NewTaskService(db)

	seedTask(t, db, userID, "Backlog item", models.StatusBacklog)
	seedTask(t, db, userID, "Today item", models.StatusToday)
	seedTask(t, db, userID, "Archived item", models.StatusArchived)
	seedTask(t, db, otherID, "Foreign item", models.StatusToday)

	t.Run("should exclude archived tasks by default", func(t *testing.T) {
		tasks, err := service.List(userID, nil, nil, false, 0, 0)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		for _, task := range tasks {
			assert.NotEqual(t, models.StatusArchived, task.Status)
			assert.Equal(t, userID, task.UserID)
		}
	})

	t.Run("should include archived tasks when asked", func(t *testing.T) {
		tasks, err := service.List(userID, nil, nil, true, 0, 0)
		require.NoError(t, err)
		assert.Len(t, tasks, 3)
	})

	t.Run("should filter by status", func(t *testing.T) {
		tasks, err := service.List(userID, []string{"today"}, nil, false, 0, 0)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "Today item", tasks[0].Title)
	})

	t.Run("should reject unknown status filter", func(t *testing.T) {
		_, err := service.List(userID, []string{"todo"}, nil, false, 0, 0)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("should reject negative skip", func(t *testing.T) {
		_, err := service.List(userID, nil, nil, false, -1, 0)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("should reject limit above the cap", func(t *testing.T) {
		_, err := service.List(userID, nil, nil, false, 0, 1001)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("should filter by project", func(t *testing.T) {
		project := seedProject(t, db, userID, "Website")
		created, err := service.Create(userID, &models.CreateTaskRequest{
			Title:     "Fix navbar",
			ProjectID: &project.ID,
		})
		require.NoError(t, err)

		tasks, err := service.List(userID, nil, &project.ID, false, 0, 0)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, created.ID, tasks[0].ID)
	})
}

func TestTaskService_Update(t *testing.T) {
	t.Run("should apply only the provided fields", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "update@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, userID, "Original", models.StatusBacklog)
		due := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)

		updated, err := service.Update(userID, task.ID, &models.UpdateTaskRequest{
			Status:        statusPtr(models.StatusDoing),
			EffortMinutes: intPtr(90),
			HardDueAt:     timePtr(due),
		})
		require.NoError(t, err)
		assert.Equal(t, "Original", updated.Title)
		assert.Equal(t, models.StatusDoing, updated.Status)
		require.NotNil(t, updated.EffortMinutes)
		assert.Equal(t, 90, *updated.EffortMinutes)
		require.NotNil(t, updated.HardDueAt)
		assert.Equal(t, due.Unix(), updated.HardDueAt.Unix())
	})

	t.Run("should reject blanking the title", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "update@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, userID, "Original", models.StatusBacklog)

		_, err := service.Update(userID, task.ID, &models.UpdateTaskRequest{Title: stringPtr("  ")})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("should return not found for another user's task", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "update@example.com")
		otherID := seedUser(t, db, "intruder@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, userID, "Original", models.StatusBacklog)

		_, err := service.Update(otherID, task.ID, &models.UpdateTaskRequest{Title: stringPtr("Taken over")})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("should replace tags", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "update@example.com")
		service := NewTaskService(db)
		created, err := service.Create(userID, &models.CreateTaskRequest{
			Title: "Tagged",
			Tags:  []string{"old"},
		})
		require.NoError(t, err)

		updated, err := service.Update(userID, created.ID, &models.UpdateTaskRequest{
			Tags: &[]string{"fresh", "new"},
		})
		require.NoError(t, err)
		names := make([]string, 0, len(updated.Tags))
		for _, tag := range updated.Tags {
			names = append(names, tag.Name)
		}
		assert.ElementsMatch(t, []string{"fresh", "new"}, names)
	})

	t.Run("should reconcile goal links against the requested set", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "update@example.com")
		service := NewTaskService(db)
		goalA := seedGoal(t, db, userID, "Goal A", models.GoalTypeWeekly)
		goalB := seedGoal(t, db, userID, "Goal B", models.GoalTypeWeekly)
		created, err := service.Create(userID, &models.CreateTaskRequest{
			Title:   "Linked",
			GoalIDs: []string{goalA.ID},
		})
		require.NoError(t, err)

		updated, err := service.Update(userID, created.ID, &models.UpdateTaskRequest{
			GoalIDs: &[]string{goalB.ID},
		})
		require.NoError(t, err)
		assert.EqualValues(t, 0, linkCount(t, db, created.ID, goalA.ID))
		assert.EqualValues(t, 1, linkCount(t, db, created.ID, goalB.ID))
		require.NotNil(t, updated.GoalID)
		assert.Equal(t, goalB.ID, *updated.GoalID)
	})

	t.Run("should clear all goal links with an empty set", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "update@example.com")
		service := NewTaskService(db)
		goal := seedGoal(t, db, userID, "Goal", models.GoalTypeWeekly)
		created, err := service.Create(userID, &models.CreateTaskRequest{
			Title:   "Linked",
			GoalIDs: []string{goal.ID},
		})
		require.NoError(t, err)

		updated, err := service.Update(userID, created.ID, &models.UpdateTaskRequest{
			GoalIDs: &[]string{},
		})
		require.NoError(t, err)
		assert.EqualValues(t, 0, linkCount(t, db, created.ID, goal.ID))
		assert.Nil(t, updated.GoalID)
	})
}

func TestTaskService_Delete(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "delete@example.com")
	service := NewTaskService(db)
	goal := seedGoal(t, db, userID, "Goal", models.GoalTypeWeekly)
	created, err := service.Create(userID, &models.CreateTaskRequest{
		Title:   "Doomed",
		GoalIDs: []string{goal.ID},
	})
	require.NoError(t, err)

	require.NoError(t, service.Delete(userID, created.ID))

	_, err = service.Get(userID, created.ID)
	assert.True(t, apperrors.IsNotFound(err))
	assert.EqualValues(t, 0, linkCount(t, db, created.ID, goal.ID))

	err = service.Delete(userID, "task_missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestTaskService_PromoteToWeek(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "promote@example.com")
	otherID := seedUser(t, db, "bystander@example.com")
	service := NewTaskService(db)

	first := seedTask(t, db, userID, "First", models.StatusBacklog)
	second := seedTask(t, db, userID, "Second", models.StatusBacklog)
	foreign := seedTask(t, db, otherID, "Foreign", models.StatusBacklog)

	resp, err := service.PromoteToWeek(userID, []string{second.ID, first.ID, foreign.ID, "task_missing"})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Updated)
	assert.True(t, sort.StringsAreSorted(resp.IDs))
	assert.ElementsMatch(t, []string{first.ID, second.ID}, resp.IDs)

	promoted, err := service.Get(userID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWeek, promoted.Status)

	untouched, err := service.Get(otherID, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBacklog, untouched.Status)

	empty, err := service.PromoteToWeek(userID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Updated)
	assert.Empty(t, empty.IDs)
}

func TestTaskService_Link(t *testing.T) {
	t.Run("should create a single link row and set the legacy pointer", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "link@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, userID, "Task", models.StatusBacklog)
		goal := seedGoal(t, db, userID, "Goal", models.GoalTypeWeekly)

		link, err := service.Link(userID, task.ID, goal.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, task.ID, link.TaskID)
		assert.Equal(t, goal.ID, link.GoalID)
		assert.InDelta(t, 1.0, link.EffectiveWeight(), 0.0001)
		assert.EqualValues(t, 1, linkCount(t, db, task.ID, goal.ID))

		refreshed, err := service.Get(userID, task.ID)
		require.NoError(t, err)
		require.NotNil(t, refreshed.GoalID)
		assert.Equal(t, goal.ID, *refreshed.GoalID)
	})

	t.Run("should update the weight in place on repeat link", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "link@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, userID, "Task", models.StatusBacklog)
		goal := seedGoal(t, db, userID, "Goal", models.GoalTypeWeekly)

		_, err := service.Link(userID, task.ID, goal.ID, float64Ptr(2))
		require.NoError(t, err)
		link, err := service.Link(userID, task.ID, goal.ID, float64Ptr(5))
		require.NoError(t, err)

		require.NotNil(t, link.Weight)
		assert.InDelta(t, 5.0, *link.Weight, 0.0001)
		assert.EqualValues(t, 1, linkCount(t, db, task.ID, goal.ID))
	})

	t.Run("should reject negative weight", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "link@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, userID, "Task", models.StatusBacklog)
		goal := seedGoal(t, db, userID, "Goal", models.GoalTypeWeekly)

		_, err := service.Link(userID, task.ID, goal.ID, float64Ptr(-1))
		assert.True(t, apperrors.IsValidation(err))
		assert.EqualValues(t, 0, linkCount(t, db, task.ID, goal.ID))
	})

	t.Run("should mask another user's task as not found", func(t *testing.T) {
		db := setupTestDB(t)
		ownerID := seedUser(t, db, "owner@example.com")
		intruderID := seedUser(t, db, "intruder@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, ownerID, "Task", models.StatusBacklog)
		goal := seedGoal(t, db, intruderID, "Goal", models.GoalTypeWeekly)

		_, err := service.Link(intruderID, task.ID, goal.ID, nil)
		assert.True(t, apperrors.IsNotFound(err))
		assert.EqualValues(t, 0, linkCount(t, db, task.ID, goal.ID))
	})

	t.Run("should mask another user's goal as not found", func(t *testing.T) {
		db := setupTestDB(t)
		ownerID := seedUser(t, db, "owner@example.com")
		intruderID := seedUser(t, db, "intruder@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, intruderID, "Task", models.StatusBacklog)
		goal := seedGoal(t, db, ownerID, "Goal", models.GoalTypeWeekly)

		_, err := service.Link(intruderID, task.ID, goal.ID, nil)
		assert.True(t, apperrors.IsNotFound(err))
		assert.EqualValues(t, 0, linkCount(t, db, task.ID, goal.ID))
	})
}

func TestTaskService_Unlink(t *testing.T) {
	t.Run("should remove the link and allow a clean re-link", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "unlink@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, userID, "Task", models.StatusBacklog)
		goal := seedGoal(t, db, userID, "Goal", models.GoalTypeWeekly)

		_, err := service.Link(userID, task.ID, goal.ID, nil)
		require.NoError(t, err)
		require.NoError(t, service.Unlink(userID, task.ID, goal.ID))
		assert.EqualValues(t, 0, linkCount(t, db, task.ID, goal.ID))

		_, err = service.Link(userID, task.ID, goal.ID, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 1, linkCount(t, db, task.ID, goal.ID))
	})

	t.Run("should treat an absent link as a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "unlink@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, userID, "Task", models.StatusBacklog)
		goal := seedGoal(t, db, userID, "Goal", models.GoalTypeWeekly)

		assert.NoError(t, service.Unlink(userID, task.ID, goal.ID))
	})

	t.Run("should re-point the legacy pointer at the oldest remaining link", func(t *testing.T) {
		db := setupTestDB(t)
		userID := seedUser(t, db, "unlink@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, userID, "Task", models.StatusBacklog)
		goalA := seedGoal(t, db, userID, "Goal A", models.GoalTypeWeekly)
		goalB := seedGoal(t, db, userID, "Goal B", models.GoalTypeWeekly)

		_, err := service.Link(userID, task.ID, goalA.ID, nil)
		require.NoError(t, err)
		_, err = service.Link(userID, task.ID, goalB.ID, nil)
		require.NoError(t, err)

		require.NoError(t, service.Unlink(userID, task.ID, goalA.ID))
		refreshed, err := service.Get(userID, task.ID)
		require.NoError(t, err)
		require.NotNil(t, refreshed.GoalID)
		assert.Equal(t, goalB.ID, *refreshed.GoalID)

		require.NoError(t, service.Unlink(userID, task.ID, goalB.ID))
		refreshed, err = service.Get(userID, task.ID)
		require.NoError(t, err)
		assert.Nil(t, refreshed.GoalID)
	})

	t.Run("should return not found for another user's task", func(t *testing.T) {
		db := setupTestDB(t)
		ownerID := seedUser(t, db, "owner@example.com")
		intruderID := seedUser(t, db, "intruder@example.com")
		service := NewTaskService(db)
		task := seedTask(t, db, ownerID, "Task", models.StatusBacklog)
		goal := seedGoal(t, db, ownerID, "Goal", models.GoalTypeWeekly)

		err := service.Unlink(intruderID, task.ID, goal.ID)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func statusPtr(s models.Status) *models.Status {
	return &s
}

func sizePtr(s models.Size) *models.Size {
	return &s
}
