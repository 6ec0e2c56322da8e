package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tractionhq/traction-api/internal/apperrors"
	"github.com/tractionhq/traction-api/internal/models"
)

func TestProjectService_Create(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "projects@example.com")
	service := NewProjectService(db)

	due := time.Now().UTC().Add(14 * 24 * time.Hour)
	project, err := service.Create(userID, &models.CreateProjectRequest{
		Name:           "  Website relaunch  ",
		Color:          stringPtr("#ff6600"),
		MilestoneTitle: stringPtr("Beta"),
		MilestoneDueAt: &due,
	})
	require.NoError(t, err)
	assert.Equal(t, "Website relaunch", project.Name)
	assert.NotEmpty(t, project.ID)
	require.NotNil(t, project.MilestoneDueAt)

	_, err = service.Create(userID, &models.CreateProjectRequest{Name: "   "})
	assert.True(t, apperrors.IsValidation(err))
}

func TestProjectService_GetAndList(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "projects@example.com")
	strangerID := seedUser(t, db, "projstranger@example.com")
	service := NewProjectService(db)

	mine := seedProject(t, db, userID, "Mine")
	seedProject(t, db, strangerID, "Theirs")

	found, err := service.Get(userID, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, mine.ID, found.ID)

	_, err = service.Get(strangerID, mine.ID)
	assert.True(t, apperrors.IsNotFound(err))

	projects, err := service.List(userID, 0, 0)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Mine", projects[0].Name)

	_, err = service.List(userID, -1, 0)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProjectService_Update(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "projects@example.com")
	service := NewProjectService(db)
	project := seedProject(t, db, userID, "Before")

	updated, err := service.Update(userID, project.ID, &models.UpdateProjectRequest{
		Name:  stringPtr("After"),
		Color: stringPtr("#00aa88"),
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	require.NotNil(t, updated.Color)

	_, err = service.Update(userID, project.ID, &models.UpdateProjectRequest{Name: stringPtr(" ")})
	assert.True(t, apperrors.IsValidation(err))

	_, err = service.Update(userID, "proj_missing", &models.UpdateProjectRequest{})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestProjectService_Delete(t *testing.T) {
	db := setupTestDB(t)
	userID := seedUser(t, db, "projects@example.com")
	projectSvc := NewProjectService(db)
	taskSvc := NewTaskService(db)
	project := seedProject(t, db, userID, "Doomed")

	task, err := taskSvc.Create(userID, &models.CreateTaskRequest{
		Title:     "Attached",
		ProjectID: &project.ID,
	})
	require.NoError(t, err)

	require.NoError(t, projectSvc.Delete(userID, project.ID))

	_, err = projectSvc.Get(userID, project.ID)
	assert.True(t, apperrors.IsNotFound(err))

	// The task survives, detached from the deleted project.
	detached, err := taskSvc.Get(userID, task.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.ProjectID)

	err = projectSvc.Delete(userID, project.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
