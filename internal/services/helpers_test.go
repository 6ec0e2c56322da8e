package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tractionhq/traction-api/internal/database"
	"github.com/tractionhq/traction-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Helper functions
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A pooled second connection would get its own empty memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) string {
	t.Helper()
	user := models.User{Email: email, Password: "x", Name: "Test"}
	require.NoError(t, db.Create(&user).Error)
	return user.ID
}

func seedTask(t *testing.T, db *gorm.DB, userID, title string, status models.Status) *models.Task {
	t.Helper()
	task := models.Task{
		UserID:    userID,
		Title:     title,
		Status:    status,
		SortOrder: float64(time.Now().UnixMilli()),
	}
	require.NoError(t, db.Create(&task).Error)
	return &task
}

func seedGoal(t *testing.T, db *gorm.DB, userID, title string, goalType models.GoalType) *models.Goal {
	t.Helper()
	goal := models.Goal{
		UserID: userID,
		Title:  title,
		Type:   goalType,
		Status: models.GoalStatusOnTarget,
	}
	require.NoError(t, db.Create(&goal).Error)
	return &goal
}

func seedProject(t *testing.T, db *gorm.DB, userID, name string) *models.Project {
	t.Helper()
	project := models.Project{UserID: userID, Name: name}
	require.NoError(t, db.Create(&project).Error)
	return &project
}

func linkCount(t *testing.T, db *gorm.DB, taskID, goalID string) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.TaskGoal{}).
		Where("task_id = ? AND goal_id = ?", taskID, goalID).
		Count(&count).Error)
	return count
}

func stringPtr(s string) *string {
	return &s
}

func float64Ptr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}

func timePtr(t time.Time) *time.Time {
	return &t
}
