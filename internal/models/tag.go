package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is a shared label vocabulary, attached to tasks via task_tags.
type Tag struct {
	ID   string `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = "tag_" + uuid.NewString()
	}
	return nil
}
