package models

import (
	"encoding/json"
	"time"
)

// DifficultyLevel is one of the four ordered course tiers.
type DifficultyLevel string

const (
	Beginner     DifficultyLevel = "beginner"
	Intermediate DifficultyLevel = "intermediate"
	Advanced     DifficultyLevel = "advanced"
	Expert       DifficultyLevel = "expert"
)

// Levels returns all difficulty levels in ascending order.
func Levels() []DifficultyLevel {
	return []DifficultyLevel{Beginner, Intermediate, Advanced, Expert}
}

// ParseDifficulty maps a level name to its enum value.
func ParseDifficulty(name string) (DifficultyLevel, bool) {
	switch DifficultyLevel(name) {
	case Beginner, Intermediate, Advanced, Expert:
		return DifficultyLevel(name), true
	}
	return "", false
}

// Student represents a bot user. One row per Telegram account.
type Student struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    int64  `gorm:"uniqueIndex;not null"`
	Username  string `gorm:"size:255"`
	FirstName string `gorm:"size:255;not null;default:''"`
	LastName  string `gorm:"size:255"`
	Language  string `gorm:"size:8;not null;default:'ru'"`
	IsAdmin   bool   `gorm:"not null;default:false"`
	IsBlocked bool   `gorm:"not null;default:false"`
	IsPaid    bool   `gorm:"not null;default:false"`
}

// FullName joins the first and last name parts.
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// CourseType is a named category grouping courses, e.g. "Basic Russian Course".
type CourseType struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	IsActive    bool   `gorm:"not null;default:true"`
	CreatedAt   time.Time

	// Deleting a course type hard-deletes its courses.
	Courses []Course `gorm:"constraint:OnDelete:CASCADE"`
}

// Course is a single lesson belonging to exactly one CourseType.
type Course struct {
	ID           uint `gorm:"primaryKey"`
	CourseTypeID uint `gorm:"not null;index"`

	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`

	Difficulty DifficultyLevel `gorm:"size:16;not null;default:'beginner'"`
	OrderIndex int             `gorm:"not null"`

	// Telegram file ids for the attached media.
	BannerFileID string `gorm:"size:255"`
	VideoFileID  string `gorm:"size:255"`
	VoiceFileID  string `gorm:"size:255"`

	TextExplanation string `gorm:"type:text"`

	// JSON array of Telegram file ids, in the order they were collected.
	PracticeImages string `gorm:"type:text"`

	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PracticeImageIDs decodes the stored practice image list. An empty column
// decodes to an empty slice.
func (c *Course) PracticeImageIDs() ([]string, error) {
	if c.PracticeImages == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(c.PracticeImages), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// EncodePracticeImages serializes a practice image list for storage.
func EncodePracticeImages(ids []string) string {
	if ids == nil {
		ids = []string{}
	}
	raw, _ := json.Marshal(ids)
	return string(raw)
}
