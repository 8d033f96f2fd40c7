package storage

import (
	"context"
	"errors"

	"lingvobot/internal/models"
)

// ErrNotFound is returned when the targeted record does not exist, e.g. it
// was deleted by another admin while a management flow was in progress.
var ErrNotFound = errors.New("storage: record not found")

// StudentFilter selects a subset of students for listing.
type StudentFilter int

const (
	AllStudents StudentFilter = iota
	PaidStudents
	UnpaidStudents
	AdminStudents
)

// CourseDraft carries all fields of a course collected by the creation
// wizard. The course row is created in a single call; no partial rows exist.
type CourseDraft struct {
	CourseTypeID    uint
	Title           string
	Description     string
	Difficulty      models.DifficultyLevel
	OrderIndex      int
	BannerFileID    string
	VideoFileID     string
	VoiceFileID     string
	TextExplanation string
	PracticeImages  string
}

// CourseUpdate is a partial update; nil fields are left untouched.
type CourseUpdate struct {
	Title           *string
	Description     *string
	Difficulty      *models.DifficultyLevel
	OrderIndex      *int
	BannerFileID    *string
	VideoFileID     *string
	VoiceFileID     *string
	TextExplanation *string
	PracticeImages  *string
	IsActive        *bool
}

// NewStudent carries the identity fields captured on first contact.
type NewStudent struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
	Language  string
	IsAdmin   bool
}

// Storage is the persistence gateway consumed by the wizard engine.
type Storage interface {
	// Course type operations
	CreateCourseType(ctx context.Context, name, description string) (*models.CourseType, error)
	GetCourseType(ctx context.Context, id uint) (*models.CourseType, error)
	ListActiveCourseTypes(ctx context.Context) ([]models.CourseType, error)
	RenameCourseType(ctx context.Context, id uint, name string) (*models.CourseType, error)
	// DeleteCourseType cascades to all courses of the type.
	DeleteCourseType(ctx context.Context, id uint) error

	// Course operations
	CreateCourse(ctx context.Context, draft CourseDraft) (*models.Course, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	// ListCourses returns active courses of a type ordered by order index.
	// A nil difficulty means all difficulty levels.
	ListCourses(ctx context.Context, typeID uint, difficulty *models.DifficultyLevel) ([]models.Course, error)
	UpdateCourse(ctx context.Context, id uint, changes CourseUpdate) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uint) error

	// Student operations
	// GetStudent returns ErrNotFound for unknown users; it never creates.
	GetStudent(ctx context.Context, userID int64) (*models.Student, error)
	CreateStudent(ctx context.Context, s NewStudent) (*models.Student, error)
	RefreshStudentName(ctx context.Context, userID int64, username, firstName, lastName string) error
	UpdateStudentLanguage(ctx context.Context, userID int64, language string) error
	ListStudents(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) (*models.Student, error)
	SetPaid(ctx context.Context, userID int64, isPaid bool) (*models.Student, error)

	// Lifecycle
	Close() error
}
