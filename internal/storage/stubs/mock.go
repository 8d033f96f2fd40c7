package stubs

import (
	"context"
	"sort"
	"sync"
	"time"

	"lingvobot/internal/models"
	"lingvobot/internal/storage"
)

// MockDB is an in-memory implementation of the Storage interface for testing.
type MockDB struct {
	mu          sync.RWMutex
	students    map[int64]models.Student
	courseTypes map[uint]models.CourseType
	courses     map[uint]models.Course
	nextTypeID  uint
	nextCrsID   uint
	nextRowID   uint
}

// NewMockDB creates a new mock database.
func NewMockDB() *MockDB {
	return &MockDB{
		students:    make(map[int64]models.Student),
		courseTypes: make(map[uint]models.CourseType),
		courses:     make(map[uint]models.Course),
		nextTypeID:  1,
		nextCrsID:   1,
		nextRowID:   1,
	}
}

func (m *MockDB) CreateCourseType(ctx context.Context, name, description string) (*models.CourseType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ct := models.CourseType{
		ID:          m.nextTypeID,
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	m.nextTypeID++
	m.courseTypes[ct.ID] = ct
	return &ct, nil
}

func (m *MockDB) GetCourseType(ctx context.Context, id uint) (*models.CourseType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ct, ok := m.courseTypes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &ct, nil
}

func (m *MockDB) ListActiveCourseTypes(ctx context.Context) ([]models.CourseType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var types []models.CourseType
	for _, ct := range m.courseTypes {
		if ct.IsActive {
			types = append(types, ct)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i].ID < types[j].ID })
	return types, nil
}

func (m *MockDB) RenameCourseType(ctx context.Context, id uint, name string) (*models.CourseType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ct, ok := m.courseTypes[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	ct.Name = name
	m.courseTypes[id] = ct
	return &ct, nil
}

func (m *MockDB) DeleteCourseType(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.courseTypes[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.courseTypes, id)
	// Cascade to courses of the type.
	for cid, c := range m.courses {
		if c.CourseTypeID == id {
			delete(m.courses, cid)
		}
	}
	return nil
}

func (m *MockDB) CreateCourse(ctx context.Context, draft storage.CourseDraft) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	course := models.Course{
		ID:              m.nextCrsID,
		CourseTypeID:    draft.CourseTypeID,
		Title:           draft.Title,
		Description:     draft.Description,
		Difficulty:      draft.Difficulty,
		OrderIndex:      draft.OrderIndex,
		BannerFileID:    draft.BannerFileID,
		VideoFileID:     draft.VideoFileID,
		VoiceFileID:     draft.VoiceFileID,
		TextExplanation: draft.TextExplanation,
		PracticeImages:  draft.PracticeImages,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if course.Difficulty == "" {
		course.Difficulty = models.Beginner
	}
	m.nextCrsID++
	m.courses[course.ID] = course
	return &course, nil
}

func (m *MockDB) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	course, ok := m.courses[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &course, nil
}

func (m *MockDB) ListCourses(ctx context.Context, typeID uint, difficulty *models.DifficultyLevel) ([]models.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var courses []models.Course
	for _, c := range m.courses {
		if c.CourseTypeID != typeID || !c.IsActive {
			continue
		}
		if difficulty != nil && c.Difficulty != *difficulty {
			continue
		}
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].OrderIndex != courses[j].OrderIndex {
			return courses[i].OrderIndex < courses[j].OrderIndex
		}
		return courses[i].ID < courses[j].ID
	})
	return courses, nil
}

func (m *MockDB) UpdateCourse(ctx context.Context, id uint, changes storage.CourseUpdate) (*models.Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	course, ok := m.courses[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if changes.Title != nil {
		course.Title = *changes.Title
	}
	if changes.Description != nil {
		course.Description = *changes.Description
	}
	if changes.Difficulty != nil {
		course.Difficulty = *changes.Difficulty
	}
	if changes.OrderIndex != nil {
		course.OrderIndex = *changes.OrderIndex
	}
	if changes.BannerFileID != nil {
		course.BannerFileID = *changes.BannerFileID
	}
	if changes.VideoFileID != nil {
		course.VideoFileID = *changes.VideoFileID
	}
	if changes.VoiceFileID != nil {
		course.VoiceFileID = *changes.VoiceFileID
	}
	if changes.TextExplanation != nil {
		course.TextExplanation = *changes.TextExplanation
	}
	if changes.PracticeImages != nil {
		course.PracticeImages = *changes.PracticeImages
	}
	if changes.IsActive != nil {
		course.IsActive = *changes.IsActive
	}
	course.UpdatedAt = time.Now()
	m.courses[id] = course
	return &course, nil
}

func (m *MockDB) DeleteCourse(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.courses[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.courses, id)
	return nil
}

func (m *MockDB) GetStudent(ctx context.Context, userID int64) (*models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.students[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &s, nil
}

func (m *MockDB) CreateStudent(ctx context.Context, ns storage.NewStudent) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := models.Student{
		ID:        m.nextRowID,
		UserID:    ns.UserID,
		Username:  ns.Username,
		FirstName: ns.FirstName,
		LastName:  ns.LastName,
		Language:  ns.Language,
		IsAdmin:   ns.IsAdmin,
	}
	if s.Language == "" {
		s.Language = "ru"
	}
	m.nextRowID++
	m.students[s.UserID] = s
	return &s, nil
}

func (m *MockDB) RefreshStudentName(ctx context.Context, userID int64, username, firstName, lastName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.students[userID]
	if !ok {
		return storage.ErrNotFound
	}
	s.Username = username
	s.FirstName = firstName
	s.LastName = lastName
	m.students[userID] = s
	return nil
}

func (m *MockDB) UpdateStudentLanguage(ctx context.Context, userID int64, language string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.students[userID]
	if !ok {
		return storage.ErrNotFound
	}
	s.Language = language
	m.students[userID] = s
	return nil
}

func (m *MockDB) ListStudents(ctx context.Context, filter storage.StudentFilter) ([]models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var students []models.Student
	for _, s := range m.students {
		switch filter {
		case storage.PaidStudents:
			if !s.IsPaid {
				continue
			}
		case storage.UnpaidStudents:
			if s.IsPaid {
				continue
			}
		case storage.AdminStudents:
			if !s.IsAdmin {
				continue
			}
		}
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (m *MockDB) SetAdmin(ctx context.Context, userID int64, isAdmin bool) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.students[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	s.IsAdmin = isAdmin
	m.students[userID] = s
	return &s, nil
}

func (m *MockDB) SetPaid(ctx context.Context, userID int64, isPaid bool) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.students[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	s.IsPaid = isPaid
	m.students[userID] = s
	return &s, nil
}

// Close does nothing for mock DB.
func (m *MockDB) Close() error {
	return nil
}
