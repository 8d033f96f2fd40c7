package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lingvobot/internal/models"
	"lingvobot/internal/storage"
)

// DB implements storage.Storage on top of GORM/PostgreSQL.
type DB struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New connects to PostgreSQL and configures the connection pool.
func New(dsn string, log *zap.Logger) (*DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &DB{db: db, logger: log}, nil
}

// NewWithGorm wraps an existing GORM handle. Used by tests and the dev
// entrypoint, which bring their own driver.
func NewWithGorm(db *gorm.DB, log *zap.Logger) *DB {
	return &DB{db: db, logger: log}
}

// AutoMigrate creates or updates the schema from the models. Production
// deployments run the goose migrations instead (see cmd/migrate).
func (d *DB) AutoMigrate() error {
	return d.db.AutoMigrate(&models.Student{}, &models.CourseType{}, &models.Course{})
}

func (d *DB) CreateCourseType(ctx context.Context, name, description string) (*models.CourseType, error) {
	ct := models.CourseType{
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	if err := d.db.WithContext(ctx).Create(&ct).Error; err != nil {
		return nil, fmt.Errorf("failed to create course type: %w", err)
	}
	return &ct, nil
}

func (d *DB) GetCourseType(ctx context.Context, id uint) (*models.CourseType, error) {
	var ct models.CourseType
	err := d.db.WithContext(ctx).First(&ct, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course type: %w", err)
	}
	return &ct, nil
}

func (d *DB) ListActiveCourseTypes(ctx context.Context) ([]models.CourseType, error) {
	var types []models.CourseType
	err := d.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id").
		Find(&types).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list course types: %w", err)
	}
	return types, nil
}

func (d *DB) RenameCourseType(ctx context.Context, id uint, name string) (*models.CourseType, error) {
	res := d.db.WithContext(ctx).
		Model(&models.CourseType{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to rename course type: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	return d.GetCourseType(ctx, id)
}

// DeleteCourseType removes the type and all of its courses. The cascade is
// done explicitly inside one transaction so it holds on every driver, not
// only where the schema-level FK cascade is active.
func (d *DB) DeleteCourseType(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_type_id = ?", id).Delete(&models.Course{}).Error; err != nil {
			return fmt.Errorf("failed to delete courses of type %d: %w", id, err)
		}
		res := tx.Delete(&models.CourseType{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete course type: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return storage.ErrNotFound
		}
		return nil
	})
}

func (d *DB) CreateCourse(ctx context.Context, draft storage.CourseDraft) (*models.Course, error) {
	now := time.Now()
	course := models.Course{
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
	if err := d.db.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return &course, nil
}

func (d *DB) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := d.db.WithContext(ctx).First(&course, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

func (d *DB) ListCourses(ctx context.Context, typeID uint, difficulty *models.DifficultyLevel) ([]models.Course, error) {
	q := d.db.WithContext(ctx).
		Where("course_type_id = ? AND is_active = ?", typeID, true)
	if difficulty != nil {
		q = q.Where("difficulty = ?", *difficulty)
	}

	var courses []models.Course
	if err := q.Order("order_index").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (d *DB) UpdateCourse(ctx context.Context, id uint, changes storage.CourseUpdate) (*models.Course, error) {
	fields := map[string]any{}
	if changes.Title != nil {
		fields["title"] = *changes.Title
	}
	if changes.Description != nil {
		fields["description"] = *changes.Description
	}
	if changes.Difficulty != nil {
		fields["difficulty"] = *changes.Difficulty
	}
	if changes.OrderIndex != nil {
		fields["order_index"] = *changes.OrderIndex
	}
	if changes.BannerFileID != nil {
		fields["banner_file_id"] = *changes.BannerFileID
	}
	if changes.VideoFileID != nil {
		fields["video_file_id"] = *changes.VideoFileID
	}
	if changes.VoiceFileID != nil {
		fields["voice_file_id"] = *changes.VoiceFileID
	}
	if changes.TextExplanation != nil {
		fields["text_explanation"] = *changes.TextExplanation
	}
	if changes.PracticeImages != nil {
		fields["practice_images"] = *changes.PracticeImages
	}
	if changes.IsActive != nil {
		fields["is_active"] = *changes.IsActive
	}
	if len(fields) == 0 {
		return d.GetCourse(ctx, id)
	}
	fields["updated_at"] = time.Now()

	res := d.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update course: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	return d.GetCourse(ctx, id)
}

func (d *DB) DeleteCourse(ctx context.Context, id uint) error {
	res := d.db.WithContext(ctx).Delete(&models.Course{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete course: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (d *DB) GetStudent(ctx context.Context, userID int64) (*models.Student, error) {
	var s models.Student
	err := d.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &s, nil
}

func (d *DB) CreateStudent(ctx context.Context, ns storage.NewStudent) (*models.Student, error) {
	s := models.Student{
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
	if err := d.db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return &s, nil
}

func (d *DB) RefreshStudentName(ctx context.Context, userID int64, username, firstName, lastName string) error {
	res := d.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"username":   username,
			"first_name": firstName,
			"last_name":  lastName,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to refresh student name: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (d *DB) UpdateStudentLanguage(ctx context.Context, userID int64, language string) error {
	res := d.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("user_id = ?", userID).
		Update("language", language)
	if res.Error != nil {
		return fmt.Errorf("failed to update student language: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (d *DB) ListStudents(ctx context.Context, filter storage.StudentFilter) ([]models.Student, error) {
	q := d.db.WithContext(ctx).Order("id")
	switch filter {
	case storage.PaidStudents:
		q = q.Where("is_paid = ?", true)
	case storage.UnpaidStudents:
		q = q.Where("is_paid = ?", false)
	case storage.AdminStudents:
		q = q.Where("is_admin = ?", true)
	}

	var students []models.Student
	if err := q.Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (d *DB) SetAdmin(ctx context.Context, userID int64, isAdmin bool) (*models.Student, error) {
	return d.setStudentFlag(ctx, userID, "is_admin", isAdmin)
}

func (d *DB) SetPaid(ctx context.Context, userID int64, isPaid bool) (*models.Student, error) {
	return d.setStudentFlag(ctx, userID, "is_paid", isPaid)
}

func (d *DB) setStudentFlag(ctx context.Context, userID int64, column string, value bool) (*models.Student, error) {
	res := d.db.WithContext(ctx).
		Model(&models.Student{}).
		Where("user_id = ?", userID).
		Update(column, value)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, storage.ErrNotFound
	}
	return d.GetStudent(ctx, userID)
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
