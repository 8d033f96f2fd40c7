package pg

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lingvobot/internal/models"
	"lingvobot/internal/storage"
)

// newTestDB runs the gateway against in-memory SQLite. The SQL the gateway
// emits is driver-neutral; postgres-specific behavior is covered by the
// testcontainers test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	db := NewWithGorm(gdb, zap.NewNop())
	require.NoError(t, db.AutoMigrate())
	return db
}

func TestCourseTypeCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ct, err := db.CreateCourseType(ctx, "Базовый", "Описание")
	require.NoError(t, err)
	assert.NotZero(t, ct.ID)

	loaded, err := db.GetCourseType(ctx, ct.ID)
	require.NoError(t, err)
	assert.Equal(t, "Базовый", loaded.Name)

	_, err = db.GetCourseType(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	renamed, err := db.RenameCourseType(ctx, ct.ID, "Продвинутый")
	require.NoError(t, err)
	assert.Equal(t, "Продвинутый", renamed.Name)

	types, err := db.ListActiveCourseTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 1)
}

func TestDeleteCourseTypeCascadesToCourses(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	doomed, err := db.CreateCourseType(ctx, "Удаляемый", "")
	require.NoError(t, err)
	keep, err := db.CreateCourseType(ctx, "Живой", "")
	require.NoError(t, err)

	for i := 1; i <= 4; i++ {
		_, err := db.CreateCourse(ctx, storage.CourseDraft{
			CourseTypeID:   doomed.ID,
			Title:          fmt.Sprintf("Курс %d", i),
			Difficulty:     models.Beginner,
			OrderIndex:     i,
			PracticeImages: "[]",
		})
		require.NoError(t, err)
	}
	survivor, err := db.CreateCourse(ctx, storage.CourseDraft{
		CourseTypeID:   keep.ID,
		Title:          "Уцелевший",
		Difficulty:     models.Expert,
		OrderIndex:     1,
		PracticeImages: "[]",
	})
	require.NoError(t, err)

	require.NoError(t, db.DeleteCourseType(ctx, doomed.ID))

	_, err = db.GetCourseType(ctx, doomed.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	orphans, err := db.ListCourses(ctx, doomed.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, orphans)

	_, err = db.GetCourse(ctx, survivor.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, db.DeleteCourseType(ctx, doomed.ID), storage.ErrNotFound)
}

func TestListCoursesOrderingAndFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ct, err := db.CreateCourseType(ctx, "Лексика", "")
	require.NoError(t, err)

	levels := []models.DifficultyLevel{models.Expert, models.Beginner, models.Beginner}
	orders := []int{3, 1, 2}
	for i := range levels {
		_, err := db.CreateCourse(ctx, storage.CourseDraft{
			CourseTypeID:   ct.ID,
			Title:          fmt.Sprintf("Курс %d", i),
			Difficulty:     levels[i],
			OrderIndex:     orders[i],
			PracticeImages: "[]",
		})
		require.NoError(t, err)
	}

	all, err := db.ListCourses(ctx, ct.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 1, all[0].OrderIndex)
	assert.Equal(t, 3, all[2].OrderIndex)

	beginner := models.Beginner
	filtered, err := db.ListCourses(ctx, ct.ID, &beginner)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestUpdateCoursePartialChanges(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ct, err := db.CreateCourseType(ctx, "Фонетика", "")
	require.NoError(t, err)

	created, err := db.CreateCourse(ctx, storage.CourseDraft{
		CourseTypeID:    ct.ID,
		Title:           "Название",
		Description:     "Описание",
		Difficulty:      models.Beginner,
		OrderIndex:      10,
		BannerFileID:    "banner",
		TextExplanation: "Текст",
		PracticeImages:  "[]",
	})
	require.NoError(t, err)

	order := 2
	expert := models.Expert
	updated, err := db.UpdateCourse(ctx, created.ID, storage.CourseUpdate{
		OrderIndex: &order,
		Difficulty: &expert,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.OrderIndex)
	assert.Equal(t, models.Expert, updated.Difficulty)
	assert.Equal(t, "Название", updated.Title)
	assert.Equal(t, "banner", updated.BannerFileID)

	_, err = db.UpdateCourse(ctx, 9999, storage.CourseUpdate{OrderIndex: &order})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteCourse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ct, err := db.CreateCourseType(ctx, "Тип", "")
	require.NoError(t, err)
	c, err := db.CreateCourse(ctx, storage.CourseDraft{
		CourseTypeID:   ct.ID,
		Title:          "Курс",
		Difficulty:     models.Beginner,
		OrderIndex:     1,
		PracticeImages: "[]",
	})
	require.NoError(t, err)

	require.NoError(t, db.DeleteCourse(ctx, c.ID))
	_, err = db.GetCourse(ctx, c.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, db.DeleteCourse(ctx, c.ID), storage.ErrNotFound)
}

func TestStudentLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetStudent(ctx, 100)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	created, err := db.CreateStudent(ctx, storage.NewStudent{
		UserID:    100,
		Username:  "olim",
		FirstName: "Olim",
		Language:  "uz",
		IsAdmin:   true,
	})
	require.NoError(t, err)
	assert.True(t, created.IsAdmin)

	require.NoError(t, db.RefreshStudentName(ctx, 100, "olim2", "Olim", "Karimov"))
	require.NoError(t, db.UpdateStudentLanguage(ctx, 100, "ru"))

	reloaded, err := db.GetStudent(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "olim2", reloaded.Username)
	assert.Equal(t, "Karimov", reloaded.LastName)
	assert.Equal(t, "ru", reloaded.Language)

	paid, err := db.SetPaid(ctx, 100, true)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	demoted, err := db.SetAdmin(ctx, 100, false)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)

	_, err = db.SetPaid(ctx, 404, true)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	admins, err := db.ListStudents(ctx, storage.AdminStudents)
	require.NoError(t, err)
	assert.Empty(t, admins)

	paidList, err := db.ListStudents(ctx, storage.PaidStudents)
	require.NoError(t, err)
	assert.Len(t, paidList, 1)
}
