package stubs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingvobot/internal/models"
	"lingvobot/internal/storage"
)

func TestCourseTypeLifecycle(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	ct, err := db.CreateCourseType(ctx, "Грамматика", "Базовая грамматика")
	require.NoError(t, err)
	assert.NotZero(t, ct.ID)
	assert.True(t, ct.IsActive)

	renamed, err := db.RenameCourseType(ctx, ct.ID, "Грамматика 2.0")
	require.NoError(t, err)
	assert.Equal(t, "Грамматика 2.0", renamed.Name)

	_, err = db.RenameCourseType(ctx, 9999, "x")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	types, err := db.ListActiveCourseTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, types, 1)
}

func TestDeleteCourseTypeCascades(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	keep, err := db.CreateCourseType(ctx, "Остаётся", "")
	require.NoError(t, err)
	doomed, err := db.CreateCourseType(ctx, "Удаляется", "")
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		_, err := db.CreateCourse(ctx, storage.CourseDraft{
			CourseTypeID: doomed.ID,
			Title:        "Курс",
			Difficulty:   models.Beginner,
			OrderIndex:   i,
		})
		require.NoError(t, err)
	}
	survivor, err := db.CreateCourse(ctx, storage.CourseDraft{
		CourseTypeID: keep.ID,
		Title:        "Живой курс",
		Difficulty:   models.Beginner,
		OrderIndex:   1,
	})
	require.NoError(t, err)

	require.NoError(t, db.DeleteCourseType(ctx, doomed.ID))

	_, err = db.GetCourseType(ctx, doomed.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	orphans, err := db.ListCourses(ctx, doomed.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, orphans, "cascade must remove all courses of the deleted type")

	still, err := db.GetCourse(ctx, survivor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Живой курс", still.Title)

	assert.ErrorIs(t, db.DeleteCourseType(ctx, doomed.ID), storage.ErrNotFound)
}

func TestListCoursesOrderAndFilter(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	ct, err := db.CreateCourseType(ctx, "Лексика", "")
	require.NoError(t, err)

	for _, c := range []struct {
		order int
		level models.DifficultyLevel
	}{
		{order: 3, level: models.Beginner},
		{order: 1, level: models.Expert},
		{order: 2, level: models.Beginner},
	} {
		_, err := db.CreateCourse(ctx, storage.CourseDraft{
			CourseTypeID: ct.ID,
			Title:        "Курс",
			Difficulty:   c.level,
			OrderIndex:   c.order,
		})
		require.NoError(t, err)
	}

	all, err := db.ListCourses(ctx, ct.ID, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].OrderIndex, all[1].OrderIndex, all[2].OrderIndex})

	beginner := models.Beginner
	filtered, err := db.ListCourses(ctx, ct.ID, &beginner)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, 2, filtered[0].OrderIndex)
}

func TestUpdateCoursePartial(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	ct, _ := db.CreateCourseType(ctx, "Фонетика", "")
	created, err := db.CreateCourse(ctx, storage.CourseDraft{
		CourseTypeID: ct.ID,
		Title:        "Старое название",
		Description:  "Описание",
		Difficulty:   models.Beginner,
		OrderIndex:   5,
	})
	require.NoError(t, err)

	title := "Новое название"
	updated, err := db.UpdateCourse(ctx, created.ID, storage.CourseUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Новое название", updated.Title)
	assert.Equal(t, "Описание", updated.Description, "untouched fields must survive")
	assert.Equal(t, 5, updated.OrderIndex)

	_, err = db.UpdateCourse(ctx, 9999, storage.CourseUpdate{Title: &title})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStudentOperations(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()

	_, err := db.GetStudent(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	created, err := db.CreateStudent(ctx, storage.NewStudent{
		UserID:    1,
		Username:  "student1",
		FirstName: "Olim",
		Language:  "uz",
	})
	require.NoError(t, err)
	assert.False(t, created.IsAdmin)

	require.NoError(t, db.UpdateStudentLanguage(ctx, 1, "ru"))
	reloaded, err := db.GetStudent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ru", reloaded.Language)

	_, err = db.CreateStudent(ctx, storage.NewStudent{UserID: 2, IsAdmin: true})
	require.NoError(t, err)
	paidStudent, err := db.SetPaid(ctx, 1, true)
	require.NoError(t, err)
	assert.True(t, paidStudent.IsPaid)

	admins, err := db.ListStudents(ctx, storage.AdminStudents)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, int64(2), admins[0].UserID)

	paid, err := db.ListStudents(ctx, storage.PaidStudents)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, int64(1), paid[0].UserID)

	unpaid, err := db.ListStudents(ctx, storage.UnpaidStudents)
	require.NoError(t, err)
	require.Len(t, unpaid, 1)

	demoted, err := db.SetAdmin(ctx, 2, false)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)

	_, err = db.SetAdmin(ctx, 404, true)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRefreshStudentName(t *testing.T) {
	db := NewMockDB()
	ctx := context.Background()
	_, err := db.CreateStudent(ctx, storage.NewStudent{UserID: 1, Username: "old", FirstName: "Old"})
	require.NoError(t, err)

	require.NoError(t, db.RefreshStudentName(ctx, 1, "new", "New", "Name"))
	s, err := db.GetStudent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "new", s.Username)
	assert.Equal(t, "New", s.FirstName)
	assert.Equal(t, "Name", s.LastName)
}
