package pg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgresTC "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"lingvobot/internal/models"
	"lingvobot/internal/storage"
)

// TestPostgresIntegration exercises the gateway against a real PostgreSQL
// instance. Requires Docker; skipped in short mode.
func TestPostgresIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgresTC.Run(ctx,
		"postgres:16-alpine",
		postgresTC.WithDatabase("lingvobot_test"),
		postgresTC.WithUsername("test"),
		postgresTC.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := New(dsn, zap.NewNop())
	require.NoError(t, err, "Failed to connect to PostgreSQL")
	defer db.Close()
	require.NoError(t, db.AutoMigrate())

	t.Run("CourseTypeCascade", func(t *testing.T) {
		ct, err := db.CreateCourseType(ctx, "Интеграционный", "")
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			_, err := db.CreateCourse(ctx, storage.CourseDraft{
				CourseTypeID:   ct.ID,
				Title:          "Курс",
				Difficulty:     models.Beginner,
				OrderIndex:     i,
				PracticeImages: "[]",
			})
			require.NoError(t, err)
		}

		require.NoError(t, db.DeleteCourseType(ctx, ct.ID))

		courses, err := db.ListCourses(ctx, ct.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, courses)
	})

	t.Run("StudentUniqueUserID", func(t *testing.T) {
		_, err := db.CreateStudent(ctx, storage.NewStudent{UserID: 42, FirstName: "A"})
		require.NoError(t, err)

		_, err = db.CreateStudent(ctx, storage.NewStudent{UserID: 42, FirstName: "B"})
		assert.Error(t, err, "duplicate user_id must be rejected by the unique index")
	})

	t.Run("ConcurrentFlagUpdates", func(t *testing.T) {
		_, err := db.CreateStudent(ctx, storage.NewStudent{UserID: 77})
		require.NoError(t, err)

		done := make(chan error, 10)
		for i := 0; i < 10; i++ {
			go func(paid bool) {
				_, err := db.SetPaid(ctx, 77, paid)
				done <- err
			}(i%2 == 0)
		}
		for i := 0; i < 10; i++ {
			assert.NoError(t, <-done)
		}
	})
}
