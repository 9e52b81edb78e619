package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/internal/model"
	"studymate/internal/repository"
)

var activityCols = []string{"id", "operation", "principal_uid", "state", "error", "started_at", "duration_ms"}

func TestActivityPostgres_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewActivityPostgres(db)
	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a := &model.Activity{
		ID:           "0b7e2c1e-0000-4000-8000-000000000001",
		Operation:    "summarize",
		PrincipalUID: "uid-1",
		State:        "rejected",
		Error:        "backend returned 404: not found",
		StartedAt:    started,
		Duration:     1250 * time.Millisecond,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO activities").
			WithArgs(a.ID, a.Operation, a.PrincipalUID, a.State, a.Error, a.StartedAt, int64(1250)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Record(context.Background(), a))
	})

	t.Run("db error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO activities").WillReturnError(errors.New("disk full"))

		err := repo.Record(context.Background(), a)
		assert.ErrorContains(t, err, "insert activity: disk full")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActivityPostgres(db)
	ctx := context.Background()
	started := time.Now().UTC().Truncate(time.Second)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM activities WHERE id = ?").
			WithArgs("a1").
			WillReturnRows(sqlmock.NewRows(activityCols).AddRow("a1", "quiz", "uid-1", "resolved", "", started, 300))

		got, err := repo.FindByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "quiz", got.Operation)
		assert.Equal(t, 300*time.Millisecond, got.Duration)
		assert.Equal(t, started, got.StartedAt)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM activities WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		got, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, got)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewActivityPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("filtered by principal", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activities WHERE principal_uid = \$1`).
			WithArgs("uid-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectQuery(`SELECT (.+) FROM activities WHERE principal_uid = \$1 ORDER BY started_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
			WithArgs("uid-1", 10, 0).
			WillReturnRows(sqlmock.NewRows(activityCols).
				AddRow("a2", "ask", "uid-1", "resolved", "", now, 40).
				AddRow("a1", "summarize", "uid-1", "rejected", "boom", now.Add(-time.Minute), 90))

		res, err := repo.List(ctx, repository.ActivityFilter{PrincipalUID: "uid-1", Page: repository.PageQuery{Limit: 10}})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		require.Len(t, res.Items, 2)
		assert.Equal(t, "a2", res.Items[0].ID)
		assert.Equal(t, "boom", res.Items[1].Error)
	})

	t.Run("both filters and default limit", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activities WHERE principal_uid = \$1 AND operation = \$2`).
			WithArgs("uid-1", "quiz").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`LIMIT \$3 OFFSET \$4`).
			WithArgs("uid-1", "quiz", 50, 5).
			WillReturnRows(sqlmock.NewRows(activityCols))

		res, err := repo.List(ctx, repository.ActivityFilter{
			PrincipalUID: "uid-1", Operation: "quiz", Page: repository.PageQuery{Offset: 5},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Total)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM activities`).WillReturnError(errors.New("timeout"))

		_, err := repo.List(ctx, repository.ActivityFilter{})
		assert.ErrorContains(t, err, "count activities")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
