package migration

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate/internal/logging"
)

func TestEnsureMigrated(t *testing.T) {
	const sentinel = `SELECT to_regclass\('public.activities'\) IS NOT NULL`

	t.Run("runs all steps on empty database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS activities").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_activities_principal_started").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_activities_operation").WillReturnResult(sqlmock.NewResult(0, 0))

		var buf bytes.Buffer
		err = EnsureMigrated(context.Background(), db, logging.New(&buf, time.UTC), "db.local")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Contains(t, buf.String(), `"msg":"db_migration_success"`)
		assert.Contains(t, buf.String(), `"component":"database"`)
	})

	t.Run("skips when schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		var buf bytes.Buffer
		require.NoError(t, EnsureMigrated(context.Background(), db, logging.New(&buf, time.UTC), "db.local"))
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Contains(t, buf.String(), "db_migration_skip")
	})

	t.Run("step failure stops migration", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS activities").WillReturnError(errors.New("permission denied"))

		var buf bytes.Buffer
		err = EnsureMigrated(context.Background(), db, logging.New(&buf, time.UTC), "db.local")
		assert.ErrorContains(t, err, "create_table_activities")
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.Contains(t, buf.String(), `"level":"error"`)
	})

	t.Run("sentinel check failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(sentinel).WillReturnError(errors.New("connection reset"))

		err = EnsureMigrated(context.Background(), db, logging.New(&bytes.Buffer{}, time.UTC), "db.local")
		assert.ErrorContains(t, err, "sentinel")
	})
}
