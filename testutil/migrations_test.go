package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/vereda-tours/migrations"
	"github.com/pkordes/vereda-tours/testutil"
)

// TestMigrations runs the embedded migrations down to zero, up, and down
// again against TEST_DATABASE_URL, checking the schema at each step.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")

	// Another package's TestMain may already have migrated this shared database.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.Len(t, results, 4)

	for _, table := range []string{"users", "guides", "plans", "reservations"} {
		assert.True(t, exists(t, db, `SELECT EXISTS (SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1)`, table), "table %q", table)
	}
	for _, index := range []string{"users_email_key", "reservations_user_id_idx"} {
		assert.True(t, exists(t, db, `SELECT EXISTS (SELECT 1 FROM pg_indexes
			WHERE schemaname = 'public' AND indexname = $1)`, index), "index %q", index)
	}

	t.Run("email uniqueness ignores case", func(t *testing.T) {
		tx, err := db.BeginTx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback() //nolint:errcheck

		const insert = `INSERT INTO users (username, name, email, password_hash, role)
			VALUES ($1, 'Ana Torres', $2, 'x', 'CLIENT')`
		_, err = tx.ExecContext(ctx, insert, "ana", "ana@example.com")
		require.NoError(t, err)
		_, err = tx.ExecContext(ctx, insert, "ana2", "ANA@example.com")
		assert.Error(t, err)
	})

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	assert.False(t, exists(t, db, `SELECT EXISTS (SELECT 1 FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1)`, "reservations"))
}

func exists(t *testing.T, db *sql.DB, query, name string) bool {
	t.Helper()
	var ok bool
	require.NoError(t, db.QueryRowContext(context.Background(), query, name).Scan(&ok))
	return ok
}
