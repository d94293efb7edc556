package migration

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRunner_Idempotent(t *testing.T) {
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	runner := NewRunner()
	ctx := context.Background()
	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Run(ctx, db))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM uploads`))
	assert.Zero(t, count)
	assert.Equal(t, "1.0.0", runner.Version())
}
