package store

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"fritter/internal/db"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dbc, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbc.Close() })
	require.NoError(t, db.Migrate(dbc))
	return dbc
}
