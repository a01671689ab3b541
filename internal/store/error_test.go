package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Driver failures must come back wrapped, never as raw sql errors and never
// as ErrNotFound.

func TestUsersListFailureIsWrapped(t *testing.T) {
	dbc, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbc.Close() })

	mock.ExpectQuery("SELECT id, username").WillReturnError(errors.New("disk I/O error"))

	_, err = NewUsers(dbc).List(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "failed to select users")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTweetsFavoriteFailureIsWrapped(t *testing.T) {
	dbc, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbc.Close() })

	mock.ExpectExec("INSERT OR IGNORE INTO favorites").WillReturnError(errors.New("database is locked"))

	_, err = NewTweets(dbc).Favorite(context.Background(), "u1", "t1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert favorite")
	assert.NoError(t, mock.ExpectationsWereMet())
}
