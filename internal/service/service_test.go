package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"fritter/internal/db"
	"fritter/internal/store"
)

func setupServices(t *testing.T) (*Auth, *Tweets, *Social) {
	t.Helper()
	dbc, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbc.Close() })
	require.NoError(t, db.Migrate(dbc))

	users := store.NewUsers(dbc)
	tweets := store.NewTweets(dbc)
	return NewAuth(users), NewTweets(tweets, users), NewSocial(users)
}
