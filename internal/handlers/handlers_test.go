package handlers

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fritter/internal/auth"
	"fritter/internal/db"
	"fritter/internal/service"
	"fritter/internal/store"
)

func setupServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()

	dbc, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbc.Close() })
	require.NoError(t, db.Migrate(dbc))

	users := store.NewUsers(dbc)
	tweets := store.NewTweets(dbc)
	sessions := auth.NewManager(dbc, time.Hour)

	log := logrus.New()
	log.SetOutput(io.Discard)

	h := New(
		service.NewAuth(users),
		service.NewTweets(tweets, users),
		service.NewSocial(users),
		sessions,
		filepath.Join("..", "..", "web", "templates"),
		log,
	)

	r := mux.NewRouter()
	h.Register(r)

	srv := httptest.NewServer(WithRecover(r, log))
	t.Cleanup(srv.Close)
	return srv, dbc
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func signupAs(t *testing.T, srv *httptest.Server, client *http.Client, username, password string) {
	t.Helper()
	resp, err := client.PostForm(srv.URL+"/", url.Values{
		"newUser":  {username},
		"password": {password},
	})
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/tweets", resp.Request.URL.Path, "signup should land on the tweet list, got %q", body)
}

func TestSignupCreateAndListTweets(t *testing.T) {
	srv, _ := setupServer(t)
	client := newClient(t)

	signupAs(t, srv, client, "alice", "secret1")

	resp, err := client.PostForm(srv.URL+"/tweets/create", url.Values{"content": {"hello world"}})
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, "/tweets", resp.Request.URL.Path)
	assert.Contains(t, body, "hello world")
	assert.Contains(t, body, "alice")
}

func TestLoginFailureRendersLandingError(t *testing.T) {
	srv, _ := setupServer(t)
	client := newClient(t)

	signupAs(t, srv, client, "alice", "secret1")

	resp, err := client.PostForm(srv.URL+"/", url.Values{
		"existingUser": {"alice"},
		"password":     {"wrong"},
	})
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, "Sorry, we were unable to find your username and password")
}

func TestAnonymousPageRedirectsToLanding(t *testing.T) {
	srv, _ := setupServer(t)
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(srv.URL + "/tweets")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestAnonymousJSONEndpointGets401(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Post(srv.URL+"/tweets/favorite/some-id", "", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	assert.NotEmpty(t, payload["error"])
}

func TestFavoriteEndpoint(t *testing.T) {
	srv, dbc := setupServer(t)
	client := newClient(t)

	signupAs(t, srv, client, "alice", "secret1")
	resp, err := client.PostForm(srv.URL+"/tweets/create", url.Values{"content": {"fave me"}})
	require.NoError(t, err)
	readBody(t, resp)

	var tweetID string
	require.NoError(t, dbc.QueryRow(`SELECT id FROM tweets`).Scan(&tweetID))

	resp, err = client.Post(srv.URL+"/tweets/favorite/"+tweetID, "", nil)
	require.NoError(t, err)
	var payload struct {
		FavoriteCount int    `json:"favoriteCount"`
		Error         string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	require.Empty(t, payload.Error)
	assert.Equal(t, 1, payload.FavoriteCount)

	// second favorite is a no-op
	resp, err = client.Post(srv.URL+"/tweets/favorite/"+tweetID, "", nil)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	assert.Equal(t, 1, payload.FavoriteCount)

	resp, err = client.Post(srv.URL+"/tweets/unfavorite/"+tweetID, "", nil)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	assert.Equal(t, 0, payload.FavoriteCount)
}

func TestFollowEndpoint(t *testing.T) {
	srv, dbc := setupServer(t)

	aliceClient := newClient(t)
	signupAs(t, srv, aliceClient, "alice", "secret1")

	bobClient := newClient(t)
	signupAs(t, srv, bobClient, "bob", "secret2")

	var aliceID string
	require.NoError(t, dbc.QueryRow(`SELECT id FROM users WHERE username='alice'`).Scan(&aliceID))

	resp, err := bobClient.Post(srv.URL+"/users/follow/"+aliceID, "", nil)
	require.NoError(t, err)
	var payload struct {
		Following []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"following"`
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	require.Empty(t, payload.Error)
	require.Len(t, payload.Following, 1)
	assert.Equal(t, "alice", payload.Following[0].Username)

	resp, err = bobClient.Post(srv.URL+"/users/unfollow/"+aliceID, "", nil)
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	resp.Body.Close()
	require.Empty(t, payload.Error)
	assert.Len(t, payload.Following, 0)
}

func TestEditDeniedForNonCreator(t *testing.T) {
	srv, dbc := setupServer(t)

	aliceClient := newClient(t)
	signupAs(t, srv, aliceClient, "alice", "secret1")
	resp, err := aliceClient.PostForm(srv.URL+"/tweets/create", url.Values{"content": {"alice's tweet"}})
	require.NoError(t, err)
	readBody(t, resp)

	var tweetID string
	require.NoError(t, dbc.QueryRow(`SELECT id FROM tweets`).Scan(&tweetID))

	bobClient := newClient(t)
	signupAs(t, srv, bobClient, "bob", "secret2")

	resp, err = bobClient.Get(srv.URL + "/tweets/edit/" + tweetID)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, "permission")

	resp, err = bobClient.PostForm(srv.URL+"/tweets/update/"+tweetID, url.Values{"content": {"bob's edit"}})
	require.NoError(t, err)
	readBody(t, resp)

	var content string
	require.NoError(t, dbc.QueryRow(`SELECT content FROM tweets WHERE id=?`, tweetID).Scan(&content))
	assert.Equal(t, "alice's tweet", content)
}

func TestLandingResetsSession(t *testing.T) {
	srv, _ := setupServer(t)
	client := newClient(t)

	signupAs(t, srv, client, "alice", "secret1")

	// visiting the landing page logs the user out
	resp, err := client.Get(srv.URL + "/")
	require.NoError(t, err)
	readBody(t, resp)

	resp, err = client.Get(srv.URL + "/tweets")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, "/", resp.Request.URL.Path)
	assert.True(t, strings.Contains(body, "Sign Up"))
}
