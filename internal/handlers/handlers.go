package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"fritter/internal/auth"
	"fritter/internal/models"
	"fritter/internal/service"
)

// tplFuncs is the helper set available to the page templates. userFollowed
// takes any because error renders pass pages without a Following entry.
var tplFuncs = template.FuncMap{
	"userFollowed": func(following any, id string) bool {
		refs, ok := following.([]models.UserRef)
		if !ok {
			return false
		}
		for _, ref := range refs {
			if ref.ID == id {
				return true
			}
		}
		return false
	},
}

type Handler struct {
	authSvc  *service.Auth
	tweetSvc *service.Tweets
	social   *service.Social
	sessions *auth.Manager
	tpls     *template.Template
	log      *logrus.Logger
}

func New(authSvc *service.Auth, tweetSvc *service.Tweets, social *service.Social,
	sessions *auth.Manager, tplDir string, log *logrus.Logger) *Handler {
	tpls := template.Must(template.New("").Funcs(tplFuncs).ParseGlob(filepath.Join(tplDir, "*.html")))
	return &Handler{
		authSvc:  authSvc,
		tweetSvc: tweetSvc,
		social:   social,
		sessions: sessions,
		tpls:     tpls,
		log:      log,
	}
}

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/", h.Landing).Methods(http.MethodGet)
	r.HandleFunc("/", h.LoginOrSignup).Methods(http.MethodPost)

	r.HandleFunc("/tweets", h.requirePage(h.ListTweets)).Methods(http.MethodGet)
	r.HandleFunc("/tweets/new", h.requirePage(h.NewTweet)).Methods(http.MethodGet)
	r.HandleFunc("/tweets/create", h.requirePage(h.CreateTweet)).Methods(http.MethodPost)
	r.HandleFunc("/tweets/edit/{id}", h.requirePage(h.EditTweet)).Methods(http.MethodGet)
	r.HandleFunc("/tweets/update/{id}", h.requirePage(h.UpdateTweet)).Methods(http.MethodPost)
	r.HandleFunc("/tweets/delete/{id}", h.requirePage(h.DeleteTweet)).Methods(http.MethodGet)
	r.HandleFunc("/tweets/favorite/{id}", h.requireJSON(h.Favorite)).Methods(http.MethodPost)
	r.HandleFunc("/tweets/unfavorite/{id}", h.requireJSON(h.Unfavorite)).Methods(http.MethodPost)
	r.HandleFunc("/tweets/{id}", h.requirePage(h.TweetsByUser)).Methods(http.MethodGet)

	r.HandleFunc("/users", h.requirePage(h.ListUsers)).Methods(http.MethodGet)
	r.HandleFunc("/users/follow/{id}", h.requireJSON(h.Follow)).Methods(http.MethodPost)
	r.HandleFunc("/users/unfollow/{id}", h.requireJSON(h.Unfollow)).Methods(http.MethodPost)
}

// requirePage redirects anonymous callers to the landing page; the resolved
// viewer id travels on the request context.
func (h *Handler) requirePage(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := h.sessions.CurrentUserID(r)
		if !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), uid)))
	}
}

// requireJSON is the JSON-endpoint counterpart: 401 instead of a redirect.
func (h *Handler) requireJSON(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := h.sessions.CurrentUserID(r)
		if !ok {
			h.writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Please log in first."})
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), uid)))
	}
}

func (h *Handler) render(w http.ResponseWriter, name string, data map[string]any) {
	if err := h.tpls.ExecuteTemplate(w, name, data); err != nil {
		h.log.WithError(err).WithField("template", name).Error("render failed")
	}
}

// -------- Landing / auth

// Landing resets any current session and shows the login/signup page.
func (h *Handler) Landing(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w, r)
	h.render(w, "index", map[string]any{})
}

// LoginOrSignup handles the landing form. The request carries either
// existingUser for a login or newUser for a signup, plus a password.
func (h *Handler) LoginOrSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLandingError(w, "The server has encountered an unexpected state. Please refresh and try again.")
		return
	}

	switch {
	case r.PostForm.Has("existingUser"):
		h.login(w, r)
	case r.PostForm.Has("newUser"):
		h.signup(w, r)
	default:
		h.renderLandingError(w, "The server has encountered an unexpected state. Please refresh and try again.")
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	user, err := h.authSvc.Login(r.Context(), r.PostFormValue("existingUser"), r.PostFormValue("password"))
	if err != nil {
		if !errors.Is(err, service.ErrBadCredentials) {
			h.log.WithError(err).Error("login failed")
		}
		h.renderLandingError(w, `Sorry, we were unable to find your username and password. `+
			`Please try again or click "Sign Up" to create a new account.`)
		return
	}
	h.startSession(w, r, user.ID)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	user, err := h.authSvc.Signup(r.Context(), r.PostFormValue("newUser"), r.PostFormValue("password"))
	if err != nil {
		if !service.IsValidation(err) {
			h.log.WithError(err).Error("signup failed")
		}
		h.renderLandingError(w, "Sorry, we were unable to create your account.")
		return
	}
	h.startSession(w, r, user.ID)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, userID string) {
	if err := h.sessions.Create(w, userID); err != nil {
		h.log.WithError(err).Error("session create failed")
		h.renderLandingError(w, "The server has encountered an unexpected state. Please refresh and try again.")
		return
	}
	http.Redirect(w, r, "/tweets", http.StatusSeeOther)
}

func (h *Handler) renderLandingError(w http.ResponseWriter, msg string) {
	h.render(w, "index", map[string]any{"Error": msg})
}

// -------- Tweet pages

func (h *Handler) ListTweets(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	feed, err := h.tweetSvc.ListAll(r.Context(), uid)
	if err != nil {
		h.log.WithError(err).Error("list tweets failed")
		h.renderTweetsError(w, uid, "Sorry, we were unable to get the tweets for you.")
		return
	}
	h.render(w, "tweets", map[string]any{
		"Tweets":          feed.Tweets,
		"FollowingTweets": feed.FollowingTweets,
		"Favorites":       feed.FavoritedIDs,
		"CurrentUser":     uid,
		"ShowFollowing":   true,
	})
}

func (h *Handler) NewTweet(w http.ResponseWriter, r *http.Request) {
	h.render(w, "new_tweet", map[string]any{})
}

func (h *Handler) CreateTweet(w http.ResponseWriter, r *http.Request) {
	content := r.PostFormValue("content")
	_, err := h.tweetSvc.Create(r.Context(), auth.UserID(r.Context()), content)
	if err != nil {
		if !service.IsValidation(err) {
			h.log.WithError(err).Error("create tweet failed")
		}
		// Hand the submitted content back so the user can fix it in place.
		h.render(w, "new_tweet", map[string]any{"Content": content, "Error": true})
		return
	}
	http.Redirect(w, r, "/tweets", http.StatusSeeOther)
}

func (h *Handler) EditTweet(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	tweet, err := h.tweetSvc.GetForEdit(r.Context(), uid, mux.Vars(r)["id"])
	if err != nil {
		h.renderTweetsError(w, uid, editErrorMessage(err, "fetch"))
		return
	}
	h.render(w, "edit_tweet", map[string]any{"Tweet": tweet})
}

func (h *Handler) UpdateTweet(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	id := mux.Vars(r)["id"]
	content := r.PostFormValue("content")

	err := h.tweetSvc.Update(r.Context(), uid, id, content)
	switch {
	case err == nil:
		http.Redirect(w, r, "/tweets", http.StatusSeeOther)
	case errors.Is(err, service.ErrNotCreator):
		h.renderTweetsError(w, uid, "You don't have permission to edit that tweet!")
	default:
		if !service.IsValidation(err) {
			h.log.WithError(err).Error("update tweet failed")
		}
		h.render(w, "edit_tweet", map[string]any{
			"Tweet": map[string]any{"ID": id, "Content": content},
			"Error": true,
		})
	}
}

func (h *Handler) DeleteTweet(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	err := h.tweetSvc.Delete(r.Context(), uid, mux.Vars(r)["id"])
	switch {
	case err == nil:
		http.Redirect(w, r, "/tweets", http.StatusSeeOther)
	case errors.Is(err, service.ErrNotCreator):
		h.renderTweetsError(w, uid, "You don't have permission to delete that tweet!")
	default:
		h.log.WithError(err).Error("delete tweet failed")
		h.renderTweetsError(w, uid, "Sorry, we were unable to delete your tweet.")
	}
}

func (h *Handler) TweetsByUser(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	tweets, err := h.tweetSvc.ListByCreator(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.log.WithError(err).Error("list tweets by creator failed")
		h.renderTweetsError(w, uid, "Sorry, we were unable to get the tweets for you.")
		return
	}
	h.render(w, "tweets", map[string]any{
		"Tweets":      tweets,
		"CurrentUser": uid,
	})
}

func (h *Handler) renderTweetsError(w http.ResponseWriter, uid, msg string) {
	h.render(w, "tweets", map[string]any{"Error": msg, "CurrentUser": uid})
}

// -------- User pages

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	dir, err := h.social.ListUsers(r.Context(), uid)
	if err != nil {
		h.log.WithError(err).Error("list users failed")
		h.render(w, "users", map[string]any{
			"Error":       "Sorry, we were unable to get the list of users for you.",
			"CurrentUser": uid,
		})
		return
	}
	h.render(w, "users", map[string]any{
		"Users":       dir.Users,
		"Following":   dir.Following,
		"CurrentUser": uid,
	})
}

func editErrorMessage(err error, verb string) string {
	if errors.Is(err, service.ErrNotCreator) {
		return "You don't have permission to edit that tweet!"
	}
	return "Sorry, we were unable to " + verb + " that tweet."
}
