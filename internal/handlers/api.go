package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"fritter/internal/auth"
)

// The favorite and follow buttons post here from the client scripts and
// patch the page from the JSON response. Domain failures come back as an
// error field with HTTP 200, which is what the scripts check for.

func (h *Handler) Favorite(w http.ResponseWriter, r *http.Request) {
	count, err := h.tweetSvc.Favorite(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.log.WithError(err).Error("favorite failed")
		h.writeJSON(w, http.StatusOK, map[string]any{"error": "Sorry, we were unable to favorite that tweet."})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"favoriteCount": count})
}

func (h *Handler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	count, err := h.tweetSvc.Unfavorite(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.log.WithError(err).Error("unfavorite failed")
		h.writeJSON(w, http.StatusOK, map[string]any{"error": "Sorry, we were unable to unfavorite that tweet."})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"favoriteCount": count})
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	following, err := h.social.Follow(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.log.WithError(err).Error("follow failed")
		h.writeJSON(w, http.StatusOK, map[string]any{"error": "Sorry, could not save following"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"following": following})
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	following, err := h.social.Unfollow(r.Context(), auth.UserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.log.WithError(err).Error("unfollow failed")
		h.writeJSON(w, http.StatusOK, map[string]any{"error": "Sorry, we were unable to update your preferences."})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"following": following})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WithError(err).Error("encode response failed")
	}
}
