package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"fritter/internal/models"
	"fritter/internal/store"
)

const maxContentLen = 140

type Tweets struct {
	tweets *store.Tweets
	users  *store.Users
}

func NewTweets(tweets *store.Tweets, users *store.Users) *Tweets {
	return &Tweets{tweets: tweets, users: users}
}

// Feed is the view returned for the tweet list page: every tweet, the subset
// from followed creators, and the viewer's favorited ids.
type Feed struct {
	Tweets          []models.Tweet
	FollowingTweets []models.Tweet
	FavoritedIDs    map[string]bool
}

func (s *Tweets) ListAll(ctx context.Context, viewerID string) (*Feed, error) {
	if _, err := s.users.GetByID(ctx, viewerID); err != nil {
		return nil, err
	}
	all, err := s.tweets.List(ctx)
	if err != nil {
		return nil, err
	}
	followed, err := s.tweets.ListFollowed(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	favorited, err := s.tweets.FavoriteIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return &Feed{Tweets: all, FollowingTweets: followed, FavoritedIDs: favorited}, nil
}

func (s *Tweets) ListByCreator(ctx context.Context, creatorID string) ([]models.Tweet, error) {
	return s.tweets.ListByCreator(ctx, creatorID)
}

func (s *Tweets) Create(ctx context.Context, viewerID, content string) (*models.Tweet, error) {
	content, err := validContent(content)
	if err != nil {
		return nil, err
	}
	return s.tweets.Create(ctx, viewerID, content)
}

// GetForEdit fetches a tweet for editing, which only its creator may do.
func (s *Tweets) GetForEdit(ctx context.Context, viewerID, tweetID string) (*models.Tweet, error) {
	t, err := s.tweets.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if t.CreatorID != viewerID {
		return nil, ErrNotCreator
	}
	return t, nil
}

// Update overwrites the content of the viewer's own tweet. Creator and
// favorites are untouched; repeating the same update is a no-op.
func (s *Tweets) Update(ctx context.Context, viewerID, tweetID, content string) error {
	if _, err := s.GetForEdit(ctx, viewerID, tweetID); err != nil {
		return err
	}
	content, err := validContent(content)
	if err != nil {
		return err
	}
	return s.tweets.UpdateContent(ctx, tweetID, content)
}

// Delete removes the viewer's own tweet. The creator check is deliberate:
// the edit path already required it, and deleting is no less destructive.
func (s *Tweets) Delete(ctx context.Context, viewerID, tweetID string) error {
	if _, err := s.GetForEdit(ctx, viewerID, tweetID); err != nil {
		return err
	}
	return s.tweets.Delete(ctx, tweetID)
}

// Favorite adds the tweet to the viewer's favorites and returns the new
// count. Already favorited means nothing changes and the current count comes
// back.
func (s *Tweets) Favorite(ctx context.Context, viewerID, tweetID string) (int, error) {
	if _, err := s.users.GetByID(ctx, viewerID); err != nil {
		return 0, err
	}
	if _, err := s.tweets.GetByID(ctx, tweetID); err != nil {
		return 0, err
	}
	return s.tweets.Favorite(ctx, viewerID, tweetID)
}

func (s *Tweets) Unfavorite(ctx context.Context, viewerID, tweetID string) (int, error) {
	if _, err := s.users.GetByID(ctx, viewerID); err != nil {
		return 0, err
	}
	if _, err := s.tweets.GetByID(ctx, tweetID); err != nil {
		return 0, err
	}
	return s.tweets.Unfavorite(ctx, viewerID, tweetID)
}

func validContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", &ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "", &ValidationError{Field: "content", Reason: "must be at most 140 characters"}
	}
	return content, nil
}
