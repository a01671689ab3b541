package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fritter/internal/models"
)

// selectTweets joins the creator for the author name and derives the favorite
// count from the favorites table, so the count can never drift from the set.
const selectTweets = `SELECT t.id, t.creator_id, u.username, t.content, t.created_at,
	(SELECT COUNT(*) FROM favorites f WHERE f.tweet_id = t.id) AS favorite_count
	FROM tweets t JOIN users u ON u.id = t.creator_id`

type Tweets struct {
	db *sql.DB
}

func NewTweets(db *sql.DB) *Tweets {
	return &Tweets{db: db}
}

func (s *Tweets) Create(ctx context.Context, creatorID, content string) (*models.Tweet, error) {
	t := &models.Tweet{
		ID:        uuid.New().String(),
		CreatorID: creatorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tweets(id, creator_id, content, created_at) VALUES(?,?,?,?)`,
		t.ID, t.CreatorID, t.Content, t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tweet: %w", err)
	}
	return t, nil
}

func (s *Tweets) GetByID(ctx context.Context, id string) (*models.Tweet, error) {
	t := &models.Tweet{}
	err := s.db.QueryRowContext(ctx, selectTweets+` WHERE t.id = ?`, id).
		Scan(&t.ID, &t.CreatorID, &t.Author, &t.Content, &t.CreatedAt, &t.FavoriteCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select tweet: %w", err)
	}
	return t, nil
}

func (s *Tweets) List(ctx context.Context) ([]models.Tweet, error) {
	return s.query(ctx, selectTweets+` ORDER BY t.created_at DESC`)
}

func (s *Tweets) ListByCreator(ctx context.Context, creatorID string) ([]models.Tweet, error) {
	return s.query(ctx, selectTweets+` WHERE t.creator_id = ? ORDER BY t.created_at DESC`, creatorID)
}

// ListFollowed returns the tweets whose creators the viewer follows.
func (s *Tweets) ListFollowed(ctx context.Context, viewerID string) ([]models.Tweet, error) {
	return s.query(ctx, selectTweets+
		` JOIN follows fl ON fl.target_id = t.creator_id AND fl.user_id = ?
		 ORDER BY t.created_at DESC`, viewerID)
}

func (s *Tweets) query(ctx context.Context, q string, args ...any) ([]models.Tweet, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tweets: %w", err)
	}
	defer rows.Close()

	var result []models.Tweet
	for rows.Next() {
		var t models.Tweet
		if err := rows.Scan(&t.ID, &t.CreatorID, &t.Author, &t.Content, &t.CreatedAt, &t.FavoriteCount); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (s *Tweets) UpdateContent(ctx context.Context, id, content string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tweets SET content = ? WHERE id = ?`, content, id)
	if err != nil {
		return fmt.Errorf("failed to update tweet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the tweet together with any favorites referencing it, so no
// user is left holding a dangling favorite id.
func (s *Tweets) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE tweet_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete favorites: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM tweets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tweet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Favorite marks the tweet as favorited by userID and returns the resulting
// count. Favoriting an already-favorited tweet changes nothing.
func (s *Tweets) Favorite(ctx context.Context, userID, tweetID string) (int, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO favorites(user_id, tweet_id, created_at) VALUES(?,?,?)`,
		userID, tweetID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert favorite: %w", err)
	}
	return s.favoriteCount(ctx, tweetID)
}

func (s *Tweets) Unfavorite(ctx context.Context, userID, tweetID string) (int, error) {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND tweet_id = ?`, userID, tweetID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete favorite: %w", err)
	}
	return s.favoriteCount(ctx, tweetID)
}

func (s *Tweets) favoriteCount(ctx context.Context, tweetID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM favorites WHERE tweet_id = ?`, tweetID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return n, nil
}

// FavoriteIDs returns the set of tweet ids the user has favorited.
func (s *Tweets) FavoriteIDs(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tweet_id FROM favorites WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select favorites: %w", err)
	}
	defer rows.Close()

	result := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = true
	}
	return result, rows.Err()
}
