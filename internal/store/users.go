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

type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

func (s *Users) Create(ctx context.Context, username, passwordHash string) (*models.User, error) {
	u := &models.User{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users(id, username, password_hash, created_at) VALUES(?,?,?,?)`,
		u.ID, u.Username, passwordHash, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

func (s *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	u := &models.User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, created_at FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Username, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	return u, nil
}

// GetByUsername returns the user together with the stored password hash,
// which never leaves the auth service.
func (s *Users) GetByUsername(ctx context.Context, username string) (*models.User, string, error) {
	u := &models.User{}
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &hash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to select user: %w", err)
	}
	return u, hash, nil
}

func (s *Users) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, created_at FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// Follow records that userID follows targetID. Inserting an existing pair is
// a no-op, which makes the operation idempotent at the store boundary.
func (s *Users) Follow(ctx context.Context, userID, targetID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO follows(user_id, target_id, created_at) VALUES(?,?,?)`,
		userID, targetID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to insert follow: %w", err)
	}
	return nil
}

func (s *Users) Unfollow(ctx context.Context, userID, targetID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE user_id = ? AND target_id = ?`, userID, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}
	return nil
}

// Following resolves the users followed by userID into {username, id} records.
func (s *Users) Following(ctx context.Context, userID string) ([]models.UserRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.username FROM follows f
		 JOIN users u ON u.id = f.target_id
		 WHERE f.user_id = ? ORDER BY f.created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select following: %w", err)
	}
	defer rows.Close()

	// Empty, not nil, so the JSON endpoints serialize [] rather than null.
	result := []models.UserRef{}
	for rows.Next() {
		var ref models.UserRef
		if err := rows.Scan(&ref.ID, &ref.Username); err != nil {
			return nil, err
		}
		result = append(result, ref)
	}
	return result, rows.Err()
}

func (s *Users) IsFollowing(ctx context.Context, userID, targetID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM follows WHERE user_id = ? AND target_id = ?`,
		userID, targetID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count follows: %w", err)
	}
	return n > 0, nil
}
