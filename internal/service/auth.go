package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"fritter/internal/models"
	"fritter/internal/store"
)

// Usernames are 1-20 alphanumeric characters; passwords are 1-20 characters
// with no whitespace.
var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9]{1,20}$`)
	passwordRe = regexp.MustCompile(`^\S{1,20}$`)
)

type Auth struct {
	users *store.Users
}

func NewAuth(users *store.Users) *Auth {
	return &Auth{users: users}
}

// Signup validates the credentials, rejects taken usernames and stores the
// new user with a bcrypt hash. The plaintext password is never persisted.
func (s *Auth) Signup(ctx context.Context, username, password string) (*models.User, error) {
	if !usernameRe.MatchString(username) {
		return nil, &ValidationError{Field: "username", Reason: "must be 1-20 alphanumeric characters"}
	}
	if !passwordRe.MatchString(password) {
		return nil, &ValidationError{Field: "password", Reason: "must be 1-20 characters with no whitespace"}
	}

	_, _, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		return nil, &ValidationError{Field: "username", Reason: "already taken"}
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.Create(ctx, username, string(hash))
}

// Login resolves the username and checks the password against the stored
// hash. Unknown usernames and wrong passwords both yield ErrBadCredentials.
func (s *Auth) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, hash, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}
