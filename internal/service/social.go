package service

import (
	"context"

	"fritter/internal/models"
	"fritter/internal/store"
)

type Social struct {
	users *store.Users
}

func NewSocial(users *store.Users) *Social {
	return &Social{users: users}
}

// Directory is the view for the user list page.
type Directory struct {
	Users     []models.User
	Following []models.UserRef
}

func (s *Social) ListUsers(ctx context.Context, viewerID string) (*Directory, error) {
	if _, err := s.users.GetByID(ctx, viewerID); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	following, err := s.users.Following(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return &Directory{Users: users, Following: following}, nil
}

// Follow adds targetID to the viewer's following set and returns the resolved
// list. Following an already-followed user changes nothing. Nothing stops a
// user from following themselves.
func (s *Social) Follow(ctx context.Context, viewerID, targetID string) ([]models.UserRef, error) {
	if _, err := s.users.GetByID(ctx, viewerID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	if err := s.users.Follow(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	return s.users.Following(ctx, viewerID)
}

// Unfollow removes targetID from the viewer's following set if present and
// returns the resolved list either way.
func (s *Social) Unfollow(ctx context.Context, viewerID, targetID string) ([]models.UserRef, error) {
	if _, err := s.users.GetByID(ctx, viewerID); err != nil {
		return nil, err
	}
	if err := s.users.Unfollow(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	return s.users.Following(ctx, viewerID)
}
