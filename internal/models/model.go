package models

import "time"

type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// UserRef is the lightweight {username, id} record returned in resolved
// following lists and in the follow/unfollow JSON responses.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type Tweet struct {
	ID            string
	CreatorID     string
	Author        string
	Content       string
	FavoriteCount int
	CreatedAt     time.Time
}
