package models

import (
	"encoding/json"
	"fmt"
)

// User is the authenticated GitHub account or one of its social relations.
type User struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name,omitempty"`
	AvatarURL   string `json:"avatar_url"`
	HTMLURL     string `json:"html_url"`
	Bio         string `json:"bio,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	PublicRepos int    `json:"public_repos"`
	PublicGists int    `json:"public_gists"`

	// Only present on the authenticated /user response.
	TotalPrivateRepos int `json:"total_private_repos,omitempty"`
	PrivateGists      int `json:"private_gists,omitempty"`

	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// UserFromAPI converts a raw API record into a User.
func UserFromAPI(raw json.RawMessage) (User, error) {
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return User{}, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == 0 {
		return User{}, fmt.Errorf("decode user: missing id")
	}
	return user, nil
}

// RateLimitStatus is the upstream rate-limit budget snapshot from
// GET /rate_limit (core resource).
type RateLimitStatus struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}
