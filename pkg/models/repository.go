// Package models defines the domain records assembled from GitHub API
// payloads: repositories, gists, pull requests, and users.
package models

import (
	"encoding/json"
	"fmt"
)

// Repository represents a GitHub repository.
type Repository struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	FullName      string   `json:"full_name"`
	Description   string   `json:"description"`
	Private       bool     `json:"private"`
	HTMLURL       string   `json:"html_url"`
	CloneURL      string   `json:"clone_url"`
	SSHURL        string   `json:"ssh_url"`
	Language      string   `json:"language"`
	Stars         int      `json:"stargazers_count"`
	Watchers      int      `json:"watchers_count"`
	Forks         int      `json:"forks_count"`
	Size          int      `json:"size"`
	DefaultBranch string   `json:"default_branch"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	PushedAt      string   `json:"pushed_at"`
	Archived      bool     `json:"archived"`
	Disabled      bool     `json:"disabled"`
	Fork          bool     `json:"fork"`
	Topics        []string `json:"topics"`
	Visibility    string   `json:"visibility"`
	Owner         Owner    `json:"owner"`
}

// Owner is the owning account of a repository or gist.
type Owner struct {
	Login     string `json:"login"`
	Type      string `json:"type,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// RepositoryFromAPI converts one raw API record into a Repository.
// Timestamps stay in their RFC3339 wire form; they sort lexicographically.
func RepositoryFromAPI(raw json.RawMessage) (Repository, error) {
	var repo Repository
	if err := json.Unmarshal(raw, &repo); err != nil {
		return Repository{}, fmt.Errorf("decode repository: %w", err)
	}
	if repo.ID == 0 {
		return Repository{}, fmt.Errorf("decode repository: missing id")
	}
	if repo.Topics == nil {
		repo.Topics = []string{}
	}
	if repo.Visibility == "" {
		if repo.Private {
			repo.Visibility = "private"
		} else {
			repo.Visibility = "public"
		}
	}
	return repo, nil
}
