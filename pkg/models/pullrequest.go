package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PRUser is a GitHub account referenced by a pull request.
type PRUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// PRBranch is one side of a pull request.
type PRBranch struct {
	Ref   string `json:"ref"`
	SHA   string `json:"sha"`
	Label string `json:"label"`
}

// PRRepository identifies the repository a pull request belongs to.
type PRRepository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

// PRLabel is an issue label attached to a pull request.
type PRLabel struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// PullRequest represents a GitHub pull request. Summary fields come from
// the issues listing; stats and branches are filled by detail enrichment
// and stay zero when enrichment is skipped or fails.
type PullRequest struct {
	ID             int64         `json:"id"`
	Number         int           `json:"number"`
	Title          string        `json:"title"`
	Body           string        `json:"body"`
	State          string        `json:"state"`
	User           PRUser        `json:"user"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
	ClosedAt       string        `json:"closed_at"`
	MergedAt       string        `json:"merged_at"`
	HTMLURL        string        `json:"html_url"`
	Base           *PRBranch     `json:"base,omitempty"`
	Head           *PRBranch     `json:"head,omitempty"`
	Repository     *PRRepository `json:"repository,omitempty"`
	Draft          bool          `json:"draft"`
	MergeableState string        `json:"mergeable_state,omitempty"`
	MergedBy       *PRUser       `json:"merged_by,omitempty"`
	Additions      int           `json:"additions"`
	Deletions      int           `json:"deletions"`
	ChangedFiles   int           `json:"changed_files"`
	Comments       int           `json:"comments"`
	ReviewComments int           `json:"review_comments"`
	Commits        int           `json:"commits"`
	Assignees      []PRUser      `json:"assignees"`
	Reviewers      []PRUser      `json:"requested_reviewers"`
	Labels         []PRLabel     `json:"labels"`
}

// DetailURL returns the pull-request API URL carried by an issues-API
// record, or empty when the record is not a pull request.
func DetailURL(raw json.RawMessage) string {
	var wire struct {
		PullRequest struct {
			URL string `json:"url"`
		} `json:"pull_request"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return ""
	}
	return wire.PullRequest.URL
}

// PullRequestFromAPI converts one issues-API record (pre-merged with any
// detail payload) into a PullRequest. Repository identity is recovered
// from repository_url when the record carries no repository object.
func PullRequestFromAPI(raw json.RawMessage) (PullRequest, error) {
	var wire struct {
		PullRequest
		RepositoryURL string `json:"repository_url"`
		PullRequestID *struct {
			URL string `json:"url"`
		} `json:"pull_request"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return PullRequest{}, fmt.Errorf("decode pull request: %w", err)
	}
	if wire.ID == 0 {
		return PullRequest{}, fmt.Errorf("decode pull request: missing id")
	}

	pr := wire.PullRequest
	if pr.Repository == nil && wire.RepositoryURL != "" {
		pr.Repository = repositoryFromURL(wire.RepositoryURL)
	}
	if pr.Assignees == nil {
		pr.Assignees = []PRUser{}
	}
	if pr.Reviewers == nil {
		pr.Reviewers = []PRUser{}
	}
	if pr.Labels == nil {
		pr.Labels = []PRLabel{}
	}
	return pr, nil
}

// repositoryFromURL derives owner/name identity from an API repository URL
// such as https://api.github.com/repos/octocat/hello-world.
func repositoryFromURL(url string) *PRRepository {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) < 2 {
		return nil
	}
	owner, name := parts[len(parts)-2], parts[len(parts)-1]
	return &PRRepository{
		Name:     name,
		FullName: owner + "/" + name,
		HTMLURL:  "https://github.com/" + owner + "/" + name,
	}
}
