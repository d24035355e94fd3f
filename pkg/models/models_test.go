package models

import (
	"encoding/json"
	"testing"
)

func TestRepositoryFromAPI(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 42, "name": "hello", "full_name": "octocat/hello",
		"private": true, "stargazers_count": 7, "language": "Go",
		"updated_at": "2024-05-01T12:00:00Z"
	}`)

	repo, err := RepositoryFromAPI(raw)
	if err != nil {
		t.Fatalf("RepositoryFromAPI: %v", err)
	}
	if repo.ID != 42 || repo.Stars != 7 || repo.Language != "Go" {
		t.Errorf("repo = %+v", repo)
	}
	if repo.Visibility != "private" {
		t.Errorf("Visibility = %q, want private (derived from private flag)", repo.Visibility)
	}
	if repo.Topics == nil {
		t.Error("Topics must default to an empty slice")
	}
}

func TestRepositoryFromAPI_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{broken`},
		{"missing id", `{"name": "x"}`},
		{"wrong shape", `[1,2,3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RepositoryFromAPI(json.RawMessage(tt.raw)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestGistFromAPI_FlattensFiles(t *testing.T) {
	raw := json.RawMessage(`{
		"id": "abc123", "description": "snippets", "public": true,
		"files": {
			"zeta.go": {"filename": "zeta.go", "language": "Go", "size": 10},
			"alpha.md": {"filename": "alpha.md", "language": "Markdown", "size": 5}
		}
	}`)

	gist, err := GistFromAPI(raw)
	if err != nil {
		t.Fatalf("GistFromAPI: %v", err)
	}
	if gist.FileCount() != 2 {
		t.Fatalf("FileCount = %d, want 2", gist.FileCount())
	}
	// Files are sorted by name regardless of map iteration order.
	if gist.Files[0].Filename != "alpha.md" || gist.Files[1].Filename != "zeta.go" {
		t.Errorf("file order = [%s, %s]", gist.Files[0].Filename, gist.Files[1].Filename)
	}
}

func TestGistFromAPI_MissingID(t *testing.T) {
	if _, err := GistFromAPI(json.RawMessage(`{"description": "x"}`)); err == nil {
		t.Error("expected an error for missing id")
	}
}

func TestDetailURL(t *testing.T) {
	withPR := json.RawMessage(`{"id": 1, "pull_request": {"url": "https://api.github.com/repos/o/r/pulls/5"}}`)
	if got := DetailURL(withPR); got != "https://api.github.com/repos/o/r/pulls/5" {
		t.Errorf("DetailURL = %q", got)
	}

	plainIssue := json.RawMessage(`{"id": 2, "title": "no pr here"}`)
	if got := DetailURL(plainIssue); got != "" {
		t.Errorf("DetailURL on plain issue = %q, want empty", got)
	}
}

func TestPullRequestFromAPI(t *testing.T) {
	raw := json.RawMessage(`{
		"id": 9, "number": 12, "title": "Add feature", "state": "open",
		"user": {"id": 1, "login": "octocat"},
		"repository_url": "https://api.github.com/repos/octocat/hello-world",
		"additions": 50, "deletions": 8
	}`)

	pr, err := PullRequestFromAPI(raw)
	if err != nil {
		t.Fatalf("PullRequestFromAPI: %v", err)
	}
	if pr.Number != 12 || pr.Additions != 50 {
		t.Errorf("pr = %+v", pr)
	}
	if pr.Repository == nil {
		t.Fatal("Repository must be recovered from repository_url")
	}
	if pr.Repository.FullName != "octocat/hello-world" {
		t.Errorf("Repository.FullName = %q", pr.Repository.FullName)
	}
	if pr.Assignees == nil || pr.Reviewers == nil || pr.Labels == nil {
		t.Error("people and label slices must default to empty, not nil")
	}
}

func TestUserFromAPI(t *testing.T) {
	raw := json.RawMessage(`{"id": 3, "login": "octocat", "public_repos": 8, "total_private_repos": 2}`)

	user, err := UserFromAPI(raw)
	if err != nil {
		t.Fatalf("UserFromAPI: %v", err)
	}
	if user.PublicRepos != 8 || user.TotalPrivateRepos != 2 {
		t.Errorf("user = %+v", user)
	}

	if _, err := UserFromAPI(json.RawMessage(`{"login": "ghost"}`)); err == nil {
		t.Error("expected an error for missing id")
	}
}
