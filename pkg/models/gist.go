package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// GistFile is one file within a gist.
type GistFile struct {
	Filename  string `json:"filename"`
	Type      string `json:"type"`
	Language  string `json:"language"`
	RawURL    string `json:"raw_url"`
	Size      int    `json:"size"`
	Truncated bool   `json:"truncated"`
}

// Gist represents a GitHub gist with its file set.
type Gist struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Public      bool       `json:"public"`
	HTMLURL     string     `json:"html_url"`
	GitPullURL  string     `json:"git_pull_url"`
	GitPushURL  string     `json:"git_push_url"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
	Comments    int        `json:"comments"`
	Files       []GistFile `json:"files"`
	Owner       Owner      `json:"owner"`
	Truncated   bool       `json:"truncated"`
}

// FileCount returns the number of files in the gist.
func (g Gist) FileCount() int {
	return len(g.Files)
}

// GistFromAPI converts one raw API record into a Gist. The API keys files
// by filename; the map is flattened into a slice for stable handling.
func GistFromAPI(raw json.RawMessage) (Gist, error) {
	var wire struct {
		Gist
		Files map[string]GistFile `json:"files"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Gist{}, fmt.Errorf("decode gist: %w", err)
	}
	if wire.ID == "" {
		return Gist{}, fmt.Errorf("decode gist: missing id")
	}

	gist := wire.Gist
	gist.Files = make([]GistFile, 0, len(wire.Files))
	for filename, file := range wire.Files {
		if file.Filename == "" {
			file.Filename = filename
		}
		gist.Files = append(gist.Files, file)
	}
	// Map iteration order is random; keep file lists deterministic.
	sort.Slice(gist.Files, func(i, j int) bool {
		return gist.Files[i].Filename < gist.Files[j].Filename
	})
	return gist, nil
}
