package dashboard

import (
	"strings"

	"github.com/hubdeck/hubdeck/pkg/cache"
	"github.com/hubdeck/hubdeck/pkg/collector"
	"github.com/hubdeck/hubdeck/pkg/github"
	"github.com/hubdeck/hubdeck/pkg/models"
	"github.com/hubdeck/hubdeck/pkg/query"
	"github.com/hubdeck/hubdeck/pkg/ratelimit"
)

// gistPipeline defines the searchable fields and sort keys for gists.
// Search matches the description plus every filename and language in the
// gist's file set.
func gistPipeline() *query.Pipeline[models.Gist] {
	byCreated := func(a, b models.Gist) bool { return a.CreatedAt < b.CreatedAt }
	byUpdated := func(a, b models.Gist) bool { return a.UpdatedAt < b.UpdatedAt }

	return &query.Pipeline[models.Gist]{
		SearchFields: []func(models.Gist) string{
			func(g models.Gist) string { return g.Description },
			func(g models.Gist) string {
				names := make([]string, 0, len(g.Files))
				for _, f := range g.Files {
					names = append(names, f.Filename)
				}
				return strings.Join(names, " ")
			},
			func(g models.Gist) string {
				langs := make([]string, 0, len(g.Files))
				for _, f := range g.Files {
					langs = append(langs, f.Language)
				}
				return strings.Join(langs, " ")
			},
		},
		Sorts: map[string]query.LessFunc[models.Gist]{
			"description": func(a, b models.Gist) bool {
				return strings.ToLower(a.Description) < strings.ToLower(b.Description)
			},
			"comments": func(a, b models.Gist) bool { return a.Comments < b.Comments },
			"files":    func(a, b models.Gist) bool { return a.FileCount() < b.FileCount() },
			"public": func(a, b models.Gist) bool {
				return !a.Public && b.Public
			},
			"created":    byCreated,
			"created_at": byCreated,
			"updated":    byUpdated,
			"updated_at": byUpdated,
		},
		DefaultSort: "updated",
	}
}

// NewGists builds the gist aggregation service.
func NewGists(store cache.Store, gate *ratelimit.Gate, client *github.Client, colCfg collector.Config) *Collection[models.Gist] {
	return NewCollection(CollectionConfig[models.Gist]{
		Kind:      "gists",
		Prefix:    cache.PrefixGists,
		Threshold: ratelimit.ThresholdGists,
		Store:     store,
		Allow:     gate.Allow,
		Count:     client.GistCount,
		Fetch:     client.FetchGistPage,
		Convert:   models.GistFromAPI,
		Pipeline:  gistPipeline(),
		Collector: colCfg,
	})
}
