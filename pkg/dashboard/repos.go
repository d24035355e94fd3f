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

// repoPipeline defines the searchable fields and sort keys for
// repositories. Column header aliases map to the same comparators as
// their canonical API names.
func repoPipeline() *query.Pipeline[models.Repository] {
	byName := func(a, b models.Repository) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	byLanguage := func(a, b models.Repository) bool { return strings.ToLower(a.Language) < strings.ToLower(b.Language) }
	byStars := func(a, b models.Repository) bool { return a.Stars < b.Stars }
	byForks := func(a, b models.Repository) bool { return a.Forks < b.Forks }
	bySize := func(a, b models.Repository) bool { return a.Size < b.Size }
	byCreated := func(a, b models.Repository) bool { return a.CreatedAt < b.CreatedAt }
	byUpdated := func(a, b models.Repository) bool { return a.UpdatedAt < b.UpdatedAt }
	byPushed := func(a, b models.Repository) bool { return a.PushedAt < b.PushedAt }

	return &query.Pipeline[models.Repository]{
		SearchFields: []func(models.Repository) string{
			func(r models.Repository) string { return r.Name },
			func(r models.Repository) string { return r.FullName },
			func(r models.Repository) string { return r.Description },
			func(r models.Repository) string { return r.Language },
			func(r models.Repository) string { return strings.Join(r.Topics, " ") },
		},
		Sorts: map[string]query.LessFunc[models.Repository]{
			"name":             byName,
			"full_name":        byName,
			"language":         byLanguage,
			"stars":            byStars,
			"stargazers_count": byStars,
			"forks":            byForks,
			"forks_count":      byForks,
			"size":             bySize,
			"created":          byCreated,
			"created_at":       byCreated,
			"updated":          byUpdated,
			"updated_at":       byUpdated,
			"pushed":           byPushed,
			"pushed_at":        byPushed,
		},
		DefaultSort: "updated",
	}
}

// NewRepositories builds the repository aggregation service.
func NewRepositories(store cache.Store, gate *ratelimit.Gate, client *github.Client, colCfg collector.Config) *Collection[models.Repository] {
	return NewCollection(CollectionConfig[models.Repository]{
		Kind:      "repositories",
		Prefix:    cache.PrefixRepositories,
		Threshold: ratelimit.ThresholdRepositories,
		Store:     store,
		Allow:     gate.Allow,
		Count:     client.RepoCount,
		Fetch:     client.FetchRepoPage,
		Convert:   models.RepositoryFromAPI,
		Pipeline:  repoPipeline(),
		Collector: colCfg,
	})
}