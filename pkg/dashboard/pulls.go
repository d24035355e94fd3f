package dashboard

import (
	"strconv"
	"strings"

	"github.com/hubdeck/hubdeck/pkg/cache"
	"github.com/hubdeck/hubdeck/pkg/collector"
	"github.com/hubdeck/hubdeck/pkg/github"
	"github.com/hubdeck/hubdeck/pkg/models"
	"github.com/hubdeck/hubdeck/pkg/query"
	"github.com/hubdeck/hubdeck/pkg/ratelimit"
)

// pullPipeline defines the searchable fields and sort keys for pull
// requests. Stat keys (commits, additions, deletions) sort on enrichment
// data and treat unenriched records as zero.
func pullPipeline() *query.Pipeline[models.PullRequest] {
	byCreated := func(a, b models.PullRequest) bool { return a.CreatedAt < b.CreatedAt }
	byUpdated := func(a, b models.PullRequest) bool { return a.UpdatedAt < b.UpdatedAt }
	repoName := func(pr models.PullRequest) string {
		if pr.Repository == nil {
			return ""
		}
		return pr.Repository.FullName
	}

	return &query.Pipeline[models.PullRequest]{
		SearchFields: []func(models.PullRequest) string{
			func(pr models.PullRequest) string { return pr.Title },
			func(pr models.PullRequest) string { return pr.Body },
			func(pr models.PullRequest) string { return pr.User.Login },
			repoName,
			func(pr models.PullRequest) string { return strconv.Itoa(pr.Number) },
		},
		Sorts: map[string]query.LessFunc[models.PullRequest]{
			"title": func(a, b models.PullRequest) bool {
				return strings.ToLower(a.Title) < strings.ToLower(b.Title)
			},
			"number": func(a, b models.PullRequest) bool { return a.Number < b.Number },
			"state":  func(a, b models.PullRequest) bool { return a.State < b.State },
			"author": func(a, b models.PullRequest) bool {
				return strings.ToLower(a.User.Login) < strings.ToLower(b.User.Login)
			},
			"repository": func(a, b models.PullRequest) bool {
				return strings.ToLower(repoName(a)) < strings.ToLower(repoName(b))
			},
			"comments":   func(a, b models.PullRequest) bool { return a.Comments < b.Comments },
			"commits":    func(a, b models.PullRequest) bool { return a.Commits < b.Commits },
			"additions":  func(a, b models.PullRequest) bool { return a.Additions < b.Additions },
			"deletions":  func(a, b models.PullRequest) bool { return a.Deletions < b.Deletions },
			"created":    byCreated,
			"created_at": byCreated,
			"updated":    byUpdated,
			"updated_at": byUpdated,
		},
		DefaultSort: "updated",
	}
}

// NewPullRequests builds the pull request aggregation service. Merged
// records are enriched with per-PR detail stats before conversion.
func NewPullRequests(store cache.Store, gate *ratelimit.Gate, client *github.Client, colCfg collector.Config) *Collection[models.PullRequest] {
	return NewCollection(CollectionConfig[models.PullRequest]{
		Kind:      "pull_requests",
		Prefix:    cache.PrefixPullRequests,
		Threshold: ratelimit.ThresholdPullRequests,
		Store:     store,
		Allow:     gate.Allow,
		Count:     client.PRCount,
		Fetch:     client.FetchPRPage,
		Enrich:    client.EnrichPRDetails,
		Convert:   models.PullRequestFromAPI,
		Pipeline:  pullPipeline(),
		Collector: colCfg,
	})
}
