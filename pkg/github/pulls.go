package github

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/hubdeck/hubdeck/pkg/models"
)

// FetchPRPage fetches a single page of the authenticated user's pull
// requests through the issues API (the only listing that spans all
// repositories). Issue records without a pull_request field are dropped.
func (c *Client) FetchPRPage(ctx context.Context, token string, page, perPage int) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("filter", "all")
	query.Set("state", "all")
	query.Set("pulls", "true")
	query.Set("sort", "updated")
	query.Set("direction", "desc")

	items, err := c.getPage(ctx, token, "/user/issues", query, page, perPage)
	if err != nil {
		c.logger.Warn().Err(err).Int("page", page).Msg("Pull request page fetch failed")
		return nil, err
	}

	prs := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		if models.DetailURL(item) != "" {
			prs = append(prs, item)
		}
	}

	c.logger.Debug().Int("page", page).Int("items", len(prs)).Msg("Fetched pull request page")
	return prs, nil
}

// PRCount returns the user's total pull request count via the search API.
// Returns 0 on failure.
func (c *Client) PRCount(ctx context.Context, token string) int {
	user, err := c.AuthenticatedUser(ctx, token)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to resolve user for PR count")
		return 0
	}

	query := url.Values{}
	query.Set("q", "author:"+user.Login+" type:pr")
	query.Set("per_page", "1")

	body, err := c.get(ctx, token, "/search/issues", query)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to get total PR count")
		return 0
	}

	var result struct {
		TotalCount int `json:"total_count"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		c.logger.Warn().Err(err).Msg("Malformed PR search response")
		return 0
	}
	return result.TotalCount
}

// Detail enrichment limits: only the first detailLimit records are
// enriched, in small batches with a pause between them, to stay gentle on
// the upstream call budget.
const (
	detailLimit     = 100
	detailBatchSize = 20
	detailWorkers   = 5
	detailBatchWait = 500 * time.Millisecond
)

// EnrichPRDetails fills stats (additions, deletions, branches, reviewers)
// into the first records of a merged pull request set. A failed detail
// fetch leaves that record's summary form intact; records beyond the
// limit pass through unenriched.
func (c *Client) EnrichPRDetails(ctx context.Context, token string, raws []json.RawMessage) []json.RawMessage {
	limit := detailLimit
	if len(raws) < limit {
		limit = len(raws)
	}

	enriched := make([]json.RawMessage, len(raws))
	copy(enriched, raws)

	for offset := 0; offset < limit; offset += detailBatchSize {
		end := offset + detailBatchSize
		if end > limit {
			end = limit
		}

		var wg sync.WaitGroup
		sem := make(chan struct{}, detailWorkers)
		for i := offset; i < end; i++ {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				enriched[i] = c.FetchPRDetails(ctx, token, enriched[i])
			}(i)
		}
		wg.Wait()

		if end < limit {
			select {
			case <-ctx.Done():
				return enriched
			case <-time.After(detailBatchWait):
			}
		}
	}

	c.logger.Debug().Int("enriched", limit).Int("total", len(raws)).Msg("PR detail enrichment complete")
	return enriched
}

// detailFields are the stats merged from the pull request detail payload
// into the summary record.
var detailFields = []string{
	"additions", "deletions", "changed_files", "commits",
	"mergeable_state", "merged_by", "draft", "base", "head",
	"requested_reviewers", "assignees", "review_comments",
}

// FetchPRDetails enriches a summary pull request record with stats from
// its detail endpoint. Failure leaves the summary record intact.
func (c *Client) FetchPRDetails(ctx context.Context, token string, raw json.RawMessage) json.RawMessage {
	detailURL := models.DetailURL(raw)
	if detailURL == "" {
		return raw
	}

	detailCtx, cancel := context.WithTimeout(ctx, c.config.DetailTimeout)
	defer cancel()

	// The detail URL is absolute; reissue it against the configured
	// origin so the request goes through the same instrumented path.
	parsed, err := url.Parse(detailURL)
	if err != nil {
		return raw
	}

	body, err := c.get(detailCtx, token, parsed.Path, nil)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", detailURL).Msg("PR detail fetch failed")
		return raw
	}

	var summary, detail map[string]json.RawMessage
	if err := json.Unmarshal(raw, &summary); err != nil {
		return raw
	}
	if err := json.Unmarshal(body, &detail); err != nil {
		c.logger.Warn().Err(err).Str("url", detailURL).Msg("Malformed PR detail body")
		return raw
	}

	for _, field := range detailFields {
		if value, ok := detail[field]; ok {
			summary[field] = value
		}
	}

	merged, err := json.Marshal(summary)
	if err != nil {
		return raw
	}
	return merged
}
