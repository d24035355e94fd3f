package github

import (
	"context"
	"encoding/json"
	"net/url"
)

// FetchRepoPage fetches a single page of the authenticated user's
// repositories. On any failure it logs and returns the error; the caller
// drops the page and carries on with the rest.
func (c *Client) FetchRepoPage(ctx context.Context, token string, page, perPage int) ([]json.RawMessage, error) {
	query := url.Values{}
	query.Set("visibility", "all")
	query.Set("sort", "updated")

	items, err := c.getPage(ctx, token, "/user/repos", query, page, perPage)
	if err != nil {
		c.logger.Warn().Err(err).Int("page", page).Msg("Repository page fetch failed")
		return nil, err
	}

	c.logger.Debug().Int("page", page).Int("items", len(items)).Msg("Fetched repository page")
	return items, nil
}

// RepoCount estimates the authenticated user's total repository count
// (public plus owned private). Returns 0 on failure; the collector treats
// an unknown total as a single-page fetch.
func (c *Client) RepoCount(ctx context.Context, token string) int {
	user, err := c.AuthenticatedUser(ctx, token)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to get total repo count")
		return 0
	}
	return user.PublicRepos + user.TotalPrivateRepos
}
