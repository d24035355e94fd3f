package github

import (
	"context"
	"encoding/json"
)

// FetchGistPage fetches a single page of the authenticated user's gists.
func (c *Client) FetchGistPage(ctx context.Context, token string, page, perPage int) ([]json.RawMessage, error) {
	items, err := c.getPage(ctx, token, "/gists", nil, page, perPage)
	if err != nil {
		c.logger.Warn().Err(err).Int("page", page).Msg("Gist page fetch failed")
		return nil, err
	}

	c.logger.Debug().Int("page", page).Int("items", len(items)).Msg("Fetched gist page")
	return items, nil
}

// GistCount estimates the authenticated user's total gist count.
// Returns 0 on failure.
func (c *Client) GistCount(ctx context.Context, token string) int {
	user, err := c.AuthenticatedUser(ctx, token)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to get total gist count")
		return 0
	}
	return user.PublicGists + user.PrivateGists
}
