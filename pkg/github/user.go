package github

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/hubdeck/hubdeck/pkg/models"
)

// AuthenticatedUser resolves the account behind a bearer credential.
func (c *Client) AuthenticatedUser(ctx context.Context, token string) (models.User, error) {
	body, err := c.get(ctx, token, "/user", nil)
	if err != nil {
		return models.User{}, err
	}
	return models.UserFromAPI(body)
}

// Followers fetches one page of the authenticated user's followers.
func (c *Client) Followers(ctx context.Context, token string, page, perPage int) ([]models.User, error) {
	return c.userList(ctx, token, "/user/followers", page, perPage)
}

// Following fetches one page of the accounts the user follows.
func (c *Client) Following(ctx context.Context, token string, page, perPage int) ([]models.User, error) {
	return c.userList(ctx, token, "/user/following", page, perPage)
}

func (c *Client) userList(ctx context.Context, token, path string, page, perPage int) ([]models.User, error) {
	items, err := c.getPage(ctx, token, path, nil, page, perPage)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", path).Msg("User list fetch failed")
		return nil, err
	}

	users := make([]models.User, 0, len(items))
	for _, item := range items {
		user, err := models.UserFromAPI(item)
		if err != nil {
			c.logger.Warn().Err(err).Str("endpoint", path).Msg("Dropping malformed user record")
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// RateLimit fetches the core rate limit budget from GET /rate_limit.
func (c *Client) RateLimit(ctx context.Context, token string) (models.RateLimitStatus, error) {
	body, err := c.get(ctx, token, "/rate_limit", url.Values{})
	if err != nil {
		return models.RateLimitStatus{}, err
	}

	var wire struct {
		Resources struct {
			Core models.RateLimitStatus `json:"core"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		apiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return models.RateLimitStatus{}, &APIError{Class: ErrorClassDecode, Message: "malformed rate limit body", Err: err}
	}
	return wire.Resources.Core, nil
}
