package dashboard

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/hubdeck/hubdeck/pkg/cache"
	"github.com/hubdeck/hubdeck/pkg/github"
	"github.com/hubdeck/hubdeck/pkg/logging"
)

// Authenticator resolves bearer credentials to dashboard identities,
// caching resolutions briefly so every request does not cost an upstream
// call.
type Authenticator struct {
	store  cache.Store
	client *github.Client
	logger zerolog.Logger
}

// NewAuthenticator creates the credential resolver.
func NewAuthenticator(store cache.Store, client *github.Client) *Authenticator {
	return &Authenticator{
		store:  store,
		client: client,
		logger: logging.NewLogger("auth"),
	}
}

// sessionRecord is the cached token resolution. The token itself is never
// stored; the key carries only its digest.
type sessionRecord struct {
	UserID int64  `json:"user_id"`
	Login  string `json:"login"`
}

// Resolve maps a bearer token to its identity. Resolution is cached under
// the token digest for cache.TTLSession; a miss costs one upstream call.
// An invalid or revoked token returns the upstream error.
func (a *Authenticator) Resolve(ctx context.Context, token string) (Identity, error) {
	key := cache.SessionKey(token)

	if data, err := a.store.Get(ctx, key); err == nil {
		var record sessionRecord
		if err := json.Unmarshal(data, &record); err == nil && record.UserID != 0 {
			return Identity{UserID: record.UserID, Login: record.Login, Token: token}, nil
		}
	} else if err != cache.ErrMiss {
		a.logger.Warn().Err(err).Msg("Session cache read failed - resolving upstream")
	}

	user, err := a.client.AuthenticatedUser(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	if data, err := json.Marshal(sessionRecord{UserID: user.ID, Login: user.Login}); err == nil {
		if err := a.store.Set(ctx, key, data, cache.TTLSession); err != nil {
			a.logger.Warn().Err(err).Msg("Session cache write failed")
		}
	}

	a.logger.Debug().Int64("user_id", user.ID).Str("login", user.Login).Msg("Session resolved")
	return Identity{UserID: user.ID, Login: user.Login, Token: token}, nil
}
