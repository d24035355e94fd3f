package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/hubdeck/hubdeck/pkg/cache"
	"github.com/hubdeck/hubdeck/pkg/github"
	"github.com/hubdeck/hubdeck/pkg/logging"
	"github.com/hubdeck/hubdeck/pkg/models"
	"github.com/hubdeck/hubdeck/pkg/ratelimit"
)

// Profile is the user's profile view: account data plus the follower and
// following lists.
type Profile struct {
	User      models.User   `json:"user"`
	Followers []models.User `json:"followers"`
	Following []models.User `json:"following"`
	DebugInfo DebugInfo     `json:"debug_info"`
}

const (
	// followListPerPage is the page size for follower/following fetches.
	followListPerPage = 100

	// followListMaxPages caps the follower/following pagination.
	followListMaxPages = 10
)

// ProfileService serves the cached profile view and handles session
// teardown.
type ProfileService struct {
	store  cache.Store
	gate   *ratelimit.Gate
	client *github.Client
	logger zerolog.Logger
}

// NewProfileService creates the profile service.
func NewProfileService(store cache.Store, gate *ratelimit.Gate, client *github.Client) *ProfileService {
	return &ProfileService{
		store:  store,
		gate:   gate,
		client: client,
		logger: logging.NewLogger("profile"),
	}
}

// Profile returns the user's profile, followers, and following, each
// cached independently. Follower and following lists degrade to empty on
// fetch failure; only a failed profile fetch fails the request.
func (s *ProfileService) Profile(ctx context.Context, id Identity) (*Profile, error) {
	start := time.Now()

	if !s.gate.Allow(ctx, id.Token, id.UserID, ratelimit.ThresholdProfile) {
		return nil, ErrRateLimited
	}

	fetchStart := time.Now()
	hit := true

	user, err := cachedFetch(ctx, s, cache.PrefixProfile, id.UserID, &hit, func() (models.User, error) {
		return s.client.AuthenticatedUser(ctx, id.Token)
	})
	if err != nil {
		return nil, err
	}

	followers, err := cachedFetch(ctx, s, cache.PrefixFollowers, id.UserID, &hit, func() ([]models.User, error) {
		return s.followList(ctx, id.Token, s.client.Followers)
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", id.UserID).Msg("Follower list unavailable - serving empty")
		followers = []models.User{}
	}

	following, err := cachedFetch(ctx, s, cache.PrefixFollowing, id.UserID, &hit, func() ([]models.User, error) {
		return s.followList(ctx, id.Token, s.client.Following)
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", id.UserID).Msg("Following list unavailable - serving empty")
		following = []models.User{}
	}

	return &Profile{
		User:      user,
		Followers: followers,
		Following: following,
		DebugInfo: DebugInfo{
			ProcessingTime: time.Since(start).Seconds(),
			FetchTime:      time.Since(fetchStart).Seconds(),
			ItemsTotal:     len(followers) + len(following),
			ItemsReturned:  len(followers) + len(following),
			CacheHit:       hit,
		},
	}, nil
}

// Logout drops the user's session resolution and all cached data.
func (s *ProfileService) Logout(ctx context.Context, id Identity) error {
	if err := s.store.Delete(ctx, cache.SessionKey(id.Token)); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", id.UserID).Msg("Session key delete failed")
	}
	return cache.InvalidateUser(ctx, s.store, id.UserID)
}

// followList pages through a follower-style listing until a short page or
// the page cap.
func (s *ProfileService) followList(ctx context.Context, token string, fetch func(ctx context.Context, token string, page, perPage int) ([]models.User, error)) ([]models.User, error) {
	users := []models.User{}
	for page := 1; page <= followListMaxPages; page++ {
		batch, err := fetch(ctx, token, page, followListPerPage)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			// Partial list beats none.
			s.logger.Warn().Err(err).Int("page", page).Msg("Follow list page failed - keeping partial list")
			break
		}
		users = append(users, batch...)
		if len(batch) < followListPerPage {
			break
		}
	}
	return users, nil
}

// cachedFetch is cache-aside for one profile data family: cached value
// when present and decodable, otherwise fetch and cache best-effort. On a
// fetch it clears *hit so the caller can report a cold response.
func cachedFetch[T any](ctx context.Context, s *ProfileService, prefix string, userID int64, hit *bool, fetch func() (T, error)) (T, error) {
	key := cache.UserKey(prefix, userID)

	if data, err := s.store.Get(ctx, key); err == nil {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			return value, nil
		}
		s.logger.Warn().Str("key", key).Msg("Discarding corrupt cache entry")
	} else if err != cache.ErrMiss {
		s.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed - treating as miss")
	}

	*hit = false
	value, err := fetch()
	if err != nil {
		return value, err
	}

	if data, err := json.Marshal(value); err == nil {
		if err := s.store.Set(ctx, key, data, cache.TTLProfile); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed - serving uncached")
		}
	}
	return value, nil
}
