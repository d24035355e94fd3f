package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/hubdeck/hubdeck/pkg/cache"
	"github.com/hubdeck/hubdeck/pkg/dashboard"
	"github.com/hubdeck/hubdeck/pkg/models"
	"github.com/hubdeck/hubdeck/pkg/query"
)

// handleCollection serves one resource kind's filtered, sorted, paginated
// view.
func handleCollection[T any](svc *dashboard.Collection[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		result, err := svc.Query(r.Context(), id, queryParams(r))
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

func handleProfile(svc *dashboard.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		profile, err := svc.Profile(r.Context(), id)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, profile)
	}
}

// handleUser returns the identity behind the request's credential without
// any upstream fetch beyond session resolution.
func handleUser(svc *dashboard.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"user_id": id.UserID,
			"login":   id.Login,
		})
	}
}

func handleRateLimit(status func(ctx context.Context, token string) (models.RateLimitStatus, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		s, err := status(r.Context(), id.Token)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, s)
	}
}

func handleLogout(svc *dashboard.ProfileService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		if err := svc.Logout(r.Context(), id); err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

// handleCacheClear drops the calling user's cached data. An optional
// prefix parameter limits the clear to one data family.
func handleCacheClear(store cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		var prefixes []string
		if prefix := r.URL.Query().Get("prefix"); prefix != "" {
			prefixes = append(prefixes, prefix)
		}

		if err := cache.InvalidateUser(r.Context(), store, id.UserID, prefixes...); err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "cache cleared"})
	}
}

// handleCacheClearAll drops every key in the known prefix namespaces.
func handleCacheClearAll(store cache.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Clear(r.Context()); err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "cache cleared"})
	}
}

// queryParams extracts the collection query parameters. Out-of-range
// values are normalized downstream; absent numbers default here.
func queryParams(r *http.Request) query.Params {
	q := r.URL.Query()
	return query.Params{
		Search:             q.Get("search"),
		Sort:               q.Get("sort"),
		TableSort:          q.Get("table_sort"),
		TableSortDirection: q.Get("table_sort_direction"),
		Page:               intParam(q.Get("page"), 1),
		PerPage:            intParam(q.Get("per_page"), 30),
	}
}

func intParam(value string, def int) int {
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

// respondServiceError maps service errors to HTTP statuses: a blocked
// rate limit gate is 429, everything else is a 500 with a generic body.
func respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, dashboard.ErrRateLimited) {
		respondError(w, http.StatusTooManyRequests, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "Failed to fetch data")
}
