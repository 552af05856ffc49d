package modules

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fleetora/admin-gateway/internal/upstream"
)

// PermissionMap maps a module key to the caller's flags for it.
type PermissionMap map[string]PermissionSet

// PermissionStore caches the caller's module permissions for a short TTL.
// The fallback policy is deliberately fail-open: if the permission fetch
// fails or comes back empty, every module grants all flags. The original
// back-office behaves this way and navigation gating is not a security
// boundary; the upstream re-checks every mutation.
type PermissionStore struct {
	upstream *upstream.Client
	cache    *gocache.Cache
	logger   *slog.Logger
}

func NewPermissionStore(client *upstream.Client, ttl time.Duration, logger *slog.Logger) *PermissionStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PermissionStore{
		upstream: client,
		cache:    gocache.New(ttl, time.Minute),
		logger:   logger,
	}
}

// Get returns the module permissions for the given token, serving from
// cache when fresh.
func (s *PermissionStore) Get(ctx context.Context, accessToken string) PermissionMap {
	key := cacheKey(accessToken)
	if v, ok := s.cache.Get(key); ok {
		if perms, ok := v.(PermissionMap); ok {
			return perms
		}
	}

	perms := s.fetch(ctx, accessToken)
	s.cache.Set(key, perms, gocache.DefaultExpiration)
	return perms
}

// Invalidate drops the cached entry for a token, used on logout.
func (s *PermissionStore) Invalidate(accessToken string) {
	s.cache.Delete(cacheKey(accessToken))
}

func (s *PermissionStore) fetch(ctx context.Context, accessToken string) PermissionMap {
	status, body, err := s.upstream.ForwardRaw(ctx, upstream.ForwardRequest{
		Method: http.MethodGet,
		Path:   "/admin/permissions/me",
		Token:  accessToken,
	})
	if err != nil || status < 200 || status >= 300 {
		s.logger.Warn("permission fetch failed, granting all module permissions",
			"status", status,
			"error", err)
		return failOpen()
	}

	var fetched PermissionMap
	if err := json.Unmarshal(body, &fetched); err != nil {
		// tolerate the {data: {...}} wrapper too
		var wrapped struct {
			Data PermissionMap `json:"data"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil || wrapped.Data == nil {
			s.logger.Warn("permission body unparseable, granting all module permissions", "error", err)
			return failOpen()
		}
		fetched = wrapped.Data
	}

	if len(fetched) == 0 {
		s.logger.Warn("permission fetch returned empty set, granting all module permissions")
		return failOpen()
	}

	return fetched
}

func failOpen() PermissionMap {
	perms := make(PermissionMap, len(ActiveModules))
	for _, m := range ActiveModules {
		perms[m.Key] = AllGranted
	}
	return perms
}

// cacheKey hashes the token so raw credentials never sit in cache keys.
func cacheKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:])
}
