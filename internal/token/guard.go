package token

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/upstream"
)

// Pair is the session token pair held in cookies. The refresh token is
// optional: the upstream does not always rotate it.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Guard decides per request whether the caller is authenticated,
// transparently refreshing the access token at most once.
type Guard struct {
	upstream *upstream.Client
	session  internal.SessionConfig
	logger   *slog.Logger

	// Concurrent requests racing on the same expired token share one
	// upstream refresh call instead of each issuing their own.
	refreshGroup singleflight.Group
}

func NewGuard(client *upstream.Client, session internal.SessionConfig, logger *slog.Logger) *Guard {
	return &Guard{
		upstream: client,
		session:  session,
		logger:   logger,
	}
}

// IsAuthenticatedServer reports whether the access token is accepted by
// the upstream identity check. Any transport error or non-2xx response
// counts as unauthenticated; this never returns an error to the caller.
func (g *Guard) IsAuthenticatedServer(ctx context.Context, accessToken string) bool {
	if accessToken == "" {
		return false
	}

	// A token whose exp claim is already past cannot be accepted upstream,
	// so skip the round-trip.
	if locallyExpired(accessToken) {
		return false
	}

	status, _, err := g.upstream.ForwardRaw(ctx, upstream.ForwardRequest{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Token:  accessToken,
	})
	if err != nil {
		g.logger.Warn("identity check failed", "error", err)
		return false
	}

	return status >= 200 && status < 300
}

// locallyExpired parses the JWT without verifying its signature, purely to
// read the exp claim. Tokens that do not parse are left for the upstream
// to judge.
func locallyExpired(tokenString string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Before(time.Now())
}

// RefreshAccessToken performs a single refresh against the upstream.
// Concurrent calls holding the same refresh token are coalesced through
// singleflight; every waiter receives the same new pair.
func (g *Guard) RefreshAccessToken(ctx context.Context, refreshToken string) (*Pair, error) {
	if refreshToken == "" {
		return nil, internal.ErrMissingToken
	}

	v, err, _ := g.refreshGroup.Do(refreshToken, func() (interface{}, error) {
		return g.refresh(ctx, refreshToken)
	})
	if err != nil {
		return nil, err
	}

	return v.(*Pair), nil
}

func (g *Guard) refresh(ctx context.Context, refreshToken string) (*Pair, error) {
	body, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return nil, internal.NewInternalError("failed to build refresh request", err)
	}

	status, respBody, err := g.upstream.ForwardRaw(ctx, upstream.ForwardRequest{
		Method: http.MethodPost,
		Path:   "/auth/refresh",
		Body:   body,
	})
	if err != nil {
		g.logger.Warn("token refresh transport failure", "error", err)
		return nil, internal.ErrRefreshFailed
	}

	if status < 200 || status >= 300 {
		g.logger.Info("token refresh rejected by upstream", "status", status)
		return nil, internal.ErrRefreshFailed
	}

	pair, err := decodePair(respBody)
	if err != nil {
		g.logger.Error("token refresh returned unparseable body", "error", err)
		return nil, internal.ErrRefreshFailed
	}

	return pair, nil
}

// decodePair tolerates both a bare token object and one wrapped in a
// data field, mirroring the upstream's inconsistent envelopes.
func decodePair(body []byte) (*Pair, error) {
	var wrapped struct {
		Data *Pair `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil && wrapped.Data.AccessToken != "" {
		return wrapped.Data, nil
	}

	var pair Pair
	if err := json.Unmarshal(body, &pair); err != nil {
		return nil, err
	}
	if pair.AccessToken == "" {
		return nil, internal.ErrRefreshFailed
	}

	return &pair, nil
}
