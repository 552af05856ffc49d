package token

import (
	"encoding/json"
	"net/http"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/transport"
)

// Middleware enforces the per-request authentication policy:
//
//  1. no access token (cookie or bearer header): reject, the upstream is
//     never called;
//  2. token present and valid: proceed;
//  3. token invalid: attempt exactly one refresh; on success the new
//     cookies are set on the response and the request proceeds with the
//     new token, on failure the request is rejected.
//
// The inbound request is never mutated; the resolved token travels in
// the request context.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accessToken, ok := g.ReadAccessToken(r)
		if !ok {
			accessToken = transport.ExtractTokenFromHeader(r)
		}
		if accessToken == "" {
			g.reject(w, internal.ErrMissingToken)
			return
		}

		if g.IsAuthenticatedServer(r.Context(), accessToken) {
			next.ServeHTTP(w, r.WithContext(internal.ContextWithToken(r.Context(), accessToken)))
			return
		}

		refreshToken, ok := g.ReadRefreshToken(r)
		if !ok {
			g.reject(w, internal.ErrInvalidToken)
			return
		}

		pair, err := g.RefreshAccessToken(r.Context(), refreshToken)
		if err != nil {
			if appErr, ok := internal.IsAppError(err); ok {
				g.reject(w, appErr)
			} else {
				g.reject(w, internal.ErrRefreshFailed)
			}
			return
		}

		g.SetSessionCookies(w, pair)
		next.ServeHTTP(w, r.WithContext(internal.ContextWithToken(r.Context(), pair.AccessToken)))
	})
}

func (g *Guard) reject(w http.ResponseWriter, appErr *internal.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	resp := map[string]interface{}{
		"status":  appErr.StatusCode,
		"message": appErr.Message,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		g.logger.Error("failed to encode auth error response", "error", err)
	}
}
