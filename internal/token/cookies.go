package token

import "net/http"

// ReadAccessToken returns the access token cookie value, if present.
func (g *Guard) ReadAccessToken(r *http.Request) (string, bool) {
	return readCookie(r, g.session.AccessCookieName)
}

// ReadRefreshToken returns the refresh token cookie value, if present.
func (g *Guard) ReadRefreshToken(r *http.Request) (string, bool) {
	return readCookie(r, g.session.RefreshCookieName)
}

func readCookie(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// SetSessionCookies writes the new pair onto the outgoing response. The
// refresh cookie is only replaced when the upstream rotated it.
func (g *Guard) SetSessionCookies(w http.ResponseWriter, pair *Pair) {
	http.SetCookie(w, &http.Cookie{
		Name:     g.session.AccessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		Domain:   g.session.CookieDomain,
		MaxAge:   int(g.session.AccessCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   g.session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if pair.RefreshToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     g.session.RefreshCookieName,
			Value:    pair.RefreshToken,
			Path:     "/",
			Domain:   g.session.CookieDomain,
			MaxAge:   int(g.session.RefreshCookieTTL.Seconds()),
			HttpOnly: true,
			Secure:   g.session.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ClearSessionCookies expires both cookies, used on logout and nowhere else.
func (g *Guard) ClearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{g.session.AccessCookieName, g.session.RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   g.session.CookieDomain,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   g.session.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
