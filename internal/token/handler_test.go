package token

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/upstream"
)

var _ = Describe("Handler", func() {
	var (
		mu          sync.Mutex
		loginStatus int
		loginBody   string
		logoutCalls int
		logoutAuth  string
		server      *httptest.Server
		handler     *Handler
	)

	BeforeEach(func() {
		loginStatus = http.StatusOK
		loginBody = `{"access_token":"session-access","refresh_token":"session-refresh"}`
		logoutCalls = 0
		logoutAuth = ""

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/auth/login":
				mu.Lock()
				s, b := loginStatus, loginBody
				mu.Unlock()
				if s != http.StatusOK {
					w.WriteHeader(s)
				}
				w.Write([]byte(b))
			case "/auth/logout":
				mu.Lock()
				logoutCalls++
				logoutAuth = r.Header.Get("Authorization")
				mu.Unlock()
				w.WriteHeader(http.StatusNoContent)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))

		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		client := upstream.NewClient(upstream.Config{BaseURL: server.URL, Timeout: 2 * time.Second}, slogger)
		session := internal.SessionConfig{
			AccessCookieName:  "access_token",
			RefreshCookieName: "refresh_token",
			AccessCookieTTL:   15 * time.Minute,
			RefreshCookieTTL:  7 * 24 * time.Hour,
		}
		guard := NewGuard(client, session, slogger)
		handler = NewHandler(guard, client)
	})

	AfterEach(func() {
		server.Close()
	})

	loginRequest := func(body string) *http.Request {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		return httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", reader)
	}

	Describe("Login", func() {
		It("sets the session cookie pair on success", func() {
			rec := httptest.NewRecorder()
			handler.Login(rec, loginRequest(`{"email":"admin@example.com","password":"secret"}`))

			Expect(rec.Code).To(Equal(http.StatusOK))

			cookies := map[string]string{}
			for _, c := range rec.Result().Cookies() {
				cookies[c.Name] = c.Value
			}
			Expect(cookies).To(HaveKeyWithValue("access_token", "session-access"))
			Expect(cookies).To(HaveKeyWithValue("refresh_token", "session-refresh"))

			var env upstream.Envelope
			Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())
			Expect(env.Status).To(Equal(http.StatusOK))
		})

		It("marks session cookies HttpOnly", func() {
			rec := httptest.NewRecorder()
			handler.Login(rec, loginRequest(`{"email":"a@b.c","password":"x"}`))

			for _, c := range rec.Result().Cookies() {
				Expect(c.HttpOnly).To(BeTrue(), c.Name)
			}
		})

		It("maps upstream rejection to invalid credentials without cookies", func() {
			mu.Lock()
			loginStatus = http.StatusUnauthorized
			loginBody = `{"message":"bad password"}`
			mu.Unlock()

			rec := httptest.NewRecorder()
			handler.Login(rec, loginRequest(`{"email":"a@b.c","password":"wrong"}`))

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Result().Cookies()).To(BeEmpty())

			var env upstream.Envelope
			Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())
			Expect(env.Message).To(Equal("invalid credentials"))
		})

		It("treats an unparseable token body as an internal error", func() {
			mu.Lock()
			loginBody = `<html>oops</html>`
			mu.Unlock()

			rec := httptest.NewRecorder()
			handler.Login(rec, loginRequest(`{"email":"a@b.c","password":"x"}`))

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Result().Cookies()).To(BeEmpty())
		})
	})

	Describe("Logout", func() {
		It("notifies the upstream and expires both cookies", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
			req.AddCookie(&http.Cookie{Name: "access_token", Value: "current"})
			rec := httptest.NewRecorder()

			handler.Logout(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			mu.Lock()
			Expect(logoutCalls).To(Equal(1))
			Expect(logoutAuth).To(Equal("Bearer current"))
			mu.Unlock()

			expired := map[string]bool{}
			for _, c := range rec.Result().Cookies() {
				expired[c.Name] = c.MaxAge < 0
			}
			Expect(expired).To(HaveKeyWithValue("access_token", true))
			Expect(expired).To(HaveKeyWithValue("refresh_token", true))
		})

		It("clears cookies even without a session", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
			rec := httptest.NewRecorder()

			handler.Logout(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			mu.Lock()
			Expect(logoutCalls).To(BeZero())
			mu.Unlock()
			Expect(rec.Result().Cookies()).ToNot(BeEmpty())
		})

		It("clears cookies even when the upstream logout fails", func() {
			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			deadClient := upstream.NewClient(upstream.Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, slogger)
			deadGuard := NewGuard(deadClient, internal.SessionConfig{
				AccessCookieName:  "access_token",
				RefreshCookieName: "refresh_token",
			}, slogger)
			deadHandler := NewHandler(deadGuard, deadClient)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
			req.AddCookie(&http.Cookie{Name: "access_token", Value: "current"})
			rec := httptest.NewRecorder()

			deadHandler.Logout(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Result().Cookies()).ToNot(BeEmpty())
		})
	})
})
