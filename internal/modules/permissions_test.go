package modules

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/transport"
	"github.com/fleetora/admin-gateway/internal/upstream"
)

var _ = Describe("PermissionStore", func() {
	var (
		calls    atomic.Int64
		status   atomic.Int64
		bodyJSON atomic.Value
		server   *httptest.Server
		store    *PermissionStore
		slogger  *slog.Logger
	)

	BeforeEach(func() {
		calls.Store(0)
		status.Store(http.StatusOK)
		bodyJSON.Store(`{"users":{"can_view":true,"can_edit":false,"can_delete":false}}`)

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(int(status.Load()))
			w.Write([]byte(bodyJSON.Load().(string)))
		}))

		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		client := upstream.NewClient(upstream.Config{BaseURL: server.URL, Timeout: 2 * time.Second}, slogger)
		store = NewPermissionStore(client, 5*time.Minute, slogger)
	})

	AfterEach(func() {
		server.Close()
	})

	It("parses a bare permission map", func() {
		perms := store.Get(context.Background(), "token-a")

		Expect(perms).To(HaveKey("users"))
		Expect(perms["users"].CanView).To(BeTrue())
		Expect(perms["users"].CanEdit).To(BeFalse())
	})

	It("tolerates the data wrapper", func() {
		bodyJSON.Store(`{"data":{"roles":{"can_view":true,"can_edit":true,"can_delete":true}}}`)

		perms := store.Get(context.Background(), "token-wrapped")

		Expect(perms).To(HaveKey("roles"))
		Expect(perms["roles"]).To(Equal(AllGranted))
	})

	It("serves repeated reads for a token from cache", func() {
		store.Get(context.Background(), "token-cached")
		store.Get(context.Background(), "token-cached")
		store.Get(context.Background(), "token-cached")

		Expect(calls.Load()).To(Equal(int64(1)))
	})

	It("caches per token, not globally", func() {
		store.Get(context.Background(), "token-one")
		store.Get(context.Background(), "token-two")

		Expect(calls.Load()).To(Equal(int64(2)))
	})

	It("refetches after invalidation", func() {
		store.Get(context.Background(), "token-x")
		store.Invalidate("token-x")
		store.Get(context.Background(), "token-x")

		Expect(calls.Load()).To(Equal(int64(2)))
	})

	Describe("fail-open fallback", func() {
		expectAllGranted := func(perms PermissionMap) {
			Expect(perms).To(HaveLen(len(ActiveModules)))
			for _, m := range ActiveModules {
				Expect(perms[m.Key]).To(Equal(AllGranted))
			}
		}

		It("grants everything when the upstream rejects the fetch", func() {
			status.Store(http.StatusForbidden)
			bodyJSON.Store(`{"message":"nope"}`)

			expectAllGranted(store.Get(context.Background(), "token-rejected"))
		})

		It("grants everything when the body is unparseable", func() {
			bodyJSON.Store(`not json at all`)

			expectAllGranted(store.Get(context.Background(), "token-garbled"))
		})

		It("grants everything when the permission set is empty", func() {
			bodyJSON.Store(`{}`)

			expectAllGranted(store.Get(context.Background(), "token-empty"))
		})

		It("grants everything when the upstream is unreachable", func() {
			deadClient := upstream.NewClient(upstream.Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, slogger)
			deadStore := NewPermissionStore(deadClient, time.Minute, slogger)

			expectAllGranted(deadStore.Get(context.Background(), "token-dead"))
		})
	})
})

var _ = Describe("Handler", func() {
	var handler *Handler

	newHandler := func(serverURL string) *Handler {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		client := upstream.NewClient(upstream.Config{BaseURL: serverURL, Timeout: 2 * time.Second}, slogger)
		store := NewPermissionStore(client, time.Minute, slogger)
		return NewHandler(transport.NewBaseHandler(slogger), store)
	}

	Describe("GetActiveModules", func() {
		It("serves the static registry without any upstream call", func() {
			var upstreamCalls atomic.Int64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				upstreamCalls.Add(1)
			}))
			defer server.Close()
			handler = newHandler(server.URL)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/active-modules", nil)
			rec := httptest.NewRecorder()

			handler.GetActiveModules(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var env upstream.Envelope
			Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())
			Expect(env.Status).To(Equal(http.StatusOK))

			var mods []Module
			Expect(json.Unmarshal(env.Data, &mods)).To(Succeed())
			Expect(mods).To(HaveLen(len(ActiveModules)))

			keys := make([]string, len(mods))
			for i, m := range mods {
				keys[i] = m.Key
			}
			Expect(keys).To(ContainElements("users", "bookings", "vehicles", "automations", "roles", "balance", "audit", "docs"))
			Expect(upstreamCalls.Load()).To(BeZero())
		})

		It("includes the vehicle sub-items", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()
			handler = newHandler(server.URL)

			rec := httptest.NewRecorder()
			handler.GetActiveModules(rec, httptest.NewRequest(http.MethodGet, "/api/v1/active-modules", nil))

			var env upstream.Envelope
			Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())

			var mods []Module
			Expect(json.Unmarshal(env.Data, &mods)).To(Succeed())

			for _, m := range mods {
				if m.Key == "vehicles" {
					Expect(m.SubItems).To(HaveLen(5))
					return
				}
			}
			Fail("vehicles module missing from registry")
		})
	})

	Describe("GetMyPermissions", func() {
		It("returns the permission map for the context token", func() {
			var gotAuth atomic.Value
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth.Store(r.Header.Get("Authorization"))
				w.Write([]byte(`{"users":{"can_view":true}}`))
			}))
			defer server.Close()
			handler = newHandler(server.URL)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/permissions/me", nil)
			req = req.WithContext(internal.ContextWithToken(req.Context(), "perm-token"))
			rec := httptest.NewRecorder()

			handler.GetMyPermissions(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			var env upstream.Envelope
			Expect(json.Unmarshal(rec.Body.Bytes(), &env)).To(Succeed())

			var perms PermissionMap
			Expect(json.Unmarshal(env.Data, &perms)).To(Succeed())
			Expect(perms["users"].CanView).To(BeTrue())
			Expect(gotAuth.Load()).To(Equal("Bearer perm-token"))
		})
	})
})
