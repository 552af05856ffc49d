package admin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fleetora/admin-gateway/internal"
	"github.com/fleetora/admin-gateway/internal/listcache"
	"github.com/fleetora/admin-gateway/internal/upstream"
)

// auditStoreTTL bounds how long an idle session keeps its cached page.
const auditStoreTTL = 15 * time.Minute

// AuditEntry is an opaque upstream record; the gateway only ever touches
// the actor_id / actor_name fields during resolution.
type AuditEntry map[string]interface{}

// AuditService caches the last fetched audit page per session and
// enriches entries with actor display names. Each session token gets its
// own store, so one admin's filters and cached entries never leak into
// another's requests. Resolution is best-effort: a failed user lookup
// degrades to raw actor IDs and never fails the request.
type AuditService struct {
	upstream *upstream.Client
	logger   *slog.Logger

	mu     sync.Mutex
	stores *gocache.Cache
}

func NewAuditService(client *upstream.Client, logger *slog.Logger) *AuditService {
	return &AuditService{
		upstream: client,
		logger:   logger,
		stores:   gocache.New(auditStoreTTL, time.Minute),
	}
}

// storeFor returns the session's own list store, creating it on first
// use. The token is hashed so raw credentials never sit in cache keys.
func (s *AuditService) storeFor(accessToken string) *listcache.Store[AuditEntry] {
	key := sessionKey(accessToken)

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.stores.Get(key); ok {
		if store, ok := v.(*listcache.Store[AuditEntry]); ok {
			return store
		}
	}

	store := listcache.New[AuditEntry](s.fetchPage)
	s.stores.Set(key, store, gocache.DefaultExpiration)
	return store
}

func sessionKey(accessToken string) string {
	sum := sha256.Sum256([]byte(accessToken))
	return hex.EncodeToString(sum[:])
}

// Fetch runs one fetch cycle against the calling session's store and
// returns the resulting snapshot.
func (s *AuditService) Fetch(ctx context.Context, opts listcache.FetchOptions) listcache.State[AuditEntry] {
	store := s.storeFor(internal.TokenFromContext(ctx))
	store.Fetch(ctx, opts)
	return store.State()
}

func (s *AuditService) fetchPage(ctx context.Context, q listcache.Query) (listcache.Page[AuditEntry], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.Limit))
	for key, value := range q.Filters {
		query.Set(key, value)
	}

	token := internal.TokenFromContext(ctx)
	env := s.upstream.ForwardList(ctx, upstream.ForwardRequest{
		Method: http.MethodGet,
		Path:   "/admin/audit-logs",
		Query:  query,
		Token:  token,
	})
	if env.Status != http.StatusOK {
		return listcache.Page[AuditEntry]{}, internal.NewUpstreamError(env.Status, env.Message)
	}

	var entries []AuditEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		return listcache.Page[AuditEntry]{}, err
	}

	s.resolveActors(ctx, entries, token)

	return listcache.Page[AuditEntry]{
		Items: entries,
		Page:  q.Page,
		Limit: q.Limit,
		Total: len(entries),
	}, nil
}

// resolveActors maps actor_id values to display names via the users list.
func (s *AuditService) resolveActors(ctx context.Context, entries []AuditEntry, token string) {
	ids := make(map[string]bool)
	for _, entry := range entries {
		if id := stringifyID(entry["actor_id"]); id != "" {
			ids[id] = true
		}
	}
	if len(ids) == 0 {
		return
	}

	env := s.upstream.ForwardList(ctx, upstream.ForwardRequest{
		Method: http.MethodGet,
		Path:   "/admin/users",
		Token:  token,
	})
	if env.Status != http.StatusOK {
		s.logger.Warn("actor resolution skipped, user fetch failed", "status", env.Status)
		return
	}

	var users []map[string]interface{}
	if err := json.Unmarshal(env.Data, &users); err != nil {
		s.logger.Warn("actor resolution skipped, user list unparseable", "error", err)
		return
	}

	names := make(map[string]string, len(users))
	for _, user := range users {
		id := stringifyID(user["id"])
		if id == "" {
			continue
		}
		if name, ok := user["name"].(string); ok && name != "" {
			names[id] = name
		} else if email, ok := user["email"].(string); ok {
			names[id] = email
		}
	}

	for _, entry := range entries {
		if name, ok := names[stringifyID(entry["actor_id"])]; ok {
			entry["actor_name"] = name
		}
	}
}

func stringifyID(v interface{}) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

// ListAuditLogs serves the cached audit page. The snapshot semantics
// mirror the store: a failed fetch keeps the previously cached entries
// visible and only populates the error field.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	opts := listcache.FetchOptions{Filters: map[string]*string{}}

	for key, values := range r.URL.Query() {
		switch key {
		case "page":
			if page, err := strconv.Atoi(values[0]); err == nil {
				opts.Page = &page
			}
		case "limit":
			if limit, err := strconv.Atoi(values[0]); err == nil {
				if limit > listcache.MaxLimit {
					h.WriteAppError(w, internal.NewValidationError("limit cannot exceed 100", internal.ErrCodeLimitTooHigh))
					return
				}
				opts.Limit = &limit
			}
		default:
			if values[0] == "" {
				opts.Filters[key] = listcache.Clear
			} else {
				opts.Filters[key] = listcache.String(values[0])
			}
		}
	}

	state := h.audit.Fetch(r.Context(), opts)

	payload := map[string]interface{}{
		"items": state.Items,
		"page":  state.Page,
		"limit": state.Limit,
		"total": state.Total,
	}
	if state.Err != "" {
		payload["error"] = state.Err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.WriteEnvelope(w, upstream.Envelope{Status: http.StatusOK, Data: data})
}
