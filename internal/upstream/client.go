package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// internalErrorMessage is the only message transport and parse failures
// ever surface to the client. Causes are logged, never serialized.
const internalErrorMessage = "Internal server error"

// Envelope is the normalized response shape every proxy route returns,
// regardless of how the upstream shaped its own response.
type Envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client forwards inbound requests to the upstream REST API. It holds no
// state beyond the configured base URL; every call is a live forward.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// BaseURL returns the normalized upstream base, without trailing slashes.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ForwardRequest describes one upstream call. Path must start with "/".
// When RawAuthorization is set it is passed through verbatim instead of
// deriving a bearer header from Token.
type ForwardRequest struct {
	Method           string
	Path             string
	Query            url.Values
	Body             []byte
	Token            string
	RawAuthorization string
}

// Forward issues exactly one upstream call and maps the result into the
// normalized envelope. Non-2xx upstream responses keep the upstream's
// status code; transport and parse failures collapse into a generic 500.
func (c *Client) Forward(ctx context.Context, req ForwardRequest) Envelope {
	status, body, err := c.do(ctx, req)
	if err != nil {
		return c.internalError("upstream call failed", req, err)
	}

	if status < 200 || status >= 300 {
		return Envelope{Status: status, Message: extractErrorMessage(body, status)}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return Envelope{Status: status}
	}

	if !json.Valid(body) {
		return c.internalError("upstream returned malformed JSON", req, nil)
	}

	return Envelope{Status: status, Data: json.RawMessage(body)}
}

// ForwardList is Forward for list endpoints: the upstream is inconsistent
// about whether it returns a bare array, {data: [...]}, or {items: [...]},
// so a successful response is always normalized to {status: 200, data: []}.
func (c *Client) ForwardList(ctx context.Context, req ForwardRequest) Envelope {
	status, body, err := c.do(ctx, req)
	if err != nil {
		return c.internalError("upstream call failed", req, err)
	}

	if status < 200 || status >= 300 {
		return Envelope{Status: status, Message: extractErrorMessage(body, status)}
	}

	items := NormalizeList(body)
	data, err := json.Marshal(items)
	if err != nil {
		return c.internalError("failed to marshal normalized list", req, err)
	}

	return Envelope{Status: http.StatusOK, Data: data}
}

// ForwardRaw forwards without any JSON handling, for documentation
// endpoints whose bodies are HTML. The caller owns content-type decisions.
func (c *Client) ForwardRaw(ctx context.Context, req ForwardRequest) (int, []byte, error) {
	return c.do(ctx, req)
}

func (c *Client) do(ctx context.Context, req ForwardRequest) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return 0, nil, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if req.RawAuthorization != "" {
		httpReq.Header.Set("Authorization", req.RawAuthorization)
	} else if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, body, nil
}

func (c *Client) internalError(msg string, req ForwardRequest, cause error) Envelope {
	c.logger.Error(msg,
		"method", req.Method,
		"path", req.Path,
		"error", cause)
	return Envelope{Status: http.StatusInternalServerError, Message: internalErrorMessage}
}

// extractErrorMessage pulls a human-readable message out of an upstream
// error body, tolerating bodies that are not JSON at all.
func extractErrorMessage(body []byte, status int) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return http.StatusText(status)
}
