package upstream

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		client   *Client
		slogger  *slog.Logger
		handler  http.HandlerFunc
		received *http.Request
		reqBody  []byte
	)

	BeforeEach(func() {
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		received = nil
		reqBody = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received = r
			reqBody, _ = io.ReadAll(r.Body)
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func(base string) *Client {
		return NewClient(Config{BaseURL: base, Timeout: 2 * time.Second}, slogger)
	}

	Describe("base URL normalization", func() {
		It("trims trailing slashes before concatenating paths", func() {
			client = newClient(server.URL + "///")
			Expect(client.BaseURL()).To(Equal(server.URL))

			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}
			client.Forward(context.Background(), ForwardRequest{Method: http.MethodGet, Path: "/admin/users"})
			Expect(received.URL.Path).To(Equal("/admin/users"))
		})
	})

	Describe("Forward", func() {
		BeforeEach(func() {
			client = newClient(server.URL)
		})

		It("forwards method, query, body and bearer token", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"ok":true}`))
			}

			query := url.Values{}
			query.Set("page", "2")

			env := client.Forward(context.Background(), ForwardRequest{
				Method: http.MethodPost,
				Path:   "/admin/users",
				Query:  query,
				Body:   []byte(`{"name":"x"}`),
				Token:  "tok-123",
			})

			Expect(env.Status).To(Equal(http.StatusOK))
			Expect(received.Method).To(Equal(http.MethodPost))
			Expect(received.URL.Query().Get("page")).To(Equal("2"))
			Expect(received.Header.Get("Authorization")).To(Equal("Bearer tok-123"))
			Expect(received.Header.Get("Content-Type")).To(Equal("application/json"))
			Expect(string(reqBody)).To(Equal(`{"name":"x"}`))
			Expect(string(env.Data)).To(Equal(`{"ok":true}`))
		})

		It("passes through a verbatim Authorization header when provided", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}

			client.Forward(context.Background(), ForwardRequest{
				Method:           http.MethodGet,
				Path:             "/admin/users",
				Token:            "ignored",
				RawAuthorization: "Basic abc",
			})

			Expect(received.Header.Get("Authorization")).To(Equal("Basic abc"))
		})

		It("keeps the upstream status and message on non-2xx responses", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"message":"already exists"}`))
			}

			env := client.Forward(context.Background(), ForwardRequest{Method: http.MethodPost, Path: "/admin/users"})

			Expect(env.Status).To(Equal(http.StatusConflict))
			Expect(env.Message).To(Equal("already exists"))
		})

		It("substitutes the status text when the error body is not JSON", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("<html>woops</html>"))
			}

			env := client.Forward(context.Background(), ForwardRequest{Method: http.MethodGet, Path: "/x"})

			Expect(env.Status).To(Equal(http.StatusBadGateway))
			Expect(env.Message).To(Equal(http.StatusText(http.StatusBadGateway)))
		})

		It("collapses transport failures into the generic 500 envelope", func() {
			broken := newClient("http://127.0.0.1:1")

			env := broken.Forward(context.Background(), ForwardRequest{Method: http.MethodGet, Path: "/x"})

			Expect(env.Status).To(Equal(http.StatusInternalServerError))
			Expect(env.Message).To(Equal("Internal server error"))
		})

		It("collapses malformed success bodies into the generic 500 envelope", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not-json"))
			}

			env := client.Forward(context.Background(), ForwardRequest{Method: http.MethodGet, Path: "/x"})

			Expect(env.Status).To(Equal(http.StatusInternalServerError))
			Expect(env.Message).To(Equal("Internal server error"))
		})

		It("returns an empty envelope for bodyless success responses", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}

			env := client.Forward(context.Background(), ForwardRequest{Method: http.MethodDelete, Path: "/x"})

			Expect(env.Status).To(Equal(http.StatusNoContent))
			Expect(env.Data).To(BeNil())
		})
	})

	Describe("ForwardList normalization", func() {
		BeforeEach(func() {
			client = newClient(server.URL)
		})

		expectItems := func(env Envelope, want []string) {
			Expect(env.Status).To(Equal(http.StatusOK))
			var items []json.RawMessage
			Expect(json.Unmarshal(env.Data, &items)).To(Succeed())
			Expect(items).To(HaveLen(len(want)))
			for i, item := range items {
				Expect(string(item)).To(MatchJSON(want[i]))
			}
		}

		It("accepts a bare array", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"id":1},{"id":2}]`))
			}
			env := client.ForwardList(context.Background(), ForwardRequest{Method: http.MethodGet, Path: "/l"})
			expectItems(env, []string{`{"id":1}`, `{"id":2}`})
		})

		It("unwraps a data field holding an array", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":200,"data":[{"id":3}]}`))
			}
			env := client.ForwardList(context.Background(), ForwardRequest{Method: http.MethodGet, Path: "/l"})
			expectItems(env, []string{`{"id":3}`})
		})

		It("unwraps an items field", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"items":[{"id":4}],"total":1}`))
			}
			env := client.ForwardList(context.Background(), ForwardRequest{Method: http.MethodGet, Path: "/l"})
			expectItems(env, []string{`{"id":4}`})
		})

		It("defaults to an empty array for anything else", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{}`))
			}
			env := client.ForwardList(context.Background(), ForwardRequest{Method: http.MethodGet, Path: "/l"})
			Expect(env.Status).To(Equal(http.StatusOK))
			Expect(string(env.Data)).To(Equal("[]"))
		})

		It("keeps upstream error statuses for lists too", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"message":"nope"}`))
			}
			env := client.ForwardList(context.Background(), ForwardRequest{Method: http.MethodGet, Path: "/l"})
			Expect(env.Status).To(Equal(http.StatusForbidden))
			Expect(env.Message).To(Equal("nope"))
		})
	})

	Describe("DecodeListShape", func() {
		It("classifies the four shapes", func() {
			shape, items := DecodeListShape([]byte(`[1,2]`))
			Expect(shape).To(Equal(ShapeArray))
			Expect(items).To(HaveLen(2))

			shape, items = DecodeListShape([]byte(`{"data":[1]}`))
			Expect(shape).To(Equal(ShapeData))
			Expect(items).To(HaveLen(1))

			shape, items = DecodeListShape([]byte(`{"items":[1,2,3]}`))
			Expect(shape).To(Equal(ShapeItems))
			Expect(items).To(HaveLen(3))

			shape, items = DecodeListShape([]byte(`{"count":0}`))
			Expect(shape).To(Equal(ShapeOther))
			Expect(items).To(BeNil())
		})

		It("prefers data over items when both are arrays", func() {
			shape, items := DecodeListShape([]byte(`{"data":[1],"items":[1,2]}`))
			Expect(shape).To(Equal(ShapeData))
			Expect(items).To(HaveLen(1))
		})

		It("falls back to items when data is not an array", func() {
			shape, items := DecodeListShape([]byte(`{"data":{"x":1},"items":[1,2]}`))
			Expect(shape).To(Equal(ShapeItems))
			Expect(items).To(HaveLen(2))
		})
	})
})
