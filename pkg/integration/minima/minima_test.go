package minima_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/integration/minima"
)

// capturedRequest is what the fake Minima instance saw.
type capturedRequest struct {
	Method  string
	Host    string
	Path    string
	Headers http.Header
	Body    map[string]string
}

// fakeMinima is an httptest server standing in for a Minima instance.
type fakeMinima struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []capturedRequest

	handle func(w http.ResponseWriter, body map[string]string)
}

func newFakeMinima() *fakeMinima {
	f := &fakeMinima{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body := map[string]string{}
		_ = json.Unmarshal(raw, &body)

		f.mu.Lock()
		f.requests = append(f.requests, capturedRequest{
			Method:  r.Method,
			Host:    r.Host,
			Path:    r.URL.Path,
			Headers: r.Header.Clone(),
			Body:    body,
		})
		handle := f.handle
		f.mu.Unlock()

		handle(w, body)
	}))
	return f
}

func (f *fakeMinima) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handle = func(w http.ResponseWriter, _ map[string]string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (f *fakeMinima) lastRequest() capturedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	Expect(f.requests).NotTo(BeEmpty())
	return f.requests[len(f.requests)-1]
}

// redirectClient sends every request to the fake server while keeping the
// original Host, so adapters can be built for real instance names.
func redirectClient(target string) *http.Client {
	u, err := url.Parse(target)
	Expect(err).NotTo(HaveOccurred())
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		clone := r.Clone(r.Context())
		clone.URL.Scheme = u.Scheme
		clone.URL.Host = u.Host
		return http.DefaultTransport.RoundTrip(clone)
	})}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

var _ = Describe("Minima", func() {
	var (
		fake    *fakeMinima
		adapter *minima.Minima
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = newFakeMinima()
		DeferCleanup(fake.server.Close)

		var err error
		adapter, err = minima.New(
			integration.Config{Key: minima.Key, Instance: "example.deta.app", APIKey: "abc123"},
			minima.WithHTTPClient(redirectClient(fake.server.URL)),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("New", func() {
		It("rejects a config without an instance", func() {
			_, err := minima.New(integration.Config{Key: minima.Key, APIKey: "abc123"})
			Expect(err).To(MatchError(integration.ErrInvalidConfig))
		})

		It("rejects a config without a credential", func() {
			_, err := minima.New(integration.Config{Key: minima.Key, Instance: "example.deta.app"})
			Expect(err).To(MatchError(integration.ErrInvalidConfig))
		})

		It("rejects a config stored under another key", func() {
			_, err := minima.New(integration.Config{Key: "notion", Instance: "example.deta.app", APIKey: "abc123"})
			Expect(err).To(MatchError(integration.ErrInvalidConfig))
		})

		It("normalizes pasted instance URLs", func() {
			m, err := minima.New(integration.Config{Instance: "https://example.deta.app/", APIKey: "abc123"})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Instance()).To(Equal("example.deta.app"))
			Expect(m.Key()).To(Equal(minima.Key))
		})
	})

	Describe("StoreContent", func() {
		It("returns the note URL and sends the default title", func() {
			fake.respond(http.StatusOK, `{"data":{"key":"xyz"}}`)

			ref, err := adapter.StoreContent(ctx, "hello", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(ref).To(Equal("https://example.deta.app/notes/xyz"))

			req := fake.lastRequest()
			Expect(req.Method).To(Equal(http.MethodPost))
			Expect(req.Host).To(Equal("example.deta.app"))
			Expect(req.Path).To(Equal("/api/notes"))
			Expect(req.Body).To(Equal(map[string]string{"title": minima.DefaultTitle, "content": "hello"}))
		})

		It("authenticates with the Space app key header only", func() {
			fake.respond(http.StatusCreated, `{"data":{"key":"k1"}}`)

			_, err := adapter.StoreContent(ctx, "hello", "Greeting")
			Expect(err).NotTo(HaveOccurred())

			req := fake.lastRequest()
			Expect(req.Headers.Get("X-Space-App-Key")).To(Equal("abc123"))
			Expect(req.Headers.Get("Authorization")).To(BeEmpty())
			Expect(req.Headers.Get("Content-Type")).To(Equal("application/json"))
			Expect(req.Body["title"]).To(Equal("Greeting"))
		})

		It("passes empty content through to the service", func() {
			fake.respond(http.StatusOK, `{"data":{"key":"empty"}}`)

			ref, err := adapter.StoreContent(ctx, "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(ref).To(HaveSuffix("/notes/empty"))
			Expect(fake.lastRequest().Body).To(HaveKeyWithValue("content", ""))
		})

		It("rejects with the HTTP status on 401", func() {
			fake.respond(http.StatusUnauthorized, `{"error":"invalid app key"}`)

			ref, err := adapter.StoreContent(ctx, "hello", "")
			Expect(ref).To(BeEmpty())

			pe, ok := integration.AsPushError(err)
			Expect(ok).To(BeTrue())
			Expect(pe.Kind).To(Equal(integration.KindHTTPStatus))
			Expect(pe.Status).To(Equal(http.StatusUnauthorized))
			Expect(pe.Key).To(Equal(minima.Key))
			Expect(pe.Detail).To(Equal("invalid app key"))
			Expect(err.Error()).To(ContainSubstring("401"))
		})

		DescribeTable("extracts the service message from error bodies",
			func(body, detail string) {
				fake.respond(http.StatusBadRequest, body)

				_, err := adapter.StoreContent(ctx, "hello", "")
				pe, ok := integration.AsPushError(err)
				Expect(ok).To(BeTrue())
				Expect(pe.Detail).To(Equal(detail))
			},
			Entry("nested error object", `{"error":{"message":"title too long"}}`, "title too long"),
			Entry("errors array", `{"errors":["bad title","bad content"]}`, "bad title; bad content"),
			Entry("top-level message", `{"message":"nope"}`, "nope"),
			Entry("non-JSON body", `<html>bad gateway</html>`, "Bad Request"),
		)

		It("never returns a reference for any non-2xx status", func() {
			for _, status := range []int{301, 400, 403, 404, 409, 429, 500, 502, 503} {
				fake.respond(status, `{"data":{"key":"should-not-be-used"}}`)

				ref, err := adapter.StoreContent(ctx, "hello", "")
				Expect(ref).To(BeEmpty(), fmt.Sprintf("status %d", status))

				pe, ok := integration.AsPushError(err)
				Expect(ok).To(BeTrue())
				Expect(pe.Kind).To(Equal(integration.KindHTTPStatus))
				Expect(pe.Status).To(Equal(status))
			}
		})

		DescribeTable("treats uninterpretable 2xx bodies as malformed",
			func(body string) {
				fake.respond(http.StatusOK, body)

				ref, err := adapter.StoreContent(ctx, "hello", "")
				Expect(ref).To(BeEmpty())
				Expect(ref).NotTo(HaveSuffix("/notes/undefined"))

				pe, ok := integration.AsPushError(err)
				Expect(ok).To(BeTrue())
				Expect(pe.Kind).To(Equal(integration.KindMalformedResponse))
			},
			Entry("missing data.key", `{"data":{}}`),
			Entry("missing data", `{}`),
			Entry("null data", `{"data":null}`),
			Entry("empty key", `{"data":{"key":""}}`),
			Entry("object key", `{"data":{"key":{"id":1}}}`),
			Entry("not JSON", `created`),
			Entry("empty body", ``),
		)

		It("formats numeric keys", func() {
			fake.respond(http.StatusOK, `{"data":{"key":42}}`)

			ref, err := adapter.StoreContent(ctx, "hello", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(ref).To(Equal("https://example.deta.app/notes/42"))
		})

		It("escapes the note key in the reference", func() {
			fake.respond(http.StatusOK, `{"data":{"key":"a/b?c#d"}}`)

			ref, err := adapter.StoreContent(ctx, "hello", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(ref).To(Equal("https://example.deta.app/notes/a%2Fb%3Fc%23d"))
		})

		Describe("redirects", func() {
			var (
				other     *httptest.Server
				otherHits int
				otherKey  string
				otherMu   sync.Mutex
			)

			BeforeEach(func() {
				otherHits, otherKey = 0, ""
				other = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					otherMu.Lock()
					otherHits++
					otherKey = r.Header.Get("X-Space-App-Key")
					otherMu.Unlock()
					w.WriteHeader(http.StatusOK)
					_, _ = io.WriteString(w, `{"data":{"key":"elsewhere"}}`)
				}))
				DeferCleanup(other.Close)

				fake.mu.Lock()
				fake.handle = func(w http.ResponseWriter, _ map[string]string) {
					w.Header().Set("Location", other.URL+"/api/notes")
					w.WriteHeader(http.StatusTemporaryRedirect)
				}
				fake.mu.Unlock()
			})

			expectNotFollowed := func(m *minima.Minima) {
				ref, err := m.StoreContent(ctx, "hello", "")
				Expect(ref).To(BeEmpty())

				pe, ok := integration.AsPushError(err)
				Expect(ok).To(BeTrue())
				Expect(pe.Kind).To(Equal(integration.KindHTTPStatus))
				Expect(pe.Status).To(Equal(http.StatusTemporaryRedirect))

				otherMu.Lock()
				defer otherMu.Unlock()
				Expect(otherHits).To(BeZero())
				Expect(otherKey).To(BeEmpty())
			}

			It("treats a redirect as the final response", func() {
				m, err := minima.New(
					integration.Config{Instance: strings.TrimPrefix(fake.server.URL, "http://"), APIKey: "abc123"},
					minima.WithScheme("http"),
				)
				Expect(err).NotTo(HaveOccurred())
				expectNotFollowed(m)
			})

			It("does not follow redirects with a caller-supplied client", func() {
				m, err := minima.New(
					integration.Config{Instance: strings.TrimPrefix(fake.server.URL, "http://"), APIKey: "abc123"},
					minima.WithScheme("http"),
					minima.WithHTTPClient(&http.Client{}),
				)
				Expect(err).NotTo(HaveOccurred())
				expectNotFollowed(m)
			})
		})

		It("reports an unreachable instance as a network failure", func() {
			fake.server.Close()

			_, err := adapter.StoreContent(ctx, "hello", "")
			pe, ok := integration.AsPushError(err)
			Expect(ok).To(BeTrue())
			Expect(pe.Kind).To(Equal(integration.KindNetworkUnreachable))
		})

		It("reports an expired deadline as a timeout", func() {
			release := make(chan struct{})
			DeferCleanup(func() { close(release) })

			fake.mu.Lock()
			fake.handle = func(w http.ResponseWriter, _ map[string]string) {
				<-release
				w.WriteHeader(http.StatusOK)
			}
			fake.mu.Unlock()

			timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
			defer cancel()

			_, err := adapter.StoreContent(timeoutCtx, "hello", "")
			pe, ok := integration.AsPushError(err)
			Expect(ok).To(BeTrue())
			Expect(pe.Kind).To(Equal(integration.KindTimeout))
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})

		It("keeps concurrent pushes independent", func() {
			fake.mu.Lock()
			fake.handle = func(w http.ResponseWriter, body map[string]string) {
				// Echo the content back as the note key, with jitter so
				// responses interleave.
				time.Sleep(time.Duration(len(body["content"])%5) * time.Millisecond)
				w.WriteHeader(http.StatusOK)
				_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"key": body["content"]}})
			}
			fake.mu.Unlock()

			const n = 25
			refs := make([]string, n)
			errs := make([]error, n)

			var wg sync.WaitGroup
			for i := range n {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					refs[i], errs[i] = adapter.StoreContent(ctx, fmt.Sprintf("note-%d", i), "")
				}()
			}
			wg.Wait()

			for i := range n {
				Expect(errs[i]).NotTo(HaveOccurred())
				Expect(refs[i]).To(Equal(fmt.Sprintf("https://example.deta.app/notes/note-%d", i)))
			}
		})
	})

	Describe("WithScheme", func() {
		It("composes the reference with the configured scheme", func() {
			fake.respond(http.StatusOK, `{"data":{"key":"local"}}`)

			host := strings.TrimPrefix(fake.server.URL, "http://")
			local, err := minima.New(
				integration.Config{Key: minima.Key, Instance: host, APIKey: "abc123"},
				minima.WithScheme("http"),
			)
			Expect(err).NotTo(HaveOccurred())

			ref, err := local.StoreContent(ctx, "hello", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(ref).To(Equal(fake.server.URL + "/notes/local"))
		})
	})

	Describe("Factory", func() {
		It("builds adapters that satisfy the contract", func() {
			built, err := minima.Factory()(integration.Config{Key: minima.Key, Instance: "example.deta.app", APIKey: "abc123"})
			Expect(err).NotTo(HaveOccurred())
			Expect(built.Key()).To(Equal(minima.Key))
			Expect(built.Instance()).To(Equal("example.deta.app"))
		})
	})
})
