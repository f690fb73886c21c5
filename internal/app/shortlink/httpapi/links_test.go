package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"short.local/internal/app/shortlink"
)

type fakeStore struct {
	mu    sync.Mutex
	links map[string]shortlink.Link
}

func newFakeStore() *fakeStore {
	return &fakeStore{links: map[string]shortlink.Link{}}
}

func (s *fakeStore) FindByCode(_ context.Context, code string) (shortlink.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.links[code]
	if !ok {
		return shortlink.Link{}, shortlink.ErrNotFound
	}
	return l, nil
}

func (s *fakeStore) FindByFingerprint(_ context.Context, fingerprint string) (shortlink.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.links {
		if l.Fingerprint == fingerprint {
			return l, nil
		}
	}
	return shortlink.Link{}, shortlink.ErrNotFound
}

func (s *fakeStore) Insert(_ context.Context, link shortlink.Link) (shortlink.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[link.Code]; ok {
		return shortlink.Link{}, shortlink.ErrDuplicateCode
	}
	link.CreatedAt = time.Now()
	s.links[link.Code] = link
	return link, nil
}

func (s *fakeStore) IncrementClicks(context.Context, string) error { return nil }

func testRouter(store *fakeStore) http.Handler {
	engine := shortlink.NewEngine(store, nil, nil, shortlink.Options{})
	r := chi.NewRouter()
	r.Get("/{code}", NewRedirectHandler(engine))
	r.Post("/api/v1/shortlinks", NewCreateHandler(engine))
	r.Get("/api/v1/shortlinks/{code}", NewInfoHandler(store))
	return r
}

func TestCreateHandler(t *testing.T) {
	store := newFakeStore()
	router := testRouter(store)

	body := `{"url":"https://example.com/landing"}`
	req := httptest.NewRequest("POST", "/api/v1/shortlinks", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp CreateLinkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.URL != "https://example.com/landing" {
		t.Fatalf("url = %q", resp.URL)
	}
	if len(resp.Code) != shortlink.DefaultCodeLength {
		t.Fatalf("code = %q", resp.Code)
	}
	if !strings.HasSuffix(resp.ShortURL, "/"+resp.Code) {
		t.Fatalf("short_url = %q", resp.ShortURL)
	}
}

func TestShortURLSchemeTrust(t *testing.T) {
	store := newFakeStore()
	router := testRouter(store)

	create := func(remoteAddr, url string) CreateLinkResponse {
		t.Helper()
		req := httptest.NewRequest("POST", "/api/v1/shortlinks",
			strings.NewReader(`{"url":"`+url+`"}`))
		req.RemoteAddr = remoteAddr
		req.Header.Set("X-Forwarded-Proto", "https")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp CreateLinkResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return resp
	}

	// 公网直连的客户端伪造 X-Forwarded-Proto 不应改写 scheme
	if resp := create("203.0.113.9:12345", "https://example.com/direct"); !strings.HasPrefix(resp.ShortURL, "http://") {
		t.Fatalf("untrusted client changed scheme: %q", resp.ShortURL)
	}
	// 来自可信反代时采信
	if resp := create("127.0.0.1:8080", "https://example.com/proxied"); !strings.HasPrefix(resp.ShortURL, "https://") {
		t.Fatalf("trusted proxy header ignored: %q", resp.ShortURL)
	}
}

func TestCreateHandlerRejectsBadInput(t *testing.T) {
	router := testRouter(newFakeStore())

	cases := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{"url":`, http.StatusBadRequest},
		{"bad scheme", `{"url":"ftp://example.com/f"}`, http.StatusBadRequest},
		{"empty url", `{"url":""}`, http.StatusBadRequest},
		{"bad custom code", `{"url":"https://example.com/x","code":"a b"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/api/v1/shortlinks", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestCreateHandlerCustomCodeConflict(t *testing.T) {
	store := newFakeStore()
	router := testRouter(store)

	first := httptest.NewRequest("POST", "/api/v1/shortlinks",
		strings.NewReader(`{"url":"https://example.com/a","code":"mine01"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, first)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}

	second := httptest.NewRequest("POST", "/api/v1/shortlinks",
		strings.NewReader(`{"url":"https://example.com/b","code":"mine01"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, second)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second create: status = %d, want 409", rec.Code)
	}
}

func TestRedirectHandler(t *testing.T) {
	store := newFakeStore()
	store.links["go1234"] = shortlink.Link{Code: "go1234", URL: "https://example.com/target"}
	router := testRouter(store)

	req := httptest.NewRequest("GET", "/go1234", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://example.com/target" {
		t.Fatalf("Location = %q", loc)
	}
}

func TestRedirectHandlerUnknownCode(t *testing.T) {
	router := testRouter(newFakeStore())

	req := httptest.NewRequest("GET", "/nope99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestInfoHandler(t *testing.T) {
	store := newFakeStore()
	store.links["info01"] = shortlink.Link{Code: "info01", URL: "https://example.com/meta", ClickCount: 7}
	router := testRouter(store)

	req := httptest.NewRequest("GET", "/api/v1/shortlinks/info01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var link shortlink.Link
	if err := json.Unmarshal(rec.Body.Bytes(), &link); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if link.Code != "info01" || link.ClickCount != 7 {
		t.Fatalf("link = %+v", link)
	}
}
