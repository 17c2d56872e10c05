package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-go/sync-ssr/pkg/metrics"
)

func newTestSite(t *testing.T) *site {
	t.Helper()
	return &site{
		store:  newMemStore(5 * time.Millisecond),
		logger: slog.Default(),
		obs:    metrics.New(metrics.WithRegistry(prometheus.NewRegistry())),
	}
}

func TestHomePageFillsNav(t *testing.T) {
	s := newTestSite(t)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	s.handleHome(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<nav><h2>Recent</h2>") {
		t.Errorf("nav missing recent caption: %s", body)
	}
	if strings.Index(body, "<nav>") > strings.Index(body, "<main>") {
		t.Error("nav should be streamed before the routed content")
	}
	if !strings.Contains(body, `id="nav-state"`) {
		t.Error("hydration state script missing")
	}
}

func TestArticlePageNavShowsAuthor(t *testing.T) {
	s := newTestSite(t)

	r := chi.NewRouter()
	r.Get("/articles/{slug}", s.handleArticle)

	req := httptest.NewRequest("GET", "/articles/streaming-ssr", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "More by mira") {
		t.Errorf("nav should list more articles by the author: %s", body)
	}
}

func TestLiveNavUpdates(t *testing.T) {
	s := newTestSite(t)
	srv := httptest.NewServer(http.HandlerFunc(s.handleLive))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(navRequest{Route: "home"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var update navUpdate
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read: %v", err)
	}
	if update.Error != "" {
		t.Fatalf("unexpected error: %s", update.Error)
	}
	if !strings.Contains(update.HTML, "Recent") {
		t.Errorf("home nav missing recent links: %s", update.HTML)
	}

	// Unknown routes resolve to an empty nav rather than hanging.
	if err := conn.WriteJSON(navRequest{Route: "nope"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("read: %v", err)
	}
	if update.HTML != "" || update.Error != "" {
		t.Errorf("expected empty nav for unknown route, got %+v", update)
	}
}
