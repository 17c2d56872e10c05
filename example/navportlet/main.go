// navportlet is a demo site for the sync-ssr coordination primitives.
//
// Every page shares a layout whose navigation block is rendered before
// the routed content, yet shows links the routed content decides on:
// the home page fills it with recent articles, an article page with
// more articles by the same author. The nav is a portlet; the routed
// handler contributes to it through a write signal acquired before its
// fetch suspends, so the nav render waits exactly as long as needed.
//
//	go run ./example/navportlet -addr :8080
//	open http://localhost:8080/
package main

import (
	"context"
	"flag"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	syncssr "github.com/vango-go/sync-ssr"
	"github.com/vango-go/sync-ssr/pkg/metrics"
	ssrmw "github.com/vango-go/sync-ssr/pkg/middleware"
	"github.com/vango-go/sync-ssr/pkg/portlet"
)

// Nav is the portlet payload: a captioned link list contributed by the
// routed content.
type Nav struct {
	Caption string    `json:"caption"`
	Links   []NavLink `json:"links"`
}

// NavLink is one entry in the nav block.
type NavLink struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type site struct {
	store  Store
	logger *slog.Logger
	obs    *metrics.Observer
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	fetchLatency := flag.Duration("fetch-latency", 30*time.Millisecond, "simulated store latency")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	s := &site{
		store:  newStore(*fetchLatency),
		logger: logger,
		obs:    metrics.New(),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(ssrmw.OpenTelemetry(ssrmw.WithFilter(func(r *http.Request) bool {
		return r.URL.Path != "/metrics"
	})))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/live", s.handleLive)
	r.Get("/", s.handleHome)
	r.Get("/articles/{slug}", s.handleArticle)

	logger.Info("listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, r); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// renderPage streams the shared layout: header with the nav portlet
// first, routed content second. The nav section is written only once
// the routed content's contribution (if any) has landed.
func (s *site) renderPage(w http.ResponseWriter, r *http.Request,
	route func(ctx context.Context, nav *portlet.Portlet[Nav]) (string, error)) {

	b := syncssr.NewBoundary(
		syncssr.WithLogger(s.logger),
		syncssr.WithObserver(s.obs),
	)
	nav := syncssr.NewPortlet[Nav](b, portlet.WithLogger(s.logger))

	body, err := route(r.Context(), nav)
	b.Exit()
	if err != nil {
		s.logger.Warn("route failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	navHTML, err := nav.Render(r.Context(), renderNav)
	if err != nil {
		http.Error(w, "nav render failed", http.StatusInternalServerError)
		return
	}
	state, err := nav.State(r.Context())
	if err != nil {
		http.Error(w, "nav state failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<!doctype html><html><head><title>navportlet</title></head><body>")
	fmt.Fprintf(w, `<header>%s</header>`, navHTML)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	fmt.Fprintf(w, "<main>%s</main>", body)
	fmt.Fprintf(w, `<script id="nav-state" type="application/json">%s</script>`, state)
	fmt.Fprint(w, "</body></html>")
}

func (s *site) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, func(ctx context.Context, nav *portlet.Portlet[Nav]) (string, error) {
		// The home content fills the nav with the most recent
		// articles. Write evidence is acquired before the fetch runs,
		// inside UpdateWith.
		done := nav.UpdateWith(ctx, func(ctx context.Context) (Nav, bool) {
			articles, err := s.store.Recent(ctx, 5)
			if err != nil {
				s.logger.Warn("recent fetch failed", "err", err)
				return Nav{}, false
			}
			return Nav{Caption: "Recent", Links: articleLinks(articles)}, true
		})

		articles, err := s.store.Recent(ctx, 20)
		if err != nil {
			return "", err
		}
		<-done
		return renderIndex(articles), nil
	})
}

func (s *site) handleArticle(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	s.renderPage(w, r, func(ctx context.Context, nav *portlet.Portlet[Nav]) (string, error) {
		article, err := s.store.Get(ctx, slug)
		if err != nil {
			// No contribution; the nav renders empty at boundary exit.
			return "", err
		}

		nav.UpdateWith(ctx, func(ctx context.Context) (Nav, bool) {
			related, err := s.store.ByAuthor(ctx, article.Author)
			if err != nil || len(related) == 0 {
				return Nav{}, false
			}
			return Nav{
				Caption: "More by " + article.Author,
				Links:   articleLinks(related),
			}, true
		})

		return renderArticle(article), nil
	})
}

func articleLinks(articles []Article) []NavLink {
	links := make([]NavLink, 0, len(articles))
	for _, a := range articles {
		links = append(links, NavLink{Label: a.Title, Href: "/articles/" + a.Slug})
	}
	return links
}

func renderNav(n Nav) string {
	out := "<nav><h2>" + html.EscapeString(n.Caption) + "</h2><ul>"
	for _, l := range n.Links {
		out += `<li><a href="` + html.EscapeString(l.Href) + `">` + html.EscapeString(l.Label) + "</a></li>"
	}
	return out + "</ul></nav>"
}

func renderIndex(articles []Article) string {
	out := "<h1>Articles</h1><ul>"
	for _, a := range articles {
		out += `<li><a href="/articles/` + html.EscapeString(a.Slug) + `">` +
			html.EscapeString(a.Title) + "</a> by " + html.EscapeString(a.Author) + "</li>"
	}
	return out + "</ul>"
}

func renderArticle(a Article) string {
	return "<article><h1>" + html.EscapeString(a.Title) + "</h1><p>by " +
		html.EscapeString(a.Author) + "</p><p>" + html.EscapeString(a.Body) + "</p></article>"
}
