package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	syncssr "github.com/vango-go/sync-ssr"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Demo server; lock this down behind a real origin check.
		return true
	},
}

// navRequest is a client-side navigation: re-render the nav block for
// the named route without a full page load.
type navRequest struct {
	Route string `json:"route"`
	Slug  string `json:"slug,omitempty"`
}

// navUpdate carries the re-rendered nav markup plus its hydration
// state back to the client.
type navUpdate struct {
	HTML  string          `json:"html"`
	State json.RawMessage `json:"state"`
	Error string          `json:"error,omitempty"`
}

// handleLive serves client-side navigations over a websocket. Each
// message runs the same boundary/portlet dance as the full page
// render, scoped to the nav block alone.
func (s *site) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	s.logger.Debug("live session started", "remote", conn.RemoteAddr())

	for {
		var req navRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("live session read failed", "err", err)
			}
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		update := s.renderNavFor(ctx, req)
		cancel()

		if err := conn.WriteJSON(update); err != nil {
			s.logger.Warn("live session write failed", "err", err)
			return
		}
	}
}

// renderNavFor renders just the nav portlet as the named route would
// have filled it.
func (s *site) renderNavFor(ctx context.Context, req navRequest) navUpdate {
	b := syncssr.NewBoundary(
		syncssr.WithLogger(s.logger),
		syncssr.WithObserver(s.obs),
	)
	nav := syncssr.NewPortlet[Nav](b)

	switch req.Route {
	case "home":
		nav.UpdateWith(ctx, func(ctx context.Context) (Nav, bool) {
			articles, err := s.store.Recent(ctx, 5)
			if err != nil {
				return Nav{}, false
			}
			return Nav{Caption: "Recent", Links: articleLinks(articles)}, true
		})

	case "article":
		nav.UpdateWith(ctx, func(ctx context.Context) (Nav, bool) {
			article, err := s.store.Get(ctx, req.Slug)
			if err != nil {
				return Nav{}, false
			}
			related, err := s.store.ByAuthor(ctx, article.Author)
			if err != nil || len(related) == 0 {
				return Nav{}, false
			}
			return Nav{Caption: "More by " + article.Author, Links: articleLinks(related)}, true
		})

	default:
		// Unknown routes contribute nothing; the nav resolves empty.
	}

	b.Exit()

	html, err := nav.Render(ctx, renderNav)
	if err != nil {
		return navUpdate{Error: "render timed out"}
	}
	state, err := nav.State(ctx)
	if err != nil {
		return navUpdate{Error: "state timed out"}
	}
	return navUpdate{HTML: html, State: state}
}
