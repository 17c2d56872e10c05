package main

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Article is the content unit the demo site serves.
type Article struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Published time.Time `json:"published"`
}

// Store is the article backend. The in-memory implementation below is
// the default; an S3-backed one is available under the s3example build
// tag.
type Store interface {
	// Recent returns up to n articles, newest first.
	Recent(ctx context.Context, n int) ([]Article, error)

	// Get returns the article with the given slug.
	Get(ctx context.Context, slug string) (Article, error)

	// ByAuthor returns the author's articles, newest first.
	ByAuthor(ctx context.Context, author string) ([]Article, error)
}

// notFoundError is returned by Get for unknown slugs.
type notFoundError struct{ slug string }

func (e notFoundError) Error() string {
	return "article not found: " + e.slug
}

// memStore holds articles in memory with a simulated per-call fetch
// latency, so the demo actually exercises the wait path.
type memStore struct {
	mu       sync.RWMutex
	articles map[string]Article
	latency  time.Duration
}

func newMemStore(latency time.Duration) *memStore {
	s := &memStore{
		articles: make(map[string]Article),
		latency:  latency,
	}
	now := time.Now()
	seed := []Article{
		{Slug: "streaming-ssr", Title: "Streaming SSR without tears", Author: "mira", Published: now.Add(-1 * time.Hour)},
		{Slug: "readiness-slots", Title: "Readiness slots explained", Author: "mira", Published: now.Add(-26 * time.Hour)},
		{Slug: "portlets", Title: "The portlet pattern", Author: "jun", Published: now.Add(-50 * time.Hour)},
		{Slug: "go-channels", Title: "Broadcast channels in Go", Author: "jun", Published: now.Add(-72 * time.Hour)},
	}
	for _, a := range seed {
		a.Body = "Lorem ipsum dolor sit amet."
		s.articles[a.Slug] = a
	}
	return s
}

func (s *memStore) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *memStore) Recent(ctx context.Context, n int) ([]Article, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Article, 0, len(s.articles))
	for _, a := range s.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Published.After(out[j].Published) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *memStore) Get(ctx context.Context, slug string) (Article, error) {
	if err := s.wait(ctx); err != nil {
		return Article{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[slug]
	if !ok {
		return Article{}, notFoundError{slug: slug}
	}
	return a, nil
}

func (s *memStore) ByAuthor(ctx context.Context, author string) ([]Article, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Article
	for _, a := range s.articles {
		if a.Author == author {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Published.After(out[j].Published) })
	return out, nil
}
