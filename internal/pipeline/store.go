package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is a thread-safe in-memory registry of extraction results with
// TTL eviction.
type Store struct {
	mu      sync.Mutex
	results map[string]*Result
	ttl     time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		results: make(map[string]*Result),
		ttl:     ttl,
	}
}

// Put assigns the result a new ID if it has none and stores it.
func (s *Store) Put(res *Result) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	s.results[res.ID] = res
	return res.ID
}

func (s *Store) Get(id string) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[id]
}

// List returns the stored results, oldest first.
func (s *Store) List() []*Result {
	s.mu.Lock()
	out := make([]*Result, 0, len(s.results))
	for _, res := range s.results {
		out = append(out, res)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Delete removes a result and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.results[id]
	delete(s.results, id)
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// Cleanup removes expired results.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, res := range s.results {
		if now.Sub(res.CreatedAt) > s.ttl {
			delete(s.results, id)
		}
	}
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
