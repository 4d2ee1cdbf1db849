package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Traumerei-sf/tokumei-AI/internal/app"
)

const runTTL = 1 * time.Hour

type runEntry struct {
	Analysis  *app.AnalysisResult
	Prospects *app.ProspectResult
	CreatedAt time.Time
}

// resultStore is a thread-safe in-memory store with TTL expiry. Finished
// runs stay available for report viewing and list downloads until they age
// out; the database archive, when configured, is the durable copy.
type resultStore struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*runEntry
}

func newResultStore() *resultStore {
	return &resultStore{runs: make(map[uuid.UUID]*runEntry)}
}

func (s *resultStore) put(id uuid.UUID, e *runEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.CreatedAt = time.Now()
	s.runs[id] = e
}

func (s *resultStore) get(id uuid.UUID) (*runEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.runs[id]
	if !ok {
		return nil, false
	}
	if time.Since(e.CreatedAt) > runTTL {
		delete(s.runs, id)
		return nil, false
	}
	return e, true
}

// startPurge starts a background goroutine that evicts expired entries every 5 minutes.
func (s *resultStore) startPurge(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				for id, e := range s.runs {
					if time.Since(e.CreatedAt) > runTTL {
						delete(s.runs, id)
					}
				}
				s.mu.Unlock()
			}
		}
	}()
}
