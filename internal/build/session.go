package build

import (
	"context"
	"log/slog"
	"sync"

	"github.com/strataframe/strata/pkg/routing"
)

// BuildSession tracks the output of one build run: which paths have been
// written and by which route. It is created at the start of a build and
// discarded at the end, so nothing about a build survives as process-wide
// state.
type BuildSession struct {
	store  OutputStore
	logger *slog.Logger

	mu      sync.Mutex
	written map[string]*routing.Route
	locks   map[string]*sync.Mutex
}

// NewSession creates the session for one build run.
func NewSession(store OutputStore, logger *slog.Logger) *BuildSession {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildSession{
		store:   store,
		logger:  logger,
		written: make(map[string]*routing.Route),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Claim registers route as the producer of an output path. When another
// route already claimed the path, matcher priority decides: a strictly
// more specific claimant takes the path over, anything else is refused.
func (s *BuildSession) Claim(name string, route *routing.Route) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	holder, ok := s.written[name]
	if !ok || holder == route {
		s.written[name] = route
		return true
	}
	if routing.MoreSpecific(route, holder) {
		s.written[name] = route
		return true
	}
	return false
}

// Written reports how many distinct output paths the session has claimed.
func (s *BuildSession) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.written)
}

// Write persists one output file. Writes to the same path are serialized
// so concurrent generations can never interleave into one file.
func (s *BuildSession) Write(ctx context.Context, name string, body []byte) error {
	lock := s.pathLock(name)
	lock.Lock()
	defer lock.Unlock()
	return s.store.Put(ctx, name, body)
}

func (s *BuildSession) pathLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}
