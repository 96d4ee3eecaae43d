package services

import (
	"context"
	"errors"
	"sync"
)

var errSearchSuperseded = errors.New("search superseded by a newer request")

type trackedSearch struct {
	cancel context.CancelCauseFunc
}

// searchTracker remembers the in-flight search per client so a newer search
// can cancel the one it replaces.
type searchTracker struct {
	mu       sync.Mutex
	inflight map[string]*trackedSearch
}

func newSearchTracker() *searchTracker {
	return &searchTracker{inflight: make(map[string]*trackedSearch)}
}

// begin registers a search for key, cancelling any earlier one. The returned
// release func must be called when the search finishes.
func (t *searchTracker) begin(ctx context.Context, key string) (context.Context, func()) {
	if key == "" {
		return ctx, func() {}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	entry := &trackedSearch{cancel: cancel}

	t.mu.Lock()
	if prev, ok := t.inflight[key]; ok {
		prev.cancel(errSearchSuperseded)
	}
	t.inflight[key] = entry
	t.mu.Unlock()

	return ctx, func() {
		t.mu.Lock()
		if t.inflight[key] == entry {
			delete(t.inflight, key)
		}
		t.mu.Unlock()
		cancel(nil)
	}
}
