package search

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
)

// ErrNoIndex is returned by Acquire before any index has been stored.
var ErrNoIndex = errors.New("search index not initialized")

// Holder shares one live index between concurrent searches and occasional
// rebuilds. Reads are lock-free through the atomic pointer; replaced indexes
// are closed once in-flight searches drain.
type Holder struct {
	current atomic.Pointer[Index]

	// refreshMu serializes rebuilds. Searches never take it.
	refreshMu sync.Mutex

	// wg tracks in-flight searches
	wg sync.WaitGroup
}

// Acquire returns the live index and a release func that must be called
// when the caller is done with it.
func (h *Holder) Acquire() (Index, func(), error) {
	h.wg.Add(1)
	ptr := h.current.Load()
	if ptr == nil {
		h.wg.Done()
		return nil, func() {}, ErrNoIndex
	}
	return *ptr, h.wg.Done, nil
}

// Loaded reports whether an index is stored.
func (h *Holder) Loaded() bool {
	return h.current.Load() != nil
}

// Replace stores idx and closes the previous index in the background. The
// returned channel is closed after the previous index has been closed.
func (h *Holder) Replace(idx Index) <-chan struct{} {
	done := make(chan struct{})
	old := h.current.Swap(&idx)
	if old == nil {
		close(done)
		return done
	}
	go func(old Index) {
		defer close(done)
		h.wg.Wait()
		if err := old.Close(); err != nil {
			log.Printf("Warning: Error closing old index: %v", err)
		}
	}(*old)
	return done
}

// Refresh runs build while holding the rebuild mutex and stores its result.
func (h *Holder) Refresh(build func() (Index, error)) error {
	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	idx, err := build()
	if err != nil {
		return err
	}
	h.Replace(idx)
	return nil
}

// Close detaches the live index, waits for searches and closes it.
func (h *Holder) Close() error {
	ptr := h.current.Swap(nil)
	if ptr == nil {
		return nil
	}
	h.wg.Wait()
	return (*ptr).Close()
}
