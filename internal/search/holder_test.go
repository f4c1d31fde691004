package search

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestHolderAcquireBeforeStore(t *testing.T) {
	var h Holder
	if h.Loaded() {
		t.Fatal("Loaded() = true on empty holder")
	}
	_, release, err := h.Acquire()
	release()
	if !errors.Is(err, ErrNoIndex) {
		t.Errorf("Acquire() error = %v, want ErrNoIndex", err)
	}
}

func TestHolderConcurrentReads(t *testing.T) {
	var h Holder
	h.Replace(newMockIndex(1))

	const numReaders = 50
	var wg sync.WaitGroup
	errs := make(chan error, numReaders)

	for i := 0; i < numReaders; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			idx, release, err := h.Acquire()
			defer release()
			if err != nil {
				errs <- fmt.Errorf("reader %d: %v", id, err)
				return
			}
			count, err := idx.DocCount()
			if err != nil {
				errs <- fmt.Errorf("reader %d: DocCount failed: %v", id, err)
				return
			}
			if count != 100 {
				errs <- fmt.Errorf("reader %d: expected 100, got %d", id, count)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestHolderReplaceClosesOldAfterSearches(t *testing.T) {
	var h Holder
	first := newMockIndex(1)
	h.Replace(first)

	idx, release, err := h.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	second := newMockIndex(2)
	done := h.Replace(second)

	// The in-flight search still holds the first index
	if _, err := idx.DocCount(); err != nil {
		t.Errorf("old index closed while in use: %v", err)
	}
	select {
	case <-done:
		t.Fatal("old index closed before release")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("old index never closed")
	}
	if !first.closed.Load() {
		t.Error("first index should be closed")
	}

	now, release2, err := h.Acquire()
	defer release2()
	if err != nil || now != Index(second) {
		t.Errorf("Acquire() = %v, %v; want second index", now, err)
	}
}

func TestHolderRefreshSerializes(t *testing.T) {
	var h Holder
	const numGoroutines = 10
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			err := h.Refresh(func() (Index, error) {
				old := counter
				time.Sleep(time.Millisecond)
				counter = old + 1
				return newMockIndex(id), nil
			})
			if err != nil {
				t.Errorf("Refresh() error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if counter != numGoroutines {
		t.Errorf("counter = %d, want %d (refresh not serialized)", counter, numGoroutines)
	}
}

func TestHolderRefreshKeepsIndexOnError(t *testing.T) {
	var h Holder
	first := newMockIndex(1)
	h.Replace(first)

	wantErr := errors.New("boom")
	if err := h.Refresh(func() (Index, error) { return nil, wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("Refresh() error = %v, want %v", err, wantErr)
	}
	idx, release, _ := h.Acquire()
	release()
	if idx != Index(first) {
		t.Error("failed refresh should keep the previous index")
	}
}

func TestHolderClose(t *testing.T) {
	var h Holder
	if err := h.Close(); err != nil {
		t.Errorf("Close() on empty holder error: %v", err)
	}
	m := newMockIndex(1)
	h.Replace(m)
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !m.closed.Load() || h.Loaded() {
		t.Error("Close() should close and detach the index")
	}
}
