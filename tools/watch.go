package tools

import (
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/swagindex/mcp-server/internal/indexing"
)

// DefaultWatchDebounce is how long the watcher waits for writes to settle.
const DefaultWatchDebounce = 2 * time.Second

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Watch rebuilds the search index whenever a line index under the work dir
// changes. Bursts of events within debounce collapse into one rebuild.
func (s *Server) Watch(debounce time.Duration) (io.Closer, error) {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	dir := s.cfg.WorkDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addWatchRecursive(watcher, dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		var (
			timer  *time.Timer
			timerC <-chan time.Time
		)
		resetTimer := func() {
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
				return
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)
			timerC = timer.C
		}

		for {
			select {
			case <-stopCh:
				if timer != nil {
					timer.Stop()
				}
				return
			case <-timerC:
				timerC = nil
				count, err := s.rebuild()
				if err != nil {
					log.Printf("Warning: auto refresh failed: %v", err)
					continue
				}
				log.Printf("✓ Auto refresh: %d endpoints indexed", count)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Warning: index watcher error: %v", err)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create != 0 {
					if fi, statErr := os.Stat(evt.Name); statErr == nil && fi.IsDir() {
						if addErr := addWatchRecursive(watcher, evt.Name); addErr != nil {
							log.Printf("Warning: index watcher add failed: path=%q err=%v", evt.Name, addErr)
						}
						// A directory may arrive already populated
						resetTimer()
						continue
					}
				}
				if shouldTriggerRefresh(evt) {
					resetTimer()
				}
			}
		}
	}()

	log.Printf("✓ Watching %s for line index changes (debounce %v)", dir, debounce)
	return closerFunc(func() error {
		close(stopCh)
		_ = watcher.Close()
		<-doneCh
		return nil
	}), nil
}

func shouldTriggerRefresh(evt fsnotify.Event) bool {
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Base(evt.Name) == indexing.IndexFileName
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
