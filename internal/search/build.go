package search

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/swagindex/mcp-server/internal/indexing"
)

const (
	indexDirName     = "index"
	indexVersionFile = ".index_version"
	batchSize        = 100
)

// ErrStaleIndex means the on-disk index was written by another schema
// version and has been removed.
var ErrStaleIndex = errors.New("search index schema version mismatch")

// IndexPath is where the bleve index lives under dir.
func IndexPath(dir string) string {
	return filepath.Join(dir, indexDirName)
}

// indexVersion reads the schema version recorded next to the index. A
// missing or unreadable file reads as 0.
func indexVersion(dir string) int {
	data, err := os.ReadFile(filepath.Join(dir, indexVersionFile))
	if err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return v
}

func writeIndexVersion(dir string) error {
	return os.WriteFile(filepath.Join(dir, indexVersionFile), []byte(strconv.Itoa(indexing.IndexSchemaVersion)), 0644)
}

// Open opens an existing index under dir. Stale or corrupted indexes are
// removed so the caller can rebuild.
func Open(dir string) (Index, error) {
	indexPath := IndexPath(dir)
	if _, err := os.Stat(indexPath); err != nil {
		return nil, err
	}

	if v := indexVersion(dir); v != indexing.IndexSchemaVersion {
		log.Printf("Index schema version mismatch (have: v%d, want: v%d), invalidating old index...", v, indexing.IndexSchemaVersion)
		os.RemoveAll(indexPath)
		os.Remove(filepath.Join(dir, indexVersionFile))
		return nil, ErrStaleIndex
	}

	index, err := openDisk(indexPath)
	if err != nil {
		log.Printf("Warning: Local index corrupted (%v), removing...", err)
		os.RemoveAll(indexPath)
		os.Remove(filepath.Join(dir, indexVersionFile))
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	return index, nil
}

// Build writes docs into a fresh index in a temp directory, then renames it
// over the live one and opens the result.
func Build(dir string, docs []Doc) (Index, error) {
	startTime := time.Now()
	indexPath := IndexPath(dir)
	tempIndexPath := indexPath + ".tmp"

	// Leftover from a crashed build
	os.RemoveAll(tempIndexPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create search directory: %w", err)
	}

	mapping := bleve.NewIndexMapping()
	newIndex, err := bleve.New(tempIndexPath, mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp index: %w", err)
	}

	fail := func(err error) (Index, error) {
		newIndex.Close()
		os.RemoveAll(tempIndexPath)
		return nil, err
	}

	batch := newIndex.NewBatch()
	for i, doc := range docs {
		if err := batch.Index(doc.ID, doc); err != nil {
			return fail(fmt.Errorf("failed to add %s to batch: %w", doc.ID, err))
		}
		if (i+1)%batchSize == 0 {
			if err := newIndex.Batch(batch); err != nil {
				return fail(fmt.Errorf("failed to index batch: %w", err))
			}
			batch = newIndex.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := newIndex.Batch(batch); err != nil {
			return fail(fmt.Errorf("failed to index final batch: %w", err))
		}
	}

	if err := newIndex.Close(); err != nil {
		os.RemoveAll(tempIndexPath)
		return nil, fmt.Errorf("failed to close temp index: %w", err)
	}

	if err := os.RemoveAll(indexPath); err != nil && !os.IsNotExist(err) {
		os.RemoveAll(tempIndexPath)
		return nil, fmt.Errorf("failed to remove old index: %w", err)
	}
	if err := os.Rename(tempIndexPath, indexPath); err != nil {
		os.RemoveAll(tempIndexPath)
		return nil, fmt.Errorf("failed to rename temp index: %w", err)
	}
	if err := writeIndexVersion(dir); err != nil {
		log.Printf("Warning: Failed to write index version: %v", err)
	}

	finalIndex, err := openDisk(indexPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open new index: %w", err)
	}
	log.Printf("✓ Indexed %d endpoints in %v", len(docs), time.Since(startTime).Round(time.Millisecond))
	return finalIndex, nil
}
