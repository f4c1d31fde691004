package specdoc

import (
	"github.com/swagindex/mcp-server/internal/diag"
)

// Cache holds documents loaded during a run, keyed by file path. Failed loads
// are remembered too, so a broken document is reported once and never retried.
type Cache struct {
	load   func(string) (*Document, error)
	diags  *diag.List
	docs   map[string]*Document
	failed map[string]error
}

// NewCache returns a cache that reports load failures into diags.
func NewCache(diags *diag.List) *Cache {
	return &Cache{
		load:   Load,
		diags:  diags,
		docs:   map[string]*Document{},
		failed: map[string]error{},
	}
}

// Get returns the document at path, loading it on first use. A document
// without a paths key counts as a failed load.
func (c *Cache) Get(path string) (*Document, error) {
	if doc, ok := c.docs[path]; ok {
		return doc, nil
	}
	if err, ok := c.failed[path]; ok {
		return nil, err
	}

	doc, err := c.load(path)
	if err == nil && !doc.HasPaths() {
		err = diag.Malformed(path, ErrNoPaths)
	}
	if err != nil {
		c.failed[path] = err
		c.diags.AddError(err)
		return nil, err
	}
	c.docs[path] = doc
	return doc, nil
}

// Len returns the number of successfully loaded documents.
func (c *Cache) Len() int { return len(c.docs) }
