package search

import "github.com/blevesearch/bleve/v2"

// Index is the part of bleve.Index that searches use. Tests substitute an
// in-memory fake.
type Index interface {
	Search(req *bleve.SearchRequest) (*bleve.SearchResult, error)
	DocCount() (uint64, error)
	Close() error
}

// diskIndex is a bleve index opened from the search directory.
type diskIndex struct {
	bleve.Index
	path string
}

func openDisk(path string) (*diskIndex, error) {
	idx, err := bleve.Open(path)
	if err != nil {
		return nil, err
	}
	return &diskIndex{Index: idx, path: path}, nil
}
