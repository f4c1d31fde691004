package search

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
)

const (
	DefaultMaxResults = 10
	MaxResultsLimit   = 20
)

// Hit is one scored endpoint.
type Hit struct {
	Doc   Doc     `json:"endpoint"`
	Score float64 `json:"score"`
}

// ClampResults applies the default and the upper limit to a requested size.
func ClampResults(n int) int {
	if n <= 0 {
		return DefaultMaxResults
	}
	if n > MaxResultsLimit {
		return MaxResultsLimit
	}
	return n
}

// Query runs a match query and returns the hits and the total match count.
func Query(idx Index, text string, max int) ([]Hit, uint64, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(text))
	req.Size = ClampResults(max)
	req.Fields = []string{"*"}

	res, err := idx.Search(req)
	if err != nil {
		return nil, 0, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{Doc: docFromFields(h.ID, h.Fields), Score: h.Score})
	}
	return hits, res.Total, nil
}

func docFromFields(id string, fields map[string]interface{}) Doc {
	d := Doc{ID: id}
	str := func(key string) string {
		s, _ := fields[key].(string)
		return s
	}
	num := func(key string) int {
		f, _ := fields[key].(float64)
		return int(f)
	}
	d.Source = str("source")
	d.Document = str("document")
	d.Service = str("service")
	d.Variant = str("variant")
	d.Method = str("method")
	d.Path = str("path")
	d.DisplayPath = str("display_path")
	d.Summary = str("summary")
	d.Destination = str("destination")
	d.Start = num("start")
	d.End = num("end")
	return d
}
