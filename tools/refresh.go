package tools

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swagindex/mcp-server/internal/indexing"
)

// RefreshSearchIndexInput defines input for refresh_search_index tool
type RefreshSearchIndexInput struct {
	Force bool `json:"force,omitempty" jsonschema:"Rebuild even when no line index changed (optional, defaults to false)"`
}

// RefreshSearchIndexOutput defines output for refresh_search_index tool
type RefreshSearchIndexOutput struct {
	Updated          bool      `json:"updated"`
	LastUpdate       time.Time `json:"last_update"`
	EndpointsIndexed int       `json:"endpoints_indexed"`
	Message          string    `json:"message"`
}

// RefreshSearchIndex rebuilds the index when a line index is newer than the
// last build, or always with force.
func (s *Server) RefreshSearchIndex(ctx context.Context, req *mcp.CallToolRequest, input RefreshSearchIndexInput) (*mcp.CallToolResult, RefreshSearchIndexOutput, error) {
	out, err := s.refresh(input.Force)
	if err != nil {
		return nil, out, err
	}
	return nil, out, nil
}

func (s *Server) refresh(force bool) (RefreshSearchIndexOutput, error) {
	last := s.LastBuild()
	if !force && s.holder.Loaded() && !newestIndexChange(s.cfg.WorkDir).After(last) {
		return RefreshSearchIndexOutput{
			LastUpdate: last,
			Message:    fmt.Sprintf("Search index is fresh (last built: %s)", last.Format(time.RFC3339)),
		}, nil
	}

	count, err := s.rebuild()
	if err != nil {
		return RefreshSearchIndexOutput{}, fmt.Errorf("refresh failed: %w", err)
	}
	return RefreshSearchIndexOutput{
		Updated:          true,
		LastUpdate:       s.LastBuild(),
		EndpointsIndexed: count,
		Message:          fmt.Sprintf("Search index rebuilt, %d endpoints indexed", count),
	}, nil
}

// newestIndexChange is the latest modification time of any line index below
// dir, zero when there is none.
func newestIndexChange(dir string) time.Time {
	var newest time.Time
	filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || d.Name() != indexing.IndexFileName {
			return nil
		}
		if info, err := d.Info(); err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}
