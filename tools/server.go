package tools

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swagindex/mcp-server/internal/config"
	"github.com/swagindex/mcp-server/internal/search"
)

// Server holds the state shared by the endpoint tools.
type Server struct {
	cfg *config.Config

	// specs is rooted at the work dir, output at the output dir
	specs  DataProvider
	output DataProvider

	holder search.Holder
	lock   *search.Lock

	mu        sync.Mutex
	lastBuild time.Time
}

// NewServer wires the tools to the directories named in cfg.
func NewServer(cfg *config.Config) *Server {
	return NewServerWithProviders(cfg, NewDirDataProvider(cfg.WorkDir), NewDirDataProvider(cfg.OutputDir))
}

// NewServerWithProviders is NewServer with explicit file access, mainly for
// tests.
func NewServerWithProviders(cfg *config.Config, specs, output DataProvider) *Server {
	return &Server{
		cfg:    cfg,
		specs:  specs,
		output: output,
		lock:   search.NewLock(cfg.SearchDir),
	}
}

// Init opens the on-disk search index, building it from the line indexes
// when it is missing or stale.
func (s *Server) Init() error {
	startTime := time.Now()
	log.Printf("Initializing endpoint search...")

	if err := s.lock.Acquire(); err != nil {
		return fmt.Errorf("failed to acquire index lock: %w", err)
	}
	idx, err := search.Open(s.cfg.SearchDir)
	s.lock.Release()

	if err == nil {
		s.holder.Replace(idx)
		count, _ := idx.DocCount()
		s.markBuilt(indexModTime(s.cfg.SearchDir))
		log.Printf("✓ Endpoint search initialized (%d endpoints, local index) in %v", count, time.Since(startTime).Round(time.Millisecond))
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, search.ErrStaleIndex) {
		log.Printf("Warning: %v", err)
	}

	log.Printf("No usable index found, building from %s...", s.cfg.WorkDir)
	count, err := s.rebuild()
	if err != nil {
		return err
	}
	log.Printf("✓ Endpoint search initialized (%d endpoints, fresh index) in %v", count, time.Since(startTime).Round(time.Millisecond))
	return nil
}

// rebuild collects every line index and swaps a fresh search index in.
func (s *Server) rebuild() (int, error) {
	started := time.Now()
	var count int
	err := s.holder.Refresh(func() (search.Index, error) {
		if err := s.lock.Acquire(); err != nil {
			return nil, fmt.Errorf("failed to acquire index lock: %w", err)
		}
		defer s.lock.Release()

		docs, err := search.Collect(s.cfg.WorkDir, search.ConfigAnnotator(s.cfg), func(path string, err error) {
			log.Printf("Warning: Skipping unreadable index %s: %v", path, err)
		})
		if err != nil {
			return nil, err
		}
		count = len(docs)
		return search.Build(s.cfg.SearchDir, docs)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild search index: %w", err)
	}
	s.markBuilt(started)
	return count, nil
}

func (s *Server) markBuilt(t time.Time) {
	s.mu.Lock()
	s.lastBuild = t
	s.mu.Unlock()
}

// LastBuild is when the live index was built.
func (s *Server) LastBuild() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBuild
}

func indexModTime(dir string) time.Time {
	info, err := os.Stat(search.IndexPath(dir))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Register adds every tool to server and returns how many were added.
func (s *Server) Register(server *mcp.Server) int {
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "search_endpoints",
			Description: "Full-text search over indexed API endpoints (method, path, summary, destination). Returns the best matches with their source and line range.",
		},
		s.SearchEndpoints,
	)
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "get_endpoint",
			Description: "Returns the raw swagger document lines of one endpoint, located through its source's line index.",
		},
		s.GetEndpoint,
	)
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_destinations",
			Description: "Lists the generated reference files with their titles, sections and endpoint counts.",
		},
		s.ListDestinations,
	)
	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "refresh_search_index",
			Description: "Rebuilds the endpoint search index from the line indexes on disk (skipped when nothing changed unless force is set).",
		},
		s.RefreshSearchIndex,
	)
	return 4
}

// Close detaches and closes the search index.
func (s *Server) Close() error {
	if err := s.holder.Close(); err != nil {
		log.Printf("Error closing search index: %v", err)
		return err
	}
	log.Printf("✓ Search index closed successfully")
	return nil
}
