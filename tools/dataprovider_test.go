package tools

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestMockDataProvider_ReadFile(t *testing.T) {
	mock := NewMockDataProvider()
	mock.AddFile("main-indexer/default/swagger.index", []byte("GET /v2/blocks | Blocks | 1-4"))

	content, err := mock.ReadFile("main-indexer/default/swagger.index")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(content) != "GET /v2/blocks | Blocks | 1-4" {
		t.Errorf("Unexpected content: %s", string(content))
	}

	if _, err := mock.ReadFile("main-indexer/missing.index"); err != fs.ErrNotExist {
		t.Errorf("Expected fs.ErrNotExist, got: %v", err)
	}
	if _, err := mock.ReadFile("../etc/passwd"); !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("Expected fs.ErrInvalid for escaping name, got: %v", err)
	}
}

func TestMockDataProvider_ReadDir(t *testing.T) {
	mock := NewMockDataProvider()
	mock.AddFile("main-indexer/default/swagger.yaml", []byte("a"))
	mock.AddFile("main-indexer/default/swagger.index", []byte("b"))
	mock.AddFile("main-indexer/zksync/swagger.yaml", []byte("c"))
	mock.AddFile("stats-service/swagger.yaml", []byte("d"))

	tests := []struct {
		name string
		dir  string
		want []string
		dirs []bool
	}{
		{"root", ".", []string{"main-indexer", "stats-service"}, []bool{true, true}},
		{"source", "main-indexer", []string{"default", "zksync"}, []bool{true, true}},
		{"variant", "main-indexer/default", []string{"swagger.index", "swagger.yaml"}, []bool{false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := mock.ReadDir(tt.dir)
			if err != nil {
				t.Fatalf("ReadDir(%q) error: %v", tt.dir, err)
			}
			if len(entries) != len(tt.want) {
				t.Fatalf("ReadDir(%q) returned %d entries, want %d", tt.dir, len(entries), len(tt.want))
			}
			for i, e := range entries {
				if e.Name() != tt.want[i] || e.IsDir() != tt.dirs[i] {
					t.Errorf("entry %d = %s (dir=%v), want %s (dir=%v)", i, e.Name(), e.IsDir(), tt.want[i], tt.dirs[i])
				}
			}
		})
	}

	if _, err := mock.ReadDir("main"); err != fs.ErrNotExist {
		t.Errorf("a name prefix is not a directory, got: %v", err)
	}
}

func TestDirDataProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "stats-service"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stats-service", "swagger.yaml"), []byte("paths: {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewDirDataProvider(dir)
	content, err := p.ReadFile("stats-service/swagger.yaml")
	if err != nil || string(content) != "paths: {}\n" {
		t.Errorf("ReadFile() = %q, %v", content, err)
	}

	entries, err := p.ReadDir(".")
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		t.Errorf("ReadDir(.) = %v, %v", entries, err)
	}

	if _, err := p.ReadFile("../outside.yaml"); err == nil {
		t.Error("ReadFile() should reject names outside the root")
	}
	if _, err := p.ReadFile("stats-service/missing.yaml"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist, got: %v", err)
	}
}
