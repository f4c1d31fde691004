package endpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/swagindex/mcp-server/internal/diag"
)

// MapFileName is the endpoint map written next to each fetched document set.
const MapFileName = "endpoints_map.json"

// LoadMap reads an endpoint map. Both a missing file and invalid JSON are
// fatal for the caller.
func LoadMap(path string) ([]*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Missing(path, err)
	}
	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, diag.Malformed(path, err)
	}
	return records, nil
}

// SaveMap writes records as an indented JSON array, creating parent dirs.
func SaveMap(path string, records []*Record) error {
	if records == nil {
		records = []*Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal endpoint map: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write endpoint map: %w", err)
	}
	return nil
}
