package models

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadSeedData reads the static threat batch shipped with the dashboard. The
// file is an ordered JSON array of threat records; order is preserved because
// the UI treats it as newest-first display order.
func LoadSeedData(path string) ([]ThreatRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeedData(data)
}

// ParseSeedData decodes and validates a seed batch. A single malformed record
// fails the whole load; a partial seed is worse than a loud startup error.
func ParseSeedData(data []byte) ([]ThreatRecord, error) {
	var records []ThreatRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}

	seen := make(map[string]struct{}, len(records))
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, fmt.Errorf("seed record %d: %w", i, err)
		}
		if _, dup := seen[records[i].ID]; dup {
			return nil, fmt.Errorf("seed record %d: duplicate id %q", i, records[i].ID)
		}
		seen[records[i].ID] = struct{}{}
	}
	return records, nil
}
