package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"street-bites/pkg/domain"
)

//go:embed snapshot.json
var bundledSnapshot []byte

// LoadSnapshot returns the catalog used for seeding and for degraded reads.
// An empty path selects the copy compiled into the binary.
func LoadSnapshot(path string) (domain.Catalog, error) {
	data := bundledSnapshot
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return domain.Catalog{}, fmt.Errorf("read snapshot: %w", err)
		}
	}

	var catalog domain.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return catalog, nil
}
