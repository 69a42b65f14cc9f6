package api

import (
	_ "embed"
	"log"

	"gopkg.in/yaml.v3"
)

// catalogData contains the embedded fallback ISO catalog.
//
//go:embed catalog.yaml
var catalogData []byte

type fallbackCatalog struct {
	ISOs []ISO `yaml:"isos"`
}

// FallbackISOs returns the built-in ISO catalog. These entries are accepted
// by the wizard even before the control plane has a local copy.
func FallbackISOs() []ISO {
	var catalog fallbackCatalog
	if err := yaml.Unmarshal(catalogData, &catalog); err != nil {
		// The catalog is embedded at build time; a parse failure is a
		// packaging bug, not a runtime condition.
		log.Printf("Warning: failed to parse embedded ISO catalog: %v", err)
		return nil
	}
	return catalog.ISOs
}

// mergeISOCatalog merges remote ISOs with the fallback catalog.
// Remote entries win on ID collisions.
func mergeISOCatalog(remote []ISO) []ISO {
	seen := make(map[string]bool, len(remote))
	merged := make([]ISO, 0, len(remote))

	for _, iso := range remote {
		seen[iso.ID] = true
		merged = append(merged, iso)
	}
	for _, iso := range FallbackISOs() {
		if !seen[iso.ID] {
			merged = append(merged, iso)
		}
	}

	return merged
}
