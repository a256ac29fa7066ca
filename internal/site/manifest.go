package site

import (
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/atlas/internal/directory"
)

// Manifest describes one build. It is written next to the pages so a host can
// tell builds apart.
type Manifest struct {
	BuildID      string    `json:"build_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	CountryCount int       `json:"country_count"`
	Provider     string    `json:"provider,omitempty"`
	Regions      []Region  `json:"regions"`
}

// Region counts the countries of one region.
type Region struct {
	Name      string `json:"name"`
	Countries int    `json:"countries"`
}

// NewManifest creates a Manifest for dir.
func NewManifest(dir *directory.Directory, provider string) *Manifest {
	return &Manifest{
		BuildID:      uuid.NewString(),
		GeneratedAt:  time.Now().UTC(),
		CountryCount: dir.Len(),
		Provider:     provider,
		Regions:      countRegions(dir),
	}
}

// countRegions groups by region in order of first appearance.
func countRegions(dir *directory.Directory) []Region {
	regions := []Region{}
	index := make(map[string]int)
	for _, c := range dir.All() {
		name := c.Region
		if name == "" {
			name = "Other"
		}
		i, ok := index[name]
		if !ok {
			i = len(regions)
			index[name] = i
			regions = append(regions, Region{Name: name})
		}
		regions[i].Countries++
	}
	return regions
}
