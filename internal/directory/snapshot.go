package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/leapstack-labs/atlas/pkg/core"
)

// Source supplies the full country list. core.Provider satisfies it.
type Source interface {
	All(ctx context.Context) ([]core.Country, error)
}

// Snapshot holds the current Directory and replaces it atomically on reload.
// Readers always see either the old or the new list, never a mix.
type Snapshot struct {
	mu       sync.RWMutex
	dir      *Directory
	loadedAt time.Time
}

// NewSnapshot creates a Snapshot holding dir.
func NewSnapshot(dir *Directory) *Snapshot {
	if dir == nil {
		dir = New(nil)
	}
	return &Snapshot{dir: dir, loadedAt: time.Now()}
}

// Load fetches the full list from p and returns a Snapshot over it.
func Load(ctx context.Context, p Source) (*Snapshot, error) {
	countries, err := p.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load countries: %w", err)
	}
	return NewSnapshot(New(countries)), nil
}

// Current returns the directory in effect.
func (s *Snapshot) Current() *Directory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// LoadedAt returns when the current directory was installed.
func (s *Snapshot) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Replace installs dir as the current directory.
func (s *Snapshot) Replace(dir *Directory) {
	s.mu.Lock()
	s.dir = dir
	s.loadedAt = time.Now()
	s.mu.Unlock()
}

// Reload re-fetches the list from p and installs it. On error the current
// directory is kept.
func (s *Snapshot) Reload(ctx context.Context, p Source) (int, error) {
	countries, err := p.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reload countries: %w", err)
	}
	s.Replace(New(countries))
	return len(countries), nil
}
