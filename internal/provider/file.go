package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/leapstack-labs/atlas/pkg/core"
)

// File serves countries from a JSON array on disk, the same shape /all returns.
// The file is re-read on every All call so that edits are picked up by a watcher.
type File struct {
	Path string

	mu    sync.RWMutex
	index map[core.Code]core.Country
}

// NewFile creates a file provider for path.
func NewFile(path string) *File {
	return &File{Path: path}
}

// All reads and decodes the snapshot.
func (f *File) All(_ context.Context) ([]core.Country, error) {
	countries, err := f.read()
	if err != nil {
		return nil, err
	}

	index := make(map[core.Code]core.Country, len(countries))
	for _, c := range countries {
		index[core.NormalizeCode(string(c.Alpha3Code))] = c
	}

	f.mu.Lock()
	f.index = index
	f.mu.Unlock()

	return countries, nil
}

// Alpha looks a code up in the snapshot, loading it on first use.
func (f *File) Alpha(ctx context.Context, code core.Code) (core.Country, error) {
	f.mu.RLock()
	loaded := f.index != nil
	f.mu.RUnlock()

	if !loaded {
		if _, err := f.All(ctx); err != nil {
			return core.Country{}, err
		}
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.index[core.NormalizeCode(string(code))]
	if !ok {
		return core.Country{}, fmt.Errorf("alpha %s: %w", code, ErrNotFound)
	}
	return c, nil
}

func (f *File) read() ([]core.Country, error) {
	data, err := os.ReadFile(f.Path) //nolint:gosec // G304: path comes from trusted config
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", f.Path, err)
	}

	var countries []core.Country
	if err := json.Unmarshal(data, &countries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, f.Path, err)
	}
	return countries, nil
}
