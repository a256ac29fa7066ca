package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/atlas/pkg/core"
)

type sourceFunc func(ctx context.Context) ([]core.Country, error)

func (f sourceFunc) All(ctx context.Context) ([]core.Country, error) { return f(ctx) }

func TestLoad(t *testing.T) {
	src := sourceFunc(func(context.Context) ([]core.Country, error) {
		return []core.Country{{Name: "France", Alpha3Code: "FRA"}}, nil
	})

	snap, err := Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Current().Len())
	assert.False(t, snap.LoadedAt().IsZero())

	_, err = Load(context.Background(), sourceFunc(func(context.Context) ([]core.Country, error) {
		return nil, errors.New("boom")
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSnapshot_Reload(t *testing.T) {
	snap := NewSnapshot(New([]core.Country{{Name: "France", Alpha3Code: "FRA"}}))

	n, err := snap.Reload(context.Background(), sourceFunc(func(context.Context) ([]core.Country, error) {
		return []core.Country{{Name: "Germany", Alpha3Code: "DEU"}, {Name: "Japan", Alpha3Code: "JPN"}}, nil
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, ok := snap.Current().Lookup("DEU")
	assert.True(t, ok)
	_, ok = snap.Current().Lookup("FRA")
	assert.False(t, ok)
}

func TestSnapshot_ReloadErrorKeepsCurrent(t *testing.T) {
	snap := NewSnapshot(New([]core.Country{{Name: "France", Alpha3Code: "FRA"}}))

	_, err := snap.Reload(context.Background(), sourceFunc(func(context.Context) ([]core.Country, error) {
		return nil, errors.New("unavailable")
	}))
	require.Error(t, err)
	_, ok := snap.Current().Lookup("FRA")
	assert.True(t, ok)
}

func TestSnapshot_NilDirectory(t *testing.T) {
	snap := NewSnapshot(nil)
	assert.Equal(t, 0, snap.Current().Len())
	assert.Empty(t, snap.Current().Search(""))
}

func TestSnapshot_ConcurrentReadReplace(t *testing.T) {
	snap := NewSnapshot(New(nil))
	lists := [][]core.Country{
		{{Name: "France", Alpha3Code: "FRA"}},
		{{Name: "Germany", Alpha3Code: "DEU"}, {Name: "Japan", Alpha3Code: "JPN"}},
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			snap.Replace(New(lists[i%2]))
		}()
		go func() {
			defer wg.Done()
			d := snap.Current()
			assert.Len(t, d.All(), d.Len())
		}()
	}
	wg.Wait()
}
