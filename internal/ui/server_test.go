package ui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/provider"
	"github.com/leapstack-labs/atlas/internal/testutil"
	"github.com/leapstack-labs/atlas/pkg/core"
)

func writeSnapshot(t *testing.T, path string, countries []core.Country) {
	t.Helper()
	data, err := json.Marshal(countries)
	require.NoError(t, err)
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, data, 0o600))
	require.NoError(t, os.Rename(tmp, path))
}

func newFileServer(t *testing.T, watch bool) (*Server, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "countries.json")
	writeSnapshot(t, path, []core.Country{
		{Name: "France", Alpha3Code: "FRA", Region: "Europe", Borders: []core.Code{"DEU"}},
		{Name: "Germany", Alpha3Code: "DEU", Region: "Europe", Borders: []core.Code{"FRA"}},
	})

	p := provider.NewFile(path)
	snap, err := directory.Load(context.Background(), p)
	require.NoError(t, err)

	cfg := Config{
		Provider:      p,
		Snapshot:      snap,
		SessionSecret: "test-secret-key-32-bytes-long!!",
		Logger:        testutil.NewTestLogger(t),
	}
	if watch {
		cfg.WatchFile = path
	}
	return NewServer(cfg), path
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Handler(t *testing.T) {
	s, _ := newFileServer(t, false)
	assert.False(t, s.IsDev())

	h, err := s.Handler()
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	defer ts.Close()

	status, body := get(t, ts.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Found 2 countries")

	status, body = get(t, ts.URL+"/country/DEU/")
	assert.Equal(t, http.StatusOK, status, "trailing slash is stripped")
	assert.Contains(t, body, "Germany")

	status, body = get(t, ts.URL+"/country/FRA/borders")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Germany")
}

func TestServer_Reload(t *testing.T) {
	s, path := newFileServer(t, false)

	updates := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(updates)

	writeSnapshot(t, path, []core.Country{{Name: "Japan", Alpha3Code: "JPN", Region: "Asia"}})
	require.NoError(t, s.Reload(context.Background()))

	select {
	case u := <-updates:
		assert.Equal(t, 1, u.Countries)
	case <-time.After(time.Second):
		t.Fatal("no update broadcast after reload")
	}

	_, ok := s.Snapshot().Current().Lookup("JPN")
	assert.True(t, ok)
}

func TestServer_ReloadFailureKeepsDirectory(t *testing.T) {
	s, path := newFileServer(t, false)

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))
	err := s.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrMalformed)
	assert.Equal(t, 2, s.Snapshot().Current().Len())
}

func TestServer_WatchSnapshot(t *testing.T) {
	s, path := newFileServer(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.watchSnapshot(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	updates := s.Notifier().Subscribe()
	defer s.Notifier().Unsubscribe(updates)

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeSnapshot(t, path, []core.Country{{Name: "Peru", Alpha3Code: "PER"}})

	select {
	case u := <-updates:
		assert.Equal(t, 1, u.Countries)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload the snapshot")
	}
	_, ok := s.Snapshot().Current().Lookup("PER")
	assert.True(t, ok)
}
