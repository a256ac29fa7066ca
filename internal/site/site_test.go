package site

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/testutil"
	"github.com/leapstack-labs/atlas/pkg/core"
)

type fakeProvider struct {
	countries []core.Country
	fail      map[core.Code]error

	mu    sync.Mutex
	calls map[core.Code]int
}

func newFakeProvider(countries ...core.Country) *fakeProvider {
	return &fakeProvider{countries: countries, fail: map[core.Code]error{}, calls: map[core.Code]int{}}
}

func (p *fakeProvider) All(context.Context) ([]core.Country, error) {
	return p.countries, nil
}

func (p *fakeProvider) Alpha(_ context.Context, code core.Code) (core.Country, error) {
	p.mu.Lock()
	p.calls[code]++
	p.mu.Unlock()

	if err := p.fail[code]; err != nil {
		return core.Country{}, err
	}
	for _, c := range p.countries {
		if c.Alpha3Code == code {
			return c, nil
		}
	}
	return core.Country{}, fmt.Errorf("alpha %s: not found", code)
}

func testCountries() []core.Country {
	return []core.Country{
		{Name: "France", Alpha3Code: "FRA", Region: "Europe", Subregion: "Western Europe", Borders: []core.Code{"DEU", "ESP"}},
		{Name: "Germany", Alpha3Code: "DEU", Region: "Europe", Subregion: "Central Europe", Borders: []core.Code{"FRA"}},
		{Name: "Spain", Alpha3Code: "ESP", Region: "Europe", Subregion: "Southern Europe", Borders: []core.Code{"FRA"}},
		{Name: "Japan", Alpha3Code: "JPN", Region: "Asia", Subregion: "Eastern Asia"},
	}
}

func readFile(t *testing.T, parts ...string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(parts...))
	require.NoError(t, err)
	return string(data)
}

func TestBuild(t *testing.T) {
	out := t.TempDir()
	p := newFakeProvider(testCountries()...)
	g := NewGenerator(p, nil, Options{OutputDir: out, CheckLinks: true, ProviderName: "test"}, testutil.NewTestLogger(t))

	result, err := g.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Pages)
	assert.Empty(t, result.BorderFailures)
	assert.Equal(t, 4, result.Manifest.CountryCount)
	assert.NotEmpty(t, result.Manifest.BuildID)

	index := readFile(t, out, IndexFile)
	assert.Contains(t, index, "Found 4 countries")
	assert.Contains(t, index, `href="/country/FRA/"`)
	assert.Contains(t, index, `src="/static/filter.js"`)
	assert.NotContains(t, index, "datastar")

	france := readFile(t, out, CountryDir, "FRA", IndexFile)
	assert.Contains(t, france, "<title>France - Atlas</title>")
	assert.Less(t, strings.Index(france, "Germany"), strings.Index(france, "Spain"))
	assert.Contains(t, france, `href="/country/DEU/"`)

	for _, code := range []string{"DEU", "ESP", "JPN"} {
		assert.FileExists(t, filepath.Join(out, CountryDir, code, IndexFile))
	}
	assert.FileExists(t, filepath.Join(out, StaticDir, "atlas.css"))
	assert.FileExists(t, filepath.Join(out, StaticDir, "filter.js"))

	var data []core.Country
	require.NoError(t, json.Unmarshal([]byte(readFile(t, out, DataDir, DataFile)), &data))
	assert.Len(t, data, 4)

	var manifest Manifest
	require.NoError(t, json.Unmarshal([]byte(readFile(t, out, ManifestFile)), &manifest))
	assert.Equal(t, result.Manifest.BuildID, manifest.BuildID)
	assert.Equal(t, "test", manifest.Provider)
	assert.Equal(t, []Region{{Name: "Europe", Countries: 3}, {Name: "Asia", Countries: 1}}, manifest.Regions)
}

func TestBuild_FetchesEachPageAndNeighbour(t *testing.T) {
	p := newFakeProvider(testCountries()...)
	g := NewGenerator(p, nil, Options{OutputDir: t.TempDir(), Concurrency: 2}, nil)

	_, err := g.Build(context.Background())
	require.NoError(t, err)

	// one primary fetch per page plus one per appearance as a neighbour
	assert.Equal(t, 1+2, p.calls["FRA"])
	assert.Equal(t, 1+1, p.calls["DEU"])
	assert.Equal(t, 1, p.calls["JPN"])
}

func TestBuild_BasePath(t *testing.T) {
	out := t.TempDir()
	g := NewGenerator(newFakeProvider(testCountries()...), nil, Options{OutputDir: out, BasePath: "/atlas/", CheckLinks: true}, nil)

	_, err := g.Build(context.Background())
	require.NoError(t, err)

	index := readFile(t, out, IndexFile)
	assert.Contains(t, index, `href="/atlas/country/JPN/"`)
	assert.Contains(t, index, `href="/atlas/static/atlas.css"`)
}

func TestBuild_NeighbourFailureLeavesPanelEmpty(t *testing.T) {
	out := t.TempDir()
	p := newFakeProvider(testCountries()...)
	g := NewGenerator(p, nil, Options{OutputDir: out}, testutil.NewTestLogger(t))

	// XXX has no page of its own, so only the neighbour lookup fails.
	france := testCountries()[0]
	france.Borders = []core.Code{"DEU", "XXX"}
	p.countries[0] = france

	result, err := g.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []core.Code{"FRA"}, result.BorderFailures)

	page := readFile(t, out, CountryDir, "FRA", IndexFile)
	assert.Contains(t, page, `id="borders"`)
	assert.NotContains(t, page, "Germany", "no partial neighbour list")
}

func TestBuild_PrimaryFailureFailsBuild(t *testing.T) {
	p := newFakeProvider(testCountries()...)
	p.fail["JPN"] = errors.New("connection reset")
	g := NewGenerator(p, nil, Options{OutputDir: t.TempDir()}, nil)

	_, err := g.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JPN")
}

func TestBuild_Minify(t *testing.T) {
	out := t.TempDir()
	g := NewGenerator(newFakeProvider(testCountries()...), nil, Options{OutputDir: out, Minify: true}, nil)

	_, err := g.Build(context.Background())
	require.NoError(t, err)

	css := readFile(t, out, StaticDir, "atlas.css")
	assert.NotContains(t, css, "\n  ")
	assert.Contains(t, css, ".container")
}

func TestMinify(t *testing.T) {
	js, err := Minify("a.js", []byte("function add(first, second) {\n  return first + second;\n}\nwindow.add = add;\n"))
	require.NoError(t, err)
	assert.NotContains(t, string(js), "first")

	css, err := Minify("a.css", []byte("body {\n  color: red;\n}\n"))
	require.NoError(t, err)
	assert.Equal(t, "body{color:red}\n", string(css))

	other, err := Minify("a.txt", []byte("keep  me"))
	require.NoError(t, err)
	assert.Equal(t, "keep  me", string(other))

	_, err = Minify("bad.js", []byte("function {"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "esbuild errors")
}

type failingCloser struct {
	io.Writer
	err error
}

func (f failingCloser) Close() error { return f.err }

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, WriteJSON(path, map[string]int{"count": 2}))
	assert.JSONEq(t, `{"count": 2}`, readFile(t, path))

	err := WriteJSON(filepath.Join(t.TempDir(), "missing", "data.json"), 1)
	require.Error(t, err)
}

func TestEncodeJSON_ReportsCloseError(t *testing.T) {
	closeErr := errors.New("disk full")

	var buf strings.Builder
	err := encodeJSON(failingCloser{Writer: &buf, err: closeErr}, []string{"FRA"})
	require.ErrorIs(t, err, closeErr)

	err = encodeJSON(failingCloser{Writer: &buf, err: closeErr}, func() {})
	require.Error(t, err)
	assert.NotErrorIs(t, err, closeErr, "encode error takes precedence")
}

// rowAttrs returns the data-* attributes of every a.row in an HTML page, keyed by data-code.
func rowAttrs(t *testing.T, page string) map[string]map[string]string {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	rows := map[string]map[string]string{}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			attrs := map[string]string{}
			for _, a := range n.Attr {
				attrs[a.Key] = a.Val
			}
			if attrs["class"] == "row" {
				rows[attrs["data-code"]] = attrs
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return rows
}

func TestBuild_RowsCarryFilterFields(t *testing.T) {
	countries := append(testCountries(),
		core.Country{Name: "Côte d'Ivoire", Alpha3Code: "CIV", Region: "Africa", Subregion: "Western Africa"},
		core.Country{Name: "ÅLAND Islands", Alpha3Code: "ALA", Region: "Europe", Subregion: "Northern Europe"},
	)
	out := t.TempDir()
	g := NewGenerator(newFakeProvider(countries...), nil, Options{OutputDir: out}, testutil.NewTestLogger(t))
	_, err := g.Build(context.Background())
	require.NoError(t, err)

	rows := rowAttrs(t, readFile(t, out, IndexFile))
	require.Len(t, rows, len(countries))
	for _, c := range countries {
		row, ok := rows[string(c.Alpha3Code)]
		require.True(t, ok, "row for %s", c.Alpha3Code)
		assert.Equal(t, strings.ToLower(c.Name), row["data-name"], c.Alpha3Code)
		assert.Equal(t, strings.ToLower(c.Region), row["data-region"], c.Alpha3Code)
		assert.Equal(t, strings.ToLower(c.Subregion), row["data-subregion"], c.Alpha3Code)
	}

	// The browser filter matches a lowercased keyword against these attributes;
	// it must keep exactly the rows the server-side filter keeps.
	for _, keyword := range []string{"", "EUROPE", "côte", "western", "åland", "zzz"} {
		want := map[string]bool{}
		for _, c := range directory.Filter(countries, keyword) {
			want[string(c.Alpha3Code)] = true
		}
		kw := strings.ToLower(keyword)
		got := map[string]bool{}
		for code, row := range rows {
			if kw == "" || strings.Contains(row["data-name"], kw) ||
				strings.Contains(row["data-region"], kw) || strings.Contains(row["data-subregion"], kw) {
				got[code] = true
			}
		}
		assert.Equal(t, want, got, "keyword %q", keyword)
	}
}
