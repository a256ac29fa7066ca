package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/cli/config"
	"github.com/leapstack-labs/atlas/internal/cli/testutil"
	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/site"
	"github.com/leapstack-labs/atlas/internal/ui/features"
	"github.com/leapstack-labs/atlas/pkg/core"
)

func TestNewListCommand(t *testing.T) {
	cmd := NewListCommand()

	assert.Equal(t, "list", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"filter", "sort", "order"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewShowCommand(t *testing.T) {
	cmd := NewShowCommand()

	assert.Equal(t, "show <code>", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("lenient"))
	assert.Error(t, cmd.Args(cmd, nil), "a code is required")
}

func TestNewBuildCommand(t *testing.T) {
	cmd := NewBuildCommand()

	assert.Equal(t, "build", cmd.Use)
	for _, flag := range []string{"out-dir", "concurrency", "minify", "check-links", "base-path"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.Equal(t, []string{"ui"}, cmd.Aliases)
	for _, flag := range []string{"port", "watch", "dev", "no-browser"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestRenderCountryTable(t *testing.T) {
	countries := features.SampleCountries()

	var text bytes.Buffer
	renderCountryTable(&text, countries[:1], false)
	assert.Contains(t, text.String(), "France")
	assert.Contains(t, text.String(), "67,391,582")
	assert.Contains(t, text.String(), "32.4 %")

	var md bytes.Buffer
	renderCountryTable(&md, countries, true)
	assert.Contains(t, md.String(), "| Code |")
	assert.Contains(t, md.String(), "JPN")
	assert.Contains(t, md.String(), "N/A", "Japan has no area in the sample")
	testutil.AssertValidMarkdown(t, md.String())

	var empty bytes.Buffer
	renderCountryTable(&empty, nil, false)
	assert.Equal(t, "(no matching countries)\n", empty.String())
}

func newTestSession(t *testing.T) (*searchSession, *features.FakeProvider, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	p := features.NewFakeProvider(features.SampleCountries()...)
	var out, errOut bytes.Buffer
	s := newSearchSession(directory.New(features.SampleCountries()), p, borders.NewResolver(p), &out, &errOut)
	return s, p, &out, &errOut
}

func TestSearchSession_Filter(t *testing.T) {
	s, _, out, _ := newTestSession(t)

	assert.False(t, s.handleLine(t.Context(), "  JAP "))
	assert.Contains(t, out.String(), "1 matching")
	assert.Contains(t, out.String(), "Japan")
	assert.NotContains(t, out.String(), "France")

	out.Reset()
	s.handleLine(t.Context(), "")
	assert.Contains(t, out.String(), "5 matching")

	out.Reset()
	s.handleLine(t.Context(), "atlantis")
	assert.Contains(t, out.String(), "0 matching")
	assert.Contains(t, out.String(), "(no matching countries)")
}

func TestSearchSession_Sort(t *testing.T) {
	s, _, out, errOut := newTestSession(t)

	s.handleLine(t.Context(), ".sort population desc")
	assert.Contains(t, out.String(), "sorting by population desc")

	out.Reset()
	s.handleLine(t.Context(), "europe")
	text := out.String()
	assert.Less(t, strings.Index(text, "Germany"), strings.Index(text, "France"))
	assert.Less(t, strings.Index(text, "France"), strings.Index(text, "Spain"))

	s.handleLine(t.Context(), ".sort capital")
	assert.Contains(t, errOut.String(), "unknown sort field")

	out.Reset()
	s.handleLine(t.Context(), ".sort none")
	assert.Contains(t, out.String(), "sorting by provider order")
}

func TestSearchSession_Show(t *testing.T) {
	s, p, out, errOut := newTestSession(t)

	s.handleLine(t.Context(), ".show fra")
	text := out.String()
	assert.Contains(t, text, "France (FRA), Europe")
	assert.Less(t, strings.Index(text, "DEU Germany"), strings.Index(text, "ESP Spain"))
	assert.Less(t, strings.Index(text, "ESP Spain"), strings.Index(text, "ITA Italy"))

	p.Fail("ITA", errors.New("boom"))
	out.Reset()
	s.handleLine(t.Context(), ".show FRA")
	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "resolve border ITA")

	errOut.Reset()
	s.handleLine(t.Context(), ".show XXX")
	assert.Contains(t, errOut.String(), "no country with code XXX")
}

func TestSearchSession_DotCommands(t *testing.T) {
	s, _, out, errOut := newTestSession(t)

	assert.False(t, s.handleLine(t.Context(), ".help"))
	assert.Contains(t, out.String(), ".sort <field> [order]")

	out.Reset()
	s.handleLine(t.Context(), ".regions")
	assert.Equal(t, "Europe\nAsia\n", out.String())

	s.handleLine(t.Context(), ".bogus")
	assert.Contains(t, errOut.String(), "Unknown command: .bogus")

	assert.True(t, s.handleLine(t.Context(), ".quit"))
	assert.True(t, s.handleLine(t.Context(), ".EXIT"))
}

func TestNewCountryCompleter(t *testing.T) {
	c := newCountryCompleter(directory.New(features.SampleCountries()))

	candidates, length := c.Do([]rune("fr"), 2)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ance ", string(candidates[0]))
	assert.Equal(t, 2, length)
}

func TestResolveNeighbours(t *testing.T) {
	p := features.NewFakeProvider(features.SampleCountries()...)
	p.Fail("ESP", errors.New("boom"))
	resolver := borders.NewResolver(p)
	france := features.SampleCountries()[0]

	_, err := resolveNeighbours(t.Context(), resolver, france, false)
	var lookupErr *borders.LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, core.Code("ESP"), lookupErr.Code)

	out, err := resolveNeighbours(t.Context(), resolver, france, true)
	require.NoError(t, err)
	require.Len(t, out.Neighbours, 2)
	assert.Equal(t, "Germany", out.Neighbours[0].Name)
	assert.Equal(t, "Italy", out.Neighbours[1].Name)
	assert.Equal(t, []string{"ESP"}, out.Unresolved)
}

func TestShowText(t *testing.T) {
	tr := testutil.NewTestRendererText()
	countries := features.SampleCountries()

	showText(tr.Renderer, &ShowOutput{Country: countries[0], Neighbours: countries[1:4]})

	got := tr.Output()
	testutil.AssertNoANSI(t, got)
	assert.Contains(t, got, "France (FRA)")
	assert.Contains(t, got, "Capital: Paris")
	assert.Contains(t, got, "Currencies: Euro")
	assert.Contains(t, got, "Gini: 32.4 %")
	assert.Contains(t, got, "DEU Germany\nESP Spain\nITA Italy")
	assert.Contains(t, got, "Area: 640,679 km²")
}

func TestShowText_MissingArea(t *testing.T) {
	tr := testutil.NewTestRendererText()
	japan := features.SampleCountries()[4]
	require.Nil(t, japan.Area)

	showText(tr.Renderer, &ShowOutput{Country: japan})

	got := tr.Output()
	assert.Contains(t, got, "Area: N/A\n")
	assert.NotContains(t, got, "N/A km²")
}

func TestDetailMarkdown(t *testing.T) {
	countries := features.SampleCountries()

	md, err := detailMarkdown(t.Context(), &ShowOutput{Country: countries[0], Neighbours: countries[1:4]})
	require.NoError(t, err)

	testutil.AssertValidMarkdown(t, md)
	assert.Contains(t, md, "# France")
	assert.Contains(t, md, "Paris")
	assert.Contains(t, md, "Germany")
	assert.Contains(t, md, "/country/DEU/")
}

// loadProject points the config at a temporary project.
func loadProject(t *testing.T) string {
	t.Helper()
	dir := testutil.SetupTestProject(t, features.SampleCountries())
	t.Chdir(dir)
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	_, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	return dir
}

func TestRunList_Project(t *testing.T) {
	loadProject(t)

	cmd := NewListCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--filter", "southern"})
	require.NoError(t, cmd.Execute())

	got := out.String()
	assert.Contains(t, got, "# Countries (2 of 5)")
	assert.Contains(t, got, "Spain")
	assert.Contains(t, got, "Italy")
	assert.NotContains(t, got, "Germany")
}

func TestRunBuild_Project(t *testing.T) {
	dir := loadProject(t)

	cmd := NewBuildCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "Built 6 pages for 5 countries")
	assert.FileExists(t, filepath.Join(dir, "dist", site.IndexFile))
	assert.FileExists(t, filepath.Join(dir, "dist", site.CountryDir, "JPN", site.IndexFile))
}

func TestRunConfig_JSON(t *testing.T) {
	dir := loadProject(t)
	config.GetCurrentConfig().OutputFormat = "json"

	cmd := NewConfigCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	var cfg config.Config
	require.NoError(t, json.Unmarshal(out.Bytes(), &cfg))
	assert.Equal(t, "file", cfg.Provider.Type)
	assert.Equal(t, filepath.Join(dir, "data", "countries.json"), cfg.Provider.File)
}
