package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/atlas/internal/borders"
	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/ui/features"
	"github.com/leapstack-labs/atlas/pkg/core"
)

func newTestModel(t *testing.T) (Model, *features.FakeProvider) {
	t.Helper()
	p := features.NewFakeProvider(features.SampleCountries()...)
	m := New(t.Context(), directory.New(features.SampleCountries()), borders.NewResolver(p))
	return m, p
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func press(t *testing.T, m Model, k tea.KeyType) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

func names(countries []core.Country) []string {
	out := make([]string, len(countries))
	for i, c := range countries {
		out[i] = c.Name
	}
	return out
}

func TestModel_FiltersOnEveryKeystroke(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Len(t, m.Filtered(), len(features.SampleCountries()))

	m = typeText(t, m, "ja")
	assert.Equal(t, "ja", m.Keyword())
	assert.Equal(t, []string{"Japan"}, names(m.Filtered()))

	m, _ = press(t, m, tea.KeyBackspace)
	m, _ = press(t, m, tea.KeyBackspace)
	assert.Empty(t, m.Keyword())
	assert.Len(t, m.Filtered(), len(features.SampleCountries()))
}

func TestModel_FilterMatchesRegionCaseInsensitively(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeText(t, m, "EUROPE")

	assert.Equal(t, []string{"France", "Germany", "Spain", "Italy"}, names(m.Filtered()))
}

func TestModel_NoMatch(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeText(t, m, "zzz")

	assert.Empty(t, m.Filtered())
	assert.Contains(t, m.View(), `No countries match "zzz"`)

	// Enter on an empty table stays in the list.
	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, listView, m.view)
}

func TestModel_DetailResolvesNeighboursInOrder(t *testing.T) {
	m, p := newTestModel(t)
	p.Delay("DEU", 30*time.Millisecond)

	m = typeText(t, m, "france")
	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, detailView, m.view)
	assert.Contains(t, m.View(), "resolving")

	next, _ := m.Update(cmd())
	m = next.(Model)

	require.NoError(t, m.err)
	assert.Equal(t, []string{"Germany", "Spain", "Italy"}, names(m.neighbours))
	view := m.View()
	assert.Contains(t, view, "France (FRA)")
	assert.Contains(t, view, "DEU Germany")

	m, _ = press(t, m, tea.KeyEsc)
	assert.Equal(t, listView, m.view)
	assert.Equal(t, "france", m.Keyword(), "keyword survives the detail view")
}

func TestModel_DetailFailureShowsError(t *testing.T) {
	m, p := newTestModel(t)
	p.Fail("ESP", errors.New("boom"))

	m = typeText(t, m, "france")
	m, cmd := press(t, m, tea.KeyEnter)
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	m = next.(Model)

	assert.Empty(t, m.neighbours)
	assert.Contains(t, m.View(), "resolve border ESP")
}

func TestModel_DetailWithoutBorders(t *testing.T) {
	m, p := newTestModel(t)
	m = typeText(t, m, "japan")

	m, cmd := press(t, m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "none")
	assert.Zero(t, p.AlphaCalls.Load())
}

func TestModel_StaleBordersIgnored(t *testing.T) {
	m, _ := newTestModel(t)
	m = typeText(t, m, "france")
	m, _ = press(t, m, tea.KeyEnter)

	next, _ := m.Update(bordersMsg{code: "XXX", err: errors.New("stale")})
	m = next.(Model)
	assert.True(t, m.loading)
	assert.NoError(t, m.err)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := press(t, m, tea.KeyEsc)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
