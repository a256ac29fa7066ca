package home

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/atlas/internal/directory"
	"github.com/leapstack-labs/atlas/internal/ui/components"
	"github.com/leapstack-labs/atlas/internal/ui/notifier"
)

// Options tunes the listing page.
type Options struct {
	// SearchDebounce delays the search request after the last keystroke.
	SearchDebounce time.Duration
}

// Handlers provides HTTP handlers for the home feature.
type Handlers struct {
	snapshot     *directory.Snapshot
	sessionStore sessions.Store
	notifier     *notifier.Notifier
	opts         Options
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(snapshot *directory.Snapshot, sessionStore sessions.Store, notify *notifier.Notifier, opts Options, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		snapshot:     snapshot,
		sessionStore: sessionStore,
		notifier:     notify,
		opts:         opts,
		logger:       logger,
	}
}

// HomePage renders the listing page, filtered by the keyword saved in the session.
func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	dir := h.snapshot.Current()
	keyword := h.sessionKeyword(r)

	data := components.HomeData{
		TableData: components.TableData{
			Countries: dir.Search(keyword),
			Keyword:   keyword,
			Paths:     components.LivePaths,
			Live:      true,
		},
		Total:    dir.Len(),
		Debounce: debounce(h.opts.SearchDebounce),
	}

	if err := components.HomePage(data).Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Search filters and sorts the table from the page signals and patches it in place.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	// Read signals and save the session BEFORE creating SSE (it writes the headers)
	var signals SearchSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(err)
		return
	}

	field, err := directory.ParseSortField(signals.OrderBy)
	if err != nil {
		field = directory.SortNone
	}
	order, err := directory.ParseOrder(signals.Order)
	if err != nil {
		order = directory.Asc
	}

	h.saveKeyword(w, r, signals.Keyword)

	sse := datastar.NewSSE(w, r)

	dir := h.snapshot.Current()
	matches := directory.Sort(dir.Search(signals.Keyword), field, order)
	h.logger.Debug("search", "keyword", signals.Keyword, "order_by", field, "order", order, "matches", len(matches))

	table := components.CountriesTable(components.TableData{
		Countries: matches,
		Keyword:   signals.Keyword,
		Sort:      components.SortState{Field: field, Order: order},
		Paths:     components.LivePaths,
		Live:      true,
	})
	if err := sse.PatchElementTempl(table); err != nil {
		h.logger.Debug("search patch failed", "error", err)
	}
}

// Updates is the long-lived SSE endpoint of the listing page. It reloads the
// page whenever the directory is replaced. Nothing is sent on connect.
func (h *Handlers) Updates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			h.logger.Debug("directory replaced, reloading page", "seq", u.Seq, "countries", u.Countries)
			if err := sse.ExecuteScript("window.location.reload()"); err != nil {
				return
			}
		}
	}
}

func (h *Handlers) sessionKeyword(r *http.Request) string {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		return ""
	}
	keyword, _ := session.Values[keywordKey].(string)
	return keyword
}

func (h *Handlers) saveKeyword(w http.ResponseWriter, r *http.Request, keyword string) {
	session, err := h.sessionStore.Get(r, sessionName)
	if err != nil {
		// Undecodable cookie (e.g. rotated secret); Get still returns a fresh session.
		h.logger.Debug("discarding session", "error", err)
	}
	if session == nil {
		return
	}
	session.Values[keywordKey] = keyword
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("failed to save session", "error", err)
	}
}

// debounce formats d as a datastar modifier argument, which only accepts
// whole milliseconds or seconds.
func debounce(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	return fmt.Sprintf("%dms", d.Milliseconds())
}
