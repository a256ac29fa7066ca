package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leapstack-labs/atlas/pkg/core"
)

// DefaultBaseURL is the REST Countries v2 endpoint.
const DefaultBaseURL = "https://restcountries.com/v2"

// DefaultFields is the projection requested from /all. It is exactly the set of
// fields the site renders.
var DefaultFields = []string{
	"name", "alpha3Code", "region", "subregion", "population", "area", "gini",
	"capital", "nativeName", "flag", "languages", "currencies", "borders",
}

// RestCountries interacts with the REST Countries API.
type RestCountries struct {
	client  *http.Client
	BaseURL string
	// Fields, when non-empty, is sent as the ?fields= projection.
	Fields []string
	logger *slog.Logger
}

// NewRestCountries creates a client. A zero timeout means requests never time out.
func NewRestCountries(baseURL string, timeout time.Duration) *RestCountries {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &RestCountries{
		client:  &http.Client{Timeout: timeout},
		BaseURL: strings.TrimRight(baseURL, "/"),
		logger:  slog.New(slog.DiscardHandler),
	}
}

// All fetches every country.
func (c *RestCountries) All(ctx context.Context) ([]core.Country, error) {
	var countries []core.Country
	if err := c.get(ctx, "/all", &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// Alpha fetches one country by alpha-3 code.
func (c *RestCountries) Alpha(ctx context.Context, code core.Code) (core.Country, error) {
	var country core.Country
	if err := c.get(ctx, "/alpha/"+url.PathEscape(string(code)), &country); err != nil {
		return core.Country{}, fmt.Errorf("alpha %s: %w", code, err)
	}
	return country, nil
}

func (c *RestCountries) get(ctx context.Context, path string, v any) error {
	u := c.BaseURL + path
	if len(c.Fields) > 0 {
		u += "?fields=" + strings.Join(c.Fields, ",")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("provider request", "url", u, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, URL: u}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
