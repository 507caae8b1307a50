package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vetter/internal/config"
	"vetter/internal/services"
)

// Row is one raw submission: an opaque mapping of source column name to value.
type Row map[string]string

// Fetcher is the data source surface the ingest stage consumes.
type Fetcher interface {
	FetchAll(ctx context.Context) ([]Row, error)
}

// HTTPDoer describes the HTTP client used by the fetcher.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type httpFetcher struct {
	endpoint string
	token    string
	client   HTTPDoer
}

// NewHTTPFetcher constructs a fetcher that GETs the configured endpoint and
// decodes a JSON array of row objects.
func NewHTTPFetcher(cfg config.Source, client HTTPDoer) Fetcher {
	if client == nil {
		timeout := time.Duration(cfg.RequestTimeout) * time.Second
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &httpFetcher{
		endpoint: strings.TrimSpace(cfg.Endpoint),
		token:    strings.TrimSpace(cfg.Token),
		client:   client,
	}
}

func (f *httpFetcher) FetchAll(ctx context.Context) ([]Row, error) {
	if f.endpoint == "" {
		return nil, services.Wrap(services.ErrCollaborator, "ingest", "fetch rows", "source endpoint not configured", nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "ingest", "fetch rows", "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "ingest", "fetch rows", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(
			services.ErrCollaborator,
			"ingest", "fetch rows",
			fmt.Sprintf("source returned %d", resp.StatusCode),
			nil,
		)
	}

	var raw []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, services.Wrap(services.ErrCollaborator, "ingest", "fetch rows", "decode response", err)
	}

	rows := make([]Row, 0, len(raw))
	for _, entry := range raw {
		row := make(Row, len(entry))
		for name, value := range entry {
			row[name] = stringifyValue(value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// stringifyValue flattens source cell values to strings. Phone numbers often
// arrive as JSON numbers; keep integral values free of a trailing ".0".
func stringifyValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
