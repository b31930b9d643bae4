package retrieval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"info-seeker-be/pkg/pipeline"
	"info-seeker-be/pkg/sources"
)

const DefaultSearchEndpoint = "https://serpapi.com/search.json"

var ErrMissingAPIKey = errors.New("web search API key not configured")

type WebConfig struct {
	APIKey     string
	Endpoint   string
	Engine     string
	MaxResults int
	Timeout    time.Duration
}

// Web searches the live web through SerpAPI.
type Web struct {
	cfg        WebConfig
	httpClient *http.Client
}

var _ pipeline.Retriever = (*Web)(nil)

func NewWeb(cfg WebConfig) *Web {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultSearchEndpoint
	}
	if cfg.Engine == "" {
		cfg.Engine = "duckduckgo"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Web{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

type serpResponse struct {
	OrganicResults []struct {
		Position int    `json:"position"`
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error,omitempty"`
}

func (w *Web) Lookup(ctx context.Context, query string) (*pipeline.Retrieval, error) {
	if w.cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	params := url.Values{}
	params.Set("api_key", w.cfg.APIKey)
	params.Set("engine", w.cfg.Engine)
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed serpResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("web search error: %s", parsed.Error)
	}

	out := &pipeline.Retrieval{}
	var b strings.Builder
	n := 0
	for _, r := range parsed.OrganicResults {
		if r.Link == "" {
			continue
		}
		if n == w.cfg.MaxResults {
			break
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", n, r.Title, r.Snippet, r.Link)
		out.Sources = append(out.Sources, sources.Source{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
			Origin:  sources.OriginWeb,
			Score:   rankScore(n),
		})
	}
	out.Text = strings.TrimSpace(b.String())
	return out, nil
}

// rankScore turns a 1-based result position into a relevance in (0, 1].
func rankScore(position int) float64 {
	return 1 / (1 + 0.1*float64(position-1))
}
