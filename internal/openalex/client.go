// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openalex queries the OpenAlex Works API for match
// candidates, resolves DOIs to work IDs in batches, and fetches full
// work metadata. Results, rate limiting, and the in-flight request
// bound are shared safely across concurrent workers.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/bibmatch/internal/httputil"
	"github.com/pdiddy/bibmatch/pkg/types"
)

// apiBase is the OpenAlex Works endpoint. Declared as a var so tests
// can substitute an httptest server.
var apiBase = "https://api.openalex.org/works"

// doiBatchSize bounds DOIs per filter query to keep URLs short.
const doiBatchSize = 50

// Client talks to the OpenAlex Works API. Construct with NewClient;
// the zero value is not usable. A Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	cfg        types.RetrieverConfig
	cache      *queryCache
	limiter    *rate.Limiter
	inflight   chan struct{}
}

// NewClient builds a Client, applying defaults for unset config
// fields: 50 results per page, 1000 cached queries, 20 concurrent
// requests, 30s timeout.
func NewClient(cfg types.RetrieverConfig) *Client {
	if cfg.PerPage <= 0 || cfg.PerPage > 50 {
		cfg.PerPage = 50
	}
	if cfg.MaxConcurrentRequests <= 0 {
		cfg.MaxConcurrentRequests = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "bibmatch/0.1"
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		cache:      newQueryCache(cfg.CacheSize),
		limiter:    limiter,
		inflight:   make(chan struct{}, cfg.MaxConcurrentRequests),
	}
}

// get performs one rate-limited, retry-wrapped GET and returns the
// response body for a 200, a nil body for a 404 (absence is a normal
// outcome), or an error otherwise.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	select {
	case c.inflight <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.inflight }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Search queries the works endpoint with a free-text query and
// returns the first page of candidates. An empty query returns nil
// without a remote call. Results are cached by query string.
func (c *Client) Search(ctx context.Context, query string) ([]types.Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if cached, ok := c.cache.get(query); ok {
		return cached, nil
	}

	params := url.Values{
		"search":   {query},
		"per_page": {fmt.Sprintf("%d", c.cfg.PerPage)},
		"page":     {"1"},
	}
	if c.cfg.Email != "" {
		params.Set("mailto", c.cfg.Email)
	}

	body, err := c.get(ctx, apiBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}

	var wr worksResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	candidates := make([]types.Candidate, 0, len(wr.Results))
	for _, w := range wr.Results {
		candidates = append(candidates, w.toCandidate())
	}
	c.cache.put(query, candidates)
	return candidates, nil
}

// CandidatesForEntry merges the results of several query variants
// (title alone, plus first-author surname, plus year) into one
// candidate set deduplicated by work ID. An empty title returns nil
// without any remote call. Individual query failures are tolerated as
// long as at least one variant succeeds.
func (c *Client) CandidatesForEntry(ctx context.Context, title, firstAuthorLastName, year string) ([]types.Candidate, error) {
	if strings.TrimSpace(title) == "" {
		return nil, nil
	}

	queries := []string{title}
	if firstAuthorLastName != "" {
		queries = append(queries, title+" "+firstAuthorLastName)
	}
	if year != "" {
		queries = append(queries, title+" "+year)
		if firstAuthorLastName != "" {
			queries = append(queries, title+" "+firstAuthorLastName+" "+year)
		}
	}

	seen := make(map[string]bool)
	var merged []types.Candidate
	var lastErr error
	failures := 0
	for _, q := range queries {
		results, err := c.Search(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			failures++
			lastErr = err
			continue
		}
		for _, cand := range results {
			if cand.ID == "" || seen[cand.ID] {
				continue
			}
			seen[cand.ID] = true
			merged = append(merged, cand)
		}
	}
	if failures == len(queries) {
		return nil, lastErr
	}
	return merged, nil
}

// ResolveDOIs maps DOIs to short-form OpenAlex work IDs. The result
// has the same length and order as the input; unresolvable or blank
// DOIs map to "". Lookups run in batches of 50 via the doi filter;
// a failed batch leaves its positions empty and resolution continues.
// The returned error is non-nil only on context cancellation.
func (c *Client) ResolveDOIs(ctx context.Context, dois []string) ([]string, error) {
	resolved := make([]string, len(dois))
	if len(dois) == 0 {
		return resolved, nil
	}

	normalized := make([]string, len(dois))
	for i, doi := range dois {
		normalized[i] = normalizeDOI(doi)
	}

	for start := 0; start < len(normalized); start += doiBatchSize {
		end := min(start+doiBatchSize, len(normalized))
		batch := normalized[start:end]

		var valid []string
		for _, doi := range batch {
			if doi != "" {
				valid = append(valid, doi)
			}
		}
		if len(valid) == 0 {
			continue
		}

		params := url.Values{
			"filter":   {"doi:" + strings.Join(valid, "|")},
			"per_page": {fmt.Sprintf("%d", doiBatchSize)},
		}
		if c.cfg.Email != "" {
			params.Set("mailto", c.cfg.Email)
		}

		body, err := c.get(ctx, apiBase+"?"+params.Encode())
		if err != nil {
			if ctx.Err() != nil {
				return resolved, err
			}
			continue
		}
		if body == nil {
			continue
		}

		var wr worksResponse
		if err := json.Unmarshal(body, &wr); err != nil {
			continue
		}

		byDOI := make(map[string]string, len(wr.Results))
		for _, w := range wr.Results {
			if w.DOI != "" {
				byDOI[strings.ToLower(w.DOI)] = types.Candidate{ID: w.ID}.ShortID()
			}
		}
		for i := start; i < end; i++ {
			if normalized[i] != "" {
				resolved[i] = byDOI[normalized[i]]
			}
		}
	}
	return resolved, nil
}

// FetchWork returns the full JSON record for one work ID, or nil when
// the work does not exist.
func (c *Client) FetchWork(ctx context.Context, workID string) (json.RawMessage, error) {
	workID = strings.TrimSpace(workID)
	if workID == "" {
		return nil, nil
	}
	reqURL := apiBase + "/" + url.PathEscape(workID)
	if c.cfg.Email != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.cfg.Email)
	}
	return c.get(ctx, reqURL)
}

// normalizeDOI lowercases a DOI and ensures the https://doi.org/
// prefix OpenAlex uses as the canonical form. Blank input yields "".
func normalizeDOI(doi string) string {
	doi = strings.ToLower(strings.TrimSpace(doi))
	if doi == "" {
		return ""
	}
	if !strings.HasPrefix(doi, "https://doi.org/") {
		doi = "https://doi.org/" + strings.TrimPrefix(doi, "http://doi.org/")
	}
	return doi
}

// OpenAlex API JSON structures.
type worksResponse struct {
	Meta    worksMeta    `json:"meta"`
	Results []workRecord `json:"results"`
}

type worksMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type workRecord struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	DOI             string       `json:"doi"`
	PublicationYear int          `json:"publication_year"`
	Authorships     []authorship `json:"authorships"`
}

type authorship struct {
	Author author `json:"author"`
}

type author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

func (w workRecord) toCandidate() types.Candidate {
	cand := types.Candidate{
		ID:              w.ID,
		Title:           w.Title,
		PublicationYear: w.PublicationYear,
	}
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			cand.Authors = append(cand.Authors, a.Author.DisplayName)
		}
	}
	return cand
}
