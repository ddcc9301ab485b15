// Package openlibrary queries the OpenLibrary search API.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"spinelookup/internal/query"
	"spinelookup/internal/sources"
)

const (
	defaultBaseURL = "https://openlibrary.org/search.json"
	defaultLimit   = 5
)

// Client is a rate-limited OpenLibrary search client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.SugaredLogger
	baseURL string
}

// New creates an OpenLibrary client. baseURL may be empty for the public
// endpoint.
func New(baseURL string, log *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		log:     log,
		baseURL: baseURL,
	}
}

func (c *Client) Name() string { return "openlibrary" }

func (c *Client) Supports(role query.Role) bool {
	return role == query.RoleAny || role == query.RoleTitle
}

type searchResponse struct {
	Docs []struct {
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		ISBN             []string `json:"isbn"`
	} `json:"docs"`
}

// Search queries the search.json endpoint with the raw query text,
// restricted to the query's language.
func (c *Client) Search(ctx context.Context, q query.Query) ([]sources.BookRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("openlibrary: rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("lang", q.Language)
	params.Set("limit", strconv.Itoa(defaultLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openlibrary: search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary: status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("openlibrary: parse response: %w", err)
	}

	c.log.Debugw("openlibrary results", "query", q.Text, "count", len(sr.Docs))

	records := make([]sources.BookRecord, 0, len(sr.Docs))
	for _, doc := range sr.Docs {
		if doc.Title == "" {
			continue
		}

		rec := sources.BookRecord{
			Title:            doc.Title,
			Authors:          doc.AuthorName,
			Source:           c.Name(),
			SourceConfidence: 0.5,
		}
		if doc.FirstPublishYear > 0 {
			rec.Year = strconv.Itoa(doc.FirstPublishYear)
		}
		if len(doc.ISBN) > 0 {
			rec.ISBN = doc.ISBN[0]
		}
		if raw, err := json.Marshal(doc); err == nil {
			rec.Raw = raw
		}

		records = append(records, rec)
	}

	return records, nil
}
