// Package lobid queries the lobid-gnd authority data API for works.
package lobid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"spinelookup/internal/query"
	"spinelookup/internal/sources"
)

const defaultBaseURL = "https://lobid.org/gnd/search"

// Client is a rate-limited lobid-gnd client.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.SugaredLogger
	baseURL string
}

func New(baseURL string, log *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		log:     log,
		baseURL: baseURL,
	}
}

func (c *Client) Name() string { return "lobid" }

// Supports takes free-text and title queries; the work filter cannot
// express a combined title+author search.
func (c *Client) Supports(role query.Role) bool {
	return role == query.RoleAny || role == query.RoleTitle
}

type searchResponse struct {
	Member []struct {
		ID            string `json:"id"`
		PreferredName string `json:"preferredName"`
		GNDIdentifier string `json:"gndIdentifier"`

		FirstAuthor []struct {
			Label string `json:"label"`
		} `json:"firstAuthor"`

		DateOfPublication []string `json:"dateOfPublication"`
	} `json:"member"`
}

// Search queries lobid-gnd restricted to entities of type Work.
func (c *Client) Search(ctx context.Context, q query.Query) ([]sources.BookRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("lobid: rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("filter", "type:Work")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("lobid: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lobid: search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lobid: status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("lobid: parse response: %w", err)
	}

	c.log.Debugw("lobid results", "query", q.Text, "count", len(sr.Member))

	records := make([]sources.BookRecord, 0, len(sr.Member))
	for _, entry := range sr.Member {
		if entry.PreferredName == "" {
			continue
		}

		rec := sources.BookRecord{
			Title:            entry.PreferredName,
			Source:           c.Name(),
			SourceConfidence: 0.5,
		}
		if len(entry.FirstAuthor) > 0 && entry.FirstAuthor[0].Label != "" {
			rec.Authors = []string{entry.FirstAuthor[0].Label}
		}
		if len(entry.DateOfPublication) > 0 {
			rec.Year = entry.DateOfPublication[0]
		}
		if raw, err := json.Marshal(entry); err == nil {
			rec.Raw = raw
		}

		records = append(records, rec)
	}

	return records, nil
}
