// Package dnb queries the Deutsche Nationalbibliothek SRU endpoint.
package dnb

import (
	"context"
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
	defaultBaseURL = "https://services.dnb.de/sru/dnb"
	defaultLimit   = 5
)

// Client is a rate-limited DNB SRU client.
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

func (c *Client) Name() string { return "dnb" }

func (c *Client) Supports(role query.Role) bool {
	return role == query.RoleAny || role == query.RoleTitle
}

// Search runs an SRU searchRetrieve restricted to the query's language
// (spr is the DNB language field, three-letter code).
func (c *Client) Search(ctx context.Context, q query.Query) ([]sources.BookRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("dnb: rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("version", "1.1")
	params.Set("operation", "searchRetrieve")
	params.Set("query", fmt.Sprintf("%s and spr=%q", q.Text, sources.ISO639_3(q.Language)))
	params.Set("maximumRecords", strconv.Itoa(defaultLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("dnb: create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dnb: search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dnb: status %d", resp.StatusCode)
	}

	sruRecords, err := sources.ParseSRU(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dnb: %w", err)
	}

	c.log.Debugw("dnb results", "query", q.Text, "count", len(sruRecords))

	records := make([]sources.BookRecord, 0, len(sruRecords))
	for _, rec := range sruRecords {
		if rec.Title == "" {
			continue
		}

		book := sources.BookRecord{
			Title:            rec.Title,
			Source:           c.Name(),
			SourceConfidence: 0.7,
			Year:             rec.Issued,
			ISBN:             rec.ISBN,
		}
		if rec.Creator != "" {
			book.Authors = []string{rec.Creator}
		}

		records = append(records, book)
	}

	return records, nil
}
