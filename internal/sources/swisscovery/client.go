// Package swisscovery queries the SLSP swisscovery SRU endpoint.
package swisscovery

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
	defaultBaseURL = "https://swisscovery.slsp.ch/view/sru/41SLSP_NETWORK"
	defaultLimit   = 5
)

// Client is a rate-limited swisscovery SRU client.
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

func (c *Client) Name() string { return "swisscovery" }

func (c *Client) Supports(role query.Role) bool {
	return role == query.RoleAny || role == query.RoleTitle
}

// Search runs an SRU searchRetrieve against the Alma everything index,
// requesting Dublin Core records so the shared SRU parser applies.
func (c *Client) Search(ctx context.Context, q query.Query) ([]sources.BookRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("swisscovery: rate limit: %w", err)
	}

	cql := fmt.Sprintf("alma.all_for_ui=%q", q.Text)
	if q.Role == query.RoleTitle {
		cql = fmt.Sprintf("alma.title=%q", q.Text)
	}

	params := url.Values{}
	params.Set("version", "1.2")
	params.Set("operation", "searchRetrieve")
	params.Set("recordSchema", "dc")
	params.Set("query", cql)
	params.Set("maximumRecords", strconv.Itoa(defaultLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("swisscovery: create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("swisscovery: search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("swisscovery: status %d", resp.StatusCode)
	}

	sruRecords, err := sources.ParseSRU(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("swisscovery: %w", err)
	}

	c.log.Debugw("swisscovery results", "query", q.Text, "count", len(sruRecords))

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
