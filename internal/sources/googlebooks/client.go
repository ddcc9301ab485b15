// Package googlebooks queries the Google Books volumes API.
package googlebooks

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
	defaultBaseURL = "https://www.googleapis.com/books/v1/volumes"
	defaultLimit   = 5
)

// Client is a rate-limited Google Books client. The API works without a key
// at a lower quota, so the key is optional.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.SugaredLogger
	baseURL string
	apiKey  string
}

func New(baseURL, apiKey string, log *zap.SugaredLogger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 3),
		log:     log,
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (c *Client) Name() string { return "googlebooks" }

// Supports accepts every role: title queries map onto the intitle: field
// qualifier and the rest go through as free text.
func (c *Client) Supports(query.Role) bool { return true }

type volumesResponse struct {
	Items []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			PublishedDate string   `json:"publishedDate"`
			Language      string   `json:"language"`

			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (c *Client) Search(ctx context.Context, q query.Query) ([]sources.BookRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("googlebooks: rate limit: %w", err)
	}

	text := q.Text
	if q.Role == query.RoleTitle {
		text = "intitle:" + text
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("langRestrict", q.Language)
	params.Set("maxResults", strconv.Itoa(defaultLimit))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("googlebooks: create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("googlebooks: search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("googlebooks: status %d", resp.StatusCode)
	}

	var vr volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("googlebooks: parse response: %w", err)
	}

	c.log.Debugw("googlebooks results", "query", q.Text, "count", len(vr.Items))

	records := make([]sources.BookRecord, 0, len(vr.Items))
	for _, item := range vr.Items {
		info := item.VolumeInfo
		if info.Title == "" {
			continue
		}

		rec := sources.BookRecord{
			Title:            info.Title,
			Authors:          info.Authors,
			Source:           c.Name(),
			SourceConfidence: 0.6,
			Year:             publishYear(info.PublishedDate),
		}
		for _, id := range info.IndustryIdentifiers {
			if id.Type == "ISBN_13" {
				rec.ISBN = id.Identifier
				break
			}
			if rec.ISBN == "" && id.Type == "ISBN_10" {
				rec.ISBN = id.Identifier
			}
		}
		if raw, err := json.Marshal(info); err == nil {
			rec.Raw = raw
		}

		records = append(records, rec)
	}

	return records, nil
}

// publishYear trims a publishedDate like "1974-05" down to the year.
func publishYear(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return date
}
