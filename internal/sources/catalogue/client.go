// Package catalogue searches a local Elasticsearch index of known books.
// The index holds title/author pairs with pre-normalized fields and acts as
// an offline source in front of the remote APIs.
package catalogue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v7"
	"go.uber.org/zap"

	"spinelookup/internal/query"
	"spinelookup/internal/sources"
)

const defaultLimit = 5

// Client searches the local book catalogue index.
type Client struct {
	es    *elasticsearch.Client
	index string
	log   *zap.SugaredLogger
}

// New connects to the Elasticsearch cluster at the given addresses. An empty
// address list falls back to the client library's default (localhost:9200).
func New(addresses []string, index string, log *zap.SugaredLogger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("catalogue: create client: %w", err)
	}

	return &Client{es: es, index: index, log: log}, nil
}

func (c *Client) Name() string { return "catalogue" }

func (c *Client) Supports(role query.Role) bool {
	return role == query.RoleAny || role == query.RoleTitle
}

// Empirical testing on spine text shows a fuzziness of 2 gives good recall
// without flooding the results with junk.
func buildQuery(q query.Query) map[string]interface{} {
	if q.Role == query.RoleTitle {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"fuzzy": map[string]interface{}{
					"normaltitle": map[string]interface{}{
						"value":     q.Text,
						"fuzziness": 2,
					},
				},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q.Text,
				"fields":    []string{"normaltitle", "normalauthor"},
				"fuzziness": "AUTO",
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				Title  string `json:"title"`
				Author string `json:"author"`
				Year   string `json:"year"`
				ISBN   string `json:"isbn"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (c *Client) Search(ctx context.Context, q query.Query) ([]sources.BookRecord, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildQuery(q)); err != nil {
		return nil, fmt.Errorf("catalogue: encode query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
		c.es.Search.WithSize(defaultLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("catalogue: search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("catalogue: search failed: %s", res.Status())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("catalogue: parse response: %w", err)
	}

	c.log.Debugw("catalogue results", "query", q.Text, "count", len(sr.Hits.Hits))

	records := make([]sources.BookRecord, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		if hit.Source.Title == "" {
			continue
		}

		rec := sources.BookRecord{
			Title:  hit.Source.Title,
			Source: c.Name(),
			// Squash the unbounded ES score into (0,1).
			SourceConfidence: hit.Score / (hit.Score + 1),
			Year:             hit.Source.Year,
			ISBN:             hit.Source.ISBN,
		}
		if hit.Source.Author != "" {
			rec.Authors = []string{hit.Source.Author}
		}

		records = append(records, rec)
	}

	return records, nil
}
