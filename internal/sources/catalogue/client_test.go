package catalogue

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"spinelookup/internal/query"
)

const hitsFixture = `{
  "hits": {
    "hits": [
      {
        "_score": 9.2,
        "_source": {
          "title": "Der Steppenwolf",
          "author": "Hermann Hesse",
          "year": "1974",
          "isbn": "9783518031599"
        }
      }
    ]
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The v7 client refuses responses that don't identify as
		// Elasticsearch.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client, err := New([]string{server.URL}, "books", zaptest.NewLogger(t).Sugar())
	assert.NoError(t, err)
	return client
}

func TestSearch(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		w.Write([]byte(hitsFixture))
	})

	records, err := client.Search(context.Background(), query.Query{
		Text: "der steppenwolf", Role: query.RoleAny, Language: "de",
	})
	assert.NoError(t, err)

	assert.Len(t, records, 1)
	assert.Equal(t, "Der Steppenwolf", records[0].Title)
	assert.Equal(t, []string{"Hermann Hesse"}, records[0].Authors)
	assert.Equal(t, "catalogue", records[0].Source)
	assert.InDelta(t, 9.2/10.2, records[0].SourceConfidence, 1e-9)

	// The any role fans out across both normalized fields.
	assert.Contains(t, body, "query")
}

func TestBuildQueryByRole(t *testing.T) {
	anyQuery := buildQuery(query.Query{Text: "wolf", Role: query.RoleAny})
	_, hasMultiMatch := anyQuery["query"].(map[string]interface{})["multi_match"]
	assert.True(t, hasMultiMatch)

	titleQuery := buildQuery(query.Query{Text: "wolf", Role: query.RoleTitle})
	_, hasFuzzy := titleQuery["query"].(map[string]interface{})["fuzzy"]
	assert.True(t, hasFuzzy)
}

func TestSearchErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"type": "boom", "reason": "broken"}}`))
	})

	_, err := client.Search(context.Background(), query.Query{Text: "wolf", Role: query.RoleAny})
	assert.Error(t, err)
}
