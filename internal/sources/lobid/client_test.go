package lobid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"spinelookup/internal/query"
)

const searchFixture = `{
  "member": [
    {
      "id": "https://d-nb.info/gnd/4099237-7",
      "preferredName": "Der Steppenwolf",
      "gndIdentifier": "4099237-7",
      "firstAuthor": [{"label": "Hesse, Hermann"}],
      "dateOfPublication": ["1927"]
    },
    {
      "id": "https://d-nb.info/gnd/0000000-0",
      "preferredName": ""
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, zaptest.NewLogger(t).Sugar())
}

func TestSearch(t *testing.T) {
	var gotFilter string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		w.Write([]byte(searchFixture))
	})

	records, err := client.Search(context.Background(), query.Query{
		Text: "der steppenwolf", Role: query.RoleAny, Language: "de",
	})
	assert.NoError(t, err)
	assert.Equal(t, "type:Work", gotFilter)

	// The member without a preferred name is dropped.
	assert.Len(t, records, 1)
	assert.Equal(t, "Der Steppenwolf", records[0].Title)
	assert.Equal(t, []string{"Hesse, Hermann"}, records[0].Authors)
	assert.Equal(t, "1927", records[0].Year)
	assert.Equal(t, "lobid", records[0].Source)
}

func TestSearchNoMembers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"member": []}`))
	})

	records, err := client.Search(context.Background(), query.Query{Text: "nothing", Language: "de"})
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Search(context.Background(), query.Query{Text: "wolf", Language: "de"})
	assert.Error(t, err)
}

func TestSupportedRoles(t *testing.T) {
	client := New("", zaptest.NewLogger(t).Sugar())

	assert.True(t, client.Supports(query.RoleAny))
	assert.True(t, client.Supports(query.RoleTitle))
	assert.False(t, client.Supports(query.RoleTitleAndAuthor))
}
