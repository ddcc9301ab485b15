package dnb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"spinelookup/internal/query"
)

const sruFixture = `<?xml version="1.0" encoding="UTF-8"?>
<searchRetrieveResponse xmlns="http://www.loc.gov/zing/srw/">
  <numberOfRecords>1</numberOfRecords>
  <records>
    <record>
      <recordData>
        <dc xmlns:dc="http://purl.org/dc/elements/1.1/"
            xmlns:dcterms="http://purl.org/dc/terms/"
            xmlns:gndo="https://d-nb.info/standards/elementset/gnd#"
            xmlns:bibo="http://purl.org/ontology/bibo/">
          <dc:title>Der Steppenwolf</dc:title>
          <dcterms:creator>
            <gndo:preferredName>Hermann Hesse</gndo:preferredName>
          </dcterms:creator>
          <dcterms:issued>1974</dcterms:issued>
          <bibo:isbn13>9783518031599</bibo:isbn13>
        </dc>
      </recordData>
    </record>
  </records>
</searchRetrieveResponse>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, zaptest.NewLogger(t).Sugar())
}

func TestSearch(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(sruFixture))
	})

	records, err := client.Search(context.Background(), query.Query{
		Text: "der steppenwolf", Role: query.RoleAny, Language: "de",
	})
	assert.NoError(t, err)

	// The SRU query carries the three-letter language restriction.
	assert.Equal(t, `der steppenwolf and spr="ger"`, gotQuery)

	assert.Len(t, records, 1)
	assert.Equal(t, "Der Steppenwolf", records[0].Title)
	assert.Equal(t, []string{"Hermann Hesse"}, records[0].Authors)
	assert.Equal(t, "1974", records[0].Year)
	assert.Equal(t, "9783518031599", records[0].ISBN)
	assert.Equal(t, "dnb", records[0].Source)
}

func TestSearchNoRecords(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<searchRetrieveResponse><numberOfRecords>0</numberOfRecords></searchRetrieveResponse>`))
	})

	records, err := client.Search(context.Background(), query.Query{Text: "nothing", Language: "de"})
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestSearchHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
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
