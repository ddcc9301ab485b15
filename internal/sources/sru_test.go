package sources

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const dnbResponse = `<?xml version="1.0" encoding="UTF-8"?>
<searchRetrieveResponse xmlns="http://www.loc.gov/zing/srw/">
  <version>1.1</version>
  <numberOfRecords>2</numberOfRecords>
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
    <record>
      <recordData>
        <dc xmlns:dc="http://purl.org/dc/elements/1.1/">
          <dc:title>Siddhartha</dc:title>
        </dc>
      </recordData>
    </record>
  </records>
</searchRetrieveResponse>`

func TestParseSRU(t *testing.T) {
	records, err := ParseSRU(strings.NewReader(dnbResponse))
	assert.NoError(t, err)
	assert.Len(t, records, 2)

	assert.Equal(t, "Der Steppenwolf", records[0].Title)
	assert.Equal(t, "Hermann Hesse", records[0].Creator)
	assert.Equal(t, "1974", records[0].Issued)
	assert.Equal(t, "9783518031599", records[0].ISBN)

	assert.Equal(t, "Siddhartha", records[1].Title)
	assert.Equal(t, "", records[1].Creator)
}

func TestParseSRUEmpty(t *testing.T) {
	empty := `<searchRetrieveResponse><numberOfRecords>0</numberOfRecords><records/></searchRetrieveResponse>`

	records, err := ParseSRU(strings.NewReader(empty))
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseSRUMalformed(t *testing.T) {
	_, err := ParseSRU(strings.NewReader(`<searchRetrieveResponse><record>`))
	assert.Error(t, err)
}

func TestISO639Mapping(t *testing.T) {
	assert.Equal(t, "ger", ISO639_3("de"))
	assert.Equal(t, "eng", ISO639_3("en"))
	assert.Equal(t, "nl", ISO639_3("nl"))
}
