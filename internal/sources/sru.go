package sources

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// SRURecord is the subset of a Dublin Core SRU record the pipeline cares
// about. SRU responses differ in namespaces between endpoints, so parsing
// goes by local element names.
type SRURecord struct {
	Title   string
	Creator string
	Issued  string
	ISBN    string
}

// ParseSRU walks an SRU searchRetrieve XML response and extracts one
// SRURecord per <record> element.
func ParseSRU(r io.Reader) ([]SRURecord, error) {
	dec := xml.NewDecoder(r)

	var records []SRURecord
	var current *SRURecord
	var field *string

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse sru response: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "record":
				records = append(records, SRURecord{})
				current = &records[len(records)-1]
			case "title":
				if current != nil && current.Title == "" {
					field = &current.Title
				}
			case "creator", "author":
				if current != nil && strings.TrimSpace(current.Creator) == "" {
					field = &current.Creator
				}
			case "preferredName":
				// DNB nests gndo:preferredName inside dcterms:creator; the
				// nested name wins over surrounding whitespace.
				if current != nil && strings.TrimSpace(current.Creator) == "" {
					current.Creator = ""
					field = &current.Creator
				}
			case "issued", "date":
				if current != nil && current.Issued == "" {
					field = &current.Issued
				}
			case "isbn13", "isbn":
				if current != nil && current.ISBN == "" {
					field = &current.ISBN
				}
			}
		case xml.CharData:
			if field != nil {
				*field += string(t)
			}
		case xml.EndElement:
			field = nil
			if t.Name.Local == "record" {
				current = nil
			}
		}
	}

	// Drop records that parsed to nothing.
	usable := records[:0]
	for _, rec := range records {
		rec.Title = strings.TrimSpace(rec.Title)
		rec.Creator = strings.TrimSpace(rec.Creator)
		rec.Issued = strings.TrimSpace(rec.Issued)
		rec.ISBN = strings.TrimSpace(rec.ISBN)
		if rec.Title != "" || rec.Creator != "" || rec.ISBN != "" {
			usable = append(usable, rec)
		}
	}

	return usable, nil
}
