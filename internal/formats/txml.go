package formats

import (
	"io"
	"strings"

	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/record"
)

var txmlTimeLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04:05Z07:00", "2006-01-02"}

// MultiTerm export: concept groups hold one language group per language, the
// first being the source.
type txmlDocument struct {
	Concepts []txmlConcept `xml:"conceptGrp"`
}

type txmlConcept struct {
	Languages []txmlLanguage `xml:"languageGrp"`
}

type txmlLanguage struct {
	Language struct {
		Lang string `xml:"lang,attr"`
	} `xml:"language"`
	Terms []txmlTerm `xml:"termGrp"`
}

type txmlTerm struct {
	Term         textContent       `xml:"term"`
	Transactions []txmlTransaction `xml:"transacGrp"`
}

type txmlTransaction struct {
	Transac struct {
		Type string `xml:"type,attr"`
		Name string `xml:",chardata"`
	} `xml:"transac"`
	Date string `xml:"date"`
}

func (t txmlTerm) transaction(kind string) (string, string) {
	for _, tr := range t.Transactions {
		if tr.Transac.Type == kind {
			return strings.TrimSpace(tr.Transac.Name), tr.Date
		}
	}
	return "", ""
}

func parseTXML(r io.Reader) (record.Slice, error) {
	var doc txmlDocument
	if err := newXMLDecoder(r).Decode(&doc); err != nil {
		return nil, errors.NewParseError(string(TXML), "", "invalid document", err)
	}

	var out record.Slice
	for _, c := range doc.Concepts {
		if len(c.Languages) < 2 || len(c.Languages[0].Terms) == 0 {
			continue
		}
		source := c.Languages[0]
		for _, lg := range c.Languages[1:] {
			for i, tg := range lg.Terms {
				src := source.Terms[0]
				if i < len(source.Terms) {
					src = source.Terms[i]
				}

				author, createdRaw := tg.transaction("origination")
				_, updatedRaw := tg.transaction("modification")
				created, _ := parseTime(txmlTimeLayouts, createdRaw)
				updated, ok := parseTime(txmlTimeLayouts, updatedRaw)
				if !ok {
					updated = created
				}

				out = append(out, record.Record{
					Source:    src.Term.String(),
					Target:    tg.Term.String(),
					Language:  lg.Language.Lang,
					User:      author,
					CreatedAt: created,
					UpdatedAt: updated,
				})
			}
		}
	}
	return out, nil
}
