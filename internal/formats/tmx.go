package formats

import (
	"io"
	"strings"

	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/record"
)

var tmxTimeLayouts = []string{"20060102T150405Z", "20060102T150405"}

type tmxDocument struct {
	Header struct {
		SrcLang      string `xml:"srclang,attr"`
		CreationDate string `xml:"creationdate,attr"`
		CreationID   string `xml:"creationid,attr"`
	} `xml:"header"`
	Units []tmxUnit `xml:"body>tu"`
}

type tmxUnit struct {
	CreationDate string       `xml:"creationdate,attr"`
	ChangeDate   string       `xml:"changedate,attr"`
	ChangeID     string       `xml:"changeid,attr"`
	Variants     []tmxVariant `xml:"tuv"`
}

type tmxVariant struct {
	// Matches xml:lang as well as the TMX 1.1 lang attribute.
	Lang string      `xml:"lang,attr"`
	Seg  textContent `xml:"seg"`
}

// variants splits a unit into its source variant and the first variant in
// any other language.
func (u tmxUnit) variants(srcLang string) (source, target *tmxVariant) {
	for i := range u.Variants {
		v := &u.Variants[i]
		if strings.EqualFold(v.Lang, srcLang) {
			if source == nil {
				source = v
			}
		} else if target == nil {
			target = v
		}
	}
	return source, target
}

func parseTMX(r io.Reader) (record.Slice, error) {
	var doc tmxDocument
	if err := newXMLDecoder(r).Decode(&doc); err != nil {
		return nil, errors.NewParseError(string(TMX), "", "invalid document", err)
	}
	if doc.Header.SrcLang == "" {
		return nil, errors.NewParseError(string(TMX), "", "header has no srclang", nil)
	}

	headerCreated, _ := parseTime(tmxTimeLayouts, doc.Header.CreationDate)

	out := make(record.Slice, 0, len(doc.Units))
	for _, u := range doc.Units {
		source, target := u.variants(doc.Header.SrcLang)
		if source == nil || target == nil {
			continue
		}
		created, ok := parseTime(tmxTimeLayouts, u.CreationDate)
		if !ok {
			created = headerCreated
		}
		updated, ok := parseTime(tmxTimeLayouts, u.ChangeDate)
		if !ok {
			updated = created
		}
		user := u.ChangeID
		if user == "" {
			user = doc.Header.CreationID
		}
		out = append(out, record.Record{
			Source:    source.Seg.String(),
			Target:    target.Seg.String(),
			Language:  target.Lang,
			User:      user,
			CreatedAt: created,
			UpdatedAt: updated,
		})
	}
	return out, nil
}
