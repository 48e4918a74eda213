package formats

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/locsync/locsync/internal/errors"
	"github.com/locsync/locsync/internal/record"
)

var xliffTimeLayouts = []string{"01/02/2006 15:04:05"}

// xliffUnit is an SDL XLIFF trans-unit. Segment metadata lives in the last
// sdl:seg of sdl:seg-defs.
type xliffUnit struct {
	Translate string      `xml:"translate,attr"`
	SegSource textContent `xml:"seg-source"`
	Source    textContent `xml:"source"`
	Target    textContent `xml:"target"`
	Segments  []struct {
		Values []struct {
			Key   string `xml:"key,attr"`
			Value string `xml:",chardata"`
		} `xml:"value"`
	} `xml:"seg-defs>seg"`
}

func (u xliffUnit) source() string {
	if s := u.SegSource.String(); s != "" {
		return s
	}
	return u.Source.String()
}

func (u xliffUnit) metadata(key string) string {
	if len(u.Segments) == 0 {
		return ""
	}
	for _, v := range u.Segments[len(u.Segments)-1].Values {
		if v.Key == key {
			return strings.TrimSpace(v.Value)
		}
	}
	return ""
}

// parseXLIFF streams the document so trans-units nested in any number of
// groups are found.
func parseXLIFF(r io.Reader) (record.Slice, error) {
	d := newXMLDecoder(r)

	var (
		out            record.Slice
		targetLanguage string
		sawFile        bool
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParseError(string(XLIFF), "", "invalid document", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case "file":
			sawFile = true
			targetLanguage = attr(se, "target-language")
		case "trans-unit":
			var u xliffUnit
			if err := d.DecodeElement(&u, &se); err != nil {
				return nil, errors.NewParseError(string(XLIFF), "", "invalid trans-unit", err)
			}
			if u.Translate == "no" || strings.TrimSpace(u.source()) == "" {
				continue
			}
			created, _ := parseTime(xliffTimeLayouts, u.metadata("created_on"))
			updated, ok := parseTime(xliffTimeLayouts, u.metadata("modified_on"))
			if !ok {
				updated = created
			}
			out = append(out, record.Record{
				Source:    u.source(),
				Target:    u.Target.String(),
				Language:  targetLanguage,
				User:      u.metadata("created_by"),
				CreatedAt: created,
				UpdatedAt: updated,
			})
		}
	}
	if !sawFile {
		return nil, errors.NewParseError(string(XLIFF), "", "no file element", nil)
	}
	return out, nil
}

func attr(se xml.StartElement, name string) string {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
