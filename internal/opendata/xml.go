package opendata

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// parseItems flattens every <item> element of the childcare response into a
// map of child element name to trimmed text. Element names vary between
// releases of the service, so no fixed struct is used.
func parseItems(body []byte) ([]map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false

	var (
		items   []map[string]string
		current map[string]string
		field   string
		text    strings.Builder
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return items, nil
		}

		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "item":
				current = make(map[string]string)
			case current != nil:
				field = t.Name.Local
				text.Reset()
			}
		case xml.CharData:
			if field != "" {
				text.Write(t)
			}
		case xml.EndElement:
			switch {
			case t.Name.Local == "item" && current != nil:
				items = append(items, current)
				current = nil
			case current != nil && t.Name.Local == field:
				current[field] = strings.TrimSpace(text.String())
				field = ""
			}
		}
	}
}
