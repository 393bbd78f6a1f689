package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FileMapping pairs a local source path with a destination relative to the
// build context root. An empty Destination means "the base name of Source".
type FileMapping struct {
	Source      string `json:"src"`
	Destination string `json:"dest,omitempty"`
}

// Mapping is an ordered list of file mappings. Order is application order:
// later entries win over earlier ones that target the same destination.
type Mapping []FileMapping

// Add appends a mapping entry.
func (m *Mapping) Add(src, dest string) {
	*m = append(*m, FileMapping{Source: src, Destination: dest})
}

// Sources returns the source paths in application order.
func (m Mapping) Sources() []string {
	sources := make([]string, 0, len(m))
	for _, fm := range m {
		sources = append(sources, fm.Source)
	}
	return sources
}

// ParseMapping decodes a single command-line mapping value.
//
// A value that is JSON must be an object of source to destination, where
// null selects the default destination; key order is kept. Any other value
// is read as "src:dest" with exactly one colon.
func ParseMapping(value string) (Mapping, error) {
	if json.Valid([]byte(value)) {
		m, err := parseJSONMapping(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrParse, value, err)
		}
		return m, nil
	}

	src, dest, ok := strings.Cut(value, ":")
	if !ok || src == "" || strings.Contains(dest, ":") {
		return nil, fmt.Errorf("%w: %s", ErrParse, value)
	}
	return Mapping{{Source: src, Destination: dest}}, nil
}

func parseJSONMapping(value string) (Mapping, error) {
	dec := json.NewDecoder(strings.NewReader(value))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("not an acceptable JSON value")
	}

	m := Mapping{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		src := tok.(string)

		var dest *string
		if err := dec.Decode(&dest); err != nil {
			return nil, fmt.Errorf("destination of %q must be a string or null", src)
		}
		fm := FileMapping{Source: src}
		if dest != nil {
			fm.Destination = *dest
		}
		m = append(m, fm)
	}
	return m, nil
}
