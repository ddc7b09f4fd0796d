// Package composition turns a rate's composition blob into work steps.
package composition

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Splitter splits a composition blob into ordered work steps. The blob is
// either a JSON array of {"text": ...} items, as produced by the catalog
// loader, or free text with one step per sentence.
type Splitter struct {
	sentence *regexp.Regexp
}

func NewSplitter() *Splitter {
	return &Splitter{
		sentence: regexp.MustCompile(`(?m)(?U)([^.!?;\n]+[.!?;\n])`),
	}
}

type item struct {
	Text         string `json:"text"`
	ResourceCode string `json:"resource_code,omitempty"`
}

// Split returns the non-empty steps of blob with surrounding space and a
// trailing full stop removed. Duplicate steps are kept once.
func (s *Splitter) Split(blob string) []string {
	blob = strings.TrimSpace(blob)
	if blob == "" {
		return nil
	}
	var raw []string
	if strings.HasPrefix(blob, "[") {
		var items []item
		if err := json.Unmarshal([]byte(blob), &items); err == nil {
			for _, it := range items {
				raw = append(raw, it.Text)
			}
			return clean(raw)
		}
	}
	raw = s.sentence.FindAllString(blob+"\n", -1)
	if len(raw) == 0 {
		raw = []string{blob}
	}
	return clean(raw)
}

func clean(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		r = strings.TrimRight(r, ".;")
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
