package domain

import "strings"

// Alternative is one way a clause can match: a single word, optionally as a
// prefix, or a sequence of adjacent words.
type Alternative struct {
	Words  []string
	Prefix bool
}

// IsPhrase reports whether the alternative requires several adjacent words.
func (a Alternative) IsPhrase() bool { return len(a.Words) > 1 }

func (a Alternative) String() string {
	if a.IsPhrase() {
		return `"` + strings.Join(a.Words, " ") + `"`
	}
	if len(a.Words) == 0 {
		return ""
	}
	if a.Prefix {
		return a.Words[0] + "*"
	}
	return a.Words[0]
}

// Clause matches a rate when any of its alternatives matches.
type Clause struct {
	Alternatives []Alternative
}

func (c Clause) String() string {
	if len(c.Alternatives) == 1 {
		return c.Alternatives[0].String()
	}
	parts := make([]string, len(c.Alternatives))
	for i, a := range c.Alternatives {
		parts[i] = a.String()
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// Query is a normalized full-text query. A rate matches when every clause matches.
type Query struct {
	Clauses []Clause
}

// IsEmpty reports whether the query has nothing to match.
func (q Query) IsEmpty() bool { return len(q.Clauses) == 0 }

// String renders the query in index syntax:
//
//	устройство* (гкл* OR гипсокартон*) "сухая штукатурка"
func (q Query) String() string {
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
