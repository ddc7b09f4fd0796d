package normalizer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"estimator/internal/domain"
)

// DefaultMinPrefixLen is the shortest token, in runes, that is matched by prefix.
const DefaultMinPrefixLen = 2

var phraseRe = regexp.MustCompile(`["«“]([^"»”]*)["»”]`)

// Normalizer turns raw user phrases into index queries.
// It is immutable after construction and safe for concurrent use.
type Normalizer struct {
	stopwords    map[string]struct{}
	synonyms     map[string][]string
	minPrefixLen int
}

type Option func(*Normalizer)

// WithMinPrefixLen overrides the shortest token that gets a prefix marker.
func WithMinPrefixLen(n int) Option {
	return func(nz *Normalizer) {
		if n > 0 {
			nz.minPrefixLen = n
		}
	}
}

// WithSynonyms adds synonym entries on top of the built-in table.
func WithSynonyms(extra map[string][]string) Option {
	return func(nz *Normalizer) {
		for k, v := range extra {
			key := strings.Join(Tokenize(k), " ")
			nz.synonyms[key] = append(nz.synonyms[key], v...)
		}
	}
}

// WithStopwords adds stopwords on top of the built-in list.
func WithStopwords(words ...string) Option {
	return func(nz *Normalizer) {
		for _, w := range words {
			for _, t := range Tokenize(w) {
				nz.stopwords[t] = struct{}{}
			}
		}
	}
}

func New(opts ...Option) *Normalizer {
	nz := &Normalizer{
		stopwords:    make(map[string]struct{}, len(defaultStopwords)),
		synonyms:     make(map[string][]string, len(defaultSynonyms)),
		minPrefixLen: DefaultMinPrefixLen,
	}
	for _, w := range defaultStopwords {
		nz.stopwords[w] = struct{}{}
	}
	for k, v := range defaultSynonyms {
		nz.synonyms[k] = append([]string(nil), v...)
	}
	for _, opt := range opts {
		opt(nz)
	}
	return nz
}

// Normalize builds an index query from raw input. Quoted phrases become
// single adjacency clauses; every other token that survives stopword removal
// becomes a clause of itself plus its synonyms, prefix-marked when long enough.
func (n *Normalizer) Normalize(raw string) (domain.Query, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Query{}, domain.InvalidInput("query is empty")
	}
	var q domain.Query
	seen := make(map[string]struct{})
	addTokens := func(segment string) {
		for _, tok := range Tokenize(segment) {
			if n.IsStopword(tok) {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			q.Clauses = append(q.Clauses, n.clause(tok))
		}
	}

	last := 0
	for _, m := range phraseRe.FindAllStringSubmatchIndex(raw, -1) {
		addTokens(raw[last:m[0]])
		last = m[1]
		words := Tokenize(raw[m[2]:m[3]])
		if len(words) == 0 {
			continue
		}
		key := `"` + strings.Join(words, " ")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		q.Clauses = append(q.Clauses, domain.Clause{Alternatives: []domain.Alternative{{Words: words}}})
	}
	addTokens(raw[last:])

	if q.IsEmpty() {
		return q, domain.InvalidInput("query too generic: %q has no searchable words", raw)
	}
	return q, nil
}

// IsStopword reports whether a folded token is a stopword.
func (n *Normalizer) IsStopword(tok string) bool {
	_, ok := n.stopwords[tok]
	return ok
}

// Keywords returns up to max distinct non-stopword tokens of text, in order.
func (n *Normalizer) Keywords(text string, max int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		if len(out) == max {
			break
		}
		if n.IsStopword(tok) || utf8.RuneCountInString(tok) < n.minPrefixLen {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

func (n *Normalizer) clause(tok string) domain.Clause {
	alts := []domain.Alternative{n.term(tok)}
	for _, syn := range n.synonyms[tok] {
		words := Tokenize(syn)
		switch len(words) {
		case 0:
		case 1:
			alts = append(alts, n.term(words[0]))
		default:
			alts = append(alts, domain.Alternative{Words: words})
		}
	}
	return domain.Clause{Alternatives: alts}
}

func (n *Normalizer) term(tok string) domain.Alternative {
	return domain.Alternative{
		Words:  []string{tok},
		Prefix: utf8.RuneCountInString(tok) >= n.minPrefixLen,
	}
}
