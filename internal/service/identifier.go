package service

import (
	"regexp"
	"strings"

	"estimator/internal/domain"
)

// IdentifierKind says how a calculate identifier is resolved.
type IdentifierKind int

const (
	RateCode IdentifierKind = iota
	FreeText
)

func (k IdentifierKind) String() string {
	if k == RateCode {
		return "rate_code"
	}
	return "free_text"
}

// Identifier is a classified calculate input: either a rate code or a
// description to search for.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{2}-\d{2}-\d{3}-\d{2}$`),
	regexp.MustCompile(`^[А-Яа-яЁё]+\d{2}-\d{2}`),
	regexp.MustCompile(`^\d+-\d+`),
}

var hyphenatedToken = regexp.MustCompile(`^[А-Яа-яЁёA-Za-z0-9-]+$`)

// ClassifyIdentifier decides once whether raw names a rate code or is
// free text. Anything longer than two words is free text.
func ClassifyIdentifier(raw string) (Identifier, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Identifier{}, domain.InvalidInput("rate identifier is empty")
	}
	if len(strings.Fields(s)) > 2 {
		return Identifier{Kind: FreeText, Value: s}, nil
	}
	for _, re := range codePatterns {
		if re.MatchString(s) {
			return Identifier{Kind: RateCode, Value: s}, nil
		}
	}
	if strings.Contains(s, "-") && hyphenatedToken.MatchString(s) {
		return Identifier{Kind: RateCode, Value: s}, nil
	}
	return Identifier{Kind: FreeText, Value: s}, nil
}
