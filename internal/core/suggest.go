package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// SuggestMethod records which path produced a suggestion.
type SuggestMethod string

const (
	MethodHeuristic SuggestMethod = "heuristic"
	MethodSemantic  SuggestMethod = "semantic"
)

// MappingRequest is what a SemanticMapper receives.
type MappingRequest struct {
	Headers []string
	Fields  []FieldDescriptor
	Ignored []string
}

// SemanticMapper proposes a header → field mapping by meaning.
// Its answer is untrusted: unknown fields and ignored headers are forced to
// Skip, and headers it leaves out fall back to the heuristic.
type SemanticMapper interface {
	SuggestMapping(ctx context.Context, req MappingRequest) (map[string]string, error)
}

// Suggestion is an initial mapping plus how it was made.
type Suggestion struct {
	Mapping ColumnMapping
	Method  SuggestMethod
	Notice  error // Non-nil when the semantic path failed; wraps ErrSuggestionUnavailable
}

// Suggester produces the initial mapping for a parsed table.
type Suggester struct {
	mapper SemanticMapper
}

// NewSuggester creates a suggester. mapper may be nil, in which case only
// the heuristic runs.
func NewSuggester(mapper SemanticMapper) *Suggester {
	return &Suggester{mapper: mapper}
}

// Suggest returns a mapping covering every header. It never fails: semantic
// errors become a Notice and the heuristic result is returned instead.
func (s *Suggester) Suggest(ctx context.Context, headers []string, cat *Catalog) Suggestion {
	heuristic := SuggestHeuristic(headers, cat)

	if s == nil || s.mapper == nil {
		return Suggestion{Mapping: heuristic, Method: MethodHeuristic}
	}

	raw, err := s.mapper.SuggestMapping(ctx, MappingRequest{
		Headers: headers,
		Fields:  cat.Fields,
		Ignored: cat.Ignored,
	})
	if err == nil && len(raw) == 0 && len(headers) > 0 {
		err = errors.New("empty mapping returned")
	}
	if err != nil {
		return Suggestion{
			Mapping: heuristic,
			Method:  MethodHeuristic,
			Notice:  fmt.Errorf("%w: %v", ErrSuggestionUnavailable, err),
		}
	}

	mapping := make(ColumnMapping, len(headers))
	for _, h := range headers {
		field, ok := raw[h]
		switch {
		case cat.IsIgnored(h):
			mapping[h] = Skip
		case !ok:
			mapping[h] = heuristic[h]
		case field == Skip || cat.Has(field):
			mapping[h] = field
		default:
			mapping[h] = Skip
		}
	}

	return Suggestion{Mapping: mapping, Method: MethodSemantic}
}

// SuggestHeuristic maps each header by name alone. For a given header list
// and catalog the result is always the same.
//
// Order of checks: ignored header, normalized header equals a field name,
// header equals a field name once separators are removed ("ServiceID"),
// normalized header equals a normalized field label ("Suburb").
func SuggestHeuristic(headers []string, cat *Catalog) ColumnMapping {
	byName := make(map[string]string, len(cat.Fields))
	byCompact := make(map[string]string, len(cat.Fields))
	byLabel := make(map[string]string, len(cat.Fields))

	for _, f := range cat.Fields {
		byName[f.Name] = f.Name
		if _, dup := byCompact[compact(f.Name)]; !dup {
			byCompact[compact(f.Name)] = f.Name
		}
		if f.Label != "" {
			if _, dup := byLabel[NormalizeHeader(f.Label)]; !dup {
				byLabel[NormalizeHeader(f.Label)] = f.Name
			}
		}
	}

	mapping := make(ColumnMapping, len(headers))
	for _, h := range headers {
		if cat.IsIgnored(h) {
			mapping[h] = Skip
			continue
		}

		norm := NormalizeHeader(h)
		if name, ok := byName[norm]; ok {
			mapping[h] = name
		} else if name, ok := byCompact[compact(norm)]; ok {
			mapping[h] = name
		} else if name, ok := byLabel[norm]; ok {
			mapping[h] = name
		} else {
			mapping[h] = Skip
		}
	}

	return mapping
}

// NormalizeHeader lower-cases h and collapses every run of whitespace or
// punctuation into one underscore, trimming underscores at both ends.
//
//	NormalizeHeader("  Site  Name ") == "site_name"
//	NormalizeHeader("Post-Code (AU)") == "post_code_au"
func NormalizeHeader(h string) string {
	var b strings.Builder
	b.Grow(len(h))

	pending := false
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	return b.String()
}

func compact(s string) string {
	return strings.ReplaceAll(s, "_", "")
}
