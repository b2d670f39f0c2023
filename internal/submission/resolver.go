// internal/submission/resolver.go
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xkilldash9x/feedback-cli/api/schemas"
)

// ErrDropdownMissing is returned by ReadOptions when the select element is not
// on the page.
var ErrDropdownMissing = errors.New("dropdown not found")

// ReadOptions reads the options currently rendered in the select at selector.
func ReadOptions(ctx context.Context, page schemas.Page, selector string) ([]schemas.OptionCandidate, error) {
	var res struct {
		Found   bool                      `json:"found"`
		Options []schemas.OptionCandidate `json:"options"`
	}
	if err := evaluate(ctx, page, readOptionsScript, &res, selector); err != nil {
		return nil, fmt.Errorf("failed to read options of %s: %w", selector, err)
	}
	if !res.Found {
		return nil, fmt.Errorf("%s: %w", selector, ErrDropdownMissing)
	}
	return res.Options, nil
}

// selectable returns the options a user can actually pick, dropping the
// placeholder entries that carry no value.
func selectable(options []schemas.OptionCandidate) []schemas.OptionCandidate {
	out := make([]schemas.OptionCandidate, 0, len(options))
	for _, o := range options {
		if o.Value != "" {
			out = append(out, o)
		}
	}
	return out
}

type matcher func(value, text string) bool

// firstMatch walks the tiers in order and returns the first option any tier accepts.
func firstMatch(options []schemas.OptionCandidate, tiers ...matcher) schemas.ResolutionResult {
	candidates := selectable(options)
	for _, tier := range tiers {
		for _, o := range candidates {
			if tier(strings.ToLower(o.Value), strings.ToLower(o.DisplayText)) {
				return schemas.ResolutionResult{
					Found:       true,
					Value:       o.Value,
					DisplayText: strings.TrimSpace(o.DisplayText),
					Available:   len(candidates),
				}
			}
		}
	}
	return schemas.ResolutionResult{Reason: schemas.ReasonNotFound, Available: len(candidates)}
}

// Resolve matches a code-like query: exact value, then value containing the
// query, then display text containing the query. Matching ignores case.
func Resolve(options []schemas.OptionCandidate, query string) schemas.ResolutionResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return firstMatch(options)
	}
	return firstMatch(options,
		func(value, _ string) bool { return value == q },
		func(value, _ string) bool { return strings.Contains(value, q) },
		func(_, text string) bool { return strings.Contains(text, q) },
	)
}

// ResolveContains accepts the first option whose text or value contains the
// query. Departments are listed under long names, so no exact tier applies.
func ResolveContains(options []schemas.OptionCandidate, query string) schemas.ResolutionResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return firstMatch(options)
	}
	return firstMatch(options, func(value, text string) bool {
		return strings.Contains(text, q) || strings.Contains(value, q)
	})
}

// ResolveByName matches a person's name against option values and texts.
// Tiers: the full name exactly, every name token, then any token longer than
// two characters. The last tier drops bare initials but still lets a dotted
// title such as "Dr." match the first option carrying it.
func ResolveByName(options []schemas.OptionCandidate, fullName string) schemas.ResolutionResult {
	name := strings.ToLower(strings.TrimSpace(fullName))
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return firstMatch(options)
	}
	return firstMatch(options,
		func(value, text string) bool {
			return strings.TrimSpace(text) == name || value == name
		},
		func(value, text string) bool {
			for _, t := range tokens {
				if !strings.Contains(text, t) && !strings.Contains(value, t) {
					return false
				}
			}
			return true
		},
		func(value, text string) bool {
			for _, t := range tokens {
				if len(t) > 2 && (strings.Contains(text, t) || strings.Contains(value, t)) {
					return true
				}
			}
			return false
		},
	)
}
