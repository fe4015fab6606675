package rule

import (
	"slices"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Suggestion is a rule paired with its score for one [MatchContext].
type Suggestion struct {
	Rule  *Rule
	Score int
}

// Suggest scores every rule against mc, drops rules that do not match,
// and returns at most limit suggestions ordered by descending score.
// Rules with equal scores keep their relative order.
func Suggest(rules []*Rule, mc MatchContext, limit int) []Suggestion {
	if limit <= 0 {
		return []Suggestion{}
	}

	suggestions := make([]Suggestion, 0, len(rules))
	for _, r := range rules {
		if score, ok := r.Score(mc); ok {
			suggestions = append(suggestions, Suggestion{Rule: r, Score: score})
		}
	}

	slices.SortStableFunc(suggestions, func(a, b Suggestion) int {
		return b.Score - a.Score
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	return suggestions
}

// Find returns the first rule with the given id.
func Find(rules []*Rule, id string) (*Rule, bool) {
	i := slices.IndexFunc(rules, func(r *Rule) bool {
		return r.ID == id
	})
	if i < 0 {
		return nil, false
	}

	return rules[i], true
}

// FindSuggestion returns the first suggestion whose rule has the given id.
func FindSuggestion(suggestions []Suggestion, id string) (Suggestion, bool) {
	i := slices.IndexFunc(suggestions, func(s Suggestion) bool {
		return s.Rule.ID == id
	})
	if i < 0 {
		return Suggestion{}, false
	}

	return suggestions[i], true
}

// Search returns the rules that fuzzy-match query by name, id, or
// description, best matches first. An empty query returns all rules.
// Matching ignores case and diacritics.
func Search(rules []*Rule, query string) []*Rule {
	query = normalize(strings.TrimSpace(query))
	if query == "" {
		return slices.Clone(rules)
	}

	matches := fuzzy.FindFrom(query, searchSource(rules))

	out := make([]*Rule, 0, len(matches))
	for _, m := range matches {
		out = append(out, rules[m.Index])
	}

	return out
}

type searchSource []*Rule

func (s searchSource) String(i int) string {
	r := s[i]

	return normalize(strings.Join([]string{r.Name, r.ID, r.Description}, " "))
}

func (s searchSource) Len() int {
	return len(s)
}

// normalize lowercases s and removes diacritics.
func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	return strings.ToLower(out)
}
