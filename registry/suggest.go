package registry

import (
	"sort"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// SuggestLimit is the maximum number of suggestions returned.
	SuggestLimit = 5
	// SuggestCutoff is the minimum similarity ratio, in [0, 1].
	SuggestCutoff = 0.75
)

// Suggest returns up to SuggestLimit names similar to word, best first.
// Names with equal scores keep their order in names.
func Suggest(word string, names []string) []string {
	type match struct {
		name  string
		score float64
	}

	target := runes(word)
	m := difflib.NewMatcher(nil, target)

	var matches []match
	for _, name := range names {
		m.SetSeq1(runes(name))
		if m.RealQuickRatio() < SuggestCutoff || m.QuickRatio() < SuggestCutoff {
			continue
		}
		if score := m.Ratio(); score >= SuggestCutoff {
			matches = append(matches, match{name: name, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > SuggestLimit {
		matches = matches[:SuggestLimit]
	}

	out := make([]string, 0, len(matches))
	for _, mt := range matches {
		out = append(out, mt.name)
	}
	return out
}

// Suggest returns the registered names similar to word.
func (r *Registry) Suggest(word string) []string {
	return Suggest(word, r.order)
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
