package supervisor

import (
	"sort"
	"strings"

	"github.com/hupe1980/teammesh/core"
)

// Vocabulary is the set of tokens a supervisor may answer with: the member
// names of its registry plus core.Terminal.
type Vocabulary struct {
	members []string
	set     map[string]struct{}
}

// NewVocabulary builds the vocabulary for the given member names. Empty and
// duplicate names are ignored.
func NewVocabulary(members ...string) Vocabulary {
	v := Vocabulary{set: map[string]struct{}{core.Terminal: {}}}
	for _, m := range members {
		if m == "" {
			continue
		}
		if _, dup := v.set[m]; dup {
			continue
		}
		v.set[m] = struct{}{}
		v.members = append(v.members, m)
	}
	sort.Strings(v.members)
	return v
}

// Members returns the sorted member names (without the terminal marker).
func (v Vocabulary) Members() []string {
	out := make([]string, len(v.members))
	copy(out, v.members)
	return out
}

// Tokens returns the member names followed by core.Terminal.
func (v Vocabulary) Tokens() []string {
	return append(v.Members(), core.Terminal)
}

// Contains reports whether token is a member name or the terminal marker.
func (v Vocabulary) Contains(token string) bool {
	_, ok := v.set[token]
	return ok
}

// Match returns the vocabulary token that occurs first in raw. When several
// tokens start at the same offset the longest one wins, so "search" never
// shadows "search_agent". Matching is case sensitive.
func (v Vocabulary) Match(raw string) (string, bool) {
	best, bestAt := "", -1
	for token := range v.set {
		at := strings.Index(raw, token)
		if at < 0 {
			continue
		}
		if bestAt < 0 || at < bestAt || (at == bestAt && len(token) > len(best)) {
			best, bestAt = token, at
		}
	}
	return best, bestAt >= 0
}
