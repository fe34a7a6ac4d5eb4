package rules

// Set is a primitive membership set. Internal representation only; sorted
// slices are the emission form.
type Set map[string]bool

// NewSet builds a Set from tokens.
func NewSet(tokens []string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = true
	}
	return s
}

// HasAll reports whether every required token is in the set. An empty
// requirement is trivially satisfied.
func (s Set) HasAll(required []string) bool {
	for _, r := range required {
		if !s[r] {
			return false
		}
	}
	return true
}

// Vocabulary is the closed primitive vocabulary with alias resolution.
// A nil Vocabulary means no filtering: the primitive index passes raw
// tokens through unchanged.
type Vocabulary struct {
	// Tokens is the set of canonical primitive tokens.
	Tokens map[string]bool

	// Aliases maps alternate spellings to canonical tokens. Chains are
	// allowed; the ruleset compiler rejects cycles.
	Aliases map[string]string
}

// Resolve maps a raw token to its canonical form, following alias chains.
// The second result is false when the token is outside the vocabulary.
// Resolution is total even on unvalidated input: chains longer than the
// alias count (a cycle) resolve to not-found.
func (v *Vocabulary) Resolve(token string) (string, bool) {
	current := token
	for steps := 0; steps <= len(v.Aliases); steps++ {
		if v.Tokens[current] {
			return current, true
		}
		next, ok := v.Aliases[current]
		if !ok {
			return "", false
		}
		current = next
	}
	return "", false
}
