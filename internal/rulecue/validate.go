package rulecue

import (
	"fmt"
	"sort"
	"strings"

	"github.com/manaforge/synergraph/internal/rules"
)

// Validation error codes (E200-E299)
const (
	// Vocabulary errors (E201-E209)
	ErrVocabularyEmpty    = "E201" // no canonical tokens declared
	ErrAliasTargetUnknown = "E202" // alias target is neither token nor alias
	ErrAliasShadowsToken  = "E203" // alias key is itself a canonical token
	ErrAliasCycle         = "E204" // alias chain loops

	// Rule table errors (E210-E219)
	ErrVersionEmpty         = "E210" // table version must be non-empty
	ErrTableEmpty           = "E211" // at least one rule required
	ErrDuplicateEdgeType    = "E212" // edge type declared by two rules
	ErrEmptySide            = "E213" // rule side has no tokens
	ErrTokenNotInVocabulary = "E214" // side token outside the closed vocabulary
	ErrDisabledOutOfRange   = "E215" // disabled index names no rule
)

// ValidationError represents a semantic ruleset error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled ruleset against the closed-world rules.
// Returns all errors found (does not fail-fast). Error order is stable:
// vocabulary errors first, then table errors in rule order.
func Validate(rs *Ruleset) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateVocabulary(rs.Vocabulary)...)
	errs = append(errs, validateTable(rs.Table, rs.Vocabulary)...)
	return errs
}

// validateVocabulary checks token and alias declarations.
func validateVocabulary(vocab *rules.Vocabulary) []ValidationError {
	var errs []ValidationError

	// E201: a closed world needs at least one canonical token
	if len(vocab.Tokens) == 0 {
		errs = append(errs, ValidationError{
			Field:   "vocabulary.tokens",
			Message: "at least one canonical token is required",
			Code:    ErrVocabularyEmpty,
		})
	}

	aliasKeys := make([]string, 0, len(vocab.Aliases))
	for alias := range vocab.Aliases {
		aliasKeys = append(aliasKeys, alias)
	}
	sort.Strings(aliasKeys)

	for _, alias := range aliasKeys {
		target := vocab.Aliases[alias]

		// E203: resolution checks tokens first, so an alias keyed by a
		// canonical token can never fire
		if vocab.Tokens[alias] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("vocabulary.aliases.%s", alias),
				Message: fmt.Sprintf("alias %q is already a canonical token", alias),
				Code:    ErrAliasShadowsToken,
			})
		}

		// E202: the chain must continue to an alias or end at a token
		if !vocab.Tokens[target] {
			if _, chained := vocab.Aliases[target]; !chained {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("vocabulary.aliases.%s", alias),
					Message: fmt.Sprintf("alias target %q is neither a canonical token nor another alias", target),
					Code:    ErrAliasTargetUnknown,
				})
			}
		}
	}

	errs = append(errs, detectAliasCycles(vocab)...)

	return errs
}

// validateTable checks the rule table against the vocabulary.
func validateTable(table *rules.Table, vocab *rules.Vocabulary) []ValidationError {
	var errs []ValidationError

	// E210: the version tags every match, it cannot be blank
	if strings.TrimSpace(table.Version) == "" {
		errs = append(errs, ValidationError{
			Field:   "rules.version",
			Message: "table version is required and must be non-empty",
			Code:    ErrVersionEmpty,
		})
	}

	// E211: at least one rule required
	if len(table.Rules) == 0 {
		errs = append(errs, ValidationError{
			Field:   "rules.table",
			Message: "at least one rule is required",
			Code:    ErrTableEmpty,
		})
	}

	seen := make(map[string]bool)
	for i, rule := range table.Rules {
		// E212: edge types are labels, two rules must not share one
		if seen[rule.EdgeType] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("rules.table[%d].edge_type", i),
				Message: fmt.Sprintf("duplicate edge type: %q", rule.EdgeType),
				Code:    ErrDuplicateEdgeType,
			})
		}
		seen[rule.EdgeType] = true

		errs = append(errs, validateSide(rule.SideA, fmt.Sprintf("rules.table[%d].side_a", i), vocab)...)
		errs = append(errs, validateSide(rule.SideB, fmt.Sprintf("rules.table[%d].side_b", i), vocab)...)
	}

	// E215: disabled indices must name actual rules
	for _, idx := range table.DisabledIndices() {
		if idx < 0 || idx >= len(table.Rules) {
			errs = append(errs, ValidationError{
				Field:   "rules.disabled",
				Message: fmt.Sprintf("disabled index %d is outside the table (0..%d)", idx, len(table.Rules)-1),
				Code:    ErrDisabledOutOfRange,
			})
		}
	}

	return errs
}

// validateSide checks one side token list against the closed vocabulary.
func validateSide(side []string, fieldPath string, vocab *rules.Vocabulary) []ValidationError {
	var errs []ValidationError

	// E213: an empty requirement is trivially satisfied, so a side with
	// no tokens would match every slot
	if len(side) == 0 {
		errs = append(errs, ValidationError{
			Field:   fieldPath,
			Message: "side requires at least one primitive token",
			Code:    ErrEmptySide,
		})
	}

	for _, tok := range side {
		if vocab.Tokens[tok] {
			continue
		}
		// E214: sides are compared against normalized primitive sets,
		// so they must use canonical tokens directly
		if canonical, ok := vocab.Resolve(tok); ok {
			errs = append(errs, ValidationError{
				Field:   fieldPath,
				Message: fmt.Sprintf("side token %q is an alias, use canonical token %q", tok, canonical),
				Code:    ErrTokenNotInVocabulary,
			})
			continue
		}
		errs = append(errs, ValidationError{
			Field:   fieldPath,
			Message: fmt.Sprintf("side token %q is not in the vocabulary", tok),
			Code:    ErrTokenNotInVocabulary,
		})
	}

	return errs
}

// detectAliasCycles finds loops in the alias graph via strongly
// connected component search. An alias has one outgoing edge (its
// target) when the target chains to another alias; targets that are
// canonical tokens terminate resolution and contribute no edge. An SCC
// larger than one node, or a self-referential alias, is a loop that
// Resolve can never terminate.
func detectAliasCycles(vocab *rules.Vocabulary) []ValidationError {
	graph := make(map[string][]string, len(vocab.Aliases))
	for alias, target := range vocab.Aliases {
		graph[alias] = nil
		if _, chained := vocab.Aliases[target]; chained && !vocab.Tokens[target] {
			graph[alias] = []string{target}
		}
	}

	var errs []ValidationError
	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		path := cyclePath(scc, graph)
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("vocabulary.aliases.%s", path[0]),
			Message: fmt.Sprintf("alias cycle: %s", strings.Join(path, " → ")),
			Code:    ErrAliasCycle,
		})
	}

	sort.Slice(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs
}

// cyclePath rebuilds the loop starting from its smallest member. Each
// alias has at most one outgoing edge, so the walk is unambiguous.
func cyclePath(scc []string, graph map[string][]string) []string {
	start := scc[0]
	for _, n := range scc[1:] {
		if n < start {
			start = n
		}
	}

	path := []string{start}
	current := start
	for {
		next := graph[current]
		if len(next) == 0 {
			break
		}
		path = append(path, next[0])
		if next[0] == start {
			break
		}
		current = next[0]
	}
	return path
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph map[string][]string) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components of the alias graph.
// Nodes are seeded in sorted order so reported cycles are stable.
func tarjanSCC(graph map[string][]string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		// Set the depth index for v
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		// Consider successors of v
		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// If v is a root node, pop the stack and create an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}
