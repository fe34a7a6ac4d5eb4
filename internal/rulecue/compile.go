// Package rulecue compiles CUE ruleset definitions into the plain data
// the analysis core consumes: a rules.Table and a rules.Vocabulary. The
// core never sees CUE values.
package rulecue

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/manaforge/synergraph/internal/rules"
)

// Ruleset is the compiled form of a CUE ruleset document.
type Ruleset struct {
	Table      *rules.Table
	Vocabulary *rules.Vocabulary
}

// CompileRuleset parses a CUE value into a Ruleset.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the ruleset document root, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`vocabulary: {...}` + "\n" + `rules: {...}`)
//	rs, err := CompileRuleset(v)
//
// Compilation is structural only. Semantic checks (closed-world tokens,
// duplicate edge types, alias cycles) live in Validate so callers can
// surface every problem at once.
func CompileRuleset(v cue.Value) (*Ruleset, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	vocab, err := parseVocabulary(v)
	if err != nil {
		return nil, err
	}

	table, err := parseTable(v)
	if err != nil {
		return nil, err
	}

	return &Ruleset{Table: table, Vocabulary: vocab}, nil
}

// parseVocabulary extracts the vocabulary block: canonical tokens plus
// the optional alias map.
func parseVocabulary(v cue.Value) (*rules.Vocabulary, error) {
	vocabVal := v.LookupPath(cue.ParsePath("vocabulary"))
	if !vocabVal.Exists() {
		return nil, &CompileError{
			Field:   "vocabulary",
			Message: "vocabulary is required",
			Pos:     v.Pos(),
		}
	}

	vocab := &rules.Vocabulary{
		Tokens:  make(map[string]bool),
		Aliases: make(map[string]string),
	}

	tokensVal := vocabVal.LookupPath(cue.ParsePath("tokens"))
	if !tokensVal.Exists() {
		return nil, &CompileError{
			Field:   "vocabulary.tokens",
			Message: "vocabulary tokens are required",
			Pos:     vocabVal.Pos(),
		}
	}
	tokens, err := parseStringList(tokensVal)
	if err != nil {
		return nil, err
	}
	for _, tok := range tokens {
		vocab.Tokens[tok] = true
	}

	// Aliases are optional
	aliasVal := vocabVal.LookupPath(cue.ParsePath("aliases"))
	if aliasVal.Exists() {
		iter, err := aliasVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			target, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			vocab.Aliases[iter.Label()] = target
		}
	}

	return vocab, nil
}

// parseTable extracts the ordered rule table, its version tag, and the
// disabled index list.
func parseTable(v cue.Value) (*rules.Table, error) {
	rulesVal := v.LookupPath(cue.ParsePath("rules"))
	if !rulesVal.Exists() {
		return nil, &CompileError{
			Field:   "rules",
			Message: "rules block is required",
			Pos:     v.Pos(),
		}
	}

	table := &rules.Table{Disabled: make(map[int]bool)}

	versionVal := rulesVal.LookupPath(cue.ParsePath("version"))
	if !versionVal.Exists() {
		return nil, &CompileError{
			Field:   "rules.version",
			Message: "table version is required",
			Pos:     rulesVal.Pos(),
		}
	}
	version, err := versionVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	table.Version = version

	tableVal := rulesVal.LookupPath(cue.ParsePath("table"))
	if !tableVal.Exists() {
		return nil, &CompileError{
			Field:   "rules.table",
			Message: "at least one rule is required",
			Pos:     rulesVal.Pos(),
		}
	}
	ruleIter, err := tableVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; ruleIter.Next(); i++ {
		rule, err := parseRule(ruleIter.Value(), i)
		if err != nil {
			return nil, err
		}
		table.Rules = append(table.Rules, rule)
	}
	if len(table.Rules) == 0 {
		return nil, &CompileError{
			Field:   "rules.table",
			Message: "at least one rule is required",
			Pos:     tableVal.Pos(),
		}
	}

	// Disabled indices are optional
	disabledVal := rulesVal.LookupPath(cue.ParsePath("disabled"))
	if disabledVal.Exists() {
		idxIter, err := disabledVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for idxIter.Next() {
			idx, err := idxIter.Value().Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			table.Disabled[int(idx)] = true
		}
	}

	return table, nil
}

// parseRule parses the rule record at table index i.
func parseRule(v cue.Value, i int) (rules.Rule, error) {
	var rule rules.Rule

	edgeVal := v.LookupPath(cue.ParsePath("edge_type"))
	if !edgeVal.Exists() {
		return rule, &CompileError{
			Field:   fmt.Sprintf("rules.table[%d].edge_type", i),
			Message: "edge_type is required",
			Pos:     v.Pos(),
		}
	}
	edgeType, err := edgeVal.String()
	if err != nil {
		return rule, formatCUEError(err)
	}
	rule.EdgeType = edgeType

	rule.SideA, err = parseSide(v, "side_a")
	if err != nil {
		return rule, err
	}
	rule.SideB, err = parseSide(v, "side_b")
	if err != nil {
		return rule, err
	}

	// Reason is optional documentation, never hashed
	reasonVal := v.LookupPath(cue.ParsePath("reason"))
	if reasonVal.Exists() {
		reason, err := reasonVal.String()
		if err != nil {
			return rule, formatCUEError(err)
		}
		rule.Reason = reason
	}

	return rule, nil
}

// parseSide reads one side token list. A missing side compiles to an
// empty list; Validate rejects it afterwards.
func parseSide(v cue.Value, name string) ([]string, error) {
	sideVal := v.LookupPath(cue.ParsePath(name))
	if !sideVal.Exists() {
		return nil, nil
	}
	return parseStringList(sideVal)
}

// parseStringList reads a CUE list of strings.
func parseStringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
