// Package testutil provides deterministic helpers shared by tests.
package testutil

// FixedTokenGenerator generates the same run token every time.
//
// This enables deterministic test execution and golden snapshot
// comparison: the same scenario with the same FixedTokenGenerator
// produces byte-identical reports.
//
// Unlike pipeline.FixedGenerator, which returns tokens in sequence, this
// generator always returns the same token. This is useful when every
// pass of a scenario should carry the same label.
//
// Thread-safety: FixedTokenGenerator is stateless and safe for concurrent use.
type FixedTokenGenerator struct {
	token string
}

// NewFixedTokenGenerator creates a new fixed run token generator.
//
// The token is typically set in the scenario YAML:
//
//	run_token: "golden-token-web"
//
// If token is empty, Generate() returns "test-run-default".
func NewFixedTokenGenerator(token string) *FixedTokenGenerator {
	if token == "" {
		token = "test-run-default"
	}
	return &FixedTokenGenerator{token: token}
}

// Generate returns the fixed run token.
//
// Implements pipeline.TokenGenerator.
func (g *FixedTokenGenerator) Generate() string {
	return g.token
}
