package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesDisplay(t *testing.T) {
	tmpDir := t.TempDir()
	rulesPath := writeRulesetFixture(t, tmpDir)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{rulesPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ Compiled rule table chain/v1: 2 rule(s), 5 token(s)")
	assert.Contains(t, output, "[0] token_engine: token_gen <-> damage_trigger")
	assert.Contains(t, output, "[1] sacrifice_loop: sac_outlet <-> token_gen")
	assert.Contains(t, output, "Vocabulary:")
	assert.Contains(t, output, "make_tokens -> token_gen")
}

func TestRulesDisplayJSON(t *testing.T) {
	tmpDir := t.TempDir()
	rulesPath := writeRulesetFixture(t, tmpDir)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{rulesPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   RulesetSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "chain/v1", resp.Data.Version)
	require.Len(t, resp.Data.Rules, 2)
	assert.Equal(t, "token_engine", resp.Data.Rules[0].EdgeType)
	assert.Equal(t, []string{"damage_trigger", "draw", "ramp", "sac_outlet", "token_gen"}, resp.Data.Tokens)
	assert.Equal(t, "token_gen", resp.Data.Aliases["make_tokens"])
}

func TestRulesDisabledMarker(t *testing.T) {
	tmpDir := t.TempDir()
	rulesPath := writeFile(t, tmpDir, "toggled.cue", `package ruleset

vocabulary: {
	tokens: ["token_gen", "damage_trigger", "sac_outlet"]
}

rules: {
	version: "chain/v2"
	table: [
		{
			edge_type: "token_engine"
			side_a: ["token_gen"]
			side_b: ["damage_trigger"]
		},
		{
			edge_type: "sacrifice_loop"
			side_a: ["sac_outlet"]
			side_b: ["token_gen"]
		},
	]
	disabled: [1]
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{rulesPath})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "[1] sacrifice_loop: sac_outlet <-> token_gen (disabled)")
	assert.NotContains(t, output, "token_engine: token_gen <-> damage_trigger (disabled)")
}

func TestRulesNonExistentPath(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/ruleset"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "E005")
	assert.Contains(t, buf.String(), "not found")
}

func TestRulesEmptyDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestRulesCompileError(t *testing.T) {
	tmpDir := t.TempDir()
	rulesPath := writeFile(t, tmpDir, "incomplete.cue", `package ruleset

vocabulary: {
	tokens: ["token_gen"]
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{rulesPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation failed")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, "✗ Compilation failed")
	assert.Contains(t, output, "rules block is required")
}

func TestRulesSemanticError(t *testing.T) {
	tmpDir := t.TempDir()
	rulesPath := writeFile(t, tmpDir, "openworld.cue", `package ruleset

vocabulary: {
	tokens: ["token_gen"]
}

rules: {
	version: "chain/v1"
	table: [
		{
			edge_type: "token_engine"
			side_a: ["token_gen"]
			side_b: ["mystery_token"]
		},
	]
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{rulesPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Equal(t, ExitFailure, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, "✗ Validation failed")
	assert.Contains(t, output, "E214")
	assert.Contains(t, output, "mystery_token")
}

func TestRulesSemanticErrorJSON(t *testing.T) {
	tmpDir := t.TempDir()
	rulesPath := writeFile(t, tmpDir, "openworld.cue", `package ruleset

vocabulary: {
	tokens: ["token_gen"]
}

rules: {
	version: "chain/v1"
	table: [
		{
			edge_type: "token_engine"
			side_a: ["token_gen"]
			side_b: ["mystery_token"]
		},
	]
}
`)

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{rulesPath})

	err := cmd.Execute()
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E214", resp.Error.Code)
}

func TestRulesPackageDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "vocabulary.cue", `package ruleset

vocabulary: {
	tokens: ["token_gen", "damage_trigger"]
}
`)
	writeFile(t, tmpDir, "rules.cue", `package ruleset

rules: {
	version: "chain/v1"
	table: [
		{
			edge_type: "token_engine"
			side_a: ["token_gen"]
			side_b: ["damage_trigger"]
		},
	]
}
`)

	stdoutBuf := &bytes.Buffer{}
	stderrBuf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text", Verbose: true}
	cmd := NewRulesCommand(rootOpts)
	cmd.SetOut(stdoutBuf)
	cmd.SetErr(stderrBuf)
	cmd.SetArgs([]string{tmpDir})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, stderrBuf.String(), "Found 2 CUE file(s)")
	assert.Contains(t, stdoutBuf.String(), "✓ Compiled rule table chain/v1")
}

func TestLoadRulesetFile(t *testing.T) {
	tmpDir := t.TempDir()
	rulesPath := writeRulesetFixture(t, tmpDir)

	result, errs := LoadRuleset(rulesPath)
	require.NotNil(t, result)
	assert.Empty(t, errs)
	assert.Equal(t, 1, result.FileCount)
	assert.Equal(t, "chain/v1", result.Ruleset.Table.Version)
}

func TestLoadRulesetSemanticErrors(t *testing.T) {
	tmpDir := t.TempDir()
	rulesPath := writeFile(t, tmpDir, "openworld.cue", `package ruleset

vocabulary: {
	tokens: ["token_gen"]
}

rules: {
	version: "chain/v1"
	table: [
		{
			edge_type: "token_engine"
			side_a: ["token_gen"]
			side_b: ["mystery_token"]
		},
	]
}
`)

	// Semantic errors still return the compiled table for display
	result, errs := LoadRuleset(rulesPath)
	require.NotNil(t, result)
	require.NotEmpty(t, errs)
	assert.Equal(t, "chain/v1", result.Ruleset.Table.Version)

	code, message := parseRulesetError(errs[0])
	assert.Equal(t, "E214", code)
	assert.Contains(t, message, "mystery_token")
}

func TestFindCUEFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, tmpDir, "a.cue", "package ruleset\n")
	writeFile(t, tmpDir, "b.cue", "package ruleset\n")
	writeFile(t, tmpDir, "notes.txt", "not cue\n")

	subDir := filepath.Join(tmpDir, "sub")
	require.NoError(t, os.Mkdir(subDir, 0755))
	writeFile(t, subDir, "c.cue", "package ruleset\n")

	files, err := FindCUEFiles(tmpDir)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestCompileRulesetFailFast(t *testing.T) {
	tmpDir := t.TempDir()
	rulesPath := writeFile(t, tmpDir, "openworld.cue", `package ruleset

vocabulary: {
	tokens: ["token_gen"]
}

rules: {
	version: "chain/v1"
	table: [
		{
			edge_type: "token_engine"
			side_a: ["token_gen"]
			side_b: ["mystery_token"]
		},
	]
}
`)

	// Pipeline loads reject semantically broken rulesets outright
	rs, err := compileRuleset(rulesPath)
	assert.Nil(t, rs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E214")
}
