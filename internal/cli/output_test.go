package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E005", "ruleset not found", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
	assert.Equal(t, "ruleset not found", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "synergy.cue", "line": "42"}
	err := formatter.Error("E006", "compile error", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("All invariants hold")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "All invariants hold")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("E005", "ruleset not found", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E005]")
	assert.Contains(t, buf.String(), "ruleset not found")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"file": "synergy.cue"}
	err := formatter.Error("E006", "compile error", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E006]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Loaded deck %q", "token-web")

			if tt.wantLog {
				assert.Contains(t, buf.String(), `Loaded deck "token-web"`)
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestOutputFormatter_VerboseLogErrWriter(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    stdout,
		ErrWriter: stderr,
		Verbose:   true,
	}

	formatter.VerboseLog("Using rule table %s", "rules/v1")

	// Diagnostics must not corrupt the JSON stream on stdout
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Using rule table rules/v1")
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status:   "ok",
		Data:     map[string]int{"edges": 5},
		RunToken: "run-0001",
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
	assert.Equal(t, "run-0001", decoded.RunToken)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "E214",
		Message: "side token outside the vocabulary",
		Details: []string{"rules.table[2].side_a"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "E214", decoded.Code)
	assert.Equal(t, "side token outside the vocabulary", decoded.Message)
}

func TestExitError(t *testing.T) {
	plain := NewExitError(ExitCommandError, "journal not found: ./missing.db")
	assert.Equal(t, "journal not found: ./missing.db", plain.Error())

	wrapped := WrapExitError(ExitFailure, "validation failed", fmt.Errorf("3 violation(s)"))
	assert.Contains(t, wrapped.Error(), "validation failed")
	assert.Contains(t, wrapped.Error(), "3 violation(s)")
	assert.Error(t, errors.Unwrap(wrapped))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "drift")))

	// Wrapped ExitErrors still carry their code
	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))

	// Non-ExitErrors default to failure
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain error")))
}
