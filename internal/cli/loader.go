package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"

	"github.com/manaforge/synergraph/internal/rulecue"
)

// LoadResult contains a compiled ruleset plus load metadata.
type LoadResult struct {
	Ruleset   *rulecue.Ruleset
	FileCount int // number of CUE files found
}

// LoadError represents an error that occurred during ruleset loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadRuleset compiles and validates a CUE ruleset from a file or package
// directory. Structural failures (missing path, no CUE files, compile
// errors) return a nil result and a single error. Semantic validation
// failures return the compiled result alongside one error per violation,
// so callers can display the table while reporting its problems.
func LoadRuleset(path string) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("ruleset not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing ruleset: %v", err)}}
	}

	fileCount := 1
	if info.IsDir() {
		cueFiles, err := FindCUEFiles(path)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
		}
		if len(cueFiles) == 0 {
			return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", path)}}
		}
		fileCount = len(cueFiles)
	}

	rs, err := rulecue.Load(path)
	if err != nil {
		return nil, []error{convertCompileError(err)}
	}

	result := &LoadResult{Ruleset: rs, FileCount: fileCount}

	var errs []error
	for _, verr := range rulecue.Validate(rs) {
		errs = append(errs, verr)
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// compileRuleset loads a ruleset for a pipeline run, failing on the first
// structural or semantic problem. Commands that display rulesets use
// LoadRuleset directly to collect every error.
func compileRuleset(path string) (*rulecue.Ruleset, error) {
	result, errs := LoadRuleset(path)
	if result == nil && len(errs) > 0 {
		return nil, errs[0]
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return result.Ruleset, nil
}

// convertCompileError converts a rulecue compile error to a LoadError
// with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *rulecue.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompileFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands. Semantic
// ruleset errors carry the rulecue validator's own E2xx codes.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeCompileFailed = "E006" // Ruleset compile failed
)
