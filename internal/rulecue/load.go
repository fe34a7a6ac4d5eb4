package rulecue

import (
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// Load compiles a ruleset from a CUE file or package directory on disk.
// Structural problems surface as CompileError; callers run Validate
// afterwards for the semantic pass.
func Load(path string) (*Ruleset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load ruleset: %w", err)
	}

	args := []string{path}
	var cfg *load.Config
	if info.IsDir() {
		args = []string{"."}
		cfg = &load.Config{Dir: path}
	}

	insts := load.Instances(args, cfg)
	if len(insts) == 0 {
		return nil, fmt.Errorf("load ruleset: no CUE instances at %s", path)
	}
	inst := insts[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	v := cuecontext.New().BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return CompileRuleset(v)
}
