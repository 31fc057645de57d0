package preflight

import (
	"os"
	"strings"

	"unmix/internal/config"
	"unmix/internal/deps"
)

// minWorkspaceBytes is the free-space floor below which a run warns. A decoded
// WAV plus two stem WAVs for a feature-length input lands in the low gigabytes.
const minWorkspaceBytes = 2 << 30

// Result reports the outcome of a single preflight check. Warning results do
// not block a run.
type Result struct {
	Name    string
	Passed  bool
	Warning bool
	Detail  string
}

// RunAll executes the filesystem preflight checks for the given config.
// Binary availability is checked separately through CheckSystemDeps.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Output directory", cfg.Output.Dir))

	workspaceParent := strings.TrimSpace(cfg.Workspace.Root)
	if workspaceParent == "" {
		workspaceParent = os.TempDir()
	}
	results = append(results, CheckDirectoryAccess("Workspace parent", workspaceParent))
	results = append(results, CheckFreeSpace("Workspace free space", workspaceParent, minWorkspaceBytes))

	return results
}

// CheckSystemDeps evaluates the external binaries for the given config. Both
// the run path and the deps command use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Default(cfg))
}

// FirstFailure returns the first non-warning failed result, or nil when every
// hard check passed.
func FirstFailure(results []Result) *Result {
	for i := range results {
		if !results[i].Passed && !results[i].Warning {
			return &results[i]
		}
	}
	return nil
}
