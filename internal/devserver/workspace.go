package devserver

import (
	"encoding/json"
	"os"
	"path/filepath"
)

var rootMarkers = []string{"pnpm-workspace.yaml", "lerna.json", "nx.json"}

// WorkspaceRoot walks up from start looking for a monorepo root. It falls
// back to start when none is found.
func WorkspaceRoot(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}

	dir := abs
	for {
		if isWorkspaceRoot(dir) {
			return filepath.ToSlash(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return filepath.ToSlash(abs)
		}
		dir = parent
	}
}

func isWorkspaceRoot(dir string) bool {
	for _, marker := range rootMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return false
	}
	var pkg struct {
		Workspaces json.RawMessage `json:"workspaces"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false
	}
	return len(pkg.Workspaces) > 0 && string(pkg.Workspaces) != "null"
}
