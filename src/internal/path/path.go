// Package path adds spm's bin directory to the user's PATH
package path

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shellpm/spm/src/internal/constants"
)

// IsInPath checks if a directory is in the current PATH
func IsInPath(dir string) bool {
	dir = filepath.Clean(dir)
	for _, p := range filepath.SplitList(os.Getenv("PATH")) {
		if p != "" && filepath.Clean(p) == dir {
			return true
		}
	}
	return false
}

// ExportLine returns the shell config snippet that prepends dir to PATH
func ExportLine(shell, dir string) string {
	if shell == constants.ShellFish {
		return fmt.Sprintf("\n# Added by spm\nset -gx PATH \"%s\" $PATH\n", dir)
	}
	return fmt.Sprintf("\n# Added by spm\nexport PATH=\"%s:$PATH\"\n", dir)
}

// containsPathModification checks if the config file already mentions dir alongside PATH
func containsPathModification(configFile, dir string) bool {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, dir) && strings.Contains(strings.ToUpper(line), "PATH") {
			return true
		}
	}
	return false
}
