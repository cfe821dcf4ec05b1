package shell

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
)

// ScriptName is the file name the integration script is installed as.
const ScriptName = "wt-utils"

// Script is the content of wt-utils.
//
//go:embed wt-utils.sh
var Script string

// Functions lists the shell functions defined by Script.
var Functions = []string{"wtcd", "wtn", "wtrm", "wthome", "wtls", "wto"}

// Install writes the script into dir as an executable wt-utils file and
// returns its path.
func Install(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, ScriptName)
	if err := os.WriteFile(path, []byte(Script), 0o755); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o755); err != nil {
		return "", fmt.Errorf("chmod %s: %w", path, err)
	}
	return path, nil
}

// SourceLine returns the line users add to their shell config.
func SourceLine(path string) string {
	return fmt.Sprintf("source %q", path)
}
