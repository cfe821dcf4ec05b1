package shell

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptDefinesFunctions(t *testing.T) {
	require.NotEmpty(t, Script)
	for _, fn := range Functions {
		assert.Contains(t, Script, fn+"() {", "script should define %s", fn)
	}
}

func TestInstall(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bin")

	path, err := Install(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ScriptName), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Script, string(data))

	// Installing again over a read-only copy restores the mode.
	require.NoError(t, os.Chmod(path, 0o644))
	_, err = Install(dir)
	require.NoError(t, err)
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

// TestScriptSources checks the script is valid bash and defines the
// helpers when sourced. It is skipped when bash is not installed.
func TestScriptSources(t *testing.T) {
	bash, err := exec.LookPath("bash")
	if err != nil {
		t.Skip("bash not available")
	}
	path, err := Install(t.TempDir())
	require.NoError(t, err)

	out, err := exec.Command(bash, "-c", "source "+path+" && declare -F").CombinedOutput()
	require.NoError(t, err, string(out))
	for _, fn := range Functions {
		assert.True(t, strings.Contains(string(out), "declare -f "+fn), "missing %s", fn)
	}
}

func TestSourceLine(t *testing.T) {
	assert.Equal(t, `source "/opt/homebrew/bin/wt-utils"`, SourceLine("/opt/homebrew/bin/wt-utils"))
}
