package editor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		command  string
		want     []string
		hasError bool
	}{
		{"code", []string{"code"}, false},
		{"code -n", []string{"code", "-n"}, false},
		{`"/opt/My Editor/edit" --wait`, []string{"/opt/My Editor/edit", "--wait"}, false},
		{"nvim -c 'set nu'", []string{"nvim", "-c", "set nu"}, false},
		{"", nil, true},
		{"   ", nil, true},
		{`code "unterminated`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got, err := Split(tt.command)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitExpandsEnv(t *testing.T) {
	t.Setenv("WT_TEST_EDITOR", "subl")
	got, err := Split("$WT_TEST_EDITOR -w")
	require.NoError(t, err)
	assert.Equal(t, []string{"subl", "-w"}, got)
}

// TestOpen uses touch as a stand-in editor: the path argument must be
// appended last.
func TestOpen(t *testing.T) {
	target := filepath.Join(t.TempDir(), "opened")
	o := &Opener{Output: &bytes.Buffer{}}

	require.NoError(t, o.Open(context.Background(), "touch", target))

	_, err := os.Stat(target)
	assert.NoError(t, err)
}

func TestOpenFailure(t *testing.T) {
	o := &Opener{Output: &bytes.Buffer{}}
	err := o.Open(context.Background(), "false", t.TempDir())
	assert.Error(t, err)

	err = o.Open(context.Background(), "", t.TempDir())
	assert.ErrorIs(t, err, ErrNoEditor)
}
