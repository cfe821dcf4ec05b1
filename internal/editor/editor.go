package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/mattn/go-shellwords"
	"github.com/sirupsen/logrus"
)

// ErrNoEditor is returned when no editor command is configured.
var ErrNoEditor = errors.New("no editor configured (set EDITOR_COMMAND in ~/.wtrc, $VISUAL or $EDITOR)")

// Split parses an editor command line into program and arguments.
func Split(command string) ([]string, error) {
	parser := shellwords.NewParser()
	parser.ParseEnv = true
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("invalid editor command %q: %w", command, err)
	}
	if len(args) == 0 {
		return nil, ErrNoEditor
	}
	return args, nil
}

// Opener launches editors. Terminal editors need the real stdin; stdout is
// redirected to Output (stderr by default) because wt prints the worktree
// path on stdout for the shell helpers.
type Opener struct {
	Stdin  io.Reader
	Output io.Writer
}

// NewOpener returns an Opener wired to the process stdin and stderr.
func NewOpener() *Opener {
	return &Opener{Stdin: os.Stdin, Output: os.Stderr}
}

// Open runs command with path appended as the last argument and waits for
// it to exit. GUI launchers such as `code` return immediately.
func (o *Opener) Open(ctx context.Context, command, path string) error {
	args, err := Split(command)
	if err != nil {
		return err
	}
	args = append(args, path)

	logrus.Debugf("opening editor: %v", args)

	// #nosec G204 -- the editor command comes from the user's configuration
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = o.Stdin
	cmd.Stdout = o.Output
	cmd.Stderr = o.Output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q failed: %w", args[0], err)
	}
	return nil
}
