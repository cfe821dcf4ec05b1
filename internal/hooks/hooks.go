package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Context carries the values substituted into hook commands.
type Context struct {
	Path   string
	Branch string
	Repo   string
	Base   string
	Main   string
}

// Expand replaces the {placeholders} in command.
func (c Context) Expand(command string) string {
	r := strings.NewReplacer(
		"{path}", c.Path,
		"{branch}", c.Branch,
		"{repo}", c.Repo,
		"{base}", c.Base,
		"{main}", c.Main,
	)
	return r.Replace(command)
}

// Env returns the WT_* variables appended to the hook environment.
func (c Context) Env() []string {
	return []string{
		"WT_PATH=" + c.Path,
		"WT_BRANCH=" + c.Branch,
		"WT_REPO=" + c.Repo,
		"WT_BASE=" + c.Base,
		"WT_MAIN=" + c.Main,
	}
}

// Runner executes hook commands.
type Runner struct {
	// Shell is the interpreter used with -c. Defaults to "sh".
	Shell string

	// Output receives the combined stdout and stderr of each hook.
	Output io.Writer
}

// NewRunner returns a Runner writing hook output to stderr.
func NewRunner() *Runner {
	return &Runner{Shell: "sh", Output: os.Stderr}
}

// Result records the outcome of one hook command.
type Result struct {
	Command string `json:"command"`
	Err     error  `json:"-"`
}

// Failed reports whether the hook exited unsuccessfully.
func (r Result) Failed() bool {
	return r.Err != nil
}

// RunAll runs every command in order. A failing hook is logged and the
// remaining hooks still run; results are returned in command order.
func (r *Runner) RunAll(ctx context.Context, hc Context, commands []string) []Result {
	results := make([]Result, 0, len(commands))
	for _, raw := range commands {
		command := strings.TrimSpace(raw)
		if command == "" {
			continue
		}
		expanded := hc.Expand(command)
		err := r.run(ctx, hc, expanded)
		if err != nil {
			logrus.WithError(err).Warnf("post-create hook %q failed", expanded)
		}
		results = append(results, Result{Command: expanded, Err: err})
	}
	return results
}

func (r *Runner) run(ctx context.Context, hc Context, command string) error {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	out := r.Output
	if out == nil {
		out = os.Stderr
	}

	logrus.Debugf("running hook in %s: %s", hc.Path, command)

	// #nosec G204 -- hook commands come from the user's own configuration
	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = hc.Path
	cmd.Env = append(os.Environ(), hc.Env()...)
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", command, err)
	}
	return nil
}
