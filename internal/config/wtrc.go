package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/thekniru/kniru-wt/internal/model"
)

// Keys recognised in ~/.wtrc.
const (
	KeyDefaultBaseBranch = "DEFAULT_BASE_BRANCH"
	KeyEditorCommand     = "EDITOR_COMMAND"
	KeyWorktreeRoot      = "WORKTREE_ROOT"
	KeyAutoOpenEditor    = "AUTO_OPEN_EDITOR"
	KeyCopyFiles         = "COPY_FILES"
	KeyPostCreateCommand = "POST_CREATE_COMMAND"
	KeyRemote            = "REMOTE"
	KeyFetchOnCreate     = "FETCH_ON_CREATE"
)

// EnvConfigPath names the environment variable that overrides the
// location of the user configuration file.
const EnvConfigPath = "WTRC"

// DefaultWorktreeRoot places linked worktrees in a sibling directory of
// the main repository, e.g. ~/src/app -> ~/src/app-worktrees/<branch>.
const DefaultWorktreeRoot = "../{repo}-worktrees"

// DefaultRemote is the remote consulted for remote-only branches.
const DefaultRemote = "origin"

var knownKeys = map[string]bool{
	KeyDefaultBaseBranch: true,
	KeyEditorCommand:     true,
	KeyWorktreeRoot:      true,
	KeyAutoOpenEditor:    true,
	KeyCopyFiles:         true,
	KeyPostCreateCommand: true,
	KeyRemote:            true,
	KeyFetchOnCreate:     true,
}

// UserConfig is the parsed content of ~/.wtrc.
type UserConfig struct {
	// Path is the file the values were read from. It is set even when the
	// file does not exist so that `wt config init` knows where to write.
	Path string

	// Loaded is true when Path existed and was parsed.
	Loaded bool

	DefaultBaseBranch string
	EditorCommand     string
	WorktreeRoot      string
	AutoOpenEditor    bool
	CopyFiles         []string
	PostCreateCommand string
	Remote            string
	FetchOnCreate     bool

	// Extra holds keys wt does not know about. They are kept so that
	// `wt config` can show them; wt-utils may use its own keys.
	Extra map[string]string
}

// DefaultUserConfig returns the settings used when no ~/.wtrc exists.
func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		WorktreeRoot: DefaultWorktreeRoot,
		Remote:       DefaultRemote,
		Extra:        map[string]string{},
	}
}

// DefaultPath returns $WTRC if set, otherwise $HOME/.wtrc.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".wtrc"), nil
}

// LoadUser reads the user configuration file at path. An empty path means
// DefaultPath. A missing file yields defaults without error.
func LoadUser(path string) (*UserConfig, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "failed to locate ~/.wtrc", err)
		}
		path = p
	}

	cfg := DefaultUserConfig()
	cfg.Path = path

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logrus.Debugf("no user config at %s, using defaults", path)
			return cfg, nil
		}
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to parse %s", path), err)
	}

	if err := cfg.apply(values); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("invalid setting in %s", path), err)
	}
	cfg.Loaded = true
	logrus.Debugf("loaded user config from %s", path)
	return cfg, nil
}

// apply copies parsed key/value pairs onto cfg. Empty values leave the
// default in place.
func (c *UserConfig) apply(values map[string]string) error {
	for key, raw := range values {
		value := strings.TrimSpace(raw)
		switch key {
		case KeyDefaultBaseBranch:
			c.DefaultBaseBranch = value
		case KeyEditorCommand:
			c.EditorCommand = value
		case KeyWorktreeRoot:
			if value != "" {
				c.WorktreeRoot = value
			}
		case KeyAutoOpenEditor:
			b, err := parseBool(key, value)
			if err != nil {
				return err
			}
			c.AutoOpenEditor = b
		case KeyCopyFiles:
			c.CopyFiles = strings.Fields(value)
		case KeyPostCreateCommand:
			c.PostCreateCommand = value
		case KeyRemote:
			if value != "" {
				c.Remote = value
			}
		case KeyFetchOnCreate:
			b, err := parseBool(key, value)
			if err != nil {
				return err
			}
			c.FetchOnCreate = b
		default:
			logrus.Debugf("ignoring unknown ~/.wtrc key %s", key)
			c.Extra[key] = raw
		}
	}
	return nil
}

// parseBool accepts the spellings people use in shell config files.
func parseBool(key, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "", "0", "false", "no", "off":
		return false, nil
	case "1", "true", "yes", "on":
		return true, nil
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b, nil
	}
	return false, fmt.Errorf("%s: %q is not a boolean (use true or false)", key, value)
}

// Values returns the effective settings as KEY -> value, including unknown
// keys, in the form they would be written back to ~/.wtrc.
func (c *UserConfig) Values() map[string]string {
	values := map[string]string{
		KeyDefaultBaseBranch: c.DefaultBaseBranch,
		KeyEditorCommand:     c.EditorCommand,
		KeyWorktreeRoot:      c.WorktreeRoot,
		KeyAutoOpenEditor:    strconv.FormatBool(c.AutoOpenEditor),
		KeyCopyFiles:         strings.Join(c.CopyFiles, " "),
		KeyPostCreateCommand: c.PostCreateCommand,
		KeyRemote:            c.Remote,
		KeyFetchOnCreate:     strconv.FormatBool(c.FetchOnCreate),
	}
	for k, v := range c.Extra {
		values[k] = v
	}
	return values
}

// SortedKeys returns the keys of Values, known keys first in a stable order.
func (c *UserConfig) SortedKeys() []string {
	known := []string{
		KeyDefaultBaseBranch, KeyEditorCommand, KeyWorktreeRoot, KeyAutoOpenEditor,
		KeyCopyFiles, KeyPostCreateCommand, KeyRemote, KeyFetchOnCreate,
	}
	extra := make([]string, 0, len(c.Extra))
	for k := range c.Extra {
		if !knownKeys[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(known, extra...)
}

// Marshal renders the effective settings in dotenv form.
func (c *UserConfig) Marshal() (string, error) {
	return godotenv.Marshal(c.Values())
}

// sampleConfig is written by Init. It mirrors the example printed after
// installation.
const sampleConfig = `# wt configuration. Shell-style KEY="value" assignments.

# Branch new worktrees start from when -b is not given.
DEFAULT_BASE_BRANCH="develop"

# Command used by "wt open" and "wt <branch> -e".
EDITOR_COMMAND="code"

# Where linked worktrees live, relative to the main repository.
# WORKTREE_ROOT="../{repo}-worktrees"

# Open the editor after creating a worktree.
# AUTO_OPEN_EDITOR="false"

# Untracked files copied from the main worktree into new ones.
# COPY_FILES=".env .env.local"

# Shell command run inside every new worktree.
# POST_CREATE_COMMAND="npm install"

# Remote checked for branches that only exist upstream.
# REMOTE="origin"
# FETCH_ON_CREATE="false"
`

// Init writes a sample configuration to path. Existing files are only
// replaced when force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return model.NewCLIError(model.ExitAlreadyExists,
				fmt.Sprintf("%s already exists (use --force to overwrite)", path))
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return model.WrapCLIError(model.ExitConfigError, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
