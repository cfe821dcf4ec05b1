package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/thekniru/kniru-wt/internal/model"
)

// ProjectFileNames lists the project configuration files wt looks for at
// the main repository root, in priority order.
var ProjectFileNames = []string{".wt.yaml", ".wt.yml", ".wt.json"}

// Project is the per-repository configuration, usually committed alongside
// the code so every clone sets up worktrees the same way.
//
// Example .wt.yaml:
//
//	baseBranch: develop
//	copy:
//	  - .env
//	  - config/local.*.yml
//	postCreate:
//	  - npm ci
type Project struct {
	// Path is the file the project config was read from. Empty when the
	// repository has no project file.
	Path string `yaml:"-" json:"-"`

	BaseBranch string   `yaml:"baseBranch,omitempty" json:"baseBranch,omitempty"`
	Copy       []string `yaml:"copy,omitempty" json:"copy,omitempty"`
	PostCreate []string `yaml:"postCreate,omitempty" json:"postCreate,omitempty"`
}

// FindProjectFile returns the first project file present in root, or ""
// when there is none.
func FindProjectFile(root string) string {
	for _, name := range ProjectFileNames {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// LoadProject reads the project file in root. A repository without one
// yields an empty Project.
func LoadProject(root string) (*Project, error) {
	path := FindProjectFile(root)
	if path == "" {
		return &Project{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to read %s", path), err)
	}

	var p *Project
	if strings.HasSuffix(path, ".json") {
		p, err = parseProjectJSON(data)
	} else {
		p, err = parseProjectYAML(data)
	}
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to parse %s", path), err)
	}
	p.Path = path
	logrus.Debugf("loaded project config from %s", path)
	return p, nil
}

// parseProjectYAML decodes YAML strictly so that misspelled keys are
// reported instead of silently ignored.
func parseProjectYAML(data []byte) (*Project, error) {
	p := &Project{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return p, nil
}

// parseProjectJSON strips comments and trailing commas (JSONC) before
// decoding. Unknown fields are rejected, as for YAML.
func parseProjectJSON(data []byte) (*Project, error) {
	p := &Project{}
	clean := jsonc.ToJSON(data)
	if len(bytes.TrimSpace(clean)) == 0 {
		return p, nil
	}
	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Settings is the merged view of user and project configuration.
type Settings struct {
	BaseBranch     string
	EditorCommand  string
	WorktreeRoot   string
	Remote         string
	AutoOpenEditor bool
	FetchOnCreate  bool
	CopyPatterns   []string
	PostCreate     []string
}

// Merge combines user and project configuration. The project base branch
// wins over DEFAULT_BASE_BRANCH; copy patterns and post-create commands
// are concatenated with user entries first. Either argument may be nil.
func Merge(user *UserConfig, project *Project) Settings {
	if user == nil {
		user = DefaultUserConfig()
	}
	if project == nil {
		project = &Project{}
	}

	s := Settings{
		BaseBranch:     user.DefaultBaseBranch,
		EditorCommand:  user.EditorCommand,
		WorktreeRoot:   user.WorktreeRoot,
		Remote:         user.Remote,
		AutoOpenEditor: user.AutoOpenEditor,
		FetchOnCreate:  user.FetchOnCreate,
	}
	if s.WorktreeRoot == "" {
		s.WorktreeRoot = DefaultWorktreeRoot
	}
	if s.Remote == "" {
		s.Remote = DefaultRemote
	}
	if project.BaseBranch != "" {
		s.BaseBranch = project.BaseBranch
	}

	s.CopyPatterns = append(append([]string{}, user.CopyFiles...), project.Copy...)
	if user.PostCreateCommand != "" {
		s.PostCreate = append(s.PostCreate, user.PostCreateCommand)
	}
	s.PostCreate = append(s.PostCreate, project.PostCreate...)
	return s
}

// ResolveEditor returns the configured editor command, falling back to
// $VISUAL and then $EDITOR. It returns "" when none is set.
func (s Settings) ResolveEditor() string {
	if s.EditorCommand != "" {
		return s.EditorCommand
	}
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	return os.Getenv("EDITOR")
}
