// Package config loads the project file describing an application's
// components. The file may be yaml, toml or json; component arguments are
// kept untyped until a component package decodes them into its own Args.
package config

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/multierr"
	"github.com/stackform/stackform/pkg/regions"
)

type (
	// Project is the parsed project file.
	Project struct {
		// App is the application name shared by every stage.
		App string `yaml:"app" toml:"app" json:"app"`
		// Stage is the default stage; a CLI flag overrides it.
		Stage string `yaml:"stage" toml:"stage" json:"stage"`
		// DefaultRegion is used by components that do not pin regions.
		DefaultRegion string `yaml:"default_region" toml:"default_region" json:"default_region"`
		// OutDir is where generated artifacts are written, default
		// ".stackform/out".
		OutDir string `yaml:"out_dir" toml:"out_dir" json:"out_dir"`
		// Components maps component name to its declaration.
		Components map[string]Component `yaml:"components" toml:"components" json:"components"`

		// Dir is the directory the project file was loaded from.
		Dir string `yaml:"-" toml:"-" json:"-"`
	}

	// Component is one declared component, its arguments left untyped.
	Component struct {
		Type string         `yaml:"type" toml:"type" json:"type"`
		Args map[string]any `yaml:"args" toml:"args" json:"args"`
	}
)

// componentTypes are the values accepted in a component's type field.
var componentTypes = map[string]struct{}{
	"nextjs":      {},
	"astro":       {},
	"remix":       {},
	"reactrouter": {},
	"nuxt":        {},
	"static":      {},
	"router":      {},
	"redirect":    {},
	"cluster":     {},
	"auth":        {},
	"search":      {},
}

var fileNames = []string{
	"stackform.yaml",
	"stackform.yml",
	"stackform.toml",
	"stackform.json",
}

// Load finds and parses the project file in dir.
func Load(dir string) (*Project, error) {
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", path)
		}
		project, err := parse(data, filepath.Ext(name))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		project.Dir = dir
		if project.OutDir == "" {
			project.OutDir = filepath.Join(dir, ".stackform", "out")
		}
		return project, nil
	}
	return nil, errors.Errorf("no project file (one of %v) found in %s", fileNames, dir)
}

func parse(data []byte, ext string) (*Project, error) {
	var project Project
	var err error
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &project)
	case ".toml":
		err = toml.Unmarshal(data, &project)
	case ".json":
		err = json.Unmarshal(data, &project)
	default:
		err = errors.Errorf("unsupported project file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Validate checks the fields every command needs before any component runs.
func (p *Project) Validate() error {
	var errs multierr.Error
	if p.App == "" {
		errs.Append(errors.New("project: app name is required"))
	}
	if p.DefaultRegion != "" {
		if _, ok := regions.Lookup(p.DefaultRegion); !ok {
			errs.Append(errors.Errorf("project: default_region %q is not a supported region", p.DefaultRegion))
		}
	}
	for name, component := range p.Components {
		if name == "" {
			errs.Append(errors.New("project: component names must not be empty"))
			continue
		}
		if _, ok := componentTypes[component.Type]; !ok {
			errs.Append(errors.Errorf("project: component %q has unknown type %q", name, component.Type))
		}
	}
	return errs.ErrOrNil()
}

// Context builds the deploy context, with stage overriding the project's
// default stage when non-empty.
func (p *Project) Context(stage string) core.DeployContext {
	if stage == "" {
		stage = p.Stage
	}
	return core.DeployContext{
		App:           p.App,
		Stage:         stage,
		DefaultRegion: p.DefaultRegion,
		OutDir:        p.OutDir,
	}
}

// ComponentNames returns the declared component names in stable order.
func (p *Project) ComponentNames() []string {
	names := make([]string, 0, len(p.Components))
	for name := range p.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DecodeArgs maps a component's untyped argument map onto a component
// package's Args struct. Unknown keys fail so a typo in the project file
// surfaces instead of silently deploying defaults.
func (c Component) DecodeArgs(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		TagName:     "yaml",
	})
	if err != nil {
		return errors.Wrap(err, "building args decoder")
	}
	return errors.Wrap(decoder.Decode(c.Args), "decoding component args")
}
