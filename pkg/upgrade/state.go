package upgrade

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// State records the component versions of the last successful deployment. It
// lives next to the project config so the guard can run before any resources
// are declared.
type State struct {
	// Versions maps component name to the version string it deployed at.
	Versions map[string]string `json:"versions"`
}

const stateFileName = "state.json"

func StatePath(projectDir string) string {
	return filepath.Join(projectDir, ".stackform", stateFileName)
}

// LoadState reads the recorded state, returning an empty state when none
// exists yet.
func LoadState(projectDir string) (*State, error) {
	data, err := os.ReadFile(StatePath(projectDir))
	if os.IsNotExist(err) {
		return &State{Versions: make(map[string]string)}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading deployment state")
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "parsing deployment state")
	}
	if state.Versions == nil {
		state.Versions = make(map[string]string)
	}
	return &state, nil
}

func (s *State) Record(component string, version string) {
	s.Versions[component] = version
}

func (s *State) Save(projectDir string) error {
	path := StatePath(projectDir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating state directory")
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding deployment state")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "writing deployment state")
}
