package assets

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// LoadManifest reads a previously written asset manifest, returning an empty
// manifest when none exists (first deployment).
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Manifest{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading asset manifest")
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "parsing asset manifest")
	}
	return m, nil
}

func (m Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating manifest directory")
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding asset manifest")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "writing asset manifest")
}
