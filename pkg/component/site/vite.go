package site

import (
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/logging"
)

// LoadViteBuild maps the build/server + build/client layout shared by
// Vite-based frameworks (Remix, React Router) to the uniform plan. The server
// bundle entry point is build/server/index.js and content-hashed client files
// live under build/client/assets.
func LoadViteBuild(projectDir, buildCommand string, configs []string, basePattern *regexp.Regexp) (*Plan, error) {
	buildDir := filepath.Join(projectDir, "build")
	serverDir := filepath.Join(buildDir, "server")
	clientDir := filepath.Join(buildDir, "client")

	if _, err := os.Stat(filepath.Join(serverDir, "index.js")); err != nil {
		return nil, errors.Errorf("server bundle %q is missing; run %q first", serverDir, buildCommand)
	}
	if _, err := os.Stat(clientDir); err != nil {
		return nil, errors.Errorf("client assets %q are missing; run %q first", clientDir, buildCommand)
	}

	plan := &Plan{
		Base: scanBasePath(projectDir, configs, basePattern),
		Server: &ServerDescriptor{
			Bundle:  serverDir,
			Handler: "index.handler",
		},
		Assets: []AssetCopy{{
			From:      clientDir,
			To:        "",
			Cached:    true,
			Versioned: "assets",
		}},
	}
	zap.L().With(logging.FileField(buildDir)).Sugar().Debug("loaded vite build")
	return plan, nil
}

// scanBasePath looks for a base path literal in the project's Vite config.
// The config is code, so a miss only means the site is served from the root;
// it is not an error.
func scanBasePath(projectDir string, configs []string, pattern *regexp.Regexp) string {
	for _, name := range configs {
		data, err := os.ReadFile(filepath.Join(projectDir, name))
		if err != nil {
			continue
		}
		if m := pattern.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	}
	return ""
}
