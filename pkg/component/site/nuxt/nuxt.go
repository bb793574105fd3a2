// Package nuxt adapts a Nuxt build to the shared site plan. Nitro writes the
// build into .output with a nitro.json manifest naming the preset it was
// built for; only the aws-lambda preset produces a handler this deployment
// can run.
package nuxt

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/component/site"
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/link"
	"github.com/stackform/stackform/pkg/logging"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

const requiredPreset = "aws-lambda"

type (
	Args struct {
		// Path is the Nuxt project root; the build output is read from
		// Path/.output.
		Path string

		Regions     []string
		Environment map[string]string
		Links       []link.Linkable
		Router      *site.RouterAttachment

		TransformServer core.Transform[resources.LambdaFunction]
	}

	// nitroManifest mirrors .output/nitro.json.
	nitroManifest struct {
		Preset string `json:"preset"`
		Config struct {
			BaseURL string `json:"baseURL"`
		} `json:"config"`
	}
)

// New loads the build output under args.Path and declares the site.
func New(ctx core.DeployContext, name string, args Args, g *core.ResourceGraph) (*site.Site, error) {
	plan, err := LoadPlan(args.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "nuxt site %s", name)
	}
	return site.Provision(ctx, name, *plan, site.Args{
		Regions:         args.Regions,
		Environment:     args.Environment,
		Links:           args.Links,
		Router:          args.Router,
		TransformServer: args.TransformServer,
	}, g)
}

// LoadPlan reads the nitro manifest from the project's .output directory,
// verifies the build preset, and maps the fixed output layout to the uniform
// plan.
func LoadPlan(projectDir string) (*site.Plan, error) {
	outputDir := filepath.Join(projectDir, ".output")
	manifestPath := filepath.Join(outputDir, "nitro.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s; run \"nuxt build\" first", manifestPath)
	}
	var manifest nitroManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", manifestPath)
	}
	if manifest.Preset != requiredPreset {
		return nil, errors.Errorf(
			"build used nitro preset %q; set NITRO_PRESET=%s (or nitro.preset in nuxt.config) and rebuild",
			manifest.Preset, requiredPreset)
	}

	serverDir := filepath.Join(outputDir, "server")
	if _, err := os.Stat(filepath.Join(serverDir, "index.mjs")); err != nil {
		return nil, errors.Errorf("server bundle %q is missing; rebuild the site", serverDir)
	}

	base := manifest.Config.BaseURL
	if base == "/" {
		base = ""
	}
	plan := &site.Plan{
		Base: base,
		Server: &site.ServerDescriptor{
			Bundle:  serverDir,
			Handler: "index.handler",
		},
		Assets: []site.AssetCopy{{
			From:      filepath.Join(outputDir, "public"),
			To:        strings.Trim(base, "/"),
			Cached:    true,
			Versioned: "_nuxt",
		}},
	}
	zap.L().With(logging.FileField(manifestPath)).Sugar().
		Debugf("loaded nuxt build (preset %s)", manifest.Preset)
	return plan, nil
}
