// Package astro adapts an Astro build to the shared site plan. The Astro
// deployment adapter writes a small metadata file into the build output; the
// loader here reads it, checks adapter compatibility, and normalizes it into
// a site.Plan.
package astro

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/component/site"
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/link"
	"github.com/stackform/stackform/pkg/logging"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

// buildMetaFile is written by the deployment adapter next to the build output.
const buildMetaFile = ".build-meta.json"

// minAdapterVersion is the oldest adapter whose metadata layout we understand.
var minAdapterVersion = semver.New("2.0.0")

type (
	Args struct {
		// Path is the Astro project root; the build output is read from
		// Path/dist.
		Path string

		Regions     []string
		Environment map[string]string
		Links       []link.Linkable
		Router      *site.RouterAttachment

		TransformServer core.Transform[resources.LambdaFunction]
	}

	// buildMeta mirrors the adapter's metadata file.
	buildMeta struct {
		AdapterVersion             string `json:"adapterVersion"`
		OutputMode                 string `json:"outputMode"`
		ResponseMode               string `json:"responseMode"`
		Base                       string `json:"base"`
		ClientBuildOutputDir       string `json:"clientBuildOutputDir"`
		ServerBuildOutputDir       string `json:"serverBuildOutputDir"`
		ClientBuildVersionedSubDir string `json:"clientBuildVersionedSubDir"`
	}
)

// New loads the build output under args.Path and declares the site.
func New(ctx core.DeployContext, name string, args Args, g *core.ResourceGraph) (*site.Site, error) {
	plan, err := LoadPlan(args.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "astro site %s", name)
	}
	return site.Provision(ctx, name, *plan, site.Args{
		Regions:         args.Regions,
		Environment:     args.Environment,
		Links:           args.Links,
		Router:          args.Router,
		TransformServer: args.TransformServer,
	}, g)
}

// LoadPlan reads the adapter metadata from the project's dist directory and
// maps it to the uniform plan.
func LoadPlan(projectDir string) (*site.Plan, error) {
	distDir := filepath.Join(projectDir, "dist")
	metaPath := filepath.Join(distDir, buildMetaFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, errors.Wrapf(err,
			"reading %s; run \"astro build\" with the deployment adapter enabled first", metaPath)
	}
	var meta buildMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", metaPath)
	}
	if err := checkAdapterVersion(meta.AdapterVersion); err != nil {
		return nil, err
	}

	clientDir := meta.ClientBuildOutputDir
	if clientDir == "" {
		clientDir = "dist/client"
		if meta.OutputMode == "static" {
			clientDir = "dist"
		}
	}
	clientDir = filepath.Join(projectDir, filepath.FromSlash(clientDir))
	plan := &site.Plan{
		Base: meta.Base,
		Assets: []site.AssetCopy{{
			From:      clientDir,
			To:        "",
			Cached:    true,
			Versioned: meta.ClientBuildVersionedSubDir,
		}},
	}

	if meta.OutputMode == "static" {
		// fully static builds have no server component; surface the 404 page
		// when the build emitted one at the conventional path
		if _, err := os.Stat(filepath.Join(clientDir, "404.html")); err == nil {
			plan.Custom404 = "404.html"
		}
		return plan, nil
	}

	serverDir := meta.ServerBuildOutputDir
	if serverDir == "" {
		serverDir = "dist/server"
	}
	serverDir = filepath.Join(projectDir, filepath.FromSlash(serverDir))
	if _, err := os.Stat(serverDir); err != nil {
		return nil, errors.Errorf("server build output %q is missing; rebuild the site", serverDir)
	}
	plan.Server = &site.ServerDescriptor{
		Bundle:    serverDir,
		Handler:   "entry.handler",
		Streaming: meta.ResponseMode == "stream",
	}
	zap.L().With(logging.FileField(metaPath)).Sugar().
		Debugf("loaded astro build (%s, %s)", meta.OutputMode, meta.ResponseMode)
	return plan, nil
}

func checkAdapterVersion(version string) error {
	if version == "" {
		return errors.Errorf("build metadata has no adapter version; update the deployment adapter to v%s or newer", minAdapterVersion)
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return errors.Wrapf(err, "unexpected adapter version %q", version)
	}
	if v.LessThan(*minAdapterVersion) {
		return errors.Errorf("deployment adapter v%s is no longer supported; update to v%s or newer and rebuild", v, minAdapterVersion)
	}
	return nil
}
