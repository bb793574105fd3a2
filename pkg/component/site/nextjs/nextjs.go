// Package nextjs adapts a Next.js build to the shared site plan. The site must
// be built through open-next, which packages the framework's server for Lambda
// and emits a manifest describing every origin of the deployment; the loader
// here validates that manifest and maps it to a site.Plan.
package nextjs

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/component/site"
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/link"
	"github.com/stackform/stackform/pkg/logging"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

const (
	buildOutputFile = "open-next.output.json"
	buildOutputDir  = ".open-next"
	buildIDFile     = ".next/BUILD_ID"

	// incrementalCachePrefix is the destination prefix open-next assigns to
	// the pre-rendered page cache.
	incrementalCachePrefix = "_cache"
)

// minOpenNextVersion is the oldest build tool whose output layout we
// understand.
var minOpenNextVersion = semver.New("3.0.0")

// basePathPattern extracts the basePath option from a Next.js config file.
// The config is JavaScript, so this is best effort over the common literal
// forms.
var basePathPattern = regexp.MustCompile("basePath\\s*:\\s*['\"`](/[^'\"`]*)['\"`]")

type Args struct {
	// Path is the Next.js project root; the build output is read from
	// Path/.open-next.
	Path string

	Regions     []string
	Environment map[string]string
	Links       []link.Linkable
	Router      *site.RouterAttachment

	TransformServer core.Transform[resources.LambdaFunction]
}

// New loads the build output under args.Path and declares the site.
func New(ctx core.DeployContext, name string, args Args, g *core.ResourceGraph) (*site.Site, error) {
	plan, err := LoadPlan(args.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "nextjs site %s", name)
	}
	return site.Provision(ctx, name, *plan, site.Args{
		Regions:         args.Regions,
		Environment:     args.Environment,
		Links:           args.Links,
		Router:          args.Router,
		TransformServer: args.TransformServer,
	}, g)
}

// LoadPlan reads the open-next output manifest from the project directory and
// maps it to the uniform plan.
func LoadPlan(projectDir string) (*site.Plan, error) {
	outputPath := filepath.Join(projectDir, buildOutputDir, buildOutputFile)
	output, err := parseBuildOutput(outputPath)
	if err != nil {
		return nil, err
	}
	if err := checkOpenNextVersion(output.Version.OpenNext); err != nil {
		return nil, err
	}

	plan := &site.Plan{
		Base:    readBasePath(projectDir),
		BuildID: readBuildID(projectDir),
	}

	for name, origin := range output.Origins {
		switch {
		case origin.Type == "s3":
			for _, directive := range origin.Copy {
				asset := site.AssetCopy{
					From:      filepath.Join(projectDir, filepath.FromSlash(directive.From)),
					To:        normalizeOriginPath(directive.To),
					Cached:    directive.Cached,
					Versioned: directive.VersionedSubDir,
				}
				if asset.To == incrementalCachePrefix {
					cache := asset
					plan.IncrementalCache = &cache
					continue
				}
				plan.Assets = append(plan.Assets, asset)
			}
		case name == "imageOptimizer":
			plan.ImageOptimizer = &site.ServerDescriptor{
				Bundle:  filepath.Join(projectDir, filepath.FromSlash(origin.Bundle)),
				Handler: origin.Handler,
			}
		case origin.Type == "function":
			if plan.Server != nil {
				return nil, errors.Errorf("build output %s declares more than one server function; split deployments are not supported", outputPath)
			}
			plan.Server = &site.ServerDescriptor{
				Bundle:    filepath.Join(projectDir, filepath.FromSlash(origin.Bundle)),
				Handler:   origin.Handler,
				Streaming: origin.Streaming,
			}
		}
	}
	if plan.Server == nil {
		return nil, errors.Errorf("build output %s has no server function origin; rebuild the site", outputPath)
	}

	zap.L().With(logging.FileField(outputPath)).Sugar().
		Debugf("loaded next.js build %s (open-next v%s)", plan.BuildID, output.Version.OpenNext)
	return plan, nil
}

func checkOpenNextVersion(version string) error {
	if version == "" {
		return errors.Errorf("build output records no open-next version; update open-next to v%s or newer", minOpenNextVersion)
	}
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return errors.Wrapf(err, "unexpected open-next version %q", version)
	}
	if v.LessThan(*minOpenNextVersion) {
		return errors.Errorf("open-next v%s is no longer supported; update to v%s or newer and rebuild", v, minOpenNextVersion)
	}
	return nil
}

// readBuildID returns the framework's build identifier, empty when the file is
// missing. Provisioning falls back to a generated identifier.
func readBuildID(projectDir string) string {
	data, err := os.ReadFile(filepath.Join(projectDir, filepath.FromSlash(buildIDFile)))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// readBasePath scans the project's Next.js config for a basePath literal. The
// config file is executable JavaScript, so a computed base path will not be
// found; in that case the site is served from the root unless the caller
// attaches it to a router.
func readBasePath(projectDir string) string {
	for _, name := range []string{"next.config.mjs", "next.config.js", "next.config.ts"} {
		data, err := os.ReadFile(filepath.Join(projectDir, name))
		if err != nil {
			continue
		}
		if m := basePathPattern.FindSubmatch(data); m != nil {
			return string(m[1])
		}
	}
	return ""
}
