// Package reactrouter adapts a React Router framework-mode build to the
// shared site plan. The build layout matches Remix's (build/server and
// build/client); only the config file scanned for a base path differs.
package reactrouter

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/stackform/stackform/pkg/component/site"
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/link"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

type Args struct {
	// Path is the React Router project root; the build output is read from
	// Path/build.
	Path string

	Regions     []string
	Environment map[string]string
	Links       []link.Linkable
	Router      *site.RouterAttachment

	TransformServer core.Transform[resources.LambdaFunction]
}

// basePathPattern extracts the basename option from react-router.config or
// the Vite config. Best effort; a computed value will not be found.
var basePathPattern = regexp.MustCompile("basename\\s*:\\s*['\"`](/[^'\"`]*)['\"`]")

var configFiles = []string{
	"react-router.config.ts",
	"react-router.config.js",
	"vite.config.ts",
	"vite.config.js",
	"vite.config.mjs",
}

// New loads the build output under args.Path and declares the site.
func New(ctx core.DeployContext, name string, args Args, g *core.ResourceGraph) (*site.Site, error) {
	plan, err := LoadPlan(args.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "react-router site %s", name)
	}
	return site.Provision(ctx, name, *plan, site.Args{
		Regions:         args.Regions,
		Environment:     args.Environment,
		Links:           args.Links,
		Router:          args.Router,
		TransformServer: args.TransformServer,
	}, g)
}

// LoadPlan maps the conventional React Router build layout to the uniform
// plan.
func LoadPlan(projectDir string) (*site.Plan, error) {
	return site.LoadViteBuild(projectDir, "react-router build", configFiles, basePathPattern)
}
