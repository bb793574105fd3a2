// Package remix adapts a Remix build to the shared site plan. Remix's Vite
// build emits a fixed layout, so no manifest is needed: the server bundle
// lives at build/server and the client assets at build/client, with
// content-hashed files under the assets/ subdirectory.
package remix

import (
	"regexp"

	"github.com/pkg/errors"

	"github.com/stackform/stackform/pkg/component/site"
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/link"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

type Args struct {
	// Path is the Remix project root; the build output is read from
	// Path/build.
	Path string

	Regions     []string
	Environment map[string]string
	Links       []link.Linkable
	Router      *site.RouterAttachment

	TransformServer core.Transform[resources.LambdaFunction]
}

// basePathPattern extracts the basename option from the Remix Vite plugin
// config. Best effort; a computed value will not be found.
var basePathPattern = regexp.MustCompile("basename\\s*:\\s*['\"`](/[^'\"`]*)['\"`]")

var configFiles = []string{"vite.config.ts", "vite.config.js", "vite.config.mjs"}

// New loads the build output under args.Path and declares the site.
func New(ctx core.DeployContext, name string, args Args, g *core.ResourceGraph) (*site.Site, error) {
	plan, err := LoadPlan(args.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "remix site %s", name)
	}
	return site.Provision(ctx, name, *plan, site.Args{
		Regions:         args.Regions,
		Environment:     args.Environment,
		Links:           args.Links,
		Router:          args.Router,
		TransformServer: args.TransformServer,
	}, g)
}

// LoadPlan maps the conventional Remix build layout to the uniform plan.
func LoadPlan(projectDir string) (*site.Plan, error) {
	return site.LoadViteBuild(projectDir, "remix vite:build", configFiles, basePathPattern)
}
