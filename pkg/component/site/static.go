package site

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

// StaticArgs configures a plain static site served straight from the asset
// bucket, with no rendering function.
type StaticArgs struct {
	// Dir is the directory of built files to upload.
	Dir string
	// Base is the optional path prefix the site is served under.
	Base string
	// ErrorPage overrides the default 404 object key ("404.html").
	ErrorPage string

	Router                *RouterAttachment
	TransformBucket       core.Transform[resources.S3Bucket]
	TransformDistribution core.Transform[resources.CloudfrontDistribution]
}

// NewStatic declares a static site component. The 404 page is picked up when
// the conventional file exists in the build directory.
func NewStatic(ctx core.DeployContext, name string, args StaticArgs, g *core.ResourceGraph) (*Site, error) {
	if args.Dir == "" {
		return nil, errors.Errorf("static site %s: dir is required", name)
	}
	info, err := os.Stat(args.Dir)
	if err != nil || !info.IsDir() {
		return nil, errors.Errorf("static site %s: %q is not a directory; run the site's build first", name, args.Dir)
	}

	errorPage := args.ErrorPage
	if errorPage == "" {
		errorPage = "404.html"
	}
	custom404 := ""
	if _, err := os.Stat(filepath.Join(args.Dir, errorPage)); err == nil {
		custom404 = errorPage
	}

	plan := Plan{
		Base:      args.Base,
		Assets:    []AssetCopy{{From: args.Dir, To: "", Cached: true}},
		Custom404: custom404,
	}
	return Provision(ctx, name, plan, Args{
		Router:                args.Router,
		TransformBucket:       args.TransformBucket,
		TransformDistribution: args.TransformDistribution,
	}, g)
}
