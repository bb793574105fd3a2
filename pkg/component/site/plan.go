// Package site holds the deployment plan model shared by every web-framework
// adapter and the provisioning logic that turns a plan into cloud resources.
// Framework packages (nextjs, astro, remix, reactrouter, nuxt) parse their
// build output into a Plan; everything downstream of the Plan is common.
package site

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/stackform/stackform/pkg/multierr"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

type (
	// Plan is the normalized description of one built site. It is constructed
	// once per deployment by a framework adapter, validated, then consumed by
	// Provision. It is never mutated after validation.
	Plan struct {
		// Base is the path prefix the site is served under, empty for the
		// root. Normalization guarantees a single leading "/" and no
		// trailing "/".
		Base string
		// Server describes the rendering function; nil for fully static
		// sites.
		Server *ServerDescriptor
		// ImageOptimizer describes the image optimization function, if the
		// framework emits one.
		ImageOptimizer *ServerDescriptor
		// Assets lists the static directories to upload.
		Assets []AssetCopy
		// IncrementalCache, when set, points at the pre-rendered cache
		// directory and enables the ISR revalidation queue and table.
		IncrementalCache *AssetCopy
		// Custom404 is the object key of the 404 page, empty when the build
		// produced none.
		Custom404 string
		// BuildID identifies this build, when the framework records one.
		BuildID string
	}

	// ServerDescriptor locates a server handler inside the build output.
	ServerDescriptor struct {
		// Bundle is the directory holding the packaged handler.
		Bundle string
		// Handler is the function entry point, e.g. "index.handler".
		Handler string
		// Runtime overrides the default nodejs runtime when set.
		Runtime string
		// Streaming selects a streaming function URL.
		Streaming bool
		// Environment is merged into the function's environment variables.
		Environment map[string]string
		// Permissions grants the handler extra IAM statements.
		Permissions []resources.StatementEntry
	}

	// AssetCopy describes one static-file source directory to upload.
	AssetCopy struct {
		// From is the source directory inside the build output.
		From string
		// To is the destination key prefix; normalization strips leading and
		// trailing slashes.
		To string
		// Cached marks the directive's files as aggressively cacheable.
		Cached bool
		// Versioned names the subdirectory whose content-hashed files get
		// immutable cache headers, empty when the directive has none.
		Versioned string
	}
)

// Normalize brings the plan to canonical form and validates it. A non-empty
// base always starts with exactly one "/" and never ends with one; asset
// destination prefixes carry no surrounding slashes.
func (p *Plan) Normalize() error {
	var errs multierr.Error

	if p.Base != "" {
		p.Base = "/" + strings.Trim(p.Base, "/")
		if p.Base == "/" {
			p.Base = ""
		}
	}

	for i := range p.Assets {
		p.Assets[i].To = strings.Trim(p.Assets[i].To, "/")
		if p.Assets[i].From == "" {
			errs.Append(errors.Errorf("asset directive %d: source directory is required", i))
		}
	}
	if p.IncrementalCache != nil {
		p.IncrementalCache.To = strings.Trim(p.IncrementalCache.To, "/")
		if p.IncrementalCache.From == "" {
			errs.Append(errors.New("incremental cache directive: source directory is required"))
		}
	}

	if p.Server != nil {
		if p.Server.Bundle == "" {
			errs.Append(errors.New("server: bundle directory is required"))
		}
		if p.Server.Handler == "" {
			errs.Append(errors.New("server: handler entry point is required"))
		}
	}
	if p.ImageOptimizer != nil && p.ImageOptimizer.Bundle == "" {
		errs.Append(errors.New("image optimizer: bundle directory is required"))
	}

	return errs.ErrOrNil()
}

// CheckRouterPrefix enforces the composition rule between a site's base path
// and the path prefix it is attached to on a shared router: a prefix other
// than "/" requires the base to be defined and to start with that prefix.
func (p *Plan) CheckRouterPrefix(prefix string) error {
	if prefix == "" || prefix == "/" {
		return nil
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if p.Base == "" {
		return errors.Errorf("router path %q requires the site's base path to be set to a path starting with %q", prefix, prefix)
	}
	if !strings.HasPrefix(p.Base, prefix) {
		return errors.Errorf("site base path %q must start with the router path %q", p.Base, prefix)
	}
	return nil
}
