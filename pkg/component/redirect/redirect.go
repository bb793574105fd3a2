// Package redirect implements a host-redirect component: a minimal CloudFront
// distribution whose viewer-request function answers every request with a
// redirect to another host, preserving path and query string. The usual use
// is pointing the apex domain at www.
package redirect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/lithammer/dedent"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/logging"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

type (
	Args struct {
		// Hosts maps each served host to the host it redirects to. Every key
		// becomes a distribution alias.
		Hosts map[string]string
		// Permanent selects 301 over the default 302.
		Permanent bool

		TransformDistribution core.Transform[resources.CloudfrontDistribution]
	}

	Redirect struct {
		Name         string
		Distribution *resources.CloudfrontDistribution
		Function     *resources.CloudfrontFunction
	}
)

var functionBody = dedent.Dedent(`
	var hosts = %s;
	function handler(event) {
	    var request = event.request;
	    var target = hosts[request.headers.host.value];
	    if (!target) {
	        return request;
	    }
	    var location = 'https://' + target + request.uri;
	    if (Object.keys(request.querystring).length > 0) {
	        var parts = [];
	        for (var key in request.querystring) {
	            parts.push(key + '=' + request.querystring[key].value);
	        }
	        location += '?' + parts.join('&');
	    }
	    return {
	        statusCode: %d,
	        statusDescription: '%s',
	        headers: { location: { value: location } }
	    };
	}
`)

// New declares the redirect's distribution and function on g.
func New(ctx core.DeployContext, name string, args Args, g *core.ResourceGraph) (*Redirect, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("redirect: name is required")
	}
	if len(args.Hosts) == 0 {
		return nil, errors.Errorf("redirect %s: at least one host mapping is required", name)
	}
	for from, to := range args.Hosts {
		if from == "" || to == "" {
			return nil, errors.Errorf("redirect %s: host mapping %q -> %q is incomplete", name, from, to)
		}
		if strings.EqualFold(from, to) {
			return nil, errors.Errorf("redirect %s: host %q redirects to itself", name, from)
		}
	}

	refs := core.RefsFor(name)
	physical := ctx.ResourceName(name)

	code, err := renderFunction(args.Hosts, args.Permanent)
	if err != nil {
		return nil, err
	}
	fn := resources.NewCloudfrontFunction(physical, code, refs)

	distro := resources.NewCloudfrontDistribution(physical, refs)
	distro.Aliases = sortedHosts(args.Hosts)
	distro.DefaultCacheBehavior = &resources.CacheBehavior{
		TargetOriginId:       "redirect-default",
		AllowedMethods:       []string{"GET", "HEAD"},
		CachedMethods:        []string{"GET", "HEAD"},
		ViewerProtocolPolicy: "redirect-to-https",
		FunctionAssociations: []resources.FunctionAssociation{
			{EventType: "viewer-request", Function: fn},
		},
	}
	// the function answers before the origin is ever contacted
	resources.AddCustomOrigin(distro, "redirect-default", core.IaCValue{})
	core.ApplyTransform(args.TransformDistribution, distro)

	g.AddDependenciesReflect(distro)
	g.AddDependency(distro, fn)

	zap.L().With(logging.ComponentField("redirect", name)).Sugar().
		Debugf("declared redirect for %d hosts", len(args.Hosts))
	return &Redirect{Name: name, Distribution: distro, Function: fn}, nil
}

func renderFunction(hosts map[string]string, permanent bool) (string, error) {
	table, err := json.Marshal(hosts)
	if err != nil {
		return "", errors.Wrap(err, "encoding redirect host table")
	}
	status, description := 302, "Found"
	if permanent {
		status, description = 301, "Moved Permanently"
	}
	return fmt.Sprintf(functionBody, string(table), status, description), nil
}

func sortedHosts(hosts map[string]string) []string {
	aliases := make([]string, 0, len(hosts))
	for from := range hosts {
		aliases = append(aliases, from)
	}
	sort.Strings(aliases)
	return aliases
}
