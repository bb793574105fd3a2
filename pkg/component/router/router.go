// Package router implements the shared edge router component. A router owns
// one CloudFront distribution whose viewer-request function decides, per
// request, whether to serve from a site's asset bucket, its rendering
// function (nearest region first) or its image optimizer. The routing table
// lives in a CloudFront key-value store so attaching a site never changes the
// function code, only data.
package router

import (
	"embed"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/logging"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
	"github.com/stackform/stackform/pkg/templateutils"
)

//go:embed templates/*.tmpl
var templates embed.FS

var routerFunctionTemplate = templateutils.MustTemplate(templates, "templates/router.js.tmpl")

type (
	Args struct {
		// Aliases are the custom domain names served by the distribution.
		Aliases []string
		// TransformDistribution adjusts the draft distribution before it is
		// added to the graph.
		TransformDistribution core.Transform[resources.CloudfrontDistribution]
	}

	Router struct {
		Name         string
		Distribution *resources.CloudfrontDistribution
		Function     *resources.CloudfrontFunction
		Store        *resources.CloudfrontKeyValueStore

		ctx    core.DeployContext
		graph  *core.ResourceGraph
		routes map[string]string // namespace -> path prefix
	}

	// ServerEndpoint is one regional server origin with its latency-routing
	// hint.
	ServerEndpoint struct {
		Region string  `json:"region"`
		Host   string  `json:"host"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
	}

	// RouteRecord is the KV routing metadata for one attached site. Host
	// fields hold engine placeholders resolved at apply time.
	RouteRecord struct {
		Base      string           `json:"base,omitempty"`
		Bucket    string           `json:"bucket,omitempty"`
		Assets    []string         `json:"assets,omitempty"`
		Servers   []ServerEndpoint `json:"servers,omitempty"`
		Image     string           `json:"image,omitempty"`
		ImagePath string           `json:"imagePath,omitempty"`
		Custom404 string           `json:"custom404,omitempty"`
	}
)

// New declares the router's distribution, function and key-value store on g.
func New(ctx core.DeployContext, name string, args Args, g *core.ResourceGraph) (*Router, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("router: name is required")
	}
	log := zap.L().With(logging.ComponentField("router", name)).Sugar()

	refs := core.RefsFor(name)
	physical := ctx.ResourceName(name)

	store := resources.NewCloudfrontKeyValueStore(physical, refs)

	code, err := renderFunction(store.Name)
	if err != nil {
		return nil, err
	}
	fn := resources.NewCloudfrontFunction(physical, code, refs)
	fn.KeyValueStore = store

	distro := resources.NewCloudfrontDistribution(physical, refs)
	distro.Aliases = args.Aliases
	distro.DefaultCacheBehavior = &resources.CacheBehavior{
		TargetOriginId:       "router-default",
		AllowedMethods:       []string{"GET", "HEAD", "OPTIONS", "PUT", "POST", "PATCH", "DELETE"},
		CachedMethods:        []string{"GET", "HEAD"},
		ViewerProtocolPolicy: "redirect-to-https",
		Compress:             true,
		FunctionAssociations: []resources.FunctionAssociation{
			{EventType: "viewer-request", Function: fn},
		},
	}
	// placeholder origin; the function retargets every request to the
	// matched site's origin
	resources.AddCustomOrigin(distro, "router-default", core.IaCValue{})
	core.ApplyTransform(args.TransformDistribution, distro)

	g.AddDependency(fn, store)
	g.AddDependenciesReflect(distro)
	g.AddDependency(distro, fn)

	log.Debug("declared router resources")
	return &Router{
		Name:         name,
		Distribution: distro,
		Function:     fn,
		Store:        store,
		ctx:          ctx,
		graph:        g,
		routes:       make(map[string]string),
	}, nil
}

// Attach registers a site's routing record under a path prefix. Prefix "/"
// (or "") is the catch-all. Each namespace may attach once; two sites may not
// claim the same prefix.
func (r *Router) Attach(namespace string, pathPrefix string, record RouteRecord) error {
	if namespace == "" {
		return errors.New("router attach: namespace is required")
	}
	if _, exists := r.routes[namespace]; exists {
		return errors.Errorf("router %s: namespace %q is already attached", r.Name, namespace)
	}
	prefix := "/" + strings.Trim(pathPrefix, "/")
	for ns, existing := range r.routes {
		if existing == prefix {
			return errors.Errorf("router %s: path %q is already claimed by %q", r.Name, prefix, ns)
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrapf(err, "encoding route record for %q", namespace)
	}
	r.routes[namespace] = prefix
	r.Store.Entries["site:"+namespace] = string(data)
	r.Store.Entries["routes"] = r.routesIndex()

	zap.L().With(logging.ComponentField("router", r.Name)).Sugar().
		Debugf("attached %q at %s", namespace, prefix)
	return nil
}

// PathPrefix returns the prefix a namespace is attached under.
func (r *Router) PathPrefix(namespace string) (string, bool) {
	prefix, ok := r.routes[namespace]
	return prefix, ok
}

// URL is the late-bound distribution URL.
func (r *Router) URL() core.IaCValue {
	return core.ValueOf(r.Distribution, core.URL_IAC_VALUE)
}

// routesIndex renders the prefix index, longest prefix first so the edge
// function's first match is the most specific one.
func (r *Router) routesIndex() string {
	type entry struct {
		prefix string
		ns     string
	}
	entries := make([]entry, 0, len(r.routes))
	for ns, prefix := range r.routes {
		entries = append(entries, entry{prefix: prefix, ns: ns})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].prefix) != len(entries[j].prefix) {
			return len(entries[i].prefix) > len(entries[j].prefix)
		}
		return entries[i].prefix < entries[j].prefix
	})
	pairs := make([][2]string, len(entries))
	for i, e := range entries {
		pairs[i] = [2]string{e.prefix, e.ns}
	}
	data, err := json.Marshal(pairs)
	if err != nil {
		// the input is a slice of string pairs; this cannot fail
		panic(err)
	}
	return string(data)
}

func renderFunction(storeName string) (string, error) {
	var sb strings.Builder
	err := routerFunctionTemplate.Execute(&sb, struct{ StoreName string }{StoreName: storeName})
	if err != nil {
		return "", errors.Wrap(err, "rendering router function code")
	}
	return sb.String(), nil
}
