package cli

import (
	"github.com/pkg/errors"

	"github.com/stackform/stackform/pkg/component/auth"
	"github.com/stackform/stackform/pkg/component/cluster"
	"github.com/stackform/stackform/pkg/component/redirect"
	"github.com/stackform/stackform/pkg/component/router"
	"github.com/stackform/stackform/pkg/component/search"
	"github.com/stackform/stackform/pkg/component/site"
	"github.com/stackform/stackform/pkg/component/site/astro"
	"github.com/stackform/stackform/pkg/component/site/nextjs"
	"github.com/stackform/stackform/pkg/component/site/nuxt"
	"github.com/stackform/stackform/pkg/component/site/reactrouter"
	"github.com/stackform/stackform/pkg/component/site/remix"
	"github.com/stackform/stackform/pkg/config"
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/link"
	"github.com/stackform/stackform/pkg/upgrade"
)

type (
	// configured argument shapes, decoded from the project file's untyped
	// args maps; the component packages' Args carry fields (links, state,
	// transforms) the file cannot express
	siteConfigArgs struct {
		Path        string
		Dir         string
		Base        string
		ErrorPage   string
		Regions     []string
		Environment map[string]string
		Links       []string
		Router      *routerRefArgs
	}

	routerRefArgs struct {
		Name string
		Path string
	}

	routerConfigArgs struct {
		Aliases []string
	}

	redirectConfigArgs struct {
		Hosts     map[string]string
		Permanent bool
	}

	clusterConfigArgs struct {
		Vpc              string
		ContainerSubnets []string
		ServiceSubnets   []string
		SecurityGroups   []string
		AssignPublicIp   bool
		Image            string
		Cpu              int
		MemoryMB         int
		DesiredCount     int
		Environment      map[string]string
		Links            []string
		ForceUpgrade     int64
	}

	authConfigArgs struct {
		Issuer       auth.IssuerArgs
		Environment  map[string]string
		Links        []string
		ForceUpgrade int64
	}

	searchConfigArgs struct {
		EngineVersion string
		InstanceType  string
		InstanceCount int
		VolumeSizeGB  int
	}
)

// buildOrder fixes the instantiation order so that by the time a component
// resolves its router or links, those targets exist.
var buildOrder = []string{
	"router", "search", "auth",
	"nextjs", "astro", "remix", "reactrouter", "nuxt", "static",
	"cluster", "redirect",
}

// buildGraph instantiates every component declared in the project and returns
// the resulting resource graph. State is loaded from the project directory so
// version guards see the last deployment.
func buildGraph(project *config.Project, stage string) (*core.ResourceGraph, *upgrade.State, error) {
	if err := project.Validate(); err != nil {
		return nil, nil, err
	}
	state, err := upgrade.LoadState(project.Dir)
	if err != nil {
		return nil, nil, err
	}

	ctx := project.Context(stage)
	g := core.NewResourceGraph()
	b := &graphBuilder{
		ctx:       ctx,
		graph:     g,
		state:     state,
		routers:   make(map[string]*router.Router),
		linkables: make(map[string]link.Linkable),
	}

	for _, kind := range buildOrder {
		for _, name := range project.ComponentNames() {
			component := project.Components[name]
			if component.Type != kind {
				continue
			}
			if err := b.build(name, component); err != nil {
				return nil, nil, errors.Wrapf(err, "component %q", name)
			}
		}
	}
	return g, state, nil
}

type graphBuilder struct {
	ctx       core.DeployContext
	graph     *core.ResourceGraph
	state     *upgrade.State
	routers   map[string]*router.Router
	linkables map[string]link.Linkable
}

func (b *graphBuilder) build(name string, component config.Component) error {
	switch component.Type {
	case "router":
		var args routerConfigArgs
		if err := component.DecodeArgs(&args); err != nil {
			return err
		}
		r, err := router.New(b.ctx, name, router.Args{Aliases: args.Aliases}, b.graph)
		if err != nil {
			return err
		}
		b.routers[name] = r
		return nil

	case "search":
		var args searchConfigArgs
		if err := component.DecodeArgs(&args); err != nil {
			return err
		}
		s, err := search.New(b.ctx, name, search.Args{
			EngineVersion: args.EngineVersion,
			InstanceType:  args.InstanceType,
			InstanceCount: args.InstanceCount,
			VolumeSizeGB:  args.VolumeSizeGB,
		}, b.graph)
		if err != nil {
			return err
		}
		b.linkables[name] = s
		return nil

	case "auth":
		var args authConfigArgs
		if err := component.DecodeArgs(&args); err != nil {
			return err
		}
		links, err := b.resolveLinks(args.Links)
		if err != nil {
			return err
		}
		a, err := auth.New(b.ctx, name, auth.Args{
			Issuer:       args.Issuer,
			Environment:  args.Environment,
			Links:        links,
			ForceUpgrade: args.ForceUpgrade,
			State:        b.state,
		}, b.graph)
		if err != nil {
			return err
		}
		b.linkables[name] = a
		return nil

	case "cluster":
		var args clusterConfigArgs
		if err := component.DecodeArgs(&args); err != nil {
			return err
		}
		links, err := b.resolveLinks(args.Links)
		if err != nil {
			return err
		}
		_, err = cluster.New(b.ctx, name, cluster.Args{
			Vpc:              args.Vpc,
			ContainerSubnets: args.ContainerSubnets,
			ServiceSubnets:   args.ServiceSubnets,
			SecurityGroups:   args.SecurityGroups,
			AssignPublicIp:   args.AssignPublicIp,
			Image:            args.Image,
			Cpu:              args.Cpu,
			MemoryMB:         args.MemoryMB,
			DesiredCount:     args.DesiredCount,
			Environment:      args.Environment,
			Links:            links,
			ForceUpgrade:     args.ForceUpgrade,
			State:            b.state,
		}, b.graph)
		return err

	case "redirect":
		var args redirectConfigArgs
		if err := component.DecodeArgs(&args); err != nil {
			return err
		}
		_, err := redirect.New(b.ctx, name, redirect.Args{
			Hosts:     args.Hosts,
			Permanent: args.Permanent,
		}, b.graph)
		return err

	case "static":
		var args siteConfigArgs
		if err := component.DecodeArgs(&args); err != nil {
			return err
		}
		attachment, err := b.resolveRouter(args.Router)
		if err != nil {
			return err
		}
		s, err := site.NewStatic(b.ctx, name, site.StaticArgs{
			Dir:       args.Dir,
			Base:      args.Base,
			ErrorPage: args.ErrorPage,
			Router:    attachment,
		}, b.graph)
		if err != nil {
			return err
		}
		b.linkables[name] = s
		return nil

	default:
		return b.buildFrameworkSite(name, component)
	}
}

func (b *graphBuilder) buildFrameworkSite(name string, component config.Component) error {
	var args siteConfigArgs
	if err := component.DecodeArgs(&args); err != nil {
		return err
	}
	links, err := b.resolveLinks(args.Links)
	if err != nil {
		return err
	}
	attachment, err := b.resolveRouter(args.Router)
	if err != nil {
		return err
	}

	var s *site.Site
	switch component.Type {
	case "nextjs":
		s, err = nextjs.New(b.ctx, name, nextjs.Args{
			Path: args.Path, Regions: args.Regions, Environment: args.Environment,
			Links: links, Router: attachment,
		}, b.graph)
	case "astro":
		s, err = astro.New(b.ctx, name, astro.Args{
			Path: args.Path, Regions: args.Regions, Environment: args.Environment,
			Links: links, Router: attachment,
		}, b.graph)
	case "remix":
		s, err = remix.New(b.ctx, name, remix.Args{
			Path: args.Path, Regions: args.Regions, Environment: args.Environment,
			Links: links, Router: attachment,
		}, b.graph)
	case "reactrouter":
		s, err = reactrouter.New(b.ctx, name, reactrouter.Args{
			Path: args.Path, Regions: args.Regions, Environment: args.Environment,
			Links: links, Router: attachment,
		}, b.graph)
	case "nuxt":
		s, err = nuxt.New(b.ctx, name, nuxt.Args{
			Path: args.Path, Regions: args.Regions, Environment: args.Environment,
			Links: links, Router: attachment,
		}, b.graph)
	default:
		return errors.Errorf("unknown component type %q", component.Type)
	}
	if err != nil {
		return err
	}
	b.linkables[name] = s
	return nil
}

func (b *graphBuilder) resolveLinks(names []string) ([]link.Linkable, error) {
	links := make([]link.Linkable, 0, len(names))
	for _, name := range names {
		target, ok := b.linkables[name]
		if !ok {
			return nil, errors.Errorf("link target %q is not a linkable component declared in this project", name)
		}
		links = append(links, target)
	}
	return links, nil
}

func (b *graphBuilder) resolveRouter(ref *routerRefArgs) (*site.RouterAttachment, error) {
	if ref == nil {
		return nil, nil
	}
	r, ok := b.routers[ref.Name]
	if !ok {
		return nil, errors.Errorf("router %q is not declared in this project", ref.Name)
	}
	return &site.RouterAttachment{Router: r, Path: ref.Path}, nil
}
