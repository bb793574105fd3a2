package site

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/component/router"
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/link"
	"github.com/stackform/stackform/pkg/logging"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
	"github.com/stackform/stackform/pkg/regions"
)

// imageOptimizerPath is the request prefix routed to the image optimizer.
const imageOptimizerPath = "/_image"

type (
	// Args configures the shared provisioner. Exactly one of Router or a
	// standalone distribution applies: when Router is nil the site gets its
	// own CloudFront distribution.
	Args struct {
		// Regions replicates the rendering function; empty means the
		// deployment's default region only.
		Regions []string
		// Environment is merged into every rendering function.
		Environment map[string]string
		// Links exposes other components to the rendering function.
		Links []link.Linkable
		// Router attaches the site to a shared edge router instead of
		// creating a standalone distribution.
		Router *RouterAttachment

		TransformBucket       core.Transform[resources.S3Bucket]
		TransformServer       core.Transform[resources.LambdaFunction]
		TransformDistribution core.Transform[resources.CloudfrontDistribution]
	}

	RouterAttachment struct {
		Router *router.Router
		// Path is the prefix the site is served under, "/" for the catch-all.
		Path string
	}

	// Site is the provisioned result and the component's linkable surface.
	Site struct {
		Name              string
		Plan              Plan
		Bucket            *resources.S3Bucket
		Servers           []*resources.LambdaFunction
		ServerUrls        []*resources.LambdaFunctionUrl
		ImageOptimizer    *resources.LambdaFunction
		ImageOptimizerUrl *resources.LambdaFunctionUrl
		Distribution      *resources.CloudfrontDistribution
		RevalidationQueue *resources.SqsQueue
		RevalidationTable *resources.DynamodbTable

		routerRef *router.Router
	}
)

// Provision validates the plan and declares the site's resources on g. It is
// idempotent with respect to the engine's reconciliation: re-running with an
// unchanged plan declares an identical graph.
func Provision(ctx core.DeployContext, name string, plan Plan, args Args, g *core.ResourceGraph) (*Site, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("site: name is required")
	}
	if err := plan.Normalize(); err != nil {
		return nil, errors.Wrapf(err, "site %s: invalid plan", name)
	}
	if args.Router != nil {
		if args.Router.Router == nil {
			return nil, errors.Errorf("site %s: router attachment without a router", name)
		}
		if err := plan.CheckRouterPrefix(args.Router.Path); err != nil {
			return nil, errors.Wrapf(err, "site %s", name)
		}
	}
	regionSet, err := regions.NewRegionSet(args.Regions, ctx.DefaultRegion)
	if err != nil {
		return nil, errors.Wrapf(err, "site %s", name)
	}
	if plan.BuildID == "" {
		plan.BuildID = uuid.NewString()
	}

	log := zap.L().With(logging.ComponentField("site", name)).Sugar()
	refs := core.RefsFor(name)
	site := &Site{Name: name, Plan: plan}

	site.Bucket = resources.NewS3Bucket(ctx.ResourceName(name, "assets"), refs)
	if plan.Server == nil {
		site.Bucket.IndexDocument = "index.html"
	}
	core.ApplyTransform(args.TransformBucket, site.Bucket)
	g.AddResource(site.Bucket)

	if plan.Server != nil {
		if err := site.provisionServers(ctx, plan, args, regionSet, refs, g); err != nil {
			return nil, err
		}
	}
	if plan.ImageOptimizer != nil {
		if err := site.provisionImageOptimizer(ctx, plan, refs, g); err != nil {
			return nil, err
		}
	}
	if plan.IncrementalCache != nil && plan.Server != nil {
		site.provisionRevalidation(ctx, plan, refs, g)
	}

	if args.Router != nil {
		site.routerRef = args.Router.Router
		if err := site.attachToRouter(args.Router, regionSet); err != nil {
			return nil, err
		}
	} else {
		site.provisionDistribution(ctx, args, refs, g)
	}

	log.Infow("declared site resources",
		"regions", []string(regionSet),
		"static", plan.Server == nil,
		"resources", g.Len(),
	)
	return site, nil
}

func (s *Site) provisionServers(ctx core.DeployContext, plan Plan, args Args, regionSet regions.RegionSet, refs core.ComponentRefSet, g *core.ResourceGraph) error {
	role := resources.NewIamRole(ctx.ResourceName(s.Name, "server"), resources.LAMBDA_ASSUME_ROLE_POLICY, refs)
	role.ManagedPolicies = []string{"arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"}
	role.AttachInlinePolicy(resources.NewIamPolicy(
		ctx.ResourceName(s.Name, "assets-read"),
		resources.AllowStatement(
			[]string{"s3:GetObject", "s3:ListBucket"},
			core.ValueOf(s.Bucket, core.ARN_IAC_VALUE),
			core.ValueOf(s.Bucket, core.ALL_OBJECTS_ARN_IAC_VALUE),
		),
		refs,
	))
	if len(plan.Server.Permissions) > 0 {
		role.AttachInlinePolicy(resources.NewIamPolicy(
			ctx.ResourceName(s.Name, "server-extra"),
			&resources.PolicyDocument{Version: resources.POLICY_VERSION, Statement: plan.Server.Permissions},
			refs,
		))
	}
	g.AddDependenciesReflect(role)

	for _, region := range regionSet {
		fn := resources.NewLambdaFunction(ctx.ResourceName(s.Name, region), role, refs)
		fn.Region = region
		fn.Bundle = plan.Server.Bundle
		fn.Handler = plan.Server.Handler
		if plan.Server.Runtime != "" {
			fn.Runtime = plan.Server.Runtime
		}
		for k, v := range plan.Server.Environment {
			fn.EnvironmentVariables[k] = v
		}
		for k, v := range args.Environment {
			fn.EnvironmentVariables[k] = v
		}
		fn.LogGroup = resources.NewLogGroup(
			fn.Name+"-logs",
			fmt.Sprintf("/aws/lambda/%s", fn.Name),
			refs,
		)
		core.ApplyTransform(args.TransformServer, fn)
		link.InjectIntoFunction(fn, g, args.Links...)

		url := resources.NewLambdaFunctionUrl(fn, plan.Server.Streaming, refs)
		g.AddDependenciesReflect(fn)
		g.AddDependency(url, fn)

		// the URL has no authorizer, so public invocation needs an explicit
		// grant
		perm := resources.NewLambdaPermission(fn, "*", "lambda:InvokeFunctionUrl", core.IaCValue{}, refs)
		g.AddDependenciesReflect(perm)

		s.Servers = append(s.Servers, fn)
		s.ServerUrls = append(s.ServerUrls, url)
	}
	return nil
}

func (s *Site) provisionImageOptimizer(ctx core.DeployContext, plan Plan, refs core.ComponentRefSet, g *core.ResourceGraph) error {
	role := resources.NewIamRole(ctx.ResourceName(s.Name, "image"), resources.LAMBDA_ASSUME_ROLE_POLICY, refs)
	role.ManagedPolicies = []string{"arn:aws:iam::aws:policy/service-role/AWSLambdaBasicExecutionRole"}
	role.AttachInlinePolicy(resources.NewIamPolicy(
		ctx.ResourceName(s.Name, "image-assets-read"),
		resources.AllowStatement(
			[]string{"s3:GetObject"},
			core.ValueOf(s.Bucket, core.ALL_OBJECTS_ARN_IAC_VALUE),
		),
		refs,
	))
	g.AddDependenciesReflect(role)

	fn := resources.NewLambdaFunction(ctx.ResourceName(s.Name, "image"), role, refs)
	fn.Bundle = plan.ImageOptimizer.Bundle
	fn.Handler = plan.ImageOptimizer.Handler
	fn.MemoryMB = 1536
	for k, v := range plan.ImageOptimizer.Environment {
		fn.EnvironmentVariables[k] = v
	}
	fn.EnvironmentVariables["BUCKET_NAME"] = link.Placeholder(core.ValueOf(s.Bucket, core.NAME_IAC_VALUE))
	g.AddDependenciesReflect(fn)

	url := resources.NewLambdaFunctionUrl(fn, false, refs)
	g.AddDependency(url, fn)
	perm := resources.NewLambdaPermission(fn, "*", "lambda:InvokeFunctionUrl", core.IaCValue{}, refs)
	g.AddDependenciesReflect(perm)

	s.ImageOptimizer = fn
	s.ImageOptimizerUrl = url
	return nil
}

// provisionRevalidation declares the ISR queue/table pair plus the consumer
// that replays stale pages through the rendering handler.
func (s *Site) provisionRevalidation(ctx core.DeployContext, plan Plan, refs core.ComponentRefSet, g *core.ResourceGraph) {
	queue := resources.NewSqsQueue(ctx.ResourceName(s.Name, "revalidation"), refs)
	queue.FifoQueue = true
	queue.ContentBasedDeduplication = true

	table := resources.NewDynamodbTable(ctx.ResourceName(s.Name, "revalidation"), "tag", refs)
	table.RangeKey = "path"
	table.Attributes = append(table.Attributes, resources.DynamodbTableAttribute{Name: "path", Type: "S"})
	table.GlobalSecondaryIndexes = []resources.DynamodbGlobalSecondaryIndex{
		{Name: "revalidate", HashKey: "path", RangeKey: "revalidatedAt", ProjectionType: "ALL"},
	}
	table.Attributes = append(table.Attributes, resources.DynamodbTableAttribute{Name: "revalidatedAt", Type: "N"})

	primary := s.Servers[0]
	revalidator := resources.NewLambdaFunction(ctx.ResourceName(s.Name, "revalidator"), primary.Role, refs)
	revalidator.Bundle = plan.Server.Bundle
	revalidator.Handler = "revalidator.handler"
	revalidator.TimeoutSeconds = 30
	revalidator.EnvironmentVariables["REVALIDATION_TABLE"] = link.Placeholder(core.ValueOf(table, core.NAME_IAC_VALUE))
	g.AddDependenciesReflect(revalidator)

	mapping := resources.NewSqsEventSourceMapping(queue, revalidator, refs)
	g.AddDependenciesReflect(mapping)

	for _, fn := range s.Servers {
		fn.EnvironmentVariables["REVALIDATION_QUEUE_URL"] = link.Placeholder(core.ValueOf(queue, core.URL_IAC_VALUE))
		fn.EnvironmentVariables["REVALIDATION_TABLE"] = link.Placeholder(core.ValueOf(table, core.NAME_IAC_VALUE))
	}
	primary.Role.AttachInlinePolicy(resources.NewIamPolicy(
		ctx.ResourceName(s.Name, "revalidation"),
		resources.AllowStatement(
			[]string{"sqs:SendMessage", "dynamodb:GetItem", "dynamodb:PutItem", "dynamodb:Query"},
			core.ValueOf(queue, core.ARN_IAC_VALUE),
			core.ValueOf(table, core.ARN_IAC_VALUE),
		),
		refs,
	))

	s.RevalidationQueue = queue
	s.RevalidationTable = table
}

func (s *Site) provisionDistribution(ctx core.DeployContext, args Args, refs core.ComponentRefSet, g *core.ResourceGraph) {
	distro := resources.NewCloudfrontDistribution(ctx.ResourceName(s.Name), refs)

	oai := resources.NewOriginAccessIdentity(ctx.ResourceName(s.Name, "assets"), refs)
	resources.AddS3Origin(distro, "assets", s.Bucket, oai, g)

	if len(s.ServerUrls) > 0 {
		// standalone distributions always use the primary region's server;
		// latency routing requires the shared router's edge function
		resources.AddCustomOrigin(distro, "server",
			core.ValueOf(s.ServerUrls[0], core.DOMAIN_NAME_IAC_VALUE))
		distro.DefaultCacheBehavior = serverBehavior("server")
		for _, directive := range s.Plan.Assets {
			if directive.To == "" {
				continue
			}
			distro.OrderedCacheBehaviors = append(distro.OrderedCacheBehaviors, assetBehavior("assets", "/"+directive.To+"/*"))
		}
	} else {
		distro.DefaultCacheBehavior = assetBehavior("assets", "")
		distro.DefaultRootObject = "index.html"
		if s.Plan.Custom404 != "" {
			distro.CustomErrorResponses = append(distro.CustomErrorResponses, resources.CustomErrorResponse{
				ErrorCode:        403,
				ResponseCode:     404,
				ResponsePagePath: "/" + s.Plan.Custom404,
			})
		}
	}

	if s.ImageOptimizerUrl != nil {
		resources.AddCustomOrigin(distro, "image",
			core.ValueOf(s.ImageOptimizerUrl, core.DOMAIN_NAME_IAC_VALUE))
		distro.OrderedCacheBehaviors = append(distro.OrderedCacheBehaviors, serverBehaviorWithPath("image", imageOptimizerPath+"/*"))
	}

	core.ApplyTransform(args.TransformDistribution, distro)
	g.AddDependenciesReflect(distro)
	s.Distribution = distro
}

func (s *Site) attachToRouter(attachment *RouterAttachment, regionSet regions.RegionSet) error {
	record := router.RouteRecord{
		Base:      s.Plan.Base,
		Bucket:    link.Placeholder(core.ValueOf(s.Bucket, core.REGIONAL_DOMAIN_NAME_IAC_VALUE)),
		Custom404: s.Plan.Custom404,
	}
	for _, directive := range s.Plan.Assets {
		if directive.To != "" {
			record.Assets = append(record.Assets, "/"+directive.To+"/")
		}
	}
	for i, url := range s.ServerUrls {
		region := regionSet[i]
		coords, _ := regions.Lookup(region)
		record.Servers = append(record.Servers, router.ServerEndpoint{
			Region: region,
			Host:   link.Placeholder(core.ValueOf(url, core.DOMAIN_NAME_IAC_VALUE)),
			Lat:    coords.Lat,
			Lon:    coords.Lon,
		})
	}
	if s.ImageOptimizerUrl != nil {
		record.Image = link.Placeholder(core.ValueOf(s.ImageOptimizerUrl, core.DOMAIN_NAME_IAC_VALUE))
		record.ImagePath = imageOptimizerPath
	}
	return attachment.Router.Attach(s.Name, attachment.Path, record)
}

// URL is the site's public URL value: its own distribution's, or the shared
// router's when attached.
func (s *Site) URL() core.IaCValue {
	if s.Distribution != nil {
		return core.ValueOf(s.Distribution, core.URL_IAC_VALUE)
	}
	return s.routerRef.URL()
}

// LinkName implements link.Linkable.
func (s *Site) LinkName() string { return s.Name }

// LinkProperties implements link.Linkable.
func (s *Site) LinkProperties() map[string]core.IaCValue {
	return map[string]core.IaCValue{
		"url": s.URL(),
	}
}

// LinkPermissions implements link.Linkable; sites expose no extra IAM.
func (s *Site) LinkPermissions() []resources.StatementEntry { return nil }

func serverBehavior(originId string) *resources.CacheBehavior {
	return &resources.CacheBehavior{
		TargetOriginId:       originId,
		AllowedMethods:       []string{"GET", "HEAD", "OPTIONS", "PUT", "POST", "PATCH", "DELETE"},
		CachedMethods:        []string{"GET", "HEAD"},
		ViewerProtocolPolicy: "redirect-to-https",
		Compress:             true,
	}
}

func serverBehaviorWithPath(originId string, pathPattern string) *resources.CacheBehavior {
	b := serverBehavior(originId)
	b.PathPattern = pathPattern
	return b
}

func assetBehavior(originId string, pathPattern string) *resources.CacheBehavior {
	return &resources.CacheBehavior{
		PathPattern:          pathPattern,
		TargetOriginId:       originId,
		AllowedMethods:       []string{"GET", "HEAD"},
		CachedMethods:        []string{"GET", "HEAD"},
		ViewerProtocolPolicy: "redirect-to-https",
		Compress:             true,
		DefaultTtl:           86400,
		MaxTtl:               31536000,
	}
}
