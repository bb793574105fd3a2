// Package search implements the full-text search component, an OpenSearch
// domain sized for light workloads by default. Linked functions get the
// domain endpoint and master credentials in their environment plus an IAM
// statement allowing HTTP access to the domain.
package search

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/logging"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

// engine-resolved credential properties of the domain
const (
	usernameProperty = "master_user_name"
	passwordProperty = "master_user_password"
)

type (
	Args struct {
		// EngineVersion overrides the default OpenSearch engine version.
		EngineVersion string
		// InstanceType and InstanceCount size the cluster; zero values keep
		// the defaults.
		InstanceType  string
		InstanceCount int
		// VolumeSizeGB overrides the default EBS volume size.
		VolumeSizeGB int

		TransformDomain core.Transform[resources.OpenSearchDomain]
	}

	Search struct {
		Name   string
		Domain *resources.OpenSearchDomain
	}
)

// New declares the search domain on g.
func New(ctx core.DeployContext, name string, args Args, g *core.ResourceGraph) (*Search, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("search: name is required")
	}
	if args.InstanceCount < 0 {
		return nil, errors.Errorf("search %s: instance count %d is invalid", name, args.InstanceCount)
	}

	refs := core.RefsFor(name)
	domain := resources.NewOpenSearchDomain(ctx.ResourceName(name), refs)
	if args.EngineVersion != "" {
		domain.EngineVersion = args.EngineVersion
	}
	if args.InstanceType != "" {
		domain.ClusterConfig.InstanceType = args.InstanceType
	}
	if args.InstanceCount > 0 {
		domain.ClusterConfig.InstanceCount = args.InstanceCount
		domain.ClusterConfig.ZoneAwareness = args.InstanceCount > 1
	}
	if args.VolumeSizeGB > 0 {
		domain.EbsOptions.VolumeSize = args.VolumeSizeGB
	}
	core.ApplyTransform(args.TransformDomain, domain)

	g.AddDependenciesReflect(domain)

	zap.L().With(logging.ComponentField("search", name)).Sugar().
		Debugf("declared search domain (%s x%d)", domain.ClusterConfig.InstanceType, domain.ClusterConfig.InstanceCount)
	return &Search{Name: name, Domain: domain}, nil
}

// URL is the late-bound domain endpoint.
func (s *Search) URL() core.IaCValue {
	return core.ValueOf(s.Domain, core.ENDPOINT_IAC_VALUE)
}

// LinkName implements link.Linkable.
func (s *Search) LinkName() string { return s.Name }

// LinkProperties implements link.Linkable.
func (s *Search) LinkProperties() map[string]core.IaCValue {
	return map[string]core.IaCValue{
		"url":      s.URL(),
		"username": core.ValueOf(s.Domain, usernameProperty),
		"password": core.ValueOf(s.Domain, passwordProperty),
	}
}

// LinkPermissions implements link.Linkable: linked functions may issue HTTP
// requests against the domain.
func (s *Search) LinkPermissions() []resources.StatementEntry {
	return []resources.StatementEntry{{
		Effect:   "Allow",
		Action:   []string{"es:ESHttpGet", "es:ESHttpPut", "es:ESHttpPost", "es:ESHttpDelete"},
		Resource: []core.IaCValue{core.ValueOf(s.Domain, core.ARN_IAC_VALUE)},
	}}
}
