// Package cluster implements the container service component: an ECS cluster
// running one Fargate service per declared container. The component's resource
// layout changed incompatibly in v2 (the service moved into the task's own
// network configuration), so deployments recorded at v1 are blocked by the
// version guard until the upgrade is acknowledged.
package cluster

import (
	"github.com/coreos/go-semver/semver"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/link"
	"github.com/stackform/stackform/pkg/logging"
	"github.com/stackform/stackform/pkg/multierr"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
	"github.com/stackform/stackform/pkg/upgrade"
)

// Version is the component's current layout version.
var Version = semver.New("2.0.0")

const migrationDoc = "https://stackform.dev/docs/upgrades/cluster-v2"

type (
	Args struct {
		// Vpc names the VPC the service runs in.
		Vpc string
		// ContainerSubnets are the subnets the tasks are placed in.
		ContainerSubnets []string
		// ServiceSubnets is the v1 name for ContainerSubnets.
		//
		// Deprecated: use ContainerSubnets. Setting both fails validation.
		ServiceSubnets []string
		// SecurityGroups are attached to the tasks.
		SecurityGroups []string
		// AssignPublicIp gives tasks a public address, needed in subnets
		// without a NAT route.
		AssignPublicIp bool

		// Image is the container image to run.
		Image string
		// Cpu and MemoryMB size the task; zero keeps the defaults.
		Cpu      int
		MemoryMB int
		// DesiredCount is the number of running tasks, default 1.
		DesiredCount int
		Environment  map[string]string
		Links        []link.Linkable

		// ForceUpgrade acknowledges a breaking upgrade; it must equal the
		// new major version to take effect.
		ForceUpgrade int64
		// State is the recorded deployment state; nil is treated as a fresh
		// deployment.
		State *upgrade.State

		TransformService core.Transform[resources.EcsService]
	}

	Cluster struct {
		Name           string
		Cluster        *resources.EcsCluster
		TaskDefinition *resources.EcsTaskDefinition
		Service        *resources.EcsService
	}
)

// New validates args, checks the version guard and declares the cluster's
// resources on g.
func New(ctx core.DeployContext, name string, args Args, g *core.ResourceGraph) (*Cluster, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("cluster: name is required")
	}
	if err := validate(name, args); err != nil {
		return nil, err
	}
	if err := checkUpgrade(name, args); err != nil {
		return nil, err
	}
	log := zap.L().With(logging.ComponentField("cluster", name)).Sugar()

	subnets := args.ContainerSubnets
	if len(subnets) == 0 {
		subnets = args.ServiceSubnets
		if len(subnets) > 0 {
			log.Warn("serviceSubnets is deprecated; rename it to containerSubnets")
		}
	}

	refs := core.RefsFor(name)
	physical := ctx.ResourceName(name)

	ecsCluster := resources.NewEcsCluster(physical, refs)

	taskRole := resources.NewIamRole(physical+"-task", resources.ECS_TASK_ASSUME_ROLE_POLICY, refs)
	executionRole := resources.NewIamRole(physical+"-execution", resources.ECS_TASK_ASSUME_ROLE_POLICY, refs)
	logGroup := resources.NewLogGroup(physical, "/ecs/"+physical, refs)

	td := resources.NewEcsTaskDefinition(physical, args.Image, refs)
	td.TaskRole = taskRole
	td.ExecutionRole = executionRole
	td.LogGroup = logGroup
	if args.Cpu > 0 {
		td.Cpu = args.Cpu
	}
	if args.MemoryMB > 0 {
		td.MemoryMB = args.MemoryMB
	}
	for k, v := range args.Environment {
		td.EnvironmentVariables[k] = v
	}
	link.InjectIntoTask(td, g, args.Links...)

	service := resources.NewEcsService(physical, ecsCluster, td, refs)
	service.Subnets = subnets
	service.SecurityGroups = args.SecurityGroups
	service.AssignPublicIp = args.AssignPublicIp
	if args.DesiredCount > 0 {
		service.DesiredCount = args.DesiredCount
	}
	core.ApplyTransform(args.TransformService, service)

	g.AddDependenciesReflect(service)

	if args.State != nil {
		args.State.Record("cluster:"+name, Version.String())
	}
	log.Debugf("declared cluster running %s", args.Image)
	return &Cluster{
		Name:           name,
		Cluster:        ecsCluster,
		TaskDefinition: td,
		Service:        service,
	}, nil
}

func validate(name string, args Args) error {
	var errs multierr.Error
	if args.Image == "" {
		errs.Append(errors.Errorf("cluster %s: image is required", name))
	}
	if len(args.ServiceSubnets) > 0 && len(args.ContainerSubnets) > 0 {
		errs.Append(errors.Errorf(
			"cluster %s: serviceSubnets and containerSubnets are both set; serviceSubnets is the deprecated name, keep only containerSubnets",
			name))
	}
	return errs.ErrOrNil()
}

func checkUpgrade(name string, args Args) error {
	recorded := ""
	if args.State != nil {
		recorded = args.State.Versions["cluster:"+name]
	}
	return upgrade.Guard{
		Component:    "cluster " + name,
		Current:      Version,
		Recorded:     recorded,
		ForceMajor:   args.ForceUpgrade,
		MigrationDoc: migrationDoc,
	}.Check()
}
