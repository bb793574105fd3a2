package resources

import (
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/sanitization/aws"
)

const (
	ECS_CLUSTER_TYPE         = "ecs_cluster"
	ECS_SERVICE_TYPE         = "ecs_service"
	ECS_TASK_DEFINITION_TYPE = "ecs_task_definition"
)

type (
	EcsCluster struct {
		Name              string
		ConstructRefs     core.ComponentRefSet `yaml:"-"`
		ContainerInsights bool
	}

	EcsTaskDefinition struct {
		Name                 string
		ConstructRefs        core.ComponentRefSet `yaml:"-"`
		Image                string
		Cpu                  int
		MemoryMB             int
		PortMappings         []PortMapping
		EnvironmentVariables map[string]string
		ExecutionRole        *IamRole
		TaskRole             *IamRole
		LogGroup             *LogGroup
	}

	PortMapping struct {
		ContainerPort int
		HostPort      int
		Protocol      string
	}

	EcsService struct {
		Name           string
		ConstructRefs  core.ComponentRefSet `yaml:"-"`
		Cluster        *EcsCluster
		TaskDefinition *EcsTaskDefinition
		DesiredCount   int
		LaunchType     string
		Subnets        []string
		SecurityGroups []string
		AssignPublicIp bool
	}
)

func NewEcsCluster(name string, refs core.ComponentRefSet) *EcsCluster {
	return &EcsCluster{
		Name:          aws.EcsClusterSanitizer.Apply(name),
		ConstructRefs: refs.Clone(),
	}
}

func (c *EcsCluster) ComponentRefs() core.ComponentRefSet { return c.ConstructRefs }

func (c *EcsCluster) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: ECS_CLUSTER_TYPE, Name: c.Name}
}

func NewEcsTaskDefinition(name string, image string, refs core.ComponentRefSet) *EcsTaskDefinition {
	return &EcsTaskDefinition{
		Name:                 aws.EcsServiceSanitizer.Apply(name),
		ConstructRefs:        refs.Clone(),
		Image:                image,
		Cpu:                  256,
		MemoryMB:             512,
		EnvironmentVariables: make(map[string]string),
	}
}

func (td *EcsTaskDefinition) ComponentRefs() core.ComponentRefSet { return td.ConstructRefs }

func (td *EcsTaskDefinition) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: ECS_TASK_DEFINITION_TYPE, Name: td.Name}
}

func NewEcsService(name string, cluster *EcsCluster, td *EcsTaskDefinition, refs core.ComponentRefSet) *EcsService {
	return &EcsService{
		Name:           aws.EcsServiceSanitizer.Apply(name),
		ConstructRefs:  refs.Clone(),
		Cluster:        cluster,
		TaskDefinition: td,
		DesiredCount:   1,
		LaunchType:     "FARGATE",
	}
}

func (s *EcsService) ComponentRefs() core.ComponentRefSet { return s.ConstructRefs }

func (s *EcsService) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: ECS_SERVICE_TYPE, Name: s.Name}
}
