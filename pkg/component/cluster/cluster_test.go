package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/core/coretesting"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
	"github.com/stackform/stackform/pkg/upgrade"
)

func testContext() core.DeployContext {
	return core.DeployContext{App: "my-app", Stage: "test", DefaultRegion: "us-east-1"}
}

func Test_New(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	g := core.NewResourceGraph()
	c, err := New(testContext(), "worker", Args{
		Image:            "example/worker:1",
		ContainerSubnets: []string{"subnet-1", "subnet-2"},
		SecurityGroups:   []string{"sg-1"},
		Environment:      map[string]string{"MODE": "batch"},
		DesiredCount:     2,
	}, g)
	require.NoError(err)

	coretesting.ResourcesExpectation{
		Nodes: []string{
			"aws:ecs_cluster:my-app-test-worker",
			"aws:ecs_service:my-app-test-worker",
			"aws:ecs_task_definition:my-app-test-worker",
		},
		Deps: []coretesting.StringDep{
			{Source: "aws:ecs_service:my-app-test-worker", Destination: "aws:ecs_cluster:my-app-test-worker"},
			{Source: "aws:ecs_service:my-app-test-worker", Destination: "aws:ecs_task_definition:my-app-test-worker"},
		},
		AssertSubset: true,
	}.Assert(t, g)

	assert.Equal("FARGATE", c.Service.LaunchType)
	assert.Equal(2, c.Service.DesiredCount)
	assert.Equal([]string{"subnet-1", "subnet-2"}, c.Service.Subnets)
	assert.Equal("batch", c.TaskDefinition.EnvironmentVariables["MODE"])
	require.NotNil(c.TaskDefinition.TaskRole)
	require.NotNil(c.TaskDefinition.LogGroup)
}

func Test_NewDeprecatedServiceSubnets(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	// the old name still works alone
	c, err := New(testContext(), "worker", Args{
		Image:          "example/worker:1",
		ServiceSubnets: []string{"subnet-1"},
	}, core.NewResourceGraph())
	require.NoError(err)
	assert.Equal([]string{"subnet-1"}, c.Service.Subnets)

	// both names together is a configuration error
	_, err = New(testContext(), "worker", Args{
		Image:            "example/worker:1",
		ServiceSubnets:   []string{"subnet-1"},
		ContainerSubnets: []string{"subnet-2"},
	}, core.NewResourceGraph())
	assert.ErrorContains(err, "serviceSubnets and containerSubnets are both set")
}

func Test_NewVersionGuard(t *testing.T) {
	cases := []struct {
		name     string
		recorded string
		force    int64
		wantErr  string
	}{
		{name: "fresh deployment"},
		{name: "same major", recorded: "2.0.0"},
		{name: "old major unforced", recorded: "1.2.0", wantErr: "breaking change"},
		{name: "old major forced", recorded: "1.2.0", force: Version.Major},
		{name: "wrong force value", recorded: "1.2.0", force: 99, wantErr: "breaking change"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)

			state := &upgrade.State{Versions: map[string]string{}}
			if tt.recorded != "" {
				state.Versions["cluster:worker"] = tt.recorded
			}
			_, err := New(testContext(), "worker", Args{
				Image:        "example/worker:1",
				State:        state,
				ForceUpgrade: tt.force,
			}, core.NewResourceGraph())
			if tt.wantErr != "" {
				assert.ErrorContains(err, tt.wantErr)
				return
			}
			assert.NoError(err)
			// a successful run records the current version
			assert.Equal(Version.String(), state.Versions["cluster:worker"])
		})
	}
}

func Test_NewValidation(t *testing.T) {
	assert := assert.New(t)

	_, err := New(testContext(), "worker", Args{}, core.NewResourceGraph())
	assert.ErrorContains(err, "image is required")

	_, err = New(testContext(), "", Args{Image: "example/worker:1"}, core.NewResourceGraph())
	assert.ErrorContains(err, "name is required")
}

func Test_TransformService(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	c, err := New(testContext(), "worker", Args{
		Image:            "example/worker:1",
		TransformService: func(s *resources.EcsService) { s.AssignPublicIp = true },
	}, core.NewResourceGraph())
	require.NoError(err)
	assert.True(c.Service.AssignPublicIp)
}
