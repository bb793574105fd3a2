package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

type fakeLinkable struct {
	name        string
	props       map[string]core.IaCValue
	permissions []resources.StatementEntry
}

func (f fakeLinkable) LinkName() string { return f.name }

func (f fakeLinkable) LinkProperties() map[string]core.IaCValue { return f.props }

func (f fakeLinkable) LinkPermissions() []resources.StatementEntry { return f.permissions }

func Test_EnvKey(t *testing.T) {
	cases := []struct {
		name     string
		linkName string
		property string
		want     string
	}{
		{name: "simple", linkName: "auth", property: "url", want: "SF_RESOURCE_AUTH_URL"},
		{name: "dashes", linkName: "my-auth", property: "url", want: "SF_RESOURCE_MY_AUTH_URL"},
		{name: "camel case", linkName: "myAuth", property: "tableName", want: "SF_RESOURCE_MY_AUTH_TABLE_NAME"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tt.want, EnvKey(tt.linkName, tt.property))
		})
	}
}

func Test_Placeholder(t *testing.T) {
	assert := assert.New(t)

	table := resources.NewDynamodbTable("my-app-prod-data", "pk", core.RefsFor("data"))
	got := Placeholder(core.ValueOf(table, core.NAME_IAC_VALUE))
	assert.Equal("${aws:dynamodb_table:my-app-prod-data#name}", got)
}

func Test_BindingsSorted(t *testing.T) {
	assert := assert.New(t)

	table := resources.NewDynamodbTable("data", "pk", core.RefsFor("data"))
	target := fakeLinkable{
		name: "data",
		props: map[string]core.IaCValue{
			"url":  core.ValueOf(table, core.URL_IAC_VALUE),
			"arn":  core.ValueOf(table, core.ARN_IAC_VALUE),
			"name": core.ValueOf(table, core.NAME_IAC_VALUE),
		},
	}

	bindings := Bindings(target)
	keys := make([]string, len(bindings))
	for i, b := range bindings {
		keys[i] = b.Key
	}
	assert.Equal([]string{
		"SF_RESOURCE_DATA_ARN",
		"SF_RESOURCE_DATA_NAME",
		"SF_RESOURCE_DATA_URL",
	}, keys)
}

func Test_InjectIntoFunction(t *testing.T) {
	assert := assert.New(t)

	g := core.NewResourceGraph()
	table := resources.NewDynamodbTable("my-app-prod-data", "pk", core.RefsFor("data"))
	g.AddResource(table)

	role := resources.NewIamRole("my-app-prod-server", resources.LAMBDA_ASSUME_ROLE_POLICY, core.RefsFor("web"))
	fn := resources.NewLambdaFunction("my-app-prod-server", role, core.RefsFor("web"))

	target := fakeLinkable{
		name:  "data",
		props: map[string]core.IaCValue{"name": core.ValueOf(table, core.NAME_IAC_VALUE)},
		permissions: []resources.StatementEntry{{
			Effect:   "Allow",
			Action:   []string{"dynamodb:GetItem"},
			Resource: []core.IaCValue{core.ValueOf(table, core.ARN_IAC_VALUE)},
		}},
	}
	InjectIntoFunction(fn, g, target)

	assert.Equal("${aws:dynamodb_table:my-app-prod-data#name}",
		fn.EnvironmentVariables["SF_RESOURCE_DATA_NAME"])
	require.Len(t, fn.Role.InlinePolicies, 1)
	assert.Contains(fn.Role.InlinePolicies[0].Policy.Statement[0].Action, "dynamodb:GetItem")
}

func Test_InjectIntoTask(t *testing.T) {
	assert := assert.New(t)

	g := core.NewResourceGraph()
	table := resources.NewDynamodbTable("my-app-prod-data", "pk", core.RefsFor("data"))
	g.AddResource(table)

	td := resources.NewEcsTaskDefinition("my-app-prod-worker", "example/image:1", core.RefsFor("worker"))
	td.TaskRole = resources.NewIamRole("my-app-prod-worker-task", resources.ECS_TASK_ASSUME_ROLE_POLICY, core.RefsFor("worker"))

	target := fakeLinkable{
		name:  "data",
		props: map[string]core.IaCValue{"name": core.ValueOf(table, core.NAME_IAC_VALUE)},
		permissions: []resources.StatementEntry{{
			Effect:   "Allow",
			Action:   []string{"dynamodb:Query"},
			Resource: []core.IaCValue{core.ValueOf(table, core.ARN_IAC_VALUE)},
		}},
	}
	InjectIntoTask(td, g, target)

	assert.Contains(td.EnvironmentVariables, "SF_RESOURCE_DATA_NAME")
	require.Len(t, td.TaskRole.InlinePolicies, 1)
}
