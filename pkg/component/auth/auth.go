// Package auth implements the authentication server component: a Lambda
// running the issuer handler behind a function URL, backed by a DynamoDB
// table for sessions and refresh tokens. The storage schema changed
// incompatibly in v2 (single-table keys replaced the per-kind tables), so the
// version guard blocks v1 deployments until the upgrade is acknowledged.
package auth

import (
	"github.com/coreos/go-semver/semver"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/link"
	"github.com/stackform/stackform/pkg/logging"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
	"github.com/stackform/stackform/pkg/upgrade"
)

// Version is the component's current layout version.
var Version = semver.New("2.0.0")

const migrationDoc = "https://stackform.dev/docs/upgrades/auth-v2"

type (
	Args struct {
		// Issuer locates the packaged issuer handler.
		Issuer IssuerArgs

		Environment map[string]string
		Links       []link.Linkable

		// ForceUpgrade acknowledges a breaking upgrade; it must equal the
		// new major version to take effect.
		ForceUpgrade int64
		// State is the recorded deployment state; nil is treated as a fresh
		// deployment.
		State *upgrade.State

		TransformFunction core.Transform[resources.LambdaFunction]
	}

	IssuerArgs struct {
		// Bundle is the directory holding the packaged handler.
		Bundle string
		// Handler is the entry point, default "index.handler".
		Handler string
	}

	Auth struct {
		Name     string
		Function *resources.LambdaFunction
		Url      *resources.LambdaFunctionUrl
		Table    *resources.DynamodbTable
	}
)

// New validates args, checks the version guard and declares the auth server's
// resources on g.
func New(ctx core.DeployContext, name string, args Args, g *core.ResourceGraph) (*Auth, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.New("auth: name is required")
	}
	if args.Issuer.Bundle == "" {
		return nil, errors.Errorf("auth %s: issuer bundle is required", name)
	}
	if err := checkUpgrade(name, args); err != nil {
		return nil, err
	}

	refs := core.RefsFor(name)
	physical := ctx.ResourceName(name)

	table := resources.NewDynamodbTable(physical, "pk", refs)
	table.RangeKey = "sk"
	table.Attributes = append(table.Attributes, resources.DynamodbTableAttribute{Name: "sk", Type: "S"})
	table.TtlAttribute = "expiry"

	role := resources.NewIamRole(physical, resources.LAMBDA_ASSUME_ROLE_POLICY, refs)
	role.AttachInlinePolicy(resources.NewIamPolicy(physical+"-storage", resources.AllowStatement(
		[]string{"dynamodb:GetItem", "dynamodb:PutItem", "dynamodb:DeleteItem", "dynamodb:Query"},
		core.ValueOf(table, core.ARN_IAC_VALUE),
	), refs))

	handler := args.Issuer.Handler
	if handler == "" {
		handler = "index.handler"
	}
	fn := resources.NewLambdaFunction(physical, role, refs)
	fn.Handler = handler
	fn.Bundle = args.Issuer.Bundle
	fn.LogGroup = resources.NewLogGroup(physical, "/aws/lambda/"+physical, refs)
	fn.EnvironmentVariables["AUTH_TABLE_NAME"] = link.Placeholder(core.ValueOf(table, core.NAME_IAC_VALUE))
	for k, v := range args.Environment {
		fn.EnvironmentVariables[k] = v
	}
	core.ApplyTransform(args.TransformFunction, fn)
	link.InjectIntoFunction(fn, g, args.Links...)

	url := resources.NewLambdaFunctionUrl(fn, false, refs)
	perm := resources.NewLambdaPermission(fn, "*", "lambda:InvokeFunctionUrl", core.IaCValue{}, refs)

	g.AddDependenciesReflect(fn)
	g.AddDependency(fn, table)
	g.AddDependenciesReflect(url)
	g.AddDependenciesReflect(perm)

	if args.State != nil {
		args.State.Record("auth:"+name, Version.String())
	}
	zap.L().With(logging.ComponentField("auth", name)).Sugar().
		Debug("declared auth server resources")
	return &Auth{Name: name, Function: fn, Url: url, Table: table}, nil
}

// URL is the issuer's late-bound public URL.
func (a *Auth) URL() core.IaCValue {
	return core.ValueOf(a.Url, core.URL_IAC_VALUE)
}

// LinkName implements link.Linkable.
func (a *Auth) LinkName() string { return a.Name }

// LinkProperties implements link.Linkable.
func (a *Auth) LinkProperties() map[string]core.IaCValue {
	return map[string]core.IaCValue{"url": a.URL()}
}

// LinkPermissions implements link.Linkable; clients talk to the issuer over
// its URL only.
func (a *Auth) LinkPermissions() []resources.StatementEntry { return nil }

func checkUpgrade(name string, args Args) error {
	recorded := ""
	if args.State != nil {
		recorded = args.State.Versions["auth:"+name]
	}
	return upgrade.Guard{
		Component:    "auth " + name,
		Current:      Version,
		Recorded:     recorded,
		ForceMajor:   args.ForceUpgrade,
		MigrationDoc: migrationDoc,
	}.Check()
}
