// Package link exposes a component's runtime properties to the compute
// resources of other components. A linkable component publishes a property
// bag of late-bound values (URLs, ARNs, credentials); linking injects those
// into a function's environment under a predictable key scheme.
package link

import (
	"regexp"
	"sort"

	"github.com/iancoleman/strcase"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/provider/aws/resources"
)

type (
	// Linkable is implemented by every component that can be linked into a
	// compute resource.
	Linkable interface {
		// LinkName is the component's logical name, used to build env keys.
		LinkName() string
		// LinkProperties is the component's stable property bag.
		LinkProperties() map[string]core.IaCValue
		// LinkPermissions returns the IAM statements a linked consumer needs.
		LinkPermissions() []resources.StatementEntry
	}

	// Binding is one environment variable carrying a linked property.
	Binding struct {
		Key   string
		Value core.IaCValue
	}
)

var envKeyInvalid = regexp.MustCompile(`[^A-Z0-9_]`)

// EnvKey builds the environment key for one property of one linked
// component, e.g. ("my-auth", "url") -> "SF_RESOURCE_MY_AUTH_URL".
func EnvKey(linkName string, property string) string {
	normalize := func(s string) string {
		s = strcase.ToScreamingSnake(s)
		return envKeyInvalid.ReplaceAllString(s, "_")
	}
	return "SF_RESOURCE_" + normalize(linkName) + "_" + normalize(property)
}

// Bindings flattens a component's property bag into env bindings, sorted by
// key so injection order is deterministic.
func Bindings(target Linkable) []Binding {
	props := target.LinkProperties()
	bindings := make([]Binding, 0, len(props))
	for prop, value := range props {
		bindings = append(bindings, Binding{Key: EnvKey(target.LinkName(), prop), Value: value})
	}
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Key < bindings[j].Key })
	return bindings
}

// InjectIntoFunction grants the function the linked components' permissions
// and records their property bindings as environment variables. The env value
// is the IaCValue's string placeholder form; the reconciliation engine
// substitutes the real value at apply time.
func InjectIntoFunction(fn *resources.LambdaFunction, g *core.ResourceGraph, linked ...Linkable) {
	for _, target := range linked {
		for _, binding := range Bindings(target) {
			fn.EnvironmentVariables[binding.Key] = Placeholder(binding.Value)
		}
		statements := target.LinkPermissions()
		if len(statements) == 0 {
			continue
		}
		policy := resources.NewIamPolicy(
			fn.Name+"-link-"+target.LinkName(),
			&resources.PolicyDocument{Version: resources.POLICY_VERSION, Statement: statements},
			fn.ConstructRefs,
		)
		fn.Role.AttachInlinePolicy(policy)
	}
	g.AddDependenciesReflect(fn)
}

// InjectIntoTask is InjectIntoFunction for ECS task definitions: bindings
// land in the container environment and permissions on the task role.
func InjectIntoTask(td *resources.EcsTaskDefinition, g *core.ResourceGraph, linked ...Linkable) {
	for _, target := range linked {
		for _, binding := range Bindings(target) {
			td.EnvironmentVariables[binding.Key] = Placeholder(binding.Value)
		}
		statements := target.LinkPermissions()
		if len(statements) == 0 {
			continue
		}
		policy := resources.NewIamPolicy(
			td.Name+"-link-"+target.LinkName(),
			&resources.PolicyDocument{Version: resources.POLICY_VERSION, Statement: statements},
			td.ConstructRefs,
		)
		td.TaskRole.AttachInlinePolicy(policy)
	}
	g.AddDependenciesReflect(td)
}

// Placeholder renders a value reference in the engine's substitution syntax.
func Placeholder(value core.IaCValue) string {
	return "${" + value.ResourceId.String() + "#" + value.Property + "}"
}
