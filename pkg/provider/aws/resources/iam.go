package resources

import (
	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/sanitization/aws"
)

const (
	IAM_ROLE_TYPE   = "iam_role"
	IAM_POLICY_TYPE = "iam_policy"

	POLICY_VERSION = "2012-10-17"
)

var roleSanitizer = aws.IamRoleSanitizer
var policySanitizer = aws.IamPolicySanitizer

type (
	IamRole struct {
		Name             string
		ConstructRefs    core.ComponentRefSet `yaml:"-"`
		AssumeRolePolicy *PolicyDocument
		InlinePolicies   []*IamPolicy
		ManagedPolicies  []string
	}

	IamPolicy struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		Policy        *PolicyDocument
	}

	PolicyDocument struct {
		Version   string
		Statement []StatementEntry
	}

	StatementEntry struct {
		Effect    string
		Action    []string
		Resource  []core.IaCValue
		Principal *Principal `yaml:",omitempty"`
		Condition map[string]map[string]string
	}

	Principal struct {
		Service string
		AWS     core.IaCValue
	}
)

var LAMBDA_ASSUME_ROLE_POLICY = &PolicyDocument{
	Version: POLICY_VERSION,
	Statement: []StatementEntry{
		{
			Effect: "Allow",
			Action: []string{"sts:AssumeRole"},
			Principal: &Principal{
				Service: "lambda.amazonaws.com",
			},
		},
	},
}

var ECS_TASK_ASSUME_ROLE_POLICY = &PolicyDocument{
	Version: POLICY_VERSION,
	Statement: []StatementEntry{
		{
			Effect: "Allow",
			Action: []string{"sts:AssumeRole"},
			Principal: &Principal{
				Service: "ecs-tasks.amazonaws.com",
			},
		},
	},
}

func NewIamRole(name string, assumeRolePolicy *PolicyDocument, refs core.ComponentRefSet) *IamRole {
	return &IamRole{
		Name:             roleSanitizer.Apply(name),
		ConstructRefs:    refs.Clone(),
		AssumeRolePolicy: assumeRolePolicy,
	}
}

func (role *IamRole) ComponentRefs() core.ComponentRefSet { return role.ConstructRefs }

func (role *IamRole) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: IAM_ROLE_TYPE, Name: role.Name}
}

// AttachInlinePolicy appends a policy, skipping one already attached by name
// so shared roles stay idempotent across components.
func (role *IamRole) AttachInlinePolicy(policy *IamPolicy) {
	for _, existing := range role.InlinePolicies {
		if existing.Name == policy.Name {
			return
		}
	}
	role.InlinePolicies = append(role.InlinePolicies, policy)
}

func NewIamPolicy(name string, doc *PolicyDocument, refs core.ComponentRefSet) *IamPolicy {
	return &IamPolicy{
		Name:          policySanitizer.Apply(name),
		ConstructRefs: refs.Clone(),
		Policy:        doc,
	}
}

func (policy *IamPolicy) ComponentRefs() core.ComponentRefSet { return policy.ConstructRefs }

func (policy *IamPolicy) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: IAM_POLICY_TYPE, Name: policy.Name}
}

// AllowStatement builds a single-statement allow document over the given
// resource values.
func AllowStatement(actions []string, resource ...core.IaCValue) *PolicyDocument {
	return &PolicyDocument{
		Version: POLICY_VERSION,
		Statement: []StatementEntry{
			{
				Effect:   "Allow",
				Action:   actions,
				Resource: resource,
			},
		},
	}
}
