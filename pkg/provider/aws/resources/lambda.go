package resources

import (
	"fmt"

	"github.com/stackform/stackform/pkg/core"
	"github.com/stackform/stackform/pkg/sanitization/aws"
)

const (
	LAMBDA_FUNCTION_TYPE     = "lambda_function"
	LAMBDA_FUNCTION_URL_TYPE = "lambda_function_url"
	LAMBDA_PERMISSION_TYPE   = "lambda_permission"
)

type (
	LambdaFunction struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		Role          *IamRole
		// Region pins the function to a region other than the deployment
		// default; multi-region sites create one function per region.
		Region  string
		Runtime string
		Handler string
		// Bundle is the local directory holding the packaged handler code.
		Bundle               string
		MemoryMB             int
		TimeoutSeconds       int
		EnvironmentVariables map[string]string
		LogGroup             *LogGroup
	}

	LambdaFunctionUrl struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		Function      *LambdaFunction
		AuthType      string
		// InvokeMode is BUFFERED or RESPONSE_STREAM.
		InvokeMode string
	}

	LambdaPermission struct {
		Name          string
		ConstructRefs core.ComponentRefSet `yaml:"-"`
		Function      *LambdaFunction
		Principal     string
		Action        string
		SourceArn     core.IaCValue
	}
)

func NewLambdaFunction(name string, role *IamRole, refs core.ComponentRefSet) *LambdaFunction {
	return &LambdaFunction{
		Name:                 aws.LambdaFunctionSanitizer.Apply(name),
		ConstructRefs:        refs.Clone(),
		Role:                 role,
		Runtime:              "nodejs18.x",
		MemoryMB:             1024,
		TimeoutSeconds:       30,
		EnvironmentVariables: make(map[string]string),
	}
}

func (fn *LambdaFunction) ComponentRefs() core.ComponentRefSet { return fn.ConstructRefs }

func (fn *LambdaFunction) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: LAMBDA_FUNCTION_TYPE, Name: fn.Name}
}

func NewLambdaFunctionUrl(fn *LambdaFunction, streaming bool, refs core.ComponentRefSet) *LambdaFunctionUrl {
	invokeMode := "BUFFERED"
	if streaming {
		invokeMode = "RESPONSE_STREAM"
	}
	return &LambdaFunctionUrl{
		Name:          fmt.Sprintf("%s-url", fn.Name),
		ConstructRefs: refs.Clone(),
		Function:      fn,
		AuthType:      "NONE",
		InvokeMode:    invokeMode,
	}
}

func (url *LambdaFunctionUrl) ComponentRefs() core.ComponentRefSet { return url.ConstructRefs }

func (url *LambdaFunctionUrl) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: LAMBDA_FUNCTION_URL_TYPE, Name: url.Name}
}

func NewLambdaPermission(fn *LambdaFunction, principal string, action string, sourceArn core.IaCValue, refs core.ComponentRefSet) *LambdaPermission {
	return &LambdaPermission{
		Name:          aws.LambdaFunctionSanitizer.Apply(fmt.Sprintf("%s-invoke", fn.Name)),
		ConstructRefs: refs.Clone(),
		Function:      fn,
		Principal:     principal,
		Action:        action,
		SourceArn:     sourceArn,
	}
}

func (perm *LambdaPermission) ComponentRefs() core.ComponentRefSet { return perm.ConstructRefs }

func (perm *LambdaPermission) Id() core.ResourceId {
	return core.ResourceId{Provider: AWS_PROVIDER, Type: LAMBDA_PERMISSION_TYPE, Name: perm.Name}
}
