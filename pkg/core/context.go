package core

import (
	"fmt"
	"strings"
)

type (
	// DeployContext carries the process-wide deployment identity that every
	// component constructor needs. It is threaded explicitly instead of being
	// read from globals so the same process can build graphs for several
	// stages side by side.
	DeployContext struct {
		// App is the application name, shared by every stage.
		App string
		// Stage is the deployment stage, e.g. "production" or "dev-jane".
		Stage string
		// DefaultRegion is used when a component does not pin its own regions.
		DefaultRegion string
		// OutDir is where generated artifacts (edge function code, asset
		// manifests) are written.
		OutDir string
	}

	// Transform is an optional hook letting a caller adjust a draft resource
	// description before it is added to the graph. The hook mutates the draft
	// in place; returning is not required to signal anything.
	Transform[T any] func(draft *T)
)

func (ctx DeployContext) Validate() error {
	if ctx.App == "" {
		return fmt.Errorf("deploy context: app name is required")
	}
	if ctx.Stage == "" {
		return fmt.Errorf("deploy context: stage is required")
	}
	return nil
}

// ResourceName joins the app, stage and the given parts with "-" to form the
// physical name prefix shared by every resource of this deployment.
func (ctx DeployContext) ResourceName(parts ...string) string {
	all := append([]string{ctx.App, ctx.Stage}, parts...)
	nonEmpty := all[:0]
	for _, p := range all {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "-")
}

// ApplyTransform runs the hook on draft when one is set.
func ApplyTransform[T any](hook Transform[T], draft *T) {
	if hook != nil {
		hook(draft)
	}
}
