package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stackform/stackform/pkg/component/site"
	"github.com/stackform/stackform/pkg/component/site/astro"
	"github.com/stackform/stackform/pkg/component/site/nextjs"
	"github.com/stackform/stackform/pkg/component/site/nuxt"
	"github.com/stackform/stackform/pkg/component/site/reactrouter"
	"github.com/stackform/stackform/pkg/component/site/remix"
)

// planLoaders maps a framework name to its build-output loader.
var planLoaders = map[string]func(projectDir string) (*site.Plan, error){
	"nextjs":      nextjs.LoadPlan,
	"astro":       astro.LoadPlan,
	"remix":       remix.LoadPlan,
	"reactrouter": reactrouter.LoadPlan,
	"nuxt":        nuxt.LoadPlan,
}

func newPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan <framework> <dir>",
		Short: "Load a framework's build output and print the normalized deployment plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			framework, dir := args[0], args[1]
			load, ok := planLoaders[framework]
			if !ok {
				return errors.Errorf("unknown framework %q; supported: nextjs, astro, remix, reactrouter, nuxt", framework)
			}
			plan, err := load(dir)
			if err != nil {
				return err
			}
			if err := plan.Normalize(); err != nil {
				return err
			}
			out, err := yaml.Marshal(plan)
			if err != nil {
				return errors.Wrap(err, "encoding plan")
			}
			cmd.OutOrStdout().Write(out) //nolint:errcheck
			return nil
		},
	}
}
