package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/momentum/pkg/commands/options"
	authrunner "tableflip.dev/momentum/pkg/runner/auth"
)

func addAuth(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"init", "login"},
		Short:   "Sign in and create the momentum task lists",
		Example: `
momentum auth
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := authrunner.Auth{
				Router: svc.Router,
				Output: oo.Format(),
				Out:    cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArgs(cmd, oo)
	topLevel.AddCommand(cmd)
}
