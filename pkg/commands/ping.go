package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/momentum/pkg/commands/options"
	"tableflip.dev/momentum/pkg/runner/ping"
)

func addPing(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that momentum can reach your account",
		Example: `
momentum ping
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := ping.Ping{
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
