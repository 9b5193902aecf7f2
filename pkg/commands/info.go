package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/momentum/pkg/commands/options"
	"tableflip.dev/momentum/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the configuration and where state is stored.",
		Example: `
momentum info
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := info.Info{
				Settings: svc.Settings,
				Lists:    svc.Lists,
				Output:   oo.Format(),
				Out:      cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArgs(cmd, oo)
	topLevel.AddCommand(cmd)
}
