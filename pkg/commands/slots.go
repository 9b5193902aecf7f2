package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/momentum/pkg/commands/options"
	"tableflip.dev/momentum/pkg/runner/slots"
)

func addSlots(topLevel *cobra.Command) {
	tho := &options.ThreadOptions{}

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List free meeting slots over the next three days",
		Example: `
momentum slots
momentum slots --yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			svc, err := newService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := slots.Slots{
				Router:   svc.Router,
				ThreadID: tho.ThreadID,
				Output:   oo.Format(),
				Out:      cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddThreadArgs(cmd, tho, false)
	options.AddOutputArgs(cmd, oo)
	topLevel.AddCommand(cmd)
}
