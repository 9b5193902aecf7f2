package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/momentum/pkg/commands/options"
	"tableflip.dev/momentum/pkg/runner/parse"
)

func addParse(topLevel *cobra.Command) {
	to := &options.TextOptions{}
	tho := &options.ThreadOptions{}

	cmd := &cobra.Command{
		Use:   "parse [text]",
		Short: "Show the commitment momentum infers from an email",
		Example: `
momentum parse "I'll send the revised deck by Friday."
momentum parse -f reply.txt --json
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			text, err := to.Text(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := parse.Parse{
				Router:   svc.Router,
				Text:     text,
				ThreadID: tho.ThreadID,
				Output:   oo.Format(),
				Out:      cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddTextArgs(cmd, to)
	options.AddThreadArgs(cmd, tho, false)
	options.AddOutputArgs(cmd, oo)
	topLevel.AddCommand(cmd)
}
