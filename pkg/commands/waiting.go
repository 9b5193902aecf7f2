package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/momentum/pkg/commands/options"
	"tableflip.dev/momentum/pkg/runner/waiting"
)

func addWaiting(topLevel *cobra.Command) {
	to := &options.TextOptions{}
	tho := &options.ThreadOptions{}
	wo := &options.WaitingOptions{}
	ino := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:     "waiting [text]",
		Aliases: []string{"waiting-on", "wait"},
		Short:   "Track something someone promised you",
		Long: `Parse the commitment in an email, then add a follow-up task to the Waiting on
list and draft a nudge for when it comes due.`,
		Example: `
momentum waiting "Dana said she'd get back to us next week."
momentum waiting --bump-after 5d -f thread.txt
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			text, err := to.Text(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			delay, err := wo.Delay()
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := waiting.Waiting{
				Router:    svc.Router,
				Text:      text,
				ThreadID:  tho.ThreadID,
				To:        tho.To,
				BumpAfter: delay,
				Amend:     ino.Amend(),
				Output:    oo.Format(),
				Out:       cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddTextArgs(cmd, to)
	options.AddThreadArgs(cmd, tho, true)
	options.AddWaitingArgs(cmd, wo)
	options.InteractiveArgs(cmd, ino)
	options.AddOutputArgs(cmd, oo)
	topLevel.AddCommand(cmd)
}
