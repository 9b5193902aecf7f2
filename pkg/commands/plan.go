package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/momentum/pkg/commands/options"
	"tableflip.dev/momentum/pkg/runner/plan"
)

func addPlan(topLevel *cobra.Command) {
	to := &options.TextOptions{}
	tho := &options.ThreadOptions{}
	po := &options.PlanOptions{}
	ino := &options.InteractiveOptions{}

	cmd := &cobra.Command{
		Use:   "plan [text]",
		Short: "Block prep time before a deadline you promised",
		Long: `Parse the commitment in an email, then create a prep block on the calendar
ending at the deadline, a task on the I owe list and a reply draft.`,
		Example: `
momentum plan "I'll send the revised deck by Friday."
momentum plan -i --prep 90m --no-draft -f reply.txt
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			text, err := to.Text(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			prep, err := po.PrepTime()
			if err != nil {
				return err
			}
			svc, err := newService()
			if err != nil {
				return oo.HandleError(err)
			}
			s := plan.Plan{
				Router:   svc.Router,
				Text:     text,
				ThreadID: tho.ThreadID,
				To:       tho.To,
				Prep:     prep,
				NoTask:   po.NoTask,
				NoDraft:  po.NoDraft,
				Amend:    ino.Amend(),
				Output:   oo.Format(),
				Out:      cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddTextArgs(cmd, to)
	options.AddThreadArgs(cmd, tho, true)
	options.AddPlanArgs(cmd, po)
	options.InteractiveArgs(cmd, ino)
	options.AddOutputArgs(cmd, oo)
	topLevel.AddCommand(cmd)
}
