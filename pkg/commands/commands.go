package commands

import (
	"os"

	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/momentum/pkg/app"
	"tableflip.dev/momentum/pkg/commands/options"
	"tableflip.dev/momentum/pkg/logging"
	"tableflip.dev/momentum/pkg/store"
)

var (
	oo        = &options.OutputOptions{}
	verbose   bool
	ephemeral bool
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "momentum",
		Short: base.Wrap80("Turn the promises in your email into calendar blocks, tasks and follow-ups."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Log requests and backend calls to stderr.")
	cmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false,
		"Keep the task list mapping in memory instead of on disk.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addParse(topLevel)
	addPlan(topLevel)
	addWaiting(topLevel)
	addSlots(topLevel)
	addAuth(topLevel)
	addPing(topLevel)
	addServe(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

func newService() (*app.Service, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	opts := app.Options{}
	if verbose {
		opts.Logger = logging.New(os.Stderr)
	}
	if ephemeral {
		opts.Store = store.NewMemory()
	}
	return app.New(cfg, opts)
}
