package options

import (
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/prompt"
)

// InteractiveOptions
type InteractiveOptions struct {
	Interactive bool
}

func InteractiveArgs(cmd *cobra.Command, o *InteractiveOptions) {
	cmd.Flags().BoolVarP(&o.Interactive, "interactive", "i", false,
		`Review and amend the inferred commitment before acting on it.`)
}

// Amend returns the prompt to run on a parsed commitment, nil when not
// interactive.
func (o *InteractiveOptions) Amend() func(commitment.Commitment) (commitment.Commitment, error) {
	if !o.Interactive {
		return nil
	}
	return prompt.Amender{In: os.Stdin, Out: os.Stderr}.Amend
}
