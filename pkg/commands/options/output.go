package options

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/momentum/pkg/printers"
	"tableflip.dev/momentum/pkg/runner"
)

// OutputOptions picks between pretty, JSON and YAML output.
type OutputOptions struct {
	base.OutputOptions
	YAML bool
}

func AddOutputArgs(cmd *cobra.Command, o *OutputOptions) {
	base.AddOutputArg(cmd, &o.OutputOptions)
	cmd.Flags().BoolVar(&o.YAML, "yaml", false,
		"Output as YAML.")
}

// Format returns the printers format, "" for pretty.
func (o *OutputOptions) Format() string {
	switch {
	case o.JSON:
		return printers.JSON
	case o.YAML:
		return printers.YAML
	default:
		return ""
	}
}

// HandleError prints err in the structured format when one was asked for.
// Errors the runners already reported pass through untouched.
func (o *OutputOptions) HandleError(err error) error {
	if err == nil || errors.Is(err, runner.ErrReported) {
		return err
	}
	format := o.Format()
	if format == "" {
		return err
	}
	out := map[string]string{
		"error": err.Error(),
	}
	if _, perr := printers.Structured(color.Output, format, out); perr != nil {
		return perr
	}
	return fmt.Errorf("%v: %w", err, runner.ErrReported)
}
