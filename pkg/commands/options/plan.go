package options

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/momentum/pkg/timeutil"
)

// PlanOptions
type PlanOptions struct {
	Prep    string
	NoTask  bool
	NoDraft bool
}

func AddPlanArgs(cmd *cobra.Command, o *PlanOptions) {
	cmd.Flags().StringVar(&o.Prep, "prep", "",
		`Prep block length, like "90m" or "1h30m". Bare numbers are minutes.`)
	cmd.Flags().BoolVar(&o.NoTask, "no-task", false,
		"Do not add a task to the I owe list.")
	cmd.Flags().BoolVar(&o.NoDraft, "no-draft", false,
		"Do not draft a reply.")
}

// PrepTime returns the requested prep time, 0 when the flag was not set.
func (o *PlanOptions) PrepTime() (time.Duration, error) {
	d, err := timeutil.ParseDuration(o.Prep, time.Minute, 0)
	if err != nil {
		return 0, fmt.Errorf("--prep: %w", err)
	}
	return d, nil
}

// WaitingOptions
type WaitingOptions struct {
	BumpAfter string
}

func AddWaitingArgs(cmd *cobra.Command, o *WaitingOptions) {
	cmd.Flags().StringVar(&o.BumpAfter, "bump-after", "",
		`Follow up after this long, like "3d" or "1w". Bare numbers are days.`)
}

// Delay returns the requested follow-up delay, 0 when the flag was not set.
func (o *WaitingOptions) Delay() (time.Duration, error) {
	d, err := timeutil.ParseDuration(o.BumpAfter, timeutil.Day, 0)
	if err != nil {
		return 0, fmt.Errorf("--bump-after: %w", err)
	}
	if d != 0 && d < timeutil.Day {
		return 0, fmt.Errorf("--bump-after: must be at least one day")
	}
	return d, nil
}
