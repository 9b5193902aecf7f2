package info

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/momentum/pkg/lists"
	"tableflip.dev/momentum/pkg/printers"
	"tableflip.dev/momentum/pkg/store"
	"tableflip.dev/momentum/pkg/timeutil"
)

// Info reports where momentum reads its configuration and what it has
// persisted so far.
type Info struct {
	Settings *store.Settings
	Lists    *lists.Bootstrapper

	Output string
	Out    io.Writer
}

type report struct {
	ConfigPathEnv string          `json:"configPathEnv,omitempty" yaml:"configPathEnv,omitempty"`
	Settings      *store.Settings `json:"settings" yaml:"settings"`
	Credentials   string          `json:"credentials" yaml:"credentials"`
	Lists         *lists.Mapping  `json:"lists,omitempty" yaml:"lists,omitempty"`
}

func (n *Info) Do(ctx context.Context) error {
	if n.Settings == nil {
		var err error
		if n.Settings, err = store.LoadConfig(); err != nil {
			return err
		}
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}

	r := report{
		ConfigPathEnv: os.Getenv("MOMENTUM_CONFIG_PATH"),
		Settings:      n.Settings,
		Credentials:   credentials(n.Settings),
	}
	if n.Lists != nil {
		m, ok, err := n.Lists.Lookup()
		if err != nil {
			return err
		}
		if ok {
			r.Lists = &m
		}
	}

	if printed, err := printers.Structured(out, n.Output, r); printed || err != nil {
		return err
	}

	if r.ConfigPathEnv != "" {
		_, _ = fmt.Fprintln(out, "MOMENTUM_CONFIG_PATH found on env, using", r.ConfigPathEnv)
	} else {
		_, _ = fmt.Fprintln(out, "MOMENTUM_CONFIG_PATH env var not set")
	}

	s := n.Settings
	configFile := s.ConfigFile
	if configFile == "" {
		configFile = "(defaults and environment)"
	}
	label := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, row := range [][2]string{
		{"config", configFile},
		{"store", s.BasePath()},
		{"backend", s.BackendURL},
		{"calendar", s.CalendarID},
		{"time zone", s.TimeZone},
		{"credentials", r.Credentials},
		{"prep time", timeutil.FormatDuration(s.PrepTime)},
		{"bump after", timeutil.FormatDuration(s.BumpAfter)},
		{"working hours", fmt.Sprintf("%02d:00-%02d:00", s.DayStart, s.DayEnd)},
	} {
		if row[1] == "" {
			continue
		}
		tbl.AddRow(label.Sprint(row[0]), row[1])
	}
	_, _ = fmt.Fprintln(out, tbl)

	pp := &printers.PrettyPrint{Out: out}
	if r.Lists == nil {
		pp.Title("Task lists")
		_, _ = color.New(color.Faint, color.Italic).Fprintf(out, " not created yet, run `momentum auth`\n")
		return nil
	}
	pp.Lists(*r.Lists)
	return nil
}

func credentials(s *store.Settings) string {
	switch {
	case s.AuthToken != "":
		return "static token"
	case s.ClientID != "":
		return "device flow (" + s.ClientID + ")"
	default:
		return "none"
	}
}
