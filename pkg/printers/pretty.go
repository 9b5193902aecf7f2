package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/momentum/pkg/action"
	"tableflip.dev/momentum/pkg/backend"
	"tableflip.dev/momentum/pkg/commitment"
	"tableflip.dev/momentum/pkg/failure"
	"tableflip.dev/momentum/pkg/lists"
)

const timeLayout = "Mon Jan 2 15:04 MST"

// PrettyPrint renders results as colored tables. Out defaults to
// color.Output.
type PrettyPrint struct {
	Out io.Writer
	// Location is used for displayed times; nil keeps each time's own zone.
	Location *time.Location
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) table(rows ...[2]string) {
	label := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 72
	tbl.Wrap = true
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		tbl.AddRow(label.Sprint(r[0]), r[1])
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func (pp *PrettyPrint) when(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if pp.Location != nil {
		t = t.In(pp.Location)
	}
	return t.Format(timeLayout)
}

func confidence(c float64) string {
	s := fmt.Sprintf("%.2f", c)
	switch {
	case c >= commitment.ConfidenceMatched:
		return color.GreenString(s)
	case c >= commitment.ConfidenceDefault:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func kind(t commitment.Type) string {
	if t == commitment.TypeWaitingOn {
		return color.CyanString(string(t))
	}
	return color.MagentaString(string(t))
}

// Commitment prints a parsed commitment.
func (pp *PrettyPrint) Commitment(c commitment.Commitment) {
	pp.Title(c.Title)
	source := c.SourceText
	if source != "" {
		source = fmt.Sprintf("%q", source)
	}
	pp.table(
		[2]string{"type", kind(c.Type)},
		[2]string{"deadline", pp.when(c.Deadline.Time)},
		[2]string{"confidence", confidence(c.Confidence)},
		[2]string{"matched", source},
	)
}

func (pp *PrettyPrint) event(e *backend.Event) {
	pp.Title("Calendar block")
	pp.table(
		[2]string{"summary", e.Summary},
		[2]string{"from", pp.when(e.Start)},
		[2]string{"to", pp.when(e.End)},
		[2]string{"link", e.HTMLLink},
		[2]string{"id", e.ID},
	)
}

func (pp *PrettyPrint) task(t *backend.Task) {
	pp.Title("Task")
	pp.table(
		[2]string{"title", t.Title},
		[2]string{"due", pp.when(t.Due)},
		[2]string{"list", t.ListID},
		[2]string{"id", t.ID},
	)
}

func (pp *PrettyPrint) draft(d *backend.Draft) {
	pp.Title("Draft")
	pp.table(
		[2]string{"subject", d.Subject},
		[2]string{"to", d.To},
		[2]string{"thread", d.ThreadID},
		[2]string{"id", d.ID},
	)
	body := color.New(color.Italic)
	for _, line := range strings.Split(strings.TrimRight(d.Body, "\n"), "\n") {
		_, _ = body.Fprintln(pp.out(), "  "+line)
	}
	pp.NewLine()
}

// Plan prints whichever plan-this parts exist.
func (pp *PrettyPrint) Plan(res action.PlanResult) {
	if res.CalendarEvent != nil {
		pp.event(res.CalendarEvent)
	}
	if res.Task != nil {
		pp.task(res.Task)
	}
	if res.Draft != nil {
		pp.draft(res.Draft)
	}
}

func (pp *PrettyPrint) Waiting(res action.WaitingResult) {
	if res.Task != nil {
		pp.task(res.Task)
	}
	if res.Draft != nil {
		pp.draft(res.Draft)
	}
}

func (pp *PrettyPrint) Slots(res action.SlotsResult) {
	pp.Title("Free slots")
	if len(res.Slots) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	for i, s := range res.Slots {
		end := s.End
		if pp.Location != nil {
			end = end.In(pp.Location)
		}
		tbl.AddRow(color.New(color.Faint).Sprintf("%d.", i+1), pp.when(s.Start), "-", end.Format("15:04"))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func (pp *PrettyPrint) Connection(res action.ConnectionResult) {
	status := color.RedString("failed")
	if res.Success {
		status = color.GreenString("ok")
	}
	pp.Title("Connection")
	pp.table(
		[2]string{"status", status},
		[2]string{"account", res.Profile.Email},
		[2]string{"messages", fmt.Sprint(res.Profile.MessagesTotal)},
		[2]string{"threads", fmt.Sprint(res.Profile.ThreadsTotal)},
	)
}

func (pp *PrettyPrint) Lists(m lists.Mapping) {
	pp.Title("Task lists")
	pp.table(
		[2]string{"i owe", m.IOwe},
		[2]string{"waiting on", m.WaitingOn},
	)
}

// Failure prints an error description in red.
func (pp *PrettyPrint) Failure(b *failure.Body) {
	if b == nil {
		return
	}
	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprintf(pp.out(), "%s", b.Kind)
	_, _ = fmt.Fprintf(pp.out(), " %s\n", b.Message)
	if b.Body != "" {
		_, _ = color.New(color.Faint).Fprintf(pp.out(), "  %s\n", b.Body)
	}
}
