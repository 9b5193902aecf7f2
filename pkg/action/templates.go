package action

import (
	"bytes"
	"text/template"
	"time"

	"tableflip.dev/momentum/pkg/commitment"
)

const deadlineLayout = "Monday, January 2 at 3:04 PM"

type draftTemplate struct {
	subject *template.Template
	body    *template.Template
}

var (
	replyDraft = draftTemplate{
		subject: template.Must(template.New("reply-subject").Parse(`Re: {{.Title}}`)),
		body: template.Must(template.New("reply-body").Parse(`Hi,

Thanks for reaching out. I'm on it and will have "{{.Title}}" to you by {{.Deadline}}.

Best,
`)),
	}

	bumpDraft = draftTemplate{
		subject: template.Must(template.New("bump-subject").Parse(`Following up: {{.Title}}`)),
		body: template.Must(template.New("bump-body").Parse(`Hi,

Just following up on "{{.Title}}". Could you let me know where this stands?
{{- if .Source}} You mentioned {{.Source}}.{{end}}

Thanks,
`)),
	}
)

type draftData struct {
	Title    string
	Deadline string
	Source   string
}

func newDraftData(c commitment.Commitment, loc *time.Location) draftData {
	deadline := c.Deadline.Time
	if loc != nil {
		deadline = deadline.In(loc)
	}
	return draftData{
		Title:    c.Title,
		Deadline: deadline.Format(deadlineLayout),
		Source:   c.SourceText,
	}
}

func (t draftTemplate) render(data draftData) (subject, body string, err error) {
	var s, b bytes.Buffer
	if err := t.subject.Execute(&s, data); err != nil {
		return "", "", err
	}
	if err := t.body.Execute(&b, data); err != nil {
		return "", "", err
	}
	return s.String(), b.String(), nil
}
