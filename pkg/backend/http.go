package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"tableflip.dev/momentum/pkg/failure"
)

const (
	// DefaultTimeout bounds each call when HTTP.Timeout is unset.
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 1 << 20
)

// HTTP implements Backend against Google Calendar v3, Tasks v1 and Gmail v1
// style routes rooted at BaseURL.
type HTTP struct {
	BaseURL    string
	CalendarID string
	// TimeZone is sent with events when set, e.g. "America/New_York".
	TimeZone string
	Timeout  time.Duration
	Tokens   TokenSource
	Client   *http.Client
}

var _ Backend = (*HTTP)(nil)

func (h *HTTP) ListTaskLists(ctx context.Context) ([]TaskList, error) {
	res, err := h.do(ctx, "list task lists", http.MethodGet, "/tasks/v1/users/@me/lists?maxResults=100", nil)
	if err != nil {
		return nil, err
	}
	var lists []TaskList
	res.Get("items").ForEach(func(_, item gjson.Result) bool {
		lists = append(lists, TaskList{ID: item.Get("id").String(), Title: item.Get("title").String()})
		return true
	})
	return lists, nil
}

func (h *HTTP) CreateTaskList(ctx context.Context, title string) (TaskList, error) {
	body, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return TaskList{}, err
	}
	res, err := h.do(ctx, "create task list", http.MethodPost, "/tasks/v1/users/@me/lists", body)
	if err != nil {
		return TaskList{}, err
	}
	list := TaskList{ID: res.Get("id").String(), Title: res.Get("title").String()}
	if list.ID == "" {
		return TaskList{}, failure.Backend("create task list", http.StatusOK, res.Raw)
	}
	return list, nil
}

type eventTime struct {
	DateTime string `json:"dateTime"`
}

type eventBody struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

func (h *HTTP) CreateEvent(ctx context.Context, e Event) (Event, error) {
	body, err := json.Marshal(eventBody{
		Summary:     e.Summary,
		Description: e.Description,
		Start:       eventTime{DateTime: e.Start.Format(time.RFC3339)},
		End:         eventTime{DateTime: e.End.Format(time.RFC3339)},
	})
	if err != nil {
		return Event{}, err
	}
	if h.TimeZone != "" {
		for _, path := range []string{"start.timeZone", "end.timeZone"} {
			if body, err = sjson.SetBytes(body, path, h.TimeZone); err != nil {
				return Event{}, err
			}
		}
	}

	calendar := h.CalendarID
	if calendar == "" {
		calendar = "primary"
	}
	res, err := h.do(ctx, "create event", http.MethodPost, "/calendar/v3/calendars/"+url.PathEscape(calendar)+"/events", body)
	if err != nil {
		return Event{}, err
	}
	out := e
	out.ID = res.Get("id").String()
	out.HTMLLink = res.Get("htmlLink").String()
	return out, nil
}

func (h *HTTP) CreateTask(ctx context.Context, listID string, t Task) (Task, error) {
	if listID == "" {
		return Task{}, failure.Missing("create task", errors.New("task list id is empty"))
	}
	body, err := json.Marshal(map[string]string{
		"title": t.Title,
		"due":   t.Due.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Task{}, err
	}
	if t.Notes != "" {
		if body, err = sjson.SetBytes(body, "notes", t.Notes); err != nil {
			return Task{}, err
		}
	}
	res, err := h.do(ctx, "create task", http.MethodPost, "/tasks/v1/lists/"+url.PathEscape(listID)+"/tasks", body)
	if err != nil {
		return Task{}, err
	}
	out := t
	out.ID = res.Get("id").String()
	out.ListID = listID
	return out, nil
}

func (h *HTTP) CreateDraft(ctx context.Context, d Draft) (Draft, error) {
	msg, err := rfc822(d)
	if err != nil {
		return Draft{}, failure.Invalid("create draft", err)
	}
	raw := base64.URLEncoding.EncodeToString(msg)
	body, err := sjson.SetBytes([]byte(`{}`), "message.raw", raw)
	if err != nil {
		return Draft{}, err
	}
	if d.ThreadID != "" {
		if body, err = sjson.SetBytes(body, "message.threadId", d.ThreadID); err != nil {
			return Draft{}, err
		}
	}
	res, err := h.do(ctx, "create draft", http.MethodPost, "/gmail/v1/users/me/drafts", body)
	if err != nil {
		return Draft{}, err
	}
	out := d
	out.ID = res.Get("id").String()
	if thread := res.Get("message.threadId").String(); thread != "" {
		out.ThreadID = thread
	}
	return out, nil
}

func (h *HTTP) Busy(ctx context.Context, from, to time.Time) ([]Interval, error) {
	calendar := h.CalendarID
	if calendar == "" {
		calendar = "primary"
	}
	body, err := json.Marshal(map[string]any{
		"timeMin": from.Format(time.RFC3339),
		"timeMax": to.Format(time.RFC3339),
		"items":   []map[string]string{{"id": calendar}},
	})
	if err != nil {
		return nil, err
	}
	res, err := h.do(ctx, "query free/busy", http.MethodPost, "/calendar/v3/freeBusy", body)
	if err != nil {
		return nil, err
	}

	cal := res.Get("calendars." + gjson.Escape(calendar))
	if errs := cal.Get("errors"); errs.Exists() && len(errs.Array()) > 0 {
		return nil, failure.Backend("query free/busy", http.StatusOK, errs.Raw)
	}
	var busy []Interval
	var parseErr error
	cal.Get("busy").ForEach(func(_, item gjson.Result) bool {
		start, err := time.Parse(time.RFC3339, item.Get("start").String())
		if err != nil {
			parseErr = err
			return false
		}
		end, err := time.Parse(time.RFC3339, item.Get("end").String())
		if err != nil {
			parseErr = err
			return false
		}
		busy = append(busy, Interval{Start: start, End: end})
		return true
	})
	if parseErr != nil {
		return nil, fmt.Errorf("backend: free/busy: %w", parseErr)
	}
	return busy, nil
}

func (h *HTTP) Profile(ctx context.Context) (Profile, error) {
	res, err := h.do(ctx, "get profile", http.MethodGet, "/gmail/v1/users/me/profile", nil)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Email:         res.Get("emailAddress").String(),
		MessagesTotal: res.Get("messagesTotal").Int(),
		ThreadsTotal:  res.Get("threadsTotal").Int(),
	}, nil
}

// do runs one authenticated call under its own timeout.
func (h *HTTP) do(ctx context.Context, op, method, path string, body []byte) (gjson.Result, error) {
	if h.Tokens == nil {
		return gjson.Result{}, failure.Auth(op, errors.New("no token source configured"))
	}
	tok, err := h.Tokens.Token(ctx)
	if err != nil {
		if failure.KindOf(err) == "" {
			err = failure.Auth(op, err)
		}
		return gjson.Result{}, err
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(h.BaseURL, "/")+path, reader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("backend: %s: %w", op, err)
	}
	tok.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return gjson.Result{}, classifyTransport(ctx, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return gjson.Result{}, classifyTransport(ctx, op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return gjson.Result{}, failure.Backend(op, resp.StatusCode, string(data))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, failure.Backend(op, resp.StatusCode, string(data))
	}
	return gjson.ParseBytes(data), nil
}

func classifyTransport(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return failure.Timeout(op, err)
	}
	return failure.Unreachable(op, err)
}

// Recipients parses a comma separated address list and renders it as a
// header value. Anything that is not a valid address list is rejected, so a
// recipient can never carry extra header lines.
func Recipients(to string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", nil
	}
	if strings.ContainsAny(to, "\r\n") {
		return "", fmt.Errorf("recipient %q contains a line break", to)
	}
	addrs, err := mail.ParseAddressList(to)
	if err != nil {
		return "", fmt.Errorf("recipient %q: %w", to, err)
	}
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.String())
	}
	return strings.Join(out, ", "), nil
}

// rfc822 renders a plain-text message for the drafts API.
func rfc822(d Draft) ([]byte, error) {
	to, err := Recipients(d.To)
	if err != nil {
		return nil, err
	}
	var b bytes.Buffer
	if to != "" {
		fmt.Fprintf(&b, "To: %s\r\n", to)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", d.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(d.Body, "\n", "\r\n"))
	return b.Bytes(), nil
}
