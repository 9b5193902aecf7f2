package options

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// TextOptions say where the email text comes from: args, --file, or stdin.
type TextOptions struct {
	File string
}

func AddTextArgs(cmd *cobra.Command, o *TextOptions) {
	cmd.Flags().StringVarP(&o.File, "file", "f", "",
		`Read the email text from a file, "-" for stdin.`)
	_ = cmd.MarkFlagFilename("file", "txt", "eml")
}

// Text resolves the email text. Args win over --file, and stdin is read
// when neither is given.
func (o *TextOptions) Text(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	var r io.Reader
	switch o.File {
	case "", "-":
		r = stdin
	default:
		f, err := os.Open(o.File)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	if r == nil {
		return "", errors.New("requires email text")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", errors.New("requires email text")
	}
	return text, nil
}

// ThreadOptions carry the mail thread a request belongs to.
type ThreadOptions struct {
	ThreadID string
	To       string
}

func AddThreadArgs(cmd *cobra.Command, o *ThreadOptions, withRecipient bool) {
	cmd.Flags().StringVar(&o.ThreadID, "thread", "",
		"Thread id the email belongs to.")
	if withRecipient {
		cmd.Flags().StringVar(&o.To, "to", "",
			"Recipient of the drafted reply.")
	}
}
