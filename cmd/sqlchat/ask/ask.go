package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/sqlchat/cmd/sqlchat/setup"
	"github.com/papercomputeco/sqlchat/pkg/chat"
	"github.com/papercomputeco/sqlchat/pkg/logger"
	"github.com/papercomputeco/sqlchat/pkg/transcript"
)

const askLongDesc string = `Ask a single question and print the generated SQL.

The question is taken from the arguments, or read from stdin when
none are given. On a terminal the SQL is rendered as highlighted
markdown; otherwise the raw fenced markdown is printed.

Examples:
  sqlchat ask "how many orders were placed last week?"
  echo "top 10 customers by revenue" | sqlchat ask --html
  sqlchat ask --endpoint http://db-helper:8000/query "list tables"`

const askShortDesc string = "Ask a single question"

// ErrTurnFailed is returned after a failed turn's error bubble was printed.
var ErrTurnFailed = errors.New("question could not be answered")

type askCommander struct {
	html bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: askShortDesc,
		Long:  askLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	cmd.Flags().BoolVar(&cmder.html, "html", false, "Print the bubble's HTML instead of markdown")

	return cmd
}

func (c *askCommander) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, err := setup.Config(cmd)
	if err != nil {
		return err
	}

	log := logger.NewLoggerTo(cmd.ErrOrStderr(), cfg.Debug)
	defer log.Sync()

	handler, err := setup.Handler(cfg, log)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	if len(args) == 0 {
		in, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("could not read question from stdin: %w", err)
		}
		question = string(in)
	}

	session := chat.NewSession(handler, transcript.NewLog())
	t, err := session.Submit(ctx, question)
	if err != nil {
		return err
	}
	if t == nil {
		return errors.New("question is empty")
	}

	reply := session.Log().Last()
	if t.Err != nil {
		log.Debug("turn failed", zap.Error(t.Err))
		fmt.Fprintln(cmd.ErrOrStderr(), reply.Text)
		return ErrTurnFailed
	}

	out, err := c.render(cmd.OutOrStdout(), reply)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)

	return nil
}

func (c *askCommander) render(w io.Writer, b *transcript.Bubble) (string, error) {
	if c.html {
		return b.HTML + "\n", nil
	}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		width, _, err := term.GetSize(int(f.Fd()))
		if err != nil || width <= 0 {
			width = 80
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", fmt.Errorf("could not create markdown renderer: %w", err)
		}
		return r.Render(b.Text)
	}

	return b.Text + "\n", nil
}
