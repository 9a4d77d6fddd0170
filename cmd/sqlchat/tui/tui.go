package tuicmder

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/sqlchat/cmd/sqlchat/setup"
	"github.com/papercomputeco/sqlchat/pkg/logger"
	"github.com/papercomputeco/sqlchat/tui"
)

const tuiLongDesc string = `Chat with the text-to-SQL endpoint in the terminal.

Type a question and press Enter. The input is locked until the answer
arrives. Ctrl+C or Esc quits.

Since the chat owns the terminal, logs go to --log-file or nowhere.

Examples:
  sqlchat tui
  sqlchat tui --debug --log-file /tmp/sqlchat.log`

const tuiShortDesc string = "Chat in the terminal"

type tuiCommander struct {
	logFile string
	style   string
}

func NewTUICmd() *cobra.Command {
	cmder := &tuiCommander{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: tuiShortDesc,
		Long:  tuiLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Write logs to this file")
	cmd.Flags().StringVar(&cmder.style, "style", "", "Markdown style: dark, light or notty (default: from terminal)")

	return cmd
}

func (c *tuiCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := setup.Config(cmd)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("could not open log file %s: %w", c.logFile, err)
		}
		defer f.Close()
		log = logger.NewLoggerTo(f, cfg.Debug)
	}
	defer log.Sync()

	handler, err := setup.Handler(cfg, log)
	if err != nil {
		return err
	}

	model, err := tui.NewModel(ctx, tui.Config{
		Endpoint: cfg.Endpoint,
		Style:    c.style,
	}, handler, log.Named("tui"))
	if err != nil {
		return fmt.Errorf("could not create chat view: %w", err)
	}

	log.Info("tui starting", zap.String("endpoint", cfg.Endpoint))

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("chat view failed: %w", err)
	}

	return nil
}
