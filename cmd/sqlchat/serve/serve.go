package servecmder

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/sqlchat/cmd/sqlchat/setup"
	"github.com/papercomputeco/sqlchat/pkg/chat"
	"github.com/papercomputeco/sqlchat/pkg/logger"
	"github.com/papercomputeco/sqlchat/pkg/transcript"
	"github.com/papercomputeco/sqlchat/web"
)

const serveLongDesc string = `Serve the chat as a web page.

The page posts each question back to this server, which asks the
text-to-SQL endpoint and renders the conversation. A JSON API for the
same session is served under /api.

Examples:
  sqlchat serve
  sqlchat serve --listen 127.0.0.1:9090 --endpoint http://db-helper:8000/query`

const serveShortDesc string = "Serve the chat as a web page"

type serveCommander struct {
	listen string
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (default :8080)")

	return cmd
}

func (c *serveCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := setup.Config(cmd)
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.Listen = c.listen
	}

	log := logger.NewLogger(cfg.Debug)
	defer log.Sync()

	log.Info("sqlchat web server starting",
		zap.String("listen", cfg.Listen),
		zap.String("endpoint", cfg.Endpoint),
		zap.Bool("debug", cfg.Debug),
	)

	handler, err := setup.Handler(cfg, log)
	if err != nil {
		return err
	}

	srv, err := web.New(web.Config{
		ListenAddr: cfg.Listen,
		Endpoint:   cfg.Endpoint,
	}, chat.NewSession(handler, transcript.NewLog()), log.Named("web"))
	if err != nil {
		return fmt.Errorf("could not create web server: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("web server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down web server")
		return srv.Shutdown()
	}
}
