// Package setup resolves configuration from flags and builds the chat
// pipeline shared by every subcommand.
package setup

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/sqlchat/pkg/chat"
	"github.com/papercomputeco/sqlchat/pkg/config"
	"github.com/papercomputeco/sqlchat/pkg/query"
	"github.com/papercomputeco/sqlchat/pkg/sqlformat"
)

const (
	flagConfig   = "config"
	flagEndpoint = "endpoint"
	flagDebug    = "debug"
)

// AddFlags registers the persistent flags on the root command.
func AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(flagConfig, "c", "", "Path to a TOML config file")
	cmd.PersistentFlags().StringP(flagEndpoint, "e", "", "Text-to-SQL endpoint URL (default "+query.DefaultEndpoint+")")
	cmd.PersistentFlags().Bool(flagDebug, false, "Enable debug logging")
}

// Config loads the config file named by --config and applies flag overrides.
func Config(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString(flagConfig)

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed(flagEndpoint) {
		cfg.Endpoint, _ = cmd.Flags().GetString(flagEndpoint)
	}
	if cmd.Flags().Changed(flagDebug) {
		cfg.Debug, _ = cmd.Flags().GetBool(flagDebug)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Handler builds the chat handler described by cfg.
func Handler(cfg *config.Config, logger *zap.Logger) (*chat.Handler, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	formatter, err := sqlformat.New(sqlformat.Options{
		Dialect:           cfg.Dialect,
		UppercaseKeywords: cfg.UppercaseKeywords,
		Strict:            cfg.StrictFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create sql formatter: %w", err)
	}

	client := query.NewClient(cfg.Endpoint,
		query.WithTimeout(timeout),
		query.WithLogger(logger.Named("query")),
	)

	return chat.NewHandler(client, formatter,
		chat.WithLogger(logger.Named("chat")),
		chat.WithErrorPrefix(cfg.ErrorPrefix),
		chat.WithFenceLanguage(cfg.FenceLanguage),
	), nil
}
