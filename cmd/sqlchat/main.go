package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/ask"
	servecmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/serve"
	"github.com/papercomputeco/sqlchat/cmd/sqlchat/setup"
	tuicmder "github.com/papercomputeco/sqlchat/cmd/sqlchat/tui"
)

const rootLongDesc string = `sqlchat asks a text-to-SQL endpoint questions in plain language
and shows the generated SQL, formatted for MySQL.

Use "tui" for an interactive terminal chat, "serve" for a browser
chat page, or "ask" for a single question.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sqlchat",
		Short:         "Chat with a text-to-SQL endpoint",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	setup.AddFlags(cmd)

	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(tuicmder.NewTUICmd())

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// The failed turn's error bubble has already been printed.
		if !errors.Is(err, askcmder.ErrTurnFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
