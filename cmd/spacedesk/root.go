package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"spacedesk/internal/client"
)

type cliApp struct {
	verbose     bool
	server      string
	workspaceID string

	level    zap.AtomicLevel
	hasLevel bool
	logger   *zap.Logger
}

func newApp() *cliApp {
	return &cliApp{logger: zap.NewNop()}
}

func (a *cliApp) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "spacedesk",
		Short:         "Spaces, widgets and chat for a desk-style workspace",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if a.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.level = config.Level
			a.hasLevel = true
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging")
	root.PersistentFlags().StringVar(&a.server, "server", client.DefaultServer, "Gateway base URL")
	root.PersistentFlags().StringVarP(&a.workspaceID, "workspace", "w", client.DefaultWorkspaceID, "Workspace id")

	root.AddCommand(
		a.serveCommand(),
		a.stateCommand(),
		a.workspacesCommand(),
		a.spaceCommand(),
		a.chatCommand(),
		a.widgetCommand(),
	)
	return root
}

func (a *cliApp) client() *client.Client {
	return client.New(a.server, a.workspaceID)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
