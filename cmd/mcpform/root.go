package main

import (
	"fmt"
	"os"

	"github.com/Totarae/MCPBuilder/internal/clipboard"
	"github.com/Totarae/MCPBuilder/internal/config"
	"github.com/Totarae/MCPBuilder/internal/form"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newClipboard подменяется в тестах
var newClipboard = func() form.Clipboard {
	return clipboard.New()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mcpform",
		Short:         "Form for turning an OpenAPI URL into an MCP server URL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newServeCmd(), newGenerateCmd())
	return root
}

// execute запускает CLI. Ошибка печатается один раз, код возврата 1.
func execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

// loadConfig читает конфигурацию и создаёт логгер.
func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.NewConfig(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	var logger *zap.Logger
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logger)
	return cfg, logger, nil
}
