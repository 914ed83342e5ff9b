package main

import (
	"errors"
	"fmt"

	"github.com/Totarae/MCPBuilder/internal/form"
	"github.com/Totarae/MCPBuilder/internal/generator"
	"github.com/spf13/cobra"
)

var errNoGenerator = errors.New("generator URL is required: set GENERATOR_URL or -g")

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <openapi-url>",
		Short: "Generate an MCP server for an OpenAPI URL and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if !cfg.HasGenerator() {
				return errNoGenerator
			}
			copyResult, _ := cmd.Flags().GetBool("copy")

			gen := generator.New(cfg.GeneratorURL,
				generator.WithTimeout(cfg.RequestTimeout),
				generator.WithLogger(logger),
			)
			ctrl := form.NewController(gen, newClipboard(),
				form.WithLogger(logger),
				form.WithCopyAckDelay(cfg.CopyAckDelay),
			)

			result, err := ctrl.Submit(cmd.Context(), args[0])
			if err != nil {
				return errors.New(ctrl.State().Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)

			if !copyResult {
				return nil
			}
			if err := ctrl.Copy(cmd.Context(), result); err != nil {
				return errors.New(ctrl.State().Message)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), ctrl.State().CopyLabel)
			return nil
		},
	}
	cmd.Flags().Bool("copy", false, "copy the generated URL to the clipboard")
	return cmd
}
