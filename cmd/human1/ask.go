// cmd/human1/ask.go
package main

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"human1-sdk/internal/common/logger"
	"human1-sdk/internal/models"
	"human1-sdk/pkg/human1"
)

var askFormat string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question and print the result",
	Example: `  human1 ask "Which characters have red eyes?"
  human1 ask --format paragraph "Describe the planets with a frozen climate"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		format, ok := models.ParseResponseFormat(askFormat)
		if !ok {
			return fmt.Errorf("--format must be table or paragraph, got %q", askFormat)
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config load failed: %w", err)
		}

		sdk, err := human1.Init(cmd.Context(), human1.Options{
			Config:   cfg,
			Registry: human1.NewRegistry(),
			Logger:   logger.NewStructured("error", "console"),
		})
		if err != nil {
			return err
		}
		defer func() { _ = sdk.Close() }()

		spinner, _ := pterm.DefaultSpinner.Start("Thinking...")
		env := sdk.Execute(cmd.Context(), models.RequestData{
			models.FieldQuery:          question,
			models.FieldResponseFormat: string(format),
		})
		if spinner != nil {
			_ = spinner.Stop()
		}

		return renderEnvelope(env)
	},
}

func init() {
	askCmd.Flags().StringVarP(&askFormat, "format", "f", string(models.DefaultFormat), "response format: table or paragraph")
}
