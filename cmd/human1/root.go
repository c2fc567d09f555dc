// cmd/human1/root.go
package main

import (
	"github.com/spf13/cobra"

	"human1-sdk/internal/common/config"
	"human1-sdk/internal/common/env"
)

var (
	configFile string
	envPath    string
	envProfile string
)

var rootCmd = &cobra.Command{
	Use:   "human1",
	Short: "Ask questions about a Postgres database in plain language",
	Long: `human1 turns natural-language questions into SQL with an LLM, runs the SQL
against Postgres and returns the answer as a table or a short paragraph.

Run "human1 serve" to expose the HTTP API, or "human1 ask" for a one-off question.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", "", "explicit .env file, searched before the defaults")
	rootCmd.PersistentFlags().StringVar(&envProfile, "env-profile", "", "load .env.<profile> variants first")

	rootCmd.AddCommand(serveCmd, askCmd, schemaCmd, versionCmd)
}

func loadConfig() (*config.Config, *config.Loader, error) {
	return config.LoadWithOptions(config.Options{
		ConfigFile: configFile,
		Env: env.Options{
			CustomPath: envPath,
			Profile:    envProfile,
		},
	})
}
