// cmd/human1/schema.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"human1-sdk/internal/common/database"
	"human1-sdk/internal/oracle"
)

var schemaLive bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the schema description given to the LLM",
	Long: `schema prints the DDL from the prompt pack. With --live it reads
information_schema from the configured database instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return fmt.Errorf("config load failed: %w", err)
		}

		if !schemaLive {
			pack, err := oracle.LoadPromptPack(cfg.Oracle.PromptFile)
			if err != nil {
				return err
			}
			pterm.DefaultSection.Printfln("Prompt pack %q", pack.Name)
			pterm.Println(pack.Schema)
			return nil
		}

		db, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		description, err := oracle.NewSchemaInspector(db.GetDB()).Describe(ctx)
		if err != nil {
			return err
		}
		pterm.DefaultSection.Printfln("Live schema of %s", cfg.Database.Postgres.Database)
		pterm.Println(description)
		return nil
	},
}

func init() {
	schemaCmd.Flags().BoolVar(&schemaLive, "live", false, "describe the live database instead of the prompt DDL")
}
