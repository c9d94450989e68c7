package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const starterConfig = `# Boardman configuration.
repo: %s

# Board states, first to last in the flow.
# states: [Backlog, Ready, Active, Review, Done]

# Facet patterns an item must carry to count as classified.
# required_facets: ["type:*", "area:*"]

# Optional operator rule pack (TOML) and scripted hook (JavaScript).
# rules_file: /path/to/rules.toml
# script_file: /path/to/rules.js

sync:
  interval_min: 10
  decision_retention_days: 30
`

func newInitCmd() *cobra.Command {
	var repo string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the local database and a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			app := loadAppConfig()

			db, err := openStore(ctx, app.DBPath)
			if err != nil {
				return fmt.Errorf("create database: %w", err)
			}
			_ = db.Close()
			fmt.Printf("Database created: %s\n", app.DBPath)

			if _, err := os.Stat(app.ConfigFile); os.IsNotExist(err) {
				if err := os.MkdirAll(filepath.Dir(app.ConfigFile), 0o755); err != nil {
					return fmt.Errorf("create config directory: %w", err)
				}
				starter := fmt.Sprintf(starterConfig, repo)
				if err := os.WriteFile(app.ConfigFile, []byte(starter), 0o644); err != nil {
					return fmt.Errorf("write config: %w", err)
				}
				fmt.Printf("Config file created: %s\n", app.ConfigFile)
			} else {
				fmt.Printf("Config file already exists: %s\n", app.ConfigFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "owner/name", `repository to manage ("owner/name")`)
	return cmd
}
