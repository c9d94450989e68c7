package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:     "boardman",
		Short:   "Project board intelligence served to AI orchestrators over MCP",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newInitCmd(),
		newSyncCmd(),
		newStatusCmd(),
		newStatsCmd(),
		newDecisionsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
