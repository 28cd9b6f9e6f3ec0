// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-refresh/internal/refresh"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch the latest papers and refresh the target page",
	Long: `Update queries the search API once, renders the returned papers, and
splices them with the current timestamp into the target page. The file is
left untouched when nothing changed. A feed with no papers still refreshes
the timestamp.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	res, err := refresh.Run(cmd.Context(), cfg, refresh.WithLogger(logger))
	if err != nil {
		return err
	}

	if res.Written {
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s with %d papers.\n", res.Target, res.Papers)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is already up to date.\n", res.Target)
	}
	return nil
}
