// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-refresh/internal/refresh"
	"github.com/pdiddy/paper-refresh/pkg/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Print the papers an update would publish, without touching the page",
	Long: `Preview fetches and parses the feed exactly like update, then prints the
records as YAML or JSON, or prints the HTML fragment that update would splice.`,
	Args: cobra.NoArgs,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("format", "yaml", "output format: yaml, json, or html")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	records, err := refresh.Preview(cmd.Context(), cfg, refresh.WithLogger(logger))
	if err != nil {
		return err
	}
	return writePreview(cmd.OutOrStdout(), format, cfg, records)
}

func writePreview(w io.Writer, format string, cfg types.RefreshConfig, records []types.PaperRecord) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case "html":
		page, err := refresh.RenderPreview(cfg, records, time.Now)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, page.Fragment)
		return err
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, or html", format)
	}
}
