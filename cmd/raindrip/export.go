package main

import (
	"github.com/spf13/cobra"

	"raindrip/internal/export"
)

var (
	exportCollection int64
	exportOutput     string
	exportDataFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export bookmarks to a file",
	Long: `Export bookmarks to a backup file. Pages through the whole
collection (or everything for collection 0). The data format follows the
file extension unless --data-format overrides it; a .zst suffix enables
zstd compression.

Examples:
  raindrip export --output backup.json
  raindrip export --collection 123 --output research.toon.zst`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Int64Var(&exportCollection, "collection", 0, "Collection ID to export (0 for all)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "raindrops.toon", "Output file path")
	exportCmd.Flags().StringVar(&exportDataFormat, "data-format", "", "Data format: json or toon (default: from extension)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	drops, err := client.Search(ctx, "", exportCollection)
	if err != nil {
		return err
	}

	result, err := export.Write(drops, export.Options{
		Path:          exportOutput,
		Format:        exportDataFormat,
		ToonIndent:    settings.ToonIndent,
		ToonDelimiter: settings.Delimiter(),
	})
	if err != nil {
		return err
	}
	logger.Info("export written", map[string]interface{}{
		"path":  result.Path,
		"count": result.Count,
	})
	return outputValue(result)
}
