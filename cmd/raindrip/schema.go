package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	errs "raindrip/internal/errors"
	"raindrip/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Dump the JSON Schemas and usage examples (for AI context)",
	Long: `Dump JSON Schemas for the write payloads accepted by patch, add,
batch update and the collection commands, plus usage examples. Always
prints JSON regardless of --format so the output can be fed straight to
a JSON-schema-aware consumer.

Example:
  raindrip schema`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	data, err := json.MarshalIndent(schema.Document(), "", "  ")
	if err != nil {
		return errs.NewInternalError(err)
	}
	fmt.Println(string(data))
	return nil
}
