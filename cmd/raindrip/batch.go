package main

import (
	"github.com/spf13/cobra"

	errs "raindrip/internal/errors"
	"raindrip/internal/models"
	"raindrip/internal/toon"
)

var (
	batchUpdateIDs        string
	batchUpdateCollection int64
	batchDeleteIDs        string
	batchDeleteCollection int64
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Operate on multiple bookmarks at once",
}

var batchUpdateCmd = &cobra.Command{
	Use:   "update <json>",
	Short: "Update multiple bookmarks at once",
	Long: `Update multiple bookmarks at once. The JSON patch applies to every
bookmark named in --ids.

Example:
  raindrip batch update --ids 1,2,3 '{"tags": ["research"]}'`,
	Args: cobra.ExactArgs(1),
	RunE: runBatchUpdate,
}

var batchDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete multiple bookmarks at once",
	Long: `Delete multiple bookmarks at once.

Example:
  raindrip batch delete --ids 1,2,3`,
	Args: cobra.NoArgs,
	RunE: runBatchDelete,
}

func init() {
	batchUpdateCmd.Flags().StringVar(&batchUpdateIDs, "ids", "", "Comma-separated list of bookmark IDs")
	batchUpdateCmd.Flags().Int64Var(&batchUpdateCollection, "collection", 0, "Collection ID")
	batchUpdateCmd.MarkFlagRequired("ids")
	batchDeleteCmd.Flags().StringVar(&batchDeleteIDs, "ids", "", "Comma-separated list of bookmark IDs")
	batchDeleteCmd.Flags().Int64Var(&batchDeleteCollection, "collection", 0, "Collection ID (use -99 for permanent delete)")
	batchDeleteCmd.MarkFlagRequired("ids")
	batchCmd.AddCommand(batchUpdateCmd)
	batchCmd.AddCommand(batchDeleteCmd)
	rootCmd.AddCommand(batchCmd)
}

func runBatchUpdate(cmd *cobra.Command, args []string) error {
	ids, err := models.ParseIDList(batchUpdateIDs)
	if err != nil {
		return errs.NewValidationError(err.Error(), "Pass --ids as a comma-separated list, e.g. 1,2,3.")
	}
	var update models.RaindropUpdate
	if err := models.DecodeStrict([]byte(args[0]), &update); err != nil {
		return errs.NewValidationError("invalid patch payload: "+err.Error(),
			"See 'raindrip schema' for the accepted fields.")
	}

	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	ok, err := client.BatchUpdateRaindrops(ctx, batchUpdateCollection, ids, update)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}

func runBatchDelete(cmd *cobra.Command, args []string) error {
	ids, err := models.ParseIDList(batchDeleteIDs)
	if err != nil {
		return errs.NewValidationError(err.Error(), "Pass --ids as a comma-separated list, e.g. 1,2,3.")
	}

	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	ok, err := client.BatchDeleteRaindrops(ctx, batchDeleteCollection, ids)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}
