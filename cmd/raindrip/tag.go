package main

import (
	"github.com/spf13/cobra"

	"raindrip/internal/toon"
)

var (
	tagDeleteCollection int64
	tagRenameCollection int64
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <tag>...",
	Short: "Delete tags from all bookmarks or a specific collection",
	Long: `Delete tags from all bookmarks (global) or a specific collection.

Example:
  raindrip tag delete "old-tag" "useless-tag"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTagDelete,
}

var tagRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a tag",
	Long: `Rename a tag. Merges with the existing tag when the new name is
already in use.

Example:
  raindrip tag rename "work" "career"`,
	Args: cobra.ExactArgs(2),
	RunE: runTagRename,
}

func init() {
	tagDeleteCmd.Flags().Int64Var(&tagDeleteCollection, "collection", 0, "Collection ID (0 for global)")
	tagRenameCmd.Flags().Int64Var(&tagRenameCollection, "collection", 0, "Collection ID (0 for global)")
	tagCmd.AddCommand(tagDeleteCmd)
	tagCmd.AddCommand(tagRenameCmd)
	rootCmd.AddCommand(tagCmd)
}

func runTagDelete(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	ok, err := client.DeleteTags(ctx, args, tagDeleteCollection)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}

func runTagRename(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	ok, err := client.RenameTag(ctx, args[0], args[1], tagRenameCollection)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}
