package main

import (
	"strings"

	"github.com/spf13/cobra"

	errs "raindrip/internal/errors"
	"raindrip/internal/models"
	"raindrip/internal/toon"
)

var (
	addTitle      string
	addTags       string
	addCollection int64
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get full details for a specific bookmark",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a new bookmark",
	Long: `Add a new bookmark.

Example:
  raindrip add "https://example.com" --title "Example" --tags "tag1,tag2"`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var patchCmd = &cobra.Command{
	Use:   "patch <id> <json>",
	Short: "Update a bookmark with a JSON patch",
	Long: `Update a bookmark with a JSON patch. Only the fields present in the
payload change; see 'raindrip schema' for the accepted fields.

Example:
  raindrip patch 123456 '{"title": "New Title", "tags": ["updated"]}'`,
	Args: cobra.ExactArgs(2),
	RunE: runPatch,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <id>",
	Short: "Get tag/collection suggestions for a bookmark",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

var waybackCmd = &cobra.Command{
	Use:   "wayback <url>",
	Short: "Check if a URL is archived in the Wayback Machine",
	Args:  cobra.ExactArgs(1),
	RunE:  runWayback,
}

var sortCmd = &cobra.Command{
	Use:   "sort <id>",
	Short: "Suggest the best collection for a bookmark based on its title",
	Args:  cobra.ExactArgs(1),
	RunE:  runSort,
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "Bookmark title (parsed from the page when omitted)")
	addCmd.Flags().StringVar(&addTags, "tags", "", "Comma-separated tags")
	addCmd.Flags().Int64Var(&addCollection, "collection", 0, "Target collection ID")
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(patchCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(waybackCmd)
	rootCmd.AddCommand(sortCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	drop, err := client.GetRaindrop(ctx, id)
	if err != nil {
		return err
	}
	return outputValue(drop)
}

func runAdd(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	create := models.RaindropCreate{
		Link:         args[0],
		Title:        addTitle,
		Tags:         models.SplitTags(addTags),
		CollectionID: addCollection,
	}
	drop, err := client.CreateRaindrop(ctx, create)
	if err != nil {
		return err
	}
	return outputValue(drop)
}

func runPatch(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var update models.RaindropUpdate
	if err := models.DecodeStrict([]byte(args[1]), &update); err != nil {
		return errs.NewValidationError("invalid patch payload: "+err.Error(),
			"See 'raindrip schema' for the accepted fields.")
	}

	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	drop, err := client.UpdateRaindrop(ctx, id, update)
	if err != nil {
		return err
	}
	return outputValue(drop)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	ok, err := client.DeleteRaindrop(ctx, id)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}

func runSuggest(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	suggestions, err := client.GetSuggestions(ctx, id)
	if err != nil {
		return err
	}
	return outputValue(suggestions)
}

func runWayback(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	var snapshot any
	if s := client.CheckWayback(ctx, args[0]); s != "" {
		snapshot = s
	}
	return outputValue(toon.Object{
		{Key: "url", Value: args[0]},
		{Key: "snapshot", Value: snapshot},
	})
}

func runSort(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	drop, err := client.GetRaindrop(ctx, id)
	if err != nil {
		return err
	}
	collections, err := client.ListCollections(ctx)
	if err != nil {
		return err
	}

	titleLower := strings.ToLower(drop.Title)
	var suggestions []any
	for _, col := range collections {
		if len(suggestions) == 3 {
			break
		}
		if !matchesTitle(titleLower, strings.ToLower(col.Title)) {
			continue
		}
		suggestions = append(suggestions, toon.Object{
			{Key: "id", Value: float64(col.ID)},
			{Key: "title", Value: col.Title},
			{Key: "match_reason", Value: "Matches keyword '" + col.Title + "'"},
		})
	}

	return outputValue(toon.Object{
		{Key: "bookmark", Value: toon.Object{
			{Key: "id", Value: float64(drop.ID)},
			{Key: "title", Value: drop.Title},
		}},
		{Key: "suggested_collections", Value: suggestions},
	})
}

// matchesTitle reports whether a collection title (lowercased) overlaps
// the bookmark title: the whole title as a substring, or any single word.
func matchesTitle(bookmarkTitle, collectionTitle string) bool {
	if collectionTitle == "" {
		return false
	}
	if strings.Contains(bookmarkTitle, collectionTitle) {
		return true
	}
	for _, word := range strings.Fields(collectionTitle) {
		if strings.Contains(bookmarkTitle, word) {
			return true
		}
	}
	return false
}
