package main

import (
	"bytes"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	errs "raindrip/internal/errors"
	"raindrip/internal/models"
	"raindrip/internal/toon"
)

var (
	collectionCreateParent int64
	collectionCreatePublic bool
	collectionCreateView   string
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collections",
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new collection",
	Long: `Create a new collection.

Example:
  raindrip collection create "Research" --public`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionCreate,
}

var collectionUpdateCmd = &cobra.Command{
	Use:   "update <id> <json>",
	Short: "Update a collection with a JSON patch",
	Long: `Update a collection with a JSON patch.

Example:
  raindrip collection update 123 '{"title": "New Name"}'`,
	Args: cobra.ExactArgs(2),
	RunE: runCollectionUpdate,
}

var collectionGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get details of a specific collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionGet,
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionDelete,
}

var collectionDeleteMultipleCmd = &cobra.Command{
	Use:   "delete-multiple <ids>",
	Short: "Delete multiple collections at once",
	Long: `Delete multiple collections at once.

Example:
  raindrip collection delete-multiple 123,456`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionDeleteMultiple,
}

var collectionReorderCmd = &cobra.Command{
	Use:   "reorder <sort>",
	Short: "Reorder all collections",
	Long: `Reorder all collections. Sort is one of: title, -title, -count.

Example:
  raindrip collection reorder title`,
	Args: cobra.ExactArgs(1),
	RunE: runCollectionReorder,
}

var collectionExpandAllCmd = &cobra.Command{
	Use:   "expand-all <true|false>",
	Short: "Expand or collapse all collections",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionExpandAll,
}

var collectionMergeCmd = &cobra.Command{
	Use:   "merge <ids> <target-id>",
	Short: "Merge multiple collections into one",
	Long: `Merge multiple collections into one.

Example:
  raindrip collection merge 123,456 789`,
	Args: cobra.ExactArgs(2),
	RunE: runCollectionMerge,
}

var collectionCoverCmd = &cobra.Command{
	Use:   "cover <id> <source>",
	Short: "Upload a cover image to a collection",
	Long: `Upload a cover image to a collection. Source is a local file path or
an http(s) URL; URLs are downloaded first.

Example:
  raindrip collection cover 123 "https://example.com/icon.png"`,
	Args: cobra.ExactArgs(2),
	RunE: runCollectionCover,
}

var collectionSetIconCmd = &cobra.Command{
	Use:   "set-icon <id> <query>",
	Short: "Search for and set a collection icon from Raindrop's library",
	Long: `Search Raindrop's icon library and set the first match as the
collection's cover.

Example:
  raindrip collection set-icon 123 "robot"`,
	Args: cobra.ExactArgs(2),
	RunE: runCollectionSetIcon,
}

var collectionCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all empty collections",
	Args:  cobra.NoArgs,
	RunE:  runCollectionClean,
}

var collectionEmptyTrashCmd = &cobra.Command{
	Use:   "empty-trash",
	Short: "Empty the trash collection",
	Args:  cobra.NoArgs,
	RunE:  runCollectionEmptyTrash,
}

func init() {
	collectionCreateCmd.Flags().Int64Var(&collectionCreateParent, "parent", 0, "Parent collection ID")
	collectionCreateCmd.Flags().BoolVar(&collectionCreatePublic, "public", false, "Make the collection public")
	collectionCreateCmd.Flags().StringVar(&collectionCreateView, "view", "", "View style (list, simple, grid, masonry)")

	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionUpdateCmd)
	collectionCmd.AddCommand(collectionGetCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
	collectionCmd.AddCommand(collectionDeleteMultipleCmd)
	collectionCmd.AddCommand(collectionReorderCmd)
	collectionCmd.AddCommand(collectionExpandAllCmd)
	collectionCmd.AddCommand(collectionMergeCmd)
	collectionCmd.AddCommand(collectionCoverCmd)
	collectionCmd.AddCommand(collectionSetIconCmd)
	collectionCmd.AddCommand(collectionCleanCmd)
	collectionCmd.AddCommand(collectionEmptyTrashCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionCreate(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	create := models.CollectionCreate{
		Title: args[0],
		View:  collectionCreateView,
	}
	if cmd.Flags().Changed("parent") {
		create.Parent = &models.CollectionRef{ID: collectionCreateParent}
	}
	if cmd.Flags().Changed("public") {
		public := collectionCreatePublic
		create.Public = &public
	}

	col, err := client.CreateCollection(ctx, create)
	if err != nil {
		return err
	}
	return outputValue(col)
}

func runCollectionUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var update models.CollectionUpdate
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

	col, err := client.UpdateCollection(ctx, id, update)
	if err != nil {
		return err
	}
	return outputValue(col)
}

func runCollectionGet(cmd *cobra.Command, args []string) error {
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

	col, err := client.GetCollection(ctx, id)
	if err != nil {
		return err
	}
	return outputValue(col)
}

func runCollectionDelete(cmd *cobra.Command, args []string) error {
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

	ok, err := client.DeleteCollection(ctx, id)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}

func runCollectionDeleteMultiple(cmd *cobra.Command, args []string) error {
	ids, err := models.ParseIDList(args[0])
	if err != nil {
		return errs.NewValidationError(err.Error(), "Pass a comma-separated list, e.g. 123,456.")
	}
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	ok, err := client.DeleteCollections(ctx, ids)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}

func runCollectionReorder(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	ok, err := client.ReorderCollections(ctx, args[0])
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}

func runCollectionExpandAll(cmd *cobra.Command, args []string) error {
	expanded, err := strconv.ParseBool(strings.ToLower(args[0]))
	if err != nil {
		return errs.NewValidationError("invalid argument "+strconv.Quote(args[0]), "Use true or false.")
	}
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	ok, err := client.ExpandAllCollections(ctx, expanded)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}

func runCollectionMerge(cmd *cobra.Command, args []string) error {
	ids, err := models.ParseIDList(args[0])
	if err != nil {
		return errs.NewValidationError(err.Error(), "Pass a comma-separated list, e.g. 123,456.")
	}
	target, err := parseID(args[1])
	if err != nil {
		return err
	}
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	ok, err := client.MergeCollections(ctx, ids, target)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}

func runCollectionCover(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	source := args[1]

	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	var (
		image    []byte
		filename string
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		logger.Info("downloading cover", map[string]interface{}{"url": source})
		image, err = client.DownloadIcon(ctx, source)
		if err != nil {
			return err
		}
		filename = path.Base(source)
		if filename == "" || filename == "." || filename == "/" {
			filename = "cover.png"
		}
	} else {
		image, err = os.ReadFile(source)
		if err != nil {
			return errs.NewValidationError("cannot read cover file: "+err.Error(),
				"Pass a readable image file or an http(s) URL.")
		}
		filename = filepath.Base(source)
	}

	col, err := client.UploadCover(ctx, id, filename, bytes.NewReader(image))
	if err != nil {
		return err
	}
	return outputValue(col)
}

func runCollectionSetIcon(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	query := args[1]

	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	icons, err := client.SearchCovers(ctx, query)
	if err != nil {
		return err
	}
	if len(icons) == 0 {
		return errs.NewValidationError("no icons found for "+strconv.Quote(query),
			"Try a broader search term, e.g. 'code' or 'art'.")
	}

	// First hit is usually the best match.
	image, err := client.DownloadIcon(ctx, icons[0])
	if err != nil {
		return err
	}
	col, err := client.UploadCover(ctx, id, "icon.png", bytes.NewReader(image))
	if err != nil {
		return err
	}
	return outputValue(col)
}

func runCollectionClean(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	count, err := client.CleanEmptyCollections(ctx)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "removed_count", Value: float64(count)}})
}

func runCollectionEmptyTrash(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	ok, err := client.EmptyTrash(ctx)
	if err != nil {
		return err
	}
	return outputValue(toon.Object{{Key: "success", Value: ok}})
}
