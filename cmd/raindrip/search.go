package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	errs "raindrip/internal/errors"
	"raindrip/internal/table"
	"raindrip/internal/toon"
)

var (
	searchCollection int64
	searchPretty     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for bookmarks (paginated)",
	Long: `Search for bookmarks. Pages through all results. An empty query
lists the collection's bookmarks, most recent first.

Query syntax follows Raindrop.io search, e.g. tag:important or site:github.com.

Examples:
  raindrip search "python"
  raindrip search "tag:important" --pretty
  raindrip search --collection 123`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int64Var(&searchCollection, "collection", 0, "Collection ID to search in (0 for all)")
	searchCmd.Flags().BoolVarP(&searchPretty, "pretty", "p", false, "Display results in a formatted table for humans")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) == 1 {
		query = args[0]
	}

	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	results, err := client.Search(ctx, query, searchCollection)
	if err != nil {
		return err
	}

	if searchPretty {
		t := table.New("ID", "Title", "Tags", "Link")
		for _, r := range results {
			t.AddRow(
				strconv.FormatInt(r.ID, 10),
				r.Title,
				strings.Join(r.Tags, ", "),
				r.Link,
			)
		}
		if err := t.Render(os.Stdout); err != nil {
			return errs.NewInternalError(err)
		}
		return nil
	}

	items := make([]any, 0, len(results))
	for _, r := range results {
		typ := r.Type
		if typ == "" {
			typ = "link"
		}
		items = append(items, toon.Object{
			{Key: "id", Value: float64(r.ID)},
			{Key: "title", Value: r.Title},
			{Key: "link", Value: r.Link},
			{Key: "tags", Value: strings.Join(r.Tags, ",")},
			{Key: "type", Value: typ},
			{Key: "created", Value: r.Created},
		})
	}
	return outputValue(toon.Object{{Key: "items", Value: items}})
}
