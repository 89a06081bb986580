package main

import (
	"github.com/spf13/cobra"

	"raindrip/internal/toon"
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show high-level account context (user, stats, recent activity)",
	Long: `Show a compact account overview: who you are, how much you have
stored, the top-level collection structure and the most recent bookmarks.
Intended as the first call an agent makes to orient itself.

Example:
  raindrip context`,
	Args: cobra.NoArgs,
	RunE: runContext,
}

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Show collections and tags",
	Args:  cobra.NoArgs,
	RunE:  runStructure,
}

func init() {
	rootCmd.AddCommand(contextCmd)
	rootCmd.AddCommand(structureCmd)
}

func runContext(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	user, err := client.GetUser(ctx)
	if err != nil {
		return err
	}
	stats, err := client.GetStats(ctx)
	if err != nil {
		return err
	}
	// Collection 0 with no query returns the most recent bookmarks first.
	recent, err := client.Search(ctx, "", 0)
	if err != nil {
		return err
	}
	collections, err := client.ListCollections(ctx)
	if err != nil {
		return err
	}

	var totalBookmarks float64
	for _, s := range stats {
		if s.ID == 0 {
			totalBookmarks = float64(s.Count)
			break
		}
	}

	var rootCollections []any
	for _, c := range collections {
		if c.Parent != nil {
			continue
		}
		rootCollections = append(rootCollections, toon.Object{
			{Key: "id", Value: float64(c.ID)},
			{Key: "title", Value: c.Title},
			{Key: "count", Value: float64(c.Count)},
		})
	}

	var activity []any
	for i, r := range recent {
		if i == 5 {
			break
		}
		activity = append(activity, toon.Object{
			{Key: "id", Value: float64(r.ID)},
			{Key: "title", Value: r.Title},
			{Key: "created", Value: r.Created},
		})
	}

	userID, _ := user.Get("_id")
	userName, _ := user.Get("fullName")

	return outputValue(toon.Object{
		{Key: "user", Value: []any{toon.Object{
			{Key: "id", Value: userID},
			{Key: "name", Value: userName},
		}}},
		{Key: "stats", Value: []any{toon.Object{
			{Key: "total_bookmarks", Value: totalBookmarks},
			{Key: "total_collections", Value: float64(len(collections))},
		}}},
		{Key: "structure", Value: toon.Object{
			{Key: "root_collections", Value: rootCollections},
		}},
		{Key: "recent_activity", Value: activity},
	})
}

func runStructure(cmd *cobra.Command, args []string) error {
	client, err := requireClient()
	if err != nil {
		return err
	}
	ctx, cancel := newContext()
	defer cancel()

	collections, err := client.ListCollections(ctx)
	if err != nil {
		return err
	}
	tags, err := client.ListTags(ctx)
	if err != nil {
		return err
	}

	var cols []any
	for _, c := range collections {
		var parentID any
		if c.Parent != nil {
			parentID = float64(c.Parent.ID)
		}
		cols = append(cols, toon.Object{
			{Key: "id", Value: float64(c.ID)},
			{Key: "title", Value: c.Title},
			{Key: "count", Value: float64(c.Count)},
			{Key: "parent_id", Value: parentID},
			{Key: "last_update", Value: c.LastUpdate},
		})
	}
	tagList := make([]any, 0, len(tags))
	for _, t := range tags {
		tagList = append(tagList, t)
	}

	return outputValue(toon.Object{
		{Key: "collections", Value: cols},
		{Key: "tags", Value: tagList},
	})
}
