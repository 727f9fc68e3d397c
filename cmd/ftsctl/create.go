package main

import (
	"fmt"

	"github.com/cuemby/ftscore/pkg/engine"
	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create INDEX",
	Short: "Create an index, or adopt an existing one, under the configured data directory",
	Long: `create opens INDEX under --data-dir and applies the searchable,
filterable, and sortable fields given on top of the index's saved
settings, whether or not the index already existed.

Examples:
  ftsctl create products --searchable title,description --filterable color,brand
  ftsctl create products --sortable price`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringSlice("searchable", nil, "comma-separated searchable field names")
	createCmd.Flags().StringSlice("filterable", nil, "comma-separated filterable field names")
	createCmd.Flags().StringSlice("sortable", nil, "comma-separated sortable field names")
}

func runCreate(cmd *cobra.Command, args []string) error {
	uid := args[0]
	searchable, _ := cmd.Flags().GetStringSlice("searchable")
	filterable, _ := cmd.Flags().GetStringSlice("filterable")
	sortable, _ := cmd.Flags().GetStringSlice("sortable")

	patch := settings.Patch{}
	if cmd.Flags().Changed("searchable") {
		patch.SearchableFields = settings.Set(searchable)
	}
	if cmd.Flags().Changed("filterable") {
		patch.FilterableFields = settings.Set(filterable)
	}
	if cmd.Flags().Changed("sortable") {
		patch.SortableFields = settings.Set(sortable)
	}

	idx, err := engine.CreateWithParams(cfg.DataDir, uid, patch, cfg.InvindexParams(), cfg.TransformRunSize)
	if err != nil {
		return fmt.Errorf("create %s: %w", uid, err)
	}
	defer idx.Close()

	fmt.Printf("index %q ready under %s\n", uid, cfg.DataDir)
	return nil
}
