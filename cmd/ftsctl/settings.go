package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuemby/ftscore/pkg/settings"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or change an index's settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show INDEX",
	Short: "Print an index's current settings as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set INDEX",
	Short: "Patch an index's settings, reindexing if required",
	Long: `set applies only the flags given; any field left unset keeps its
current value.

Examples:
  ftsctl settings set products --filterable color,brand,price
  ftsctl settings set products --criteria words,typo,proximity,exactness`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsSet,
}

func init() {
	settingsSetCmd.Flags().StringSlice("searchable", nil, "searchable field names")
	settingsSetCmd.Flags().StringSlice("filterable", nil, "filterable field names")
	settingsSetCmd.Flags().StringSlice("sortable", nil, "sortable field names")
	settingsSetCmd.Flags().StringSlice("displayed", nil, "displayed field names")
	settingsSetCmd.Flags().StringSlice("criteria", nil, "ranking criteria order")
	settingsSetCmd.Flags().String("distinct", "", "distinct field name")
	settingsSetCmd.Flags().Bool("authorize-typos", true, "allow typo tolerance")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	uid := args[0]

	idx, err := openIndex(uid)
	if err != nil {
		return fmt.Errorf("open %s: %w", uid, err)
	}
	defer idx.Close()

	s, err := idx.Settings()
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	uid := args[0]

	patch := settings.Patch{}
	if cmd.Flags().Changed("searchable") {
		v, _ := cmd.Flags().GetStringSlice("searchable")
		patch.SearchableFields = settings.Set(v)
	}
	if cmd.Flags().Changed("filterable") {
		v, _ := cmd.Flags().GetStringSlice("filterable")
		patch.FilterableFields = settings.Set(v)
	}
	if cmd.Flags().Changed("sortable") {
		v, _ := cmd.Flags().GetStringSlice("sortable")
		patch.SortableFields = settings.Set(v)
	}
	if cmd.Flags().Changed("displayed") {
		v, _ := cmd.Flags().GetStringSlice("displayed")
		patch.DisplayedFields = settings.Set(v)
	}
	if cmd.Flags().Changed("criteria") {
		v, _ := cmd.Flags().GetStringSlice("criteria")
		patch.Criteria = settings.Set(v)
	}
	if cmd.Flags().Changed("distinct") {
		v, _ := cmd.Flags().GetString("distinct")
		patch.DistinctField = settings.Set(v)
	}
	if cmd.Flags().Changed("authorize-typos") {
		v, _ := cmd.Flags().GetBool("authorize-typos")
		patch.AuthorizeTypos = settings.Set(v)
	}

	idx, err := openIndex(uid)
	if err != nil {
		return fmt.Errorf("open %s: %w", uid, err)
	}
	defer idx.Close()

	res, err := idx.UpdateSettings(context.Background(), patch)
	if err != nil {
		return fmt.Errorf("update settings for %s: %w", uid, err)
	}

	if res.ReindexRequired {
		fmt.Printf("settings updated, reindexed (%v)\n", res.ReindexReason)
	} else {
		fmt.Println("settings updated")
	}
	return nil
}
