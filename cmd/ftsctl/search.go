package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cuemby/ftscore/pkg/eval"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search INDEX QUERY",
	Short: "Run a search against INDEX and print the matching documents",
	Long: `search runs QUERY through the ranking pipeline and prints the
resolved documents, in rank order, as a JSON array.

Examples:
  ftsctl search products "iphone"
  ftsctl search products "shirt" --filter 'color = blue' --limit 5
  ftsctl search products "" --sort price:asc --limit 20`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("offset", 0, "number of ranked hits to skip")
	searchCmd.Flags().Int("limit", 20, "maximum number of hits to return")
	searchCmd.Flags().String("filter", "", "filter expression")
	searchCmd.Flags().StringSlice("sort", nil, "sort criteria, e.g. price:asc")
	searchCmd.Flags().String("distinct", "", "distinct field, overriding the index's configured one")
}

func runSearch(cmd *cobra.Command, args []string) error {
	uid, query := args[0], args[1]
	offset, _ := cmd.Flags().GetInt("offset")
	limit, _ := cmd.Flags().GetInt("limit")
	filter, _ := cmd.Flags().GetString("filter")
	sort, _ := cmd.Flags().GetStringSlice("sort")
	distinct, _ := cmd.Flags().GetString("distinct")

	idx, err := openIndex(uid)
	if err != nil {
		return fmt.Errorf("open %s: %w", uid, err)
	}
	defer idx.Close()

	res, err := idx.Search(context.Background(), eval.Request{
		Query:    query,
		Offset:   offset,
		Limit:    limit,
		Filter:   filter,
		Sort:     sort,
		Distinct: distinct,
	})
	if err != nil {
		return fmt.Errorf("search %s: %w", uid, err)
	}

	sch, err := idx.Schema()
	if err != nil {
		return err
	}

	hits := make([]map[string]interface{}, 0, len(res.DocIDs))
	for _, id := range res.DocIDs {
		rec, ok, err := idx.DocumentByID(id)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		hits = append(hits, decodeRecord(sch, rec))
	}

	out, err := json.MarshalIndent(struct {
		Hits    []map[string]interface{} `json:"hits"`
		Total   int                      `json:"total"`
		Partial bool                     `json:"partial"`
	}{hits, res.Total, res.Partial}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
