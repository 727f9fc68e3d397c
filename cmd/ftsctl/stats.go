package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats INDEX",
	Short: "Print document, field, and facet-cardinality counts for INDEX",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	uid := args[0]

	idx, err := openIndex(uid)
	if err != nil {
		return fmt.Errorf("open %s: %w", uid, err)
	}
	defer idx.Close()

	docs, err := idx.DocumentCount()
	if err != nil {
		return err
	}
	fields, err := idx.FieldCount()
	if err != nil {
		return err
	}
	facetNodes, err := idx.FacetNodeCounts()
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(struct {
		Documents  int            `json:"documents"`
		Fields     int            `json:"fields"`
		FacetNodes map[string]int `json:"facet_distinct_values"`
	}{docs, fields, facetNodes}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
