package main

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/ftscore/pkg/types"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get INDEX ID [ID...]",
	Short: "Fetch documents by external id",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	uid := args[0]
	ids := make([]types.ExternalID, len(args)-1)
	for i, a := range args[1:] {
		ids[i] = types.ExternalID(a)
	}

	idx, err := openIndex(uid)
	if err != nil {
		return fmt.Errorf("open %s: %w", uid, err)
	}
	defer idx.Close()

	results, err := idx.GetDocuments(ids)
	if err != nil {
		return fmt.Errorf("get documents from %s: %w", uid, err)
	}

	sch, err := idx.Schema()
	if err != nil {
		return err
	}

	docs := make([]map[string]interface{}, len(results))
	for i, r := range results {
		docs[i] = decodeRecord(sch, r.Record)
	}

	out, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
