package main

import (
	"context"
	"fmt"

	"github.com/cuemby/ftscore/pkg/types"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete INDEX ID [ID...]",
	Short: "Delete documents by external id and reindex",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	n, err := idx.DeleteDocuments(context.Background(), ids)
	if err != nil {
		return fmt.Errorf("delete documents from %s: %w", uid, err)
	}

	fmt.Printf("removed %d document(s)\n", n)
	return nil
}
