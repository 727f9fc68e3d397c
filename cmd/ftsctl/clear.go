package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear INDEX",
	Short: "Remove every document from INDEX and rebuild an empty index",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	uid := args[0]

	idx, err := openIndex(uid)
	if err != nil {
		return fmt.Errorf("open %s: %w", uid, err)
	}
	defer idx.Close()

	if err := idx.ClearDocuments(context.Background()); err != nil {
		return fmt.Errorf("clear %s: %w", uid, err)
	}

	fmt.Printf("index %q cleared\n", uid)
	return nil
}
