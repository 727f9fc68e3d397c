package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cuemby/ftscore/pkg/transform"
	"github.com/cuemby/ftscore/pkg/types"
	"github.com/spf13/cobra"
)

var addDocumentsCmd = &cobra.Command{
	Use:   "add-documents INDEX FILE",
	Short: "Index the documents in FILE, replacing or updating by primary key",
	Long: `add-documents reads FILE (JSON array, NDJSON, or CSV per --format)
and folds its records into INDEX.

Examples:
  ftsctl add-documents products batch.json
  ftsctl add-documents products batch.csv --format csv --method update`,
	Args: cobra.ExactArgs(2),
	RunE: runAddDocuments,
}

func init() {
	addDocumentsCmd.Flags().String("format", "json", "input format: json, ndjson, csv")
	addDocumentsCmd.Flags().String("method", "replace", "indexing method: replace, update")
	addDocumentsCmd.Flags().String("primary-key", "", "primary key field name (auto-inferred if empty)")
	addDocumentsCmd.Flags().Bool("auto-generate", true, "synthesize an id for documents missing a primary key value")
	addDocumentsCmd.Flags().String("csv-delimiter", ",", "CSV field delimiter")
}

func runAddDocuments(cmd *cobra.Command, args []string) error {
	uid, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	format, _ := cmd.Flags().GetString("format")
	method, _ := cmd.Flags().GetString("method")
	primaryKey, _ := cmd.Flags().GetString("primary-key")
	autoGenerate, _ := cmd.Flags().GetBool("auto-generate")
	delimiter, _ := cmd.Flags().GetString("csv-delimiter")

	var inputFormat types.InputFormat
	switch format {
	case "json":
		inputFormat = types.FormatJSON
	case "ndjson":
		inputFormat = types.FormatNDJSON
	case "csv":
		inputFormat = types.FormatCSV
	default:
		return fmt.Errorf("unknown format %q (want json, ndjson, or csv)", format)
	}

	var indexingMethod types.IndexingMethod
	switch method {
	case "replace":
		indexingMethod = types.ReplaceDocuments
	case "update":
		indexingMethod = types.UpdateDocuments
	default:
		return fmt.Errorf("unknown method %q (want replace or update)", method)
	}

	var delimiterRune rune = ','
	if len(delimiter) > 0 {
		delimiterRune = []rune(delimiter)[0]
	}

	idx, err := openIndex(uid)
	if err != nil {
		return fmt.Errorf("open %s: %w", uid, err)
	}
	defer idx.Close()

	report, err := idx.AddDocuments(context.Background(), transform.Options{
		Format:       inputFormat,
		Method:       indexingMethod,
		Data:         data,
		PrimaryKey:   primaryKey,
		AutoGenerate: autoGenerate,
		CSVDelimiter: delimiterRune,
	})
	if err != nil {
		return fmt.Errorf("add documents to %s: %w", uid, err)
	}

	fmt.Println(report.String())
	return nil
}
