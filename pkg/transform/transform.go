package transform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cuemby/ftscore/pkg/document"
	"github.com/cuemby/ftscore/pkg/kv"
	"github.com/cuemby/ftscore/pkg/mergeiter"
	"github.com/cuemby/ftscore/pkg/schema"
	"github.com/cuemby/ftscore/pkg/types"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const defaultMaxRunSize = 2000

// Options configures one Apply call.
type Options struct {
	Format       types.InputFormat
	Method       types.IndexingMethod
	Data         []byte
	PrimaryKey   string // empty: auto-infer an id-suffixed field from the batch
	AutoGenerate bool   // synthesize a UUID when a record has no primary key value
	CSVDelimiter rune
	TempDir      string // "" uses the OS default temp directory
	MaxRunSize   int    // entries per external-sort run; 0 uses the default
}

// OutputDocument is one document transform produced, ready to be
// persisted and handed to the inverted-index builder.
type OutputDocument struct {
	InternalID types.DocID
	ExternalID types.ExternalID
	Record     *document.Record
	IsNew      bool
}

// Output is the full result of one Apply call.
type Output struct {
	Documents []OutputDocument
	Report    types.IndexingReport
	// NextDocID is the document id counter value after every allocation
	// made by this call; the caller persists it with document.SetNextDocID
	// once it has applied every document above.
	NextDocID types.DocID
}

// Apply runs the transform algorithm of §4.5 against opts.Data, consulting
// docs for existing external-id mappings and sch for field-id allocation.
// sch is mutated in place with any newly seen field names; the caller
// persists it (schema.Schema.Save) as part of applying the output.
func Apply(docs *kv.RoBucket, sch *schema.Schema, opts Options) (*Output, error) {
	records, err := decodeRecords(bytes.NewReader(opts.Data), opts.Format, opts.CSVDelimiter)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Output{NextDocID: document.PeekNextDocID(docs)}, nil
	}

	pkName := opts.PrimaryKey
	if pkName == "" {
		pkName, err = inferPrimaryKey(records)
		if err != nil {
			return nil, err
		}
	}

	entries := make([]entry, 0, len(records))
	for _, raw := range records {
		ext, err := resolvePrimaryKey(raw, pkName, opts.AutoGenerate)
		if err != nil {
			return nil, err
		}
		if !document.ValidateExternalID(ext) {
			return nil, fmt.Errorf("transform: external id %q does not match the primary key grammar: %w", ext, types.ErrInvalidPrimaryKeyType)
		}
		entries = append(entries, entry{key: []byte(ext), value: raw})
	}

	runSize := opts.MaxRunSize
	if runSize <= 0 {
		runSize = defaultMaxRunSize
	}
	runs, err := splitIntoRuns(opts.TempDir, entries, runSize)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, rf := range runs {
			rf.Delete()
		}
	}()

	sources := make([]mergeiter.Source, len(runs))
	readers := make([]*runReader, len(runs))
	defer func() {
		for _, rr := range readers {
			if rr != nil {
				rr.close()
			}
		}
	}()
	for i, rf := range runs {
		rr, err := rf.open()
		if err != nil {
			return nil, err
		}
		readers[i] = rr
		sources[i] = rr
	}

	merger, err := mergeiter.New(sources)
	if err != nil {
		return nil, err
	}

	out := &Output{}
	nextID := document.PeekNextDocID(docs)

	var curKey []byte
	var curGroup []json.RawMessage
	haveGroup := false

	flush := func() error {
		if !haveGroup {
			return nil
		}
		folded, err := fold(curGroup, opts.Method)
		if err != nil {
			return err
		}
		ext := types.ExternalID(curKey)
		doc, isNew, err := resolveDocument(docs, sch, ext, folded, opts.Method, &nextID)
		if err != nil {
			return err
		}
		out.Documents = append(out.Documents, *doc)
		out.Report.Indexed++
		if isNew {
			out.Report.NewDocuments++
		} else {
			out.Report.Replaced++
		}
		return nil
	}

	for {
		k, v, ok, err := merger.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if haveGroup && !bytes.Equal(k, curKey) {
			if err := flush(); err != nil {
				return nil, err
			}
			curGroup = nil
		}
		curKey = append(curKey[:0], k...)
		curGroup = append(curGroup, json.RawMessage(append([]byte(nil), v...)))
		haveGroup = true
	}
	if err := flush(); err != nil {
		return nil, err
	}

	sort.Slice(out.Documents, func(i, j int) bool { return out.Documents[i].InternalID < out.Documents[j].InternalID })
	out.NextDocID = nextID
	return out, nil
}

// fold combines a group of same-external-id records per method: Replace
// keeps only the last; Update folds left-to-right, last-writer-wins per
// field, preserving fields absent from later records.
func fold(group []json.RawMessage, method types.IndexingMethod) (map[string]json.RawMessage, error) {
	if method == types.ReplaceDocuments {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(group[len(group)-1], &obj); err != nil {
			return nil, fmt.Errorf("transform: decode record: %w: %v", types.ErrMalformedInput, err)
		}
		return obj, nil
	}
	merged := make(map[string]json.RawMessage)
	for _, raw := range group {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("transform: decode record: %w: %v", types.ErrMalformedInput, err)
		}
		for k, v := range obj {
			merged[k] = v
		}
	}
	return merged, nil
}

// resolveDocument assigns field ids for the folded record, resolves its
// internal id against the existing external-id map, and for Update on an
// existing document merges over the previously stored record so
// unmentioned fields survive.
func resolveDocument(docs *kv.RoBucket, sch *schema.Schema, ext types.ExternalID, folded map[string]json.RawMessage, method types.IndexingMethod, nextID *types.DocID) (*OutputDocument, bool, error) {
	newRecord := document.NewRecord()
	for _, lf := range flatten(folded) {
		id, err := sch.GetOrInsertField(lf.path)
		if err != nil {
			return nil, false, err
		}
		newRecord.Set(id, lf.value)
	}

	existingID, exists := document.ExternalToInternal(docs, ext)
	if !exists {
		id := *nextID
		*nextID++
		return &OutputDocument{InternalID: id, ExternalID: ext, Record: newRecord, IsNew: true}, true, nil
	}

	final := newRecord
	if method == types.UpdateDocuments {
		oldRecord, ok, err := document.GetDocument(docs, existingID)
		if err != nil {
			return nil, false, err
		}
		if ok {
			final = oldRecord.Clone()
			for _, f := range newRecord.Fields() {
				final.Set(f.ID, f.Value)
			}
		}
	}
	return &OutputDocument{InternalID: existingID, ExternalID: ext, Record: final, IsNew: false}, false, nil
}

// resolvePrimaryKey extracts the primary-key value from raw via gjson,
// without fully decoding the record, per §4.5 step 1.
func resolvePrimaryKey(raw json.RawMessage, pkName string, autoGenerate bool) (types.ExternalID, error) {
	res := gjson.GetBytes(raw, pkName)
	if !res.Exists() {
		if autoGenerate {
			return types.ExternalID(uuid.NewString()), nil
		}
		return "", fmt.Errorf("transform: record has no %q field: %w", pkName, types.ErrMissingPrimaryKeyValue)
	}
	switch res.Type {
	case gjson.String:
		return types.ExternalID(res.Str), nil
	case gjson.Number:
		return types.ExternalID(strconv.FormatFloat(res.Num, 'f', -1, 64)), nil
	default:
		return "", fmt.Errorf("transform: primary key %q must be a string or number: %w", pkName, types.ErrInvalidPrimaryKeyType)
	}
}

// inferPrimaryKey picks the primary key field when the caller did not fix
// one: the field named exactly "id" if every record carries it, else the
// alphabetically first id-suffixed field name common to every record.
func inferPrimaryKey(records []json.RawMessage) (string, error) {
	var common map[string]struct{}
	for _, raw := range records {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", fmt.Errorf("transform: decode record: %w: %v", types.ErrMalformedInput, err)
		}
		candidates := make(map[string]struct{})
		for name := range obj {
			if isIDLike(name) {
				candidates[name] = struct{}{}
			}
		}
		if common == nil {
			common = candidates
			continue
		}
		for name := range common {
			if _, ok := candidates[name]; !ok {
				delete(common, name)
			}
		}
	}
	if len(common) == 0 {
		return "", fmt.Errorf("transform: no common id-like field across the batch: %w", types.ErrInconsistentPrimaryKeyAcrossBatch)
	}
	if _, ok := common["id"]; ok {
		return "id", nil
	}
	names := make([]string, 0, len(common))
	for name := range common {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0], nil
}

func isIDLike(name string) bool {
	lower := strings.ToLower(name)
	return lower == "id" || strings.HasSuffix(lower, "id")
}

func splitIntoRuns(dir string, entries []entry, maxRunSize int) ([]*runFile, error) {
	var runs []*runFile
	for len(entries) > 0 {
		n := maxRunSize
		if n > len(entries) {
			n = len(entries)
		}
		chunk := append([]entry(nil), entries[:n]...)
		entries = entries[n:]
		rf, err := writeRun(dir, chunk)
		if err != nil {
			for _, prior := range runs {
				prior.Delete()
			}
			return nil, err
		}
		runs = append(runs, rf)
	}
	return runs, nil
}
