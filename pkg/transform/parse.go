package transform

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cuemby/ftscore/pkg/types"
)

// decodeRecords splits a byte stream in one of the accepted formats (§6)
// into one json.RawMessage per record, each a JSON object. It does not
// decode field values; resolvePrimaryKey peeks into these with gjson
// before any record is fully unmarshaled.
func decodeRecords(r io.Reader, format types.InputFormat, csvDelimiter rune) ([]json.RawMessage, error) {
	switch format {
	case types.FormatJSON:
		return decodeJSONArray(r)
	case types.FormatNDJSON:
		return decodeNDJSON(r)
	case types.FormatCSV:
		return decodeCSV(r, csvDelimiter)
	default:
		return nil, fmt.Errorf("transform: format %d: %w", format, types.ErrUnsupportedFormat)
	}
}

func decodeJSONArray(r io.Reader) ([]json.RawMessage, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("transform: decode json array: %w: %v", types.ErrMalformedInput, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("transform: expected a top-level JSON array: %w", types.ErrMalformedInput)
	}

	var out []json.RawMessage
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("transform: decode json record: %w: %v", types.ErrMalformedInput, err)
		}
		out = append(out, raw)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("transform: unterminated json array: %w: %v", types.ErrMalformedInput, err)
	}
	return out, nil
}

func decodeNDJSON(r io.Reader) ([]json.RawMessage, error) {
	var out []json.RawMessage
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, json.RawMessage(append([]byte(nil), line...)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("transform: read ndjson: %w: %v", types.ErrMalformedInput, err)
	}
	return out, nil
}

// columnType is the typed-header suffix CSV columns may declare (§6).
type columnType int

const (
	colString columnType = iota
	colNumber
	colStringArray
)

func decodeCSV(r io.Reader, delimiter rune) ([]json.RawMessage, error) {
	cr := csv.NewReader(r)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("transform: read csv header: %w: %v", types.ErrMalformedInput, err)
	}

	names := make([]string, len(header))
	types_ := make([]columnType, len(header))
	for i, h := range header {
		name, ct := parseColumnHeader(h)
		names[i] = name
		types_[i] = ct
	}

	var out []json.RawMessage
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transform: read csv row: %w: %v", types.ErrMalformedInput, err)
		}
		fields := make(map[string]json.RawMessage, len(row))
		for i, cell := range row {
			if i >= len(names) {
				break
			}
			encoded, err := encodeCSVCell(cell, types_[i])
			if err != nil {
				return nil, fmt.Errorf("transform: csv column %q: %w", names[i], err)
			}
			fields[names[i]] = encoded
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, fmt.Errorf("transform: encode csv row: %w: %v", types.ErrMalformedInput, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

func parseColumnHeader(h string) (string, columnType) {
	switch {
	case strings.HasSuffix(h, ":number"):
		return strings.TrimSuffix(h, ":number"), colNumber
	case strings.HasSuffix(h, ":string[]"):
		return strings.TrimSuffix(h, ":string[]"), colStringArray
	case strings.HasSuffix(h, ":string"):
		return strings.TrimSuffix(h, ":string"), colString
	default:
		return h, colString
	}
}

func encodeCSVCell(cell string, ct columnType) (json.RawMessage, error) {
	switch ct {
	case colNumber:
		if cell == "" {
			return json.RawMessage("null"), nil
		}
		f, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number: %w", cell, types.ErrMalformedInput)
		}
		return json.Marshal(f)
	case colStringArray:
		if cell == "" {
			return json.Marshal([]string{})
		}
		parts := strings.Split(cell, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return json.Marshal(parts)
	default:
		return json.Marshal(cell)
	}
}
