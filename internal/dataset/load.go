package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
)

// ParseError reports an upload that could not be decoded into tabular form.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("cannot load %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("cannot load file: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load parses an uploaded file into a Dataset. The declared filename decides
// the format: .csv/.tsv, .xlsx/.xls, or .json. Anything else is a ParseError.
func Load(name string, r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{File: name, Err: fmt.Errorf("read upload: %w", err)}
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".csv", ".tsv":
		return loadCSV(name, data, ext)
	case ".xlsx", ".xls":
		return loadXLSX(name, data)
	case ".json":
		return loadJSON(name, data)
	default:
		return nil, &ParseError{File: name, Err: fmt.Errorf("unsupported extension %q (want .csv, .tsv, .xlsx, .xls or .json)", ext)}
	}
}

func loadCSV(name string, data []byte, ext string) (*Dataset, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if ext == ".tsv" {
		r.Comma = '\t'
	}
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{File: name, Err: errors.New("empty file")}
		}
		return nil, &ParseError{File: name, Err: fmt.Errorf("read header: %w", err)}
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{File: name, Err: fmt.Errorf("read row %d: %w", len(rows)+2, err)}
		}
		row := make([]string, len(rec))
		copy(row, rec)
		rows = append(rows, row)
	}
	return build(filepath.Base(name), header, rows), nil
}

// loadJSON accepts the two tabular JSON shapes: a list of records
// ([{"a":1},...]) or a record of column arrays ({"a":[1,2],...}).
func loadJSON(name string, data []byte) (*Dataset, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &ParseError{File: name, Err: errors.New("empty file")}
	}
	if trimmed[0] == '[' {
		var records []map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, &ParseError{File: name, Err: fmt.Errorf("not a list of records: %w", err)}
		}
		// Column order follows first appearance across records.
		var header []string
		seen := map[string]int{}
		for _, rec := range records {
			keys := make([]string, 0, len(rec))
			for k := range rec {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				if _, ok := seen[k]; !ok {
					seen[k] = len(header)
					header = append(header, k)
				}
			}
		}
		rows := make([][]string, len(records))
		for i, rec := range records {
			row := make([]string, len(header))
			for k, raw := range rec {
				row[seen[k]] = jsonScalar(raw)
			}
			rows[i] = row
		}
		return build(filepath.Base(name), header, rows), nil
	}
	var colsArr map[string][]json.RawMessage
	if err := json.Unmarshal(trimmed, &colsArr); err != nil {
		return nil, &ParseError{File: name, Err: fmt.Errorf("not a record of columns: %w", err)}
	}
	if len(colsArr) == 0 {
		return nil, &ParseError{File: name, Err: errors.New("no columns")}
	}
	header := make([]string, 0, len(colsArr))
	for k := range colsArr {
		header = append(header, k)
	}
	sort.Strings(header)
	nrows := 0
	for _, vals := range colsArr {
		if len(vals) > nrows {
			nrows = len(vals)
		}
	}
	rows := make([][]string, nrows)
	for i := range rows {
		row := make([]string, len(header))
		for j, k := range header {
			if vals := colsArr[k]; i < len(vals) {
				row[j] = jsonScalar(vals[i])
			}
		}
		rows[i] = row
	}
	return build(filepath.Base(name), header, rows), nil
}

// jsonScalar renders a raw JSON value as cell text. Strings lose their
// quotes; null becomes missing.
func jsonScalar(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	t := strings.TrimSpace(string(raw))
	if t == "null" {
		return ""
	}
	return t
}
