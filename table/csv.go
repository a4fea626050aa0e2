package table

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// ParseCSV reads delimited text into a Table. The first record is the
// header. Empty input yields an empty table (zero rows, zero columns)
// rather than an error, so callers can distinguish "no rows" from
// "request failed". Inconsistent records return a *ParseError.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, &ParseError{Reason: "reading header", Err: err}
	}

	t := New(header...)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Reason: "reading record", Err: err}
		}
		t.Rows = append(t.Rows, record)
	}

	return t, nil
}

// ParseCSVWithHeader parses CSV content whose header row is not the first
// line, locating it by scanning for the first line that contains every
// key column name. Mailed reports often carry preamble lines above the
// real header. An empty keyColumns slice behaves like ParseCSV.
func ParseCSVWithHeader(r io.Reader, keyColumns []string) (*Table, error) {
	if len(keyColumns) == 0 {
		return ParseCSV(r)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Reason: "reading content", Err: err}
	}

	lines := strings.Split(string(raw), "\n")
	headerIndex := -1
	for i, line := range lines {
		if containsAll(line, keyColumns) {
			headerIndex = i
			break
		}
	}
	if headerIndex < 0 {
		return nil, &ParseError{
			Reason: "header row with key columns " +
				strings.Join(keyColumns, ", ") + " not found",
		}
	}

	body := strings.Join(lines[headerIndex:], "\n")
	return ParseCSV(strings.NewReader(body))
}

func containsAll(line string, keys []string) bool {
	for _, key := range keys {
		if !strings.Contains(line, key) {
			return false
		}
	}
	return true
}
