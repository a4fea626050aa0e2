package table

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlattenJSON decodes a JSON document of the form {root: [objects...]}
// and flattens each object into a row. Nested objects become
// dot-separated column names ("engagement.likes"); arrays are rendered
// as compact JSON. Columns follow the document's key order, registered
// by first appearance across the records; cells missing from a record
// are empty strings.
func FlattenJSON(data []byte, root string) (*Table, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Reason: "decoding JSON document", Err: err}
	}

	raw, ok := doc[root]
	if !ok {
		return nil, &ParseError{
			Reason: fmt.Sprintf("root element %q not found", root),
		}
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	if tok, err := dec.Token(); err != nil || tok != json.Delim('[') {
		return nil, &ParseError{
			Reason: fmt.Sprintf("root element %q is not an object array", root),
			Err:    err,
		}
	}

	var columns []string
	seen := make(map[string]int)
	var flat []map[string]string

	for dec.More() {
		cells := make(map[string]string)
		var order []string
		if err := flattenObject(dec, "", cells, &order); err != nil {
			return nil, &ParseError{Reason: "decoding record", Err: err}
		}

		for _, k := range order {
			if _, ok := seen[k]; !ok {
				seen[k] = len(columns)
				columns = append(columns, k)
			}
		}
		flat = append(flat, cells)
	}

	t := New(columns...)
	for _, cells := range flat {
		row := make([]string, len(columns))
		for k, v := range cells {
			row[seen[k]] = v
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// flattenObject consumes one JSON object from the decoder's token
// stream, writing leaf values into cells under dot-separated keys and
// recording each key in document order.
func flattenObject(
	dec *json.Decoder, prefix string, cells map[string]string, order *[]string,
) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		if prefix != "" {
			key = prefix + "." + key
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		value := bytes.TrimSpace(raw)

		switch {
		case len(value) > 0 && value[0] == '{':
			sub := json.NewDecoder(bytes.NewReader(value))
			sub.UseNumber()
			if err := flattenObject(sub, key, cells, order); err != nil {
				return err
			}

		case len(value) > 0 && value[0] == '[':
			var buf bytes.Buffer
			if err := json.Compact(&buf, value); err != nil {
				return err
			}
			cells[key] = buf.String()
			*order = append(*order, key)

		default:
			cell, err := renderScalar(value)
			if err != nil {
				return err
			}
			cells[key] = cell
			*order = append(*order, key)
		}
	}

	// Consume the closing brace.
	_, err = dec.Token()
	return err
}

// renderScalar converts a raw JSON leaf to its string cell form.
// Numbers keep their source representation.
func renderScalar(raw []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}

	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case json.Number:
		return val.String(), nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	default:
		return fmt.Sprintf("%v", val), nil
	}
}
