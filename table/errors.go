package table

import "fmt"

// ParseError indicates that a CSV or JSON payload could not be parsed
// into a Table.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing table: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("parsing table: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
