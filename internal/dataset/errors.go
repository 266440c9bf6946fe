package dataset

import (
	"errors"
	"fmt"
)

var (
	ErrDataSourceMissing = errors.New("data source missing")
	ErrSchemaViolation   = errors.New("schema violation")
)

// SchemaError pinpoints the offending cell of a malformed source.
type SchemaError struct {
	Line   int
	Column string
	Value  string
	Reason string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("line %d, column %q: %s (value %q)", e.Line, e.Column, e.Reason, e.Value)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
	default:
		return e.Reason
	}
}

func (e *SchemaError) Unwrap() error {
	return ErrSchemaViolation
}
