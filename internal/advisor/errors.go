package advisor

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaError indicates required columns are absent from the input header.
// It is fatal for the whole run.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	if e == nil || len(e.Missing) == 0 {
		return "invalid input schema"
	}
	quoted := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		quoted[i] = fmt.Sprintf("%q", m)
	}
	return fmt.Sprintf("invalid input schema: missing required column(s) %s", strings.Join(quoted, ", "))
}

// ErrEmptyInput indicates the input contained no table at all.
var ErrEmptyInput = errors.New("input contains no table")

// IsSchemaError reports whether err wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
