package extract

import (
	"fmt"
)

// Format is the declared content type of a source, selecting which
// extraction strategy applies to its bytes.
type Format string

const (
	FormatPlain  Format = "plain"
	FormatJSON   Format = "json"
	FormatMarkup Format = "markup"
)

// MalformedSourceError is returned when source bytes cannot be parsed in
// their declared format. Extraction never returns partial results alongside
// it.
type MalformedSourceError struct {
	Source string
	Format Format
	Err    error
}

func (e *MalformedSourceError) Error() string {
	return fmt.Sprintf("malformed %s source %s: %v", e.Format, e.Source, e.Err)
}

func (e *MalformedSourceError) Unwrap() error {
	return e.Err
}
