// FILE: lixenwraith/lconfig/errors.go
package lconfig

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/warnings.v0"
)

// Error kinds returned by this package. Callers match them with errors.Is;
// the typed errors below carry position and context and unwrap to these.
var (
	ErrInvalidLine          = errors.New("invalid line")
	ErrInvalidKey           = errors.New("invalid key")
	ErrDuplicateSection     = errors.New("duplicate section")
	ErrMissingSection       = errors.New("section not found")
	ErrMissingOption        = errors.New("option not found")
	ErrInterpolationMissing = errors.New("interpolation reference not found")
	ErrInterpolationCycle   = errors.New("interpolation cycle")
	ErrInterpolationSyntax  = errors.New("bad interpolation syntax")
	ErrUnknownConverter     = errors.New("unknown converter")
	ErrUnknownAdapter       = errors.New("unknown adapter")
	ErrConversion           = errors.New("conversion failed")
	ErrConfigNotFound       = errors.New("configuration file not found")
	ErrUnsupportedFormat    = errors.New("unsupported configuration format")
	ErrInvalidEncoding      = errors.New("invalid encoding")

	// ErrSkipAssignment is returned by an Adapter to reject an assignment
	// without reporting an error to the caller of Set.
	ErrSkipAssignment = errors.New("assignment skipped")
)

// ParseError reports a line that could not be applied while reading a source.
type ParseError struct {
	Source string // source name, file path or "<string>"
	Line   int    // 1-based
	Text   string // the stripped line
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.Source, e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LookupError reports a plain lookup of an absent section or option.
type LookupError struct {
	Section string
	Option  string
	Err     error
}

func (e *LookupError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("%v: [%s]", e.Err, e.Section)
	}
	return fmt.Sprintf("%v: [%s] %s", e.Err, e.Section, e.Option)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// InterpolationError reports a failed reference expansion. Chain holds the
// "section:option" pairs that were being expanded, outermost first.
type InterpolationError struct {
	Section   string
	Option    string
	Reference string
	Chain     []string
	Err       error
}

func (e *InterpolationError) Error() string {
	msg := fmt.Sprintf("%v: [%s] %s", e.Err, e.Section, e.Option)
	if e.Reference != "" {
		msg += fmt.Sprintf(" references ${%s}", e.Reference)
	}
	if len(e.Chain) > 1 {
		msg += " (via " + strings.Join(e.Chain, " -> ") + ")"
	}
	return msg
}

func (e *InterpolationError) Unwrap() error {
	return e.Err
}

// FatalOnly filters out warnings collected by the Builder, returning nil when
// every collected problem was non-fatal.
func FatalOnly(err error) error {
	return warnings.FatalOnly(err)
}

// missingFile marks an optional file source that does not exist.
type missingFile struct {
	path string
}

func (e missingFile) Error() string {
	return "optional configuration file not found: " + e.path
}

func (e missingFile) Unwrap() error {
	return ErrConfigNotFound
}

// isFatal classifies errors collected during Build. A missing optional file is
// the only non-fatal condition.
func isFatal(err error) bool {
	var m missingFile
	return !errors.As(err, &m)
}
