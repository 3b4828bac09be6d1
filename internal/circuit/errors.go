package circuit

import (
	"fmt"

	"github.com/pkg/errors"
)

// Construction errors. They are returned wrapped with the offending module
// name; test with errors.Is.
var (
	ErrDuplicateModule  = errors.New("duplicate module")
	ErrNoBroadcaster    = errors.New("no broadcaster module")
	ErrBroadcasterKind  = errors.New("broadcaster must be declared without a kind prefix")
	ErrMisnamedEntry    = errors.New("broadcaster kind is reserved for the module named broadcaster")
	ErrEmptyName        = errors.New("empty module name")
	ErrEmptyDestination = errors.New("empty destination name")
)

// ParseError reports a malformed line in a text circuit description.
type ParseError struct {
	Line int    // 1-based line number
	Text string // offending line, trimmed
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
