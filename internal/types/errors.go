package types

import "errors"

var (
	// ErrInputNotFound is returned when the input file or object does not exist.
	ErrInputNotFound = errors.New("input not found")
	// ErrNoMatches is returned when no input line matched the authentication pattern.
	ErrNoMatches = errors.New("no lines matched the authentication pattern")
	// ErrOutputNotWritable is returned when an output file or directory cannot be written.
	ErrOutputNotWritable = errors.New("output not writable")
)

// ExitCode maps an error to the process exit status: 2 for a missing input,
// 3 when nothing matched, 4 for an unwritable output and 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInputNotFound):
		return 2
	case errors.Is(err, ErrNoMatches):
		return 3
	case errors.Is(err, ErrOutputNotWritable):
		return 4
	default:
		return 1
	}
}
