package canestra

import (
	"errors"
	"fmt"
)

var (
	ErrSyntax = errors.New("canestra: syntax error")
)

// Generate a parse error pointing at a file line.
func emitError(file string, line int, msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)
	if file != "" {
		return fmt.Errorf("%w: [%s: %d] error: %s", ErrSyntax, file, line, msg)
	}
	return fmt.Errorf("%w: [line %d] error: %s", ErrSyntax, line, msg)
}
