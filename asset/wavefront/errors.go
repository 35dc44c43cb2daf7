package wavefront

import "errors"

var (
	ErrSyntax = errors.New("wavefront: syntax error")
)
