package scene

import "errors"

var (
	ErrInvalidFormat = errors.New("scene: invalid format")
	ErrConfiguration = errors.New("scene: configuration error")
)
