package kernel

import "errors"

var (
	ErrUnsupportedMode = errors.New("kernel: unsupported light-transport mode")
	ErrMisaligned      = errors.New("kernel: results are not aligned with the input triangles")
)
