package caribu

import (
	"errors"

	"github.com/christian34/caribu/scene"
)

var (
	ErrInvalidFormat = scene.ErrInvalidFormat
	ErrConfiguration = scene.ErrConfiguration
	ErrPrecedence    = errors.New("caribu: precedence error")
)
