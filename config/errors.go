package config

import "errors"

// ErrInvalidConfig is returned when configuration cannot be loaded or is invalid
var ErrInvalidConfig = errors.New("invalid configuration")
