package config

import (
	"errors"

	"github.com/ezrec/rvm/translate"
)

var f = translate.From

var (
	ErrMemorySize = errors.New(f("memory size out of range"))
	ErrDumpBytes  = errors.New(f("dump bytes negative"))
	ErrDumpWidth  = errors.New(f("dump width must be positive"))
	ErrColor      = errors.New(f("color must be auto, always or never"))
)

// ErrUnknownKey reports configuration keys that are not understood.
type ErrUnknownKey []string

func (err ErrUnknownKey) Error() string {
	return f("unknown keys %v", []string(err))
}
