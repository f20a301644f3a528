package memory

import (
	"errors"

	"github.com/ezrec/rvm/translate"
)

var f = translate.From

var (
	ErrImageTooLarge = errors.New(f("image larger than memory"))
)

// ErrSize reports the size of a rejected image.
type ErrSize struct {
	Size     int
	Capacity int
}

func (err ErrSize) Error() string {
	return f("%v bytes exceeds capacity of %v bytes", err.Size, err.Capacity)
}
