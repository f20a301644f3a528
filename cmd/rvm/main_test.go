package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/rvm/cpu"
	"github.com/ezrec/rvm/emulator"
)

func TestUnreported(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(unreported(nil))

	// The CPU logs undefined opcodes itself.
	err := error(&emulator.ErrRuntime{Addr: 4, Err: cpu.ErrOpcode(0xee)})
	assert.NoError(unreported(err))

	other := errors.New("tape jammed")
	assert.Equal(other, unreported(other))

	err = &emulator.ErrRuntime{Addr: 4, Err: other}
	assert.Equal(err, unreported(err))
}
