package emulator

import (
	"io"
)

// Tape mirrors every byte sent by the out instruction to a host stream.
// The byte is still stored to memory at the port address.
type Tape struct {
	Output io.Writer

	Written int   // Bytes written since rewind.
	Err     error // First write error, after which the tape is stuck.

	one [1]byte
}

// Rewind clears the tape statistics.
func (tc *Tape) Rewind() {
	tc.Written = 0
	tc.Err = nil
}

// Send writes a byte to the output stream.
func (tc *Tape) Send(value byte) (err error) {
	if tc.Err != nil {
		err = tc.Err
		return
	}

	tc.one[0] = value
	_, err = tc.Output.Write(tc.one[:])
	if err != nil {
		tc.Err = err
		return
	}

	tc.Written++

	return
}
