package dmx

import "errors"

// ErrNotStarted is returned by Send when Begin was not called or failed.
var ErrNotStarted = errors.New("dmx: output not started")

// Output is one way of putting DMX512 frames on the wire.
type Output interface {
	//Begin initializes the transmission medium at the DMX512 data rate.
	Begin() error
	//Send transmits one complete frame: break, mark-after-break, start code
	//and up to maxChannels channel bytes from data. It returns after the
	//frame has departed or is fully queued to the medium. A nil or empty
	//data slice or a non-positive maxChannels is a silent no-op.
	Send(data []byte, maxChannels int) error
	//PacketsPerSecond returns the current send rate. Reading it resets the
	//accumulation window, so the value is an average over the previous
	//window, not an instantaneous rate.
	PacketsPerSecond() float64
	//Close releases the medium. The output cannot be reused afterwards.
	Close() error
}

// flipByte reverses the bit order of c. The stream encoder needs it because
// its words are shifted out most-significant-bit first while DMX bytes go on
// the wire least-significant-bit first. Applying it twice yields c again.
func flipByte(c byte) byte {
	c = ((c >> 1) & 0x55) | ((c << 1) & 0xaa)
	c = ((c >> 2) & 0x33) | ((c << 2) & 0xcc)
	return (c >> 4) | (c << 4)
}
