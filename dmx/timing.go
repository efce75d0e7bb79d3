package dmx

import "time"

// Physical layer timing from the DMX512 standard (E1.11).
const (
	//BitRate is the DMX512 data rate in bit/s.
	BitRate = 250000
	//BitMicros is the duration of one DMX bit in microseconds.
	BitMicros = 4
	//BreakMicros is the minimum duration of the break in microseconds.
	BreakMicros = 92
	//MABMicros is the minimum duration of the mark-after-break in microseconds.
	MABMicros = 12
	//MaxChannels is the number of channels in one DMX512 universe.
	MaxChannels = 512
	//StartCode is the start code for dimmer data. It is the only start code
	//this package transmits.
	StartCode = 0x00
	//SampleRate is the word rate of the stream encoder: 32 streamed bits per
	//16-bit word pair make up 250000 bit/s, so 250000/32 words per second.
	SampleRate = BitRate / 32
	//FramePeriod is the default send cadence, roughly 44 frames per second.
	FramePeriod = 23 * time.Millisecond
)

// Break generation via the bit-rate switch. A zero byte at breakBaud holds
// the line low for 9 bit periods (start bit plus 8 data bits), 93.75us at
// 96000 bit/s, above the 92us floor. The stop bits and the latency of
// restoring the rate cover the 12us mark-after-break with margin.
const (
	breakBaud = 96000
	//breakByteMicros is the full 8N2 byte time at breakBaud, rounded up.
	//The transmitter must have drained the zero byte before the bit rate is
	//touched again.
	breakByteMicros = 125
	//settleMicros is the pause after the start code; marginal receivers
	//resynchronize during it.
	settleMicros = 20
	//interByteMicros stands in for the second stop bit: the raw port frames
	//bytes 8N1 and one extra bit period of idle line restores 8N2 timing.
	interByteMicros = 5
)

// spinWait blocks for at least d without involving the runtime timer.
// Sub-50us deadlines are not reliably hit by time.Sleep on a commodity
// scheduler and the break/mark timings sit well below that.
func spinWait(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}
