/*Package dmx encodes channel frames into DMX512 (E1.11) wire signals.

A DMX512 frame is a break (the line held low for at least 92us), a
mark-after-break (the line high for at least 12us), a zero start code byte and
up to 512 channel bytes, each framed 8N2 at 250000 bit/s. Receivers expect the
stream to repeat continuously; a fixture that stops hearing frames will
typically black out, so the caller is expected to keep sending the last known
frame even when no new data arrives.

Two encoders are provided behind the Output interface:

UART drives a serial port through github.com/pkg/term. The break is produced
by the port itself: the bit rate is dropped so that a single zero byte holds
the line low long enough, then restored (see BaudBreak). Where the TX pin is
also mapped as a GPIO line, GPIOBreak can drive the break directly instead.

Stream emulates the serial framing entirely in data: every DMX byte becomes a
16-bit word (bit-reversed data in the high byte, start/stop framing bits in
the low byte) and the whole frame is pushed through a SampleWriter at
SampleRate words per second, so that 32 streamed bits span one DMX bit period
times 32. This suits peripherals and devices that shift fixed-width words at
a controlled rate. Sinks are provided for raw writers, for WAV capture and
for playing the waveform through an audio output.

Both encoders block until the frame has left (or is fully queued to) the
medium. There is no abort path: once a break has started, anything touching
the line or the bit-rate register before the frame completes would corrupt
the wire timing.*/
package dmx
