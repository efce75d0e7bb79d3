package dmx

import (
	"encoding/binary"
	"io"
)

// WriterSink streams words as little-endian byte pairs to an io.Writer,
// typically a character device that shifts 16-bit words at SampleRate.
type WriterSink struct {
	W io.Writer
}

// WriteSamples writes the whole packet in one Write call.
func (s WriterSink) WriteSamples(words []uint16) error {
	buf := make([]byte, 2*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint16(buf[2*i:], w)
	}
	_, err := s.W.Write(buf)
	return err
}

// MultiSink forwards every packet to each sink in order. It is used to
// capture or monitor the waveform while still driving the real output.
type MultiSink []SampleWriter

// WriteSamples stops at the first sink error.
func (m MultiSink) WriteSamples(words []uint16) error {
	for _, s := range m {
		if err := s.WriteSamples(words); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every closable sink, returning the first error.
func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
