package dmx

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// MonitorSink plays the encoder's words through the default audio output at
// the DMX sample rate. The line-out then carries the exact DMX waveform,
// which makes the framing visible on a scope or in an audio editor without
// touching the DMX line. Not a data path for fixtures.
type MonitorSink struct {
	stream *portaudio.Stream
	buf    []int16
}

// NewMonitorSink initializes portaudio and opens a mono output stream at
// SampleRate.
func NewMonitorSink() (*MonitorSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("dmx: portaudio: %w", err)
	}
	m := &MonitorSink{}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(SampleRate),
		portaudio.FramesPerBufferUnspecified, &m.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("dmx: open audio monitor: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("dmx: start audio monitor: %w", err)
	}
	m.stream = stream
	return m, nil
}

// WriteSamples blocks until the device has accepted the packet.
func (m *MonitorSink) WriteSamples(words []uint16) error {
	m.buf = m.buf[:0]
	for _, w := range words {
		m.buf = append(m.buf, int16(w))
	}
	return m.stream.Write()
}

// Close stops the stream and tears portaudio down.
func (m *MonitorSink) Close() error {
	if m.stream == nil {
		return nil
	}
	m.stream.Stop()
	err := m.stream.Close()
	m.stream = nil
	portaudio.Terminate()
	return err
}
