package dmx

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// CaptureSink records the generated waveform words to a WAV file (mono,
// 16 bit, SampleRate). Opening the capture in an audio editor shows the
// break, mark-after-break and byte framing of every transmitted frame, which
// is the practical way to check timing margins offline.
type CaptureSink struct {
	file *os.File
	enc  *wav.Encoder
	buf  *audio.IntBuffer
}

// NewCaptureSink creates (or truncates) the WAV file at path.
func NewCaptureSink(path string) (*CaptureSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("dmx: create capture %s: %w", path, err)
	}
	return &CaptureSink{
		file: file,
		enc:  wav.NewEncoder(file, SampleRate, 16, 1, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
			SourceBitDepth: 16,
		},
	}, nil
}

// WriteSamples appends the packet to the capture file.
func (c *CaptureSink) WriteSamples(words []uint16) error {
	if cap(c.buf.Data) < len(words) {
		c.buf.Data = make([]int, len(words))
	}
	c.buf.Data = c.buf.Data[:len(words)]
	for i, w := range words {
		c.buf.Data[i] = int(int16(w))
	}
	return c.enc.Write(c.buf)
}

// Close finalizes the WAV header and closes the file.
func (c *CaptureSink) Close() error {
	if c.enc == nil {
		return nil
	}
	err := c.enc.Close()
	c.enc = nil
	if cerr := c.file.Close(); err == nil {
		err = cerr
	}
	return err
}
