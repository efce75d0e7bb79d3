package dmx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureSinkWritesPlayableWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.wav")

	sink, err := NewCaptureSink(path)
	require.NoError(t, err)

	s := NewStream(sink, false, nil)
	require.NoError(t, s.Begin())
	require.NoError(t, s.Send([]byte{10, 20, 30}, MaxChannels))
	require.NoError(t, s.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.NotNil(t, buf)

	assert.Equal(t, SampleRate, buf.Format.SampleRate)
	assert.Equal(t, 1, buf.Format.NumChannels)
	//1 mbb + 1 sfb + 1 mab + 1 start code + 3 channels
	assert.Len(t, buf.Data, 7)
	assert.Equal(t, int(int16(0xffff)), buf.Data[0], "mark before break")
	assert.Equal(t, 0, buf.Data[1], "space for break")
}
