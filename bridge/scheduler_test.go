package bridge

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/buffer"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/dmx"
)

// fakeOutput records every frame handed to Send.
type fakeOutput struct {
	mu     sync.Mutex
	frames [][]byte
}

func (f *fakeOutput) Begin() error { return nil }

func (f *fakeOutput) Send(data []byte, maxChannels int) error {
	if len(data) == 0 || maxChannels <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeOutput) PacketsPerSecond() float64 { return 0 }

func (f *fakeOutput) Close() error { return nil }

func (f *fakeOutput) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func (f *fakeOutput) last() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

// simulate steps the scheduler through total simulated time in 1ms steps,
// writing a frame into the pair every writeEvery (0 = never).
func simulate(s *Scheduler, pair *buffer.Pair, total, writeEvery time.Duration) {
	start := time.Unix(5000, 0)
	for t := time.Duration(0); t <= total; t += time.Millisecond {
		if writeEvery > 0 && t%writeEvery == 0 {
			pair.Write([]byte{byte(t / writeEvery)})
		}
		s.step(start.Add(t))
	}
}

func TestSchedulerCadenceIndependentOfArrivals(t *testing.T) {
	const period = 23 * time.Millisecond
	want := int(10000 / 23) //434 sends over a simulated 10s run

	arrivals := map[string]time.Duration{
		"no arrivals":         0,
		"1 per second":        time.Second,
		"1000 per second":     time.Millisecond,
		"faster than cadence": 5 * time.Millisecond,
	}
	for name, writeEvery := range arrivals {
		t.Run(name, func(t *testing.T) {
			pair := buffer.NewPair()
			out := &fakeOutput{}
			s := NewScheduler(pair, out, period, func() int { return dmx.MaxChannels }, nil)

			simulate(s, pair, 10*time.Second, writeEvery)

			assert.InDelta(t, want, out.count(), 1, "sends over 10s at 23ms")
		})
	}
}

func TestSchedulerRepeatsLastFrame(t *testing.T) {
	pair := buffer.NewPair()
	out := &fakeOutput{}
	s := NewScheduler(pair, out, 23*time.Millisecond, func() int { return 8 }, nil)

	pair.Write([]byte{1, 2, 3})
	simulate(s, pair, time.Second, 0)

	require.Greater(t, out.count(), 10)
	for _, frame := range out.frames {
		assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0}, frame, "stale frames are re-sent as-is")
	}
}

func TestSchedulerClampsChannelCount(t *testing.T) {
	for _, tc := range []struct {
		configured int
		wantLen    int
	}{
		{configured: 0, wantLen: 1},
		{configured: -5, wantLen: 1},
		{configured: 3, wantLen: 3},
		{configured: 9999, wantLen: dmx.MaxChannels},
	} {
		pair := buffer.NewPair()
		out := &fakeOutput{}
		s := NewScheduler(pair, out, 23*time.Millisecond, func() int { return tc.configured }, nil)

		simulate(s, pair, 100*time.Millisecond, 0)

		require.NotZero(t, out.count())
		assert.Len(t, out.last(), tc.wantLen, "configured %d channels", tc.configured)
	}
}

func TestSchedulerRecordsJitter(t *testing.T) {
	pair := buffer.NewPair()
	out := &fakeOutput{}
	s := NewScheduler(pair, out, 23*time.Millisecond, func() int { return 1 }, nil)

	simulate(s, pair, time.Second, 0)

	j := s.Jitter()
	require.NotZero(t, j.Samples)
	assert.InDelta(t, 23.0, j.MeanMs, 1.0)
}
