/*Package bridge connects the network receive path to the DMX output: the
Handler filters inbound frames into the buffer pair, the Scheduler drains the
pair onto a dmx.Output at a fixed cadence.*/
package bridge

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/buffer"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/dmx"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/stats"
)

// Scheduler transmits one DMX frame per period, fresh data or not. Fixtures
// time out and black out when the wire goes quiet, so a stale frame always
// beats no frame; the buffer pair guarantees the stale frame is at least a
// complete one.
type Scheduler struct {
	pair     *buffer.Pair
	out      dmx.Output
	period   time.Duration
	channels func() int
	logger   *log.Logger
	jitter   *stats.Jitter

	lastSend time.Time
	frame    [dmx.MaxChannels]byte
	now      func() time.Time
}

// NewScheduler returns a scheduler sending from pair to out every period.
// channels reports the configured active channel count and is consulted at
// every send; it is clamped to [1, dmx.MaxChannels].
func NewScheduler(pair *buffer.Pair, out dmx.Output, period time.Duration, channels func() int, logger *log.Logger) *Scheduler {
	if period <= 0 {
		period = dmx.FramePeriod
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		pair:     pair,
		out:      out,
		period:   period,
		channels: channels,
		logger:   logger,
		jitter:   stats.NewJitter(512),
		now:      time.Now,
	}
}

// Run drives the scheduler until ctx is cancelled. Send runs on this
// goroutine and blocks for the full frame duration; nothing else may touch
// the output while it does.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("dmx scheduler running", "period", s.period)
	ticker := time.NewTicker(s.period / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.step(now)
		}
	}
}

// step makes one scheduling decision at the given instant: idle-wait while
// less than a period has elapsed since the last send, transmit otherwise.
func (s *Scheduler) step(now time.Time) {
	if s.lastSend.IsZero() {
		s.lastSend = now
		return
	}
	elapsed := now.Sub(s.lastSend)
	if elapsed < s.period {
		return
	}
	s.jitter.Record(elapsed)
	s.lastSend = now

	//always read and always send, even without a fresh frame
	s.pair.ReadBack(s.frame[:])

	n := s.channels()
	if n < 1 {
		n = 1
	}
	if n > dmx.MaxChannels {
		n = dmx.MaxChannels
	}

	if err := s.out.Send(s.frame[:n], n); err != nil {
		s.logger.Error("dmx send failed", "err", err)
	}
}

// Jitter returns the send-interval statistics window.
func (s *Scheduler) Jitter() stats.JitterSummary {
	return s.jitter.Summary()
}
