package bridge

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/buffer"
	"github.com/Mr-Molina/esp8266-artnet-dmx512/stats"
)

// diagInterval throttles the off-by-one diagnostics so a fast source on the
// wrong universe does not flood the log.
const diagInterval = 2 * time.Second

// Handler takes validated frames from a network receiver, keeps the ones for
// the configured universe and writes them into the buffer pair.
type Handler struct {
	pair     *buffer.Pair
	universe func() uint16
	logger   *log.Logger
	rate     *stats.Rate

	lastDiag time.Time
	now      func() time.Time
}

// NewHandler returns a handler feeding pair. universe reports the configured
// universe id and is consulted per frame, so configuration changes take
// effect immediately.
func NewHandler(pair *buffer.Pair, universe func() uint16, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		pair:     pair,
		universe: universe,
		logger:   logger,
		rate:     stats.NewReceiveRate(),
		now:      time.Now,
	}
}

// OnFrame is the inbound callback bound to the network receiver. data is
// copied before the call returns and may be reused by the caller.
func (h *Handler) OnFrame(universe uint16, length uint16, sequence uint8, data []byte) {
	want := h.universe()
	if universe != want {
		h.diagnose(universe, want)
		return
	}
	if int(length) < len(data) {
		data = data[:length]
	}
	h.rate.Record()
	h.pair.Write(data)
}

// diagnose logs ignored universes. Off-by-one mismatches get a hint: 0-based
// vs 1-based universe numbering is the usual interoperability trap between
// controllers.
func (h *Handler) diagnose(universe, want uint16) {
	now := h.now()
	if now.Sub(h.lastDiag) < diagInterval {
		return
	}
	h.lastDiag = now

	switch {
	case universe+1 == want:
		h.logger.Warn("ignoring universe one below the configured one",
			"received", universe, "configured", want,
			"hint", "the source may use 0-based universe numbering")
	case universe == want+1:
		h.logger.Warn("ignoring universe one above the configured one",
			"received", universe, "configured", want,
			"hint", "the source may use 1-based universe numbering")
	default:
		h.logger.Debug("ignoring universe", "received", universe, "configured", want)
	}
}

// FramesPerSecond returns the accepted-frame rate, resetting the window on
// read once it is old and full enough.
func (h *Handler) FramesPerSecond() float64 {
	return h.rate.PerSecond()
}

// Frames returns the cumulative accepted-frame count.
func (h *Handler) Frames() uint64 {
	return h.rate.Total()
}
