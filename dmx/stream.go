package dmx

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/stats"
)

// Word values for the stream encoder. Words are shifted out MSB-first, so a
// DMX byte sits bit-reversed in the high byte and the low byte carries its
// framing: one start bit (low) for the next byte followed by stop/idle bits.
const (
	markWord  = 0xffff //idle line, one word of mark
	spaceWord = 0x0000 //driven low, one word of break
	//mabWord is 3 high bits (12us of mark-after-break); its trailing low bit
	//doubles as the start bit of the start code byte.
	mabWord = 0b000001110
	//startCodeWord is the zero start code with stop bits and the next start
	//bit in the low byte.
	startCodeWord = 0b0000000011111110
	//byteFraming ends a channel byte with a stop bit run and the start bit
	//of the byte after it.
	byteFraming = 0x00fe
	//lastByteFraming ends the final channel byte with pure stop bits.
	lastByteFraming = 0x00ff
)

// SampleWriter streams 16-bit words at SampleRate words per second. A write
// returns once the words have been handed to the underlying medium.
type SampleWriter interface {
	WriteSamples(words []uint16) error
}

// Stream encodes DMX512 frames as a sequence of 16-bit timing words and
// pushes them through a SampleWriter: mark-before-break, space-for-break,
// mark-after-break, start code word and one word per channel byte.
type Stream struct {
	sink       SampleWriter
	safeTiming bool

	mbb []uint16
	sfb []uint16
	mab uint16
	//dataWords holds the start code word plus one word per channel; it is
	//re-sized only when the channel count changes.
	dataWords []uint16

	rate   *stats.Rate
	logger *log.Logger
}

// NewStream returns a stream encoder writing to sink. Safe timing widens the
// idle and break margins (10 instead of 1 mark words, 2 instead of 1 space
// words) for receivers that need them.
func NewStream(sink SampleWriter, safeTiming bool, logger *log.Logger) *Stream {
	if logger == nil {
		logger = log.Default()
	}
	s := &Stream{
		sink:       sink,
		safeTiming: safeTiming,
		rate:       stats.NewSendRate(),
		logger:     logger,
	}
	s.rebuildFraming()
	return s
}

// Begin prepares the framing words. The sink manages its own medium.
func (s *Stream) Begin() error {
	if s.sink == nil {
		return fmt.Errorf("dmx: stream output has no sample sink")
	}
	s.rebuildFraming()
	s.logger.Info("dmx stream output ready",
		"sampleRate", SampleRate, "safeTiming", s.safeTiming)
	return nil
}

// SetSafeTiming switches the timing mode. The framing word arrays change
// size between modes and are regenerated.
func (s *Stream) SetSafeTiming(on bool) {
	if on == s.safeTiming {
		return
	}
	s.safeTiming = on
	s.rebuildFraming()
}

func (s *Stream) rebuildFraming() {
	mbbSize, sfbSize := 1, 1
	if s.safeTiming {
		mbbSize, sfbSize = 10, 2
	}
	s.mbb = make([]uint16, mbbSize)
	for i := range s.mbb {
		s.mbb[i] = markWord
	}
	s.sfb = make([]uint16, sfbSize)
	for i := range s.sfb {
		s.sfb[i] = spaceWord
	}
	s.mab = mabWord
}

// Send builds one frame worth of words and streams it through the sink.
func (s *Stream) Send(data []byte, maxChannels int) error {
	if len(data) == 0 || maxChannels <= 0 {
		return nil
	}
	n := len(data)
	if n > maxChannels {
		n = maxChannels
	}

	words := s.packetWords(data[:n])
	if err := s.sink.WriteSamples(words); err != nil {
		return fmt.Errorf("dmx: stream write: %w", err)
	}
	s.rate.Record()
	return nil
}

// packetWords concatenates mbb + sfb + mab + start code + channel words into
// one contiguous buffer of exactly len(mbb)+len(sfb)+1+1+len(data) words.
// The concatenation buffer is per-send; sends happen at the frame cadence,
// not per byte, so the allocation stays off any hot path.
func (s *Stream) packetWords(data []byte) []uint16 {
	if len(s.dataWords) != len(data)+1 {
		s.dataWords = make([]uint16, len(data)+1)
	}
	s.dataWords[0] = startCodeWord
	for i, b := range data {
		framing := uint16(byteFraming)
		if i == len(data)-1 {
			framing = lastByteFraming
		}
		s.dataWords[i+1] = uint16(flipByte(b))<<8 | framing
	}

	words := make([]uint16, 0, len(s.mbb)+len(s.sfb)+1+len(s.dataWords))
	words = append(words, s.mbb...)
	words = append(words, s.sfb...)
	words = append(words, s.mab)
	words = append(words, s.dataWords...)
	return words
}

// PacketsPerSecond returns the send rate, resetting the window on read.
func (s *Stream) PacketsPerSecond() float64 {
	return s.rate.PerSecond()
}

// Close closes the sink if it is closable.
func (s *Stream) Close() error {
	if c, ok := s.sink.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
