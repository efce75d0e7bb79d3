package dmx

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/term"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/stats"
)

// BreakStrategy produces the break / mark-after-break pair that opens every
// DMX512 frame. Implementations block until the line is back at mark.
type BreakStrategy interface {
	SendBreak() error
}

// UART sends DMX512 frames through a serial port. The port only frames bytes
// 8N1, so a short busy-wait after every byte supplies the second stop bit.
type UART struct {
	device string
	port   *term.Term
	brk    BreakStrategy
	rate   *stats.Rate
	logger *log.Logger
}

// NewUART returns a UART encoder for the given serial device. If brk is nil
// the break is generated with the port's own bit rate, see BaudBreak.
func NewUART(device string, brk BreakStrategy, logger *log.Logger) *UART {
	if logger == nil {
		logger = log.Default()
	}
	return &UART{
		device: device,
		brk:    brk,
		rate:   stats.NewSendRate(),
		logger: logger,
	}
}

// Begin opens the serial device raw at the DMX512 data rate.
func (u *UART) Begin() error {
	port, err := term.Open(u.device, term.RawMode)
	if err != nil {
		return fmt.Errorf("dmx: open %s: %w", u.device, err)
	}
	if err := port.SetSpeed(BitRate); err != nil {
		port.Close()
		return fmt.Errorf("dmx: set %d baud on %s: %w", BitRate, u.device, err)
	}
	u.port = port
	if u.brk == nil {
		u.brk = &BaudBreak{port: port}
	}
	u.logger.Info("dmx uart output ready", "device", u.device, "baud", BitRate)
	return nil
}

// Send transmits one frame. It blocks for the full frame duration and must
// not run concurrently with itself; the output scheduler is its only caller.
func (u *UART) Send(data []byte, maxChannels int) error {
	if u.port == nil {
		return ErrNotStarted
	}
	if len(data) == 0 || maxChannels <= 0 {
		return nil
	}

	if err := u.brk.SendBreak(); err != nil {
		return fmt.Errorf("dmx: break: %w", err)
	}

	if err := u.writeByte(StartCode); err != nil {
		return err
	}
	spinWait(settleMicros * time.Microsecond)

	n := len(data)
	if n > maxChannels {
		n = maxChannels
	}
	for i := 0; i < n; i++ {
		if err := u.writeByte(data[i]); err != nil {
			return err
		}
		spinWait(interByteMicros * time.Microsecond)
	}

	u.rate.Record()
	return nil
}

func (u *UART) writeByte(b byte) error {
	buf := [1]byte{b}
	if _, err := u.port.Write(buf[:]); err != nil {
		return fmt.Errorf("dmx: write %s: %w", u.device, err)
	}
	return nil
}

// PacketsPerSecond returns the send rate, resetting the window on read.
func (u *UART) PacketsPerSecond() float64 {
	return u.rate.PerSecond()
}

// Close restores and closes the serial port.
func (u *UART) Close() error {
	if u.port == nil {
		return nil
	}
	port := u.port
	u.port = nil
	port.Restore()
	return port.Close()
}

// BaudBreak generates the break with the serial port itself: a zero byte
// written at a lower bit rate keeps the line low for 9 bit periods, which is
// indistinguishable from a driven break on the wire. The stop bits and the
// rate restore supply the mark-after-break.
type BaudBreak struct {
	port *term.Term
}

// NewBaudBreak returns the bit-rate-switch break strategy for port.
func NewBaudBreak(port *term.Term) *BaudBreak {
	return &BaudBreak{port: port}
}

// SendBreak holds the line low for 93.75us and back at mark for at least
// MABMicros.
func (b *BaudBreak) SendBreak() error {
	if err := b.port.SetSpeed(breakBaud); err != nil {
		return err
	}
	zero := [1]byte{0x00}
	if _, err := b.port.Write(zero[:]); err != nil {
		return err
	}
	//the zero byte must have drained before the bit rate changes under it
	spinWait(breakByteMicros * time.Microsecond)
	if err := b.port.SetSpeed(BitRate); err != nil {
		return err
	}
	spinWait(MABMicros * time.Microsecond)
	return nil
}
