package dmx

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOBreak drives the break directly on a GPIO line. It is the strategy for
// wirings where the UART TX pin is also reachable through the GPIO character
// device; the line must sit on the same wire as the serial output.
type GPIOBreak struct {
	line *gpiocdev.Line
}

// NewGPIOBreak requests the line as an output, idling at mark (high).
func NewGPIOBreak(chip string, offset int) (*GPIOBreak, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(1))
	if err != nil {
		return nil, fmt.Errorf("dmx: request %s line %d: %w", chip, offset, err)
	}
	return &GPIOBreak{line: line}, nil
}

// SendBreak pulls the line low for BreakMicros and high for MABMicros using
// busy-waits; both pulses sit below what the runtime timer can hold.
func (g *GPIOBreak) SendBreak() error {
	if err := g.line.SetValue(0); err != nil {
		return err
	}
	spinWait(BreakMicros * time.Microsecond)
	if err := g.line.SetValue(1); err != nil {
		return err
	}
	spinWait(MABMicros * time.Microsecond)
	return nil
}

// Close releases the GPIO line, leaving it at mark.
func (g *GPIOBreak) Close() error {
	g.line.SetValue(1)
	return g.line.Close()
}
