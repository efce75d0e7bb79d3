/*Package buffer holds the double-buffered handoff between the network
receive path and the output scheduler.

The receive side writes complete 512-channel frames into the front buffer
while the scheduler reads the back buffer on its own cadence; a write ends in
a pointer swap that trades the two roles. Frames arriving faster than the
scheduler drains them overwrite each other: there is no queue, the latest
frame wins, and overwritten frames are only counted. For a live lighting
signal staleness is the failure mode that matters, not loss.*/
package buffer

import (
	"sync"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/dmx"
)

// Pair is the front/back frame buffer pair. One goroutine may write and one
// may read; the mutex serializes the role swap against the reader's copy so
// a reader can never observe a half-written frame.
type Pair struct {
	mu     sync.Mutex
	front  *[dmx.MaxChannels]byte
	back   *[dmx.MaxChannels]byte
	ready  bool
	frames uint64
	drops  uint64
}

// NewPair returns a Pair with both frames zeroed, so the scheduler transmits
// a blackout frame until the first network frame arrives.
func NewPair() *Pair {
	return &Pair{
		front: new([dmx.MaxChannels]byte),
		back:  new([dmx.MaxChannels]byte),
	}
}

// Write copies up to dmx.MaxChannels bytes of data into the front buffer,
// zero-fills the rest and swaps the buffer roles. A zero-length write
// produces an all-zero frame. Unused channels never carry stale data.
func (p *Pair) Write(data []byte) {
	//the front buffer belongs to the single writer until the swap below,
	//so the copy itself needs no lock
	f := p.front
	n := copy(f[:], data)
	for i := n; i < len(f); i++ {
		f[i] = 0
	}

	p.mu.Lock()
	p.front, p.back = p.back, p.front
	if p.ready {
		p.drops++
	}
	p.ready = true
	p.frames++
	p.mu.Unlock()
}

// ReadBack copies the back buffer into dst and reports whether it holds a
// frame that was not read before. The ready flag is consumed exactly once
// per call that observes it. Only the output scheduler calls this.
func (p *Pair) ReadBack(dst []byte) bool {
	p.mu.Lock()
	copy(dst, p.back[:])
	fresh := p.ready
	p.ready = false
	p.mu.Unlock()
	return fresh
}

// Frames returns the number of completed writes.
func (p *Pair) Frames() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// Drops returns how many frames were overwritten before the scheduler read
// them.
func (p *Pair) Drops() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drops
}
