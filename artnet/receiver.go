package artnet

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/stats"
)

// FrameFunc is called for every accepted ArtDmx packet. The data slice is
// reused between packets; copy it if it must outlive the call.
type FrameFunc func(universe uint16, length uint16, sequence uint8, data []byte)

// Receiver listens on the Art-Net UDP port and dispatches ArtDmx payloads to
// a callback. Non-ArtDmx traffic is counted but otherwise ignored.
type Receiver struct {
	conn    *net.UDPConn
	onFrame FrameFunc
	logger  *log.Logger
	rate    *stats.Rate

	mu      sync.Mutex
	stopped bool
	stop    chan struct{}
	packets uint64
	skipped uint64
}

// NewReceiver creates a receiver that will deliver frames to onFrame.
func NewReceiver(onFrame FrameFunc, logger *log.Logger) *Receiver {
	return &Receiver{
		onFrame: onFrame,
		logger:  logger,
		rate:    stats.NewReceiveRate(),
		stop:    make(chan struct{}),
	}
}

// Start binds the Art-Net port and begins dispatching in a background
// goroutine. listen may be empty, in which case all interfaces are used.
func (r *Receiver) Start(listen string) error {
	addr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(listen, strconv.Itoa(Port)))
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return err
	}
	r.conn = conn
	r.logger.Info("listening for Art-Net", "addr", conn.LocalAddr())
	go r.loop()
	return nil
}

func (r *Receiver) loop() {
	buf := make([]byte, 1024)
	for {
		select {
		case <-r.stop:
			return
		default:
		}
		r.conn.SetReadDeadline(time.Now().Add(time.Second))
		n, _, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			select {
			case <-r.stop:
			default:
				r.logger.Error("read failed", "err", err)
			}
			return
		}
		r.handle(buf[:n])
	}
}

func (r *Receiver) handle(b []byte) {
	frame, err := parseArtDmx(b)
	if err != nil {
		r.mu.Lock()
		r.skipped++
		r.mu.Unlock()
		return
	}
	r.mu.Lock()
	r.packets++
	r.mu.Unlock()
	r.rate.Record()
	r.onFrame(frame.Universe, uint16(len(frame.Data)), frame.Sequence, frame.Data)
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// FramesPerSecond reports the recent ArtDmx arrival rate.
func (r *Receiver) FramesPerSecond() float64 {
	return r.rate.PerSecond()
}

// Packets returns the number of ArtDmx packets accepted since Start.
func (r *Receiver) Packets() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.packets
}

// Skipped returns the number of non-ArtDmx packets seen on the port.
func (r *Receiver) Skipped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped
}

// Close stops the dispatch loop and releases the socket.
func (r *Receiver) Close() error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	close(r.stop)
	r.mu.Unlock()
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
