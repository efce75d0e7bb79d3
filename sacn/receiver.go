package sacn

import (
	"fmt"
	"net"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/ipv4"

	"github.com/Mr-Molina/esp8266-artnet-dmx512/stats"
)

//timeout of the E1.31 protocol (plus 200ms)
const timeoutMs = 2500

//FrameFunc is called for every accepted E1.31 data packet. The data slice is
//reused between packets; copy it if it must outlive the call.
type FrameFunc func(universe uint16, length uint16, sequence uint8, data []byte)

//Receiver listens for E1.31 data packets and dispatches the DMX payloads to a
//callback. Per universe, out-of-sequence packets are discarded and stream
//termination resets the sequence tracking.
type Receiver struct {
	conn    *ipv4.PacketConn
	onFrame FrameFunc
	logger  *log.Logger
	rate    *stats.Rate

	//sequence tracking, only touched by the listener goroutine
	lastSeq  map[uint16]byte
	lastTime map[uint16]time.Time

	stopListener chan struct{}
}

//NewReceiver creates a receiver that will deliver frames to onFrame.
func NewReceiver(onFrame FrameFunc, logger *log.Logger) *Receiver {
	return &Receiver{
		onFrame:      onFrame,
		logger:       logger,
		rate:         stats.NewReceiveRate(),
		lastSeq:      make(map[uint16]byte),
		lastTime:     make(map[uint16]time.Time),
		stopListener: make(chan struct{}),
	}
}

//Start binds the E1.31 port, joins the multicast group of every given
//universe and begins dispatching in a background goroutine. bind may be
//empty, in which case all interfaces are used.
func (r *Receiver) Start(bind string, universes ...uint16) error {
	conn, err := net.ListenPacket("udp4", fmt.Sprintf("%s:%d", bind, Port))
	if err != nil {
		return err
	}
	r.conn = ipv4.NewPacketConn(conn)
	for _, u := range universes {
		group := net.ParseIP(calcMulticastAddr(u))
		if err := r.conn.JoinGroup(nil, &net.UDPAddr{IP: group}); err != nil {
			//unicast still works without the group, so keep going
			r.logger.Warn("could not join multicast group", "universe", u, "group", group, "err", err)
		}
	}
	r.logger.Info("listening for sACN", "addr", conn.LocalAddr(), "universes", universes)
	go r.startListener()
	return nil
}

func (r *Receiver) startListener() {
	buf := make([]byte, 638)
Loop:
	for {
		select {
		case <-r.stopListener:
			break Loop //break if we had a stop signal from the stopChannel
		default:
		}

		r.conn.SetReadDeadline(time.Now().Add(time.Millisecond * timeoutMs))
		n, _, addr, _ := r.conn.ReadFrom(buf) //n, ControlMessage, addr, err
		if addr == nil {                      //Check if we had a timeout
			//that means we did not receive a packet in 2,5s at all
			r.checkForTimeouts()
			continue
		}
		r.handle(buf[:n])
	}
	r.conn.Close() //close the socket, if the listener is finished
}

//the handler is responsible for checking all necessary things to decide if the callback should be invoked
func (r *Receiver) handle(raw []byte) {
	r.checkForTimeouts()
	p, err := ParseDataPacket(raw)
	if err != nil {
		return //if the packet could not be parsed, just skip it
	}
	univ := p.Universe()
	if p.StreamTerminated() {
		//the source said goodbye, forget the sequence so a new source starts fresh
		delete(r.lastSeq, univ)
		delete(r.lastTime, univ)
		r.logger.Info("sACN stream terminated", "universe", univ, "source", p.SourceName())
		return
	}
	//only the zero start code carries dimmer data; preview data is not for output
	if p.StartCode() != 0 || p.PreviewData() {
		return
	}
	if last, ok := r.lastSeq[univ]; ok && !checkSequ(last, p.Sequence()) {
		return
	}
	r.lastSeq[univ] = p.Sequence()
	r.lastTime[univ] = time.Now()
	r.rate.Record()
	data := p.Data()
	r.onFrame(univ, uint16(len(data)), p.Sequence(), data)
}

//checkForTimeouts drops the sequence state of universes that went silent, so
//a returning source is not rejected by the sequence window.
func (r *Receiver) checkForTimeouts() {
	for univ, last := range r.lastTime {
		if time.Since(last) > time.Millisecond*timeoutMs {
			delete(r.lastSeq, univ)
			delete(r.lastTime, univ)
			r.logger.Warn("sACN source timed out", "universe", univ)
		}
	}
}

//FramesPerSecond reports the recent data packet arrival rate.
func (r *Receiver) FramesPerSecond() float64 {
	return r.rate.PerSecond()
}

//Packets returns the number of data packets accepted since Start.
func (r *Receiver) Packets() uint64 {
	return r.rate.Total()
}

//Close stops the listener goroutine; the socket is closed by the listener.
func (r *Receiver) Close() error {
	select {
	case <-r.stopListener:
	default:
		close(r.stopListener)
	}
	return nil
}
