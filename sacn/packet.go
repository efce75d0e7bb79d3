package sacn

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	vectorRootE131Data   = 4 //VECTOR_ROOT_E131_DATA
	vectorE131DataPacket = 2 //VECTOR_E131_DATA_PACKET
	vectorDmpSetProperty = 0x2

	//minimum length of a data packet: everything up to but excluding the property values
	minPacketLength = 126
)

//Port is the registered UDP port for E1.31 traffic.
const Port = 5568

//the constant header: preamble size, postamble size and the ACN packet identifier
var constHeader = []byte{0, 0x10, 0, 0, 0x41, 0x53,
	0x43, 0x2d, 0x45, 0x31, 0x2e, 0x31, 0x37, 0x00, 0x00, 0x00}

var (
	//ErrTooShort is returned for packets shorter than the E1.31 data packet header.
	ErrTooShort = errors.New("sacn: packet shorter than 126 bytes")
	//ErrNotACN is returned for packets without the ACN packet identifier.
	ErrNotACN = errors.New("sacn: missing ACN packet identifier")
	//ErrVector is returned when one of the three layer vectors is not a data packet vector.
	ErrVector = errors.New("sacn: not an E1.31 data packet")
)

//DataPacket is a read-only view on a received E1.31 data packet. It keeps a
//reference to the raw bytes, so it is only valid as long as the underlying
//buffer is.
type DataPacket struct {
	data []byte
}

//ParseDataPacket checks the raw bytes for the E1.31 data packet constants and
//returns a view on them. No bytes are copied.
func ParseDataPacket(raw []byte) (DataPacket, error) {
	if len(raw) < minPacketLength {
		return DataPacket{}, ErrTooShort
	}
	for i, b := range constHeader {
		if raw[i] != b {
			return DataPacket{}, ErrNotACN
		}
	}
	if getAsUint32(raw[18:22]) != vectorRootE131Data ||
		getAsUint32(raw[40:44]) != vectorE131DataPacket ||
		raw[117] != vectorDmpSetProperty {
		return DataPacket{}, ErrVector
	}
	return DataPacket{data: raw}, nil
}

//CID returns the sender's component identifier.
func (d DataPacket) CID() uuid.UUID {
	var cid uuid.UUID
	copy(cid[:], d.data[22:38])
	return cid
}

//SourceName returns the stored source name. Note that the source name max length is 64!
func (d DataPacket) SourceName() string {
	i := 44 //the ending index for the string, because it is 0 terminated
	for i < 108 && d.data[i] != 0 {
		i++
	}
	return string(d.data[44:i])
}

//Priority returns the byte value of the priority field of the packet. Value range: [0-200]
func (d DataPacket) Priority() byte {
	return d.data[108]
}

//Sequence returns the sequence number of the packet
func (d DataPacket) Sequence() byte {
	return d.data[111]
}

//PreviewData returns whether this packet has the preview flag set
func (d DataPacket) PreviewData() bool {
	return d.data[112]&0x80 != 0
}

//StreamTerminated returns the state of the stream_termination flag
func (d DataPacket) StreamTerminated() bool {
	return d.data[112]&0x40 != 0
}

//Universe returns the universe value of the packet
func (d DataPacket) Universe() uint16 {
	return uint16(getAsUint32(d.data[113:115]))
}

//StartCode returns the DMX start code that was transmitted together with the DMX data
func (d DataPacket) StartCode() byte {
	return d.data[125]
}

//Data returns the DMX data of this packet without the start code. Length: [0-512]
func (d DataPacket) Data() []byte {
	count := int(getAsUint32(d.data[123:125])) //property values including the start code
	if count < 1 {
		return nil
	}
	end := 125 + count
	if end > len(d.data) {
		end = len(d.data)
	}
	if end > minPacketLength+512 {
		end = minPacketLength + 512
	}
	return d.data[126:end]
}

func getAsBytes16(i uint16) []byte {
	return []byte{byte(i >> 8), byte(i & 0xFF)}
}

func getAsUint32(arr []byte) uint32 {
	value := uint32(0)
	for i := range arr {
		value = value<<8 + uint32(arr[i])
	}
	return value
}

func calcMulticastAddr(universe uint16) string {
	byt := getAsBytes16(universe)
	return fmt.Sprintf("239.255.%v.%v", byt[0], byt[1])
}

//checkSequ implements the E1.31 sequence window: a packet is accepted unless
//its sequence number is equal to or up to 19 numbers behind the last one.
func checkSequ(old, new byte) bool {
	//calculate in int
	tmp := int(new) - int(old)
	if tmp <= 0 && tmp > -20 {
		return false
	}
	return true
}
