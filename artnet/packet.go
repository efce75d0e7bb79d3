/*Package artnet receives ArtDmx packets and hands the channel data to a
callback. Only the DMX output opcode is handled; everything else arriving on
the Art-Net port (polls, replies, sync) is skipped.*/
package artnet

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Port is the fixed UDP port of the Art-Net protocol.
const Port = 6454

// ArtDmx packet layout: 8 byte signature, little-endian opcode at 8,
// big-endian protocol version at 10, sequence at 12, physical port at 13,
// little-endian universe at 14 and big-endian data length at 16, followed by
// the channel data.
const (
	opOutput   = 0x5000
	headerSize = 18
	maxData    = 512
)

var signature = []byte("Art-Net\x00")

var (
	//ErrNotArtNet means the packet does not carry the protocol signature.
	ErrNotArtNet = errors.New("artnet: missing packet signature")
	//ErrNotDmx means the packet is Art-Net but not an ArtDmx packet.
	ErrNotDmx = errors.New("artnet: not an ArtDmx packet")
	//ErrTruncated means the packet is shorter than the ArtDmx header.
	ErrTruncated = errors.New("artnet: packet too short")
)

// Frame is one parsed ArtDmx payload. Data aliases the receive buffer and is
// only valid until the next packet is read.
type Frame struct {
	Universe uint16
	Sequence uint8
	Data     []byte
}

// parseArtDmx validates b as an ArtDmx packet. The advertised data length is
// clamped to what the packet actually carries and to the 512-channel
// envelope.
func parseArtDmx(b []byte) (Frame, error) {
	if len(b) < headerSize {
		return Frame{}, ErrTruncated
	}
	if !bytes.Equal(b[:8], signature) {
		return Frame{}, ErrNotArtNet
	}
	if binary.LittleEndian.Uint16(b[8:10]) != opOutput {
		return Frame{}, ErrNotDmx
	}

	length := int(binary.BigEndian.Uint16(b[16:18]))
	if length > len(b)-headerSize {
		length = len(b) - headerSize
	}
	if length > maxData {
		length = maxData
	}

	return Frame{
		Universe: binary.LittleEndian.Uint16(b[14:16]),
		Sequence: b[12],
		Data:     b[headerSize : headerSize+length],
	}, nil
}
