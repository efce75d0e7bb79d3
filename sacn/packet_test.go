package sacn

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/uuid"
)

//buildDataPacket assembles a valid E1.31 data packet for the tests.
func buildDataPacket(universe uint16, sequence byte, options byte, startCode byte, data []byte) []byte {
	b := make([]byte, minPacketLength+len(data))
	copy(b, constHeader)
	length := uint16(len(b))
	fal := func(l uint16) []byte {
		return []byte{0x70 | byte((l>>8)&0x0F), byte(l)}
	}
	copy(b[16:18], fal(length-16))
	copy(b[18:22], []byte{0, 0, 0, vectorRootE131Data})
	copy(b[38:40], fal(length-38))
	copy(b[40:44], []byte{0, 0, 0, vectorE131DataPacket})
	copy(b[44:], "test source")
	b[108] = 100
	b[111] = sequence
	b[112] = options
	copy(b[113:115], getAsBytes16(universe))
	copy(b[115:117], fal(length-115))
	b[117] = vectorDmpSetProperty
	b[118] = 0xa1
	b[122] = 1
	copy(b[123:125], getAsBytes16(uint16(1+len(data))))
	b[125] = startCode
	copy(b[126:], data)
	return b
}

func TestParseDataPacket(t *testing.T) {
	raw := buildDataPacket(257, 42, 0, 0, []byte{1, 2, 3})
	id := uuid.MustParse("12345678-1234-5678-1234-567812345678")
	copy(raw[22:38], id[:])

	p, err := ParseDataPacket(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if p.Universe() != 257 {
		t.Errorf("universe should have been 257, was %v", p.Universe())
	}
	if p.Sequence() != 42 {
		t.Errorf("sequence should have been 42, was %v", p.Sequence())
	}
	if p.Priority() != 100 {
		t.Errorf("priority should have been 100, was %v", p.Priority())
	}
	if p.StartCode() != 0 {
		t.Errorf("start code should have been 0, was %v", p.StartCode())
	}
	if p.SourceName() != "test source" {
		t.Errorf("wrong source name: %q", p.SourceName())
	}
	if p.CID() != id {
		t.Errorf("wrong CID: %v", p.CID())
	}
	if !bytes.Equal(p.Data(), []byte{1, 2, 3}) {
		t.Errorf("wrong data: %v", p.Data())
	}
	if p.StreamTerminated() || p.PreviewData() {
		t.Error("no option flags were set")
	}
}

func TestParseOptionFlags(t *testing.T) {
	p, err := ParseDataPacket(buildDataPacket(1, 0, 0x40, 0, nil))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !p.StreamTerminated() {
		t.Error("stream_terminated flag should have been set")
	}
	p, err = ParseDataPacket(buildDataPacket(1, 0, 0x80, 0, nil))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !p.PreviewData() {
		t.Error("preview_data flag should have been set")
	}
}

func TestParseRejectsShortPackets(t *testing.T) {
	_, err := ParseDataPacket(make([]byte, 60))
	if !errors.Is(err, ErrTooShort) {
		t.Errorf("expected ErrTooShort, got %v", err)
	}
}

func TestParseRejectsWrongIdentifier(t *testing.T) {
	raw := buildDataPacket(1, 0, 0, 0, nil)
	raw[4] = 'X'
	_, err := ParseDataPacket(raw)
	if !errors.Is(err, ErrNotACN) {
		t.Errorf("expected ErrNotACN, got %v", err)
	}
}

func TestParseRejectsWrongVectors(t *testing.T) {
	raw := buildDataPacket(1, 0, 0, 0, nil)
	raw[21] = 8 //VECTOR_ROOT_E131_EXTENDED
	_, err := ParseDataPacket(raw)
	if !errors.Is(err, ErrVector) {
		t.Errorf("expected ErrVector, got %v", err)
	}
}

func TestDataWithoutPropertyValues(t *testing.T) {
	raw := buildDataPacket(1, 0, 0, 0, nil)
	p, err := ParseDataPacket(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(p.Data()) != 0 {
		t.Errorf("a start-code-only packet carries no data, got %v bytes", len(p.Data()))
	}
}

func TestGetAsBytes16(t *testing.T) {
	out := getAsBytes16(0x1234)
	shouldBe := [...]byte{0x12, 0x34}
	if !bytes.Equal(out, shouldBe[:]) {
		t.Errorf("Wrong output! Was: %v; Should've been: %v", out, shouldBe)
	}
}

func TestGetAsUint32(t *testing.T) {
	out := getAsUint32([]byte{0x12, 0x34, 0x56, 0x78})
	shouldBe := uint32(0x12345678)
	if out != shouldBe {
		t.Errorf("Wrong output! Was: %v; Should've been: %v", out, shouldBe)
	}
}

func TestCalcMulticastAddr(t *testing.T) {
	out := calcMulticastAddr(257)
	shouldBe := "239.255.1.1"
	if out != shouldBe {
		t.Errorf("Wrong output! Was: %v; Should've been: %v", out, shouldBe)
	}
}

func TestCheckSequ(t *testing.T) {
	if !checkSequ(12, 13) {
		t.Error("Sequence was one higher, should be good!")
	}
	if !checkSequ(100, 80) {
		t.Error("New sequence was 20 behind old one. Should be allowed!")
	}
	if checkSequ(100, 81) {
		t.Error("New sequence number of 81 with old 100 shouldn't be allowed!")
	}
	if checkSequ(255, 250) {
		t.Error("should not be allowed!")
	}
}
