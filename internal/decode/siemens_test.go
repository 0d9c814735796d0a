package decode

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/udmtek/udml-core/internal/domain"
)

// blobBuilder assembles S7 test blobs and fixes up the header on build.
type blobBuilder struct {
	body       []byte
	blockCount uint16
}

func (b *blobBuilder) u8(v byte)    { b.body = append(b.body, v) }
func (b *blobBuilder) u16(v uint16) { b.body = binary.BigEndian.AppendUint16(b.body, v) }
func (b *blobBuilder) u32(v uint32) { b.body = binary.BigEndian.AppendUint32(b.body, v) }
func (b *blobBuilder) str(s string) {
	b.u8(byte(len(s)))
	b.body = append(b.body, s...)
}

func (b *blobBuilder) block(tag byte, number uint16, name string, flags byte, instrCount uint16) {
	b.blockCount++
	b.u8(tag)
	b.u16(number)
	b.str(name)
	b.u8(flags)
	b.u16(instrCount)
}

func (b *blobBuilder) instr(code, flags, opCount byte) {
	b.u8(code)
	b.u8(flags)
	b.u8(opCount)
}

func (b *blobBuilder) bitOperand(area byte, byteAddr uint16, bit byte) {
	b.u8(0x01)
	b.u8(area)
	b.u16(byteAddr)
	b.u8(bit)
}

func (b *blobBuilder) build() []byte {
	blob := []byte("S7PB")
	blob = append(blob, siemensVersion)
	blob = binary.BigEndian.AppendUint16(blob, b.blockCount)
	blob = append(blob, xorChecksum(b.body))
	return append(blob, b.body...)
}

func TestSiemensDecodeMotorStartStop(t *testing.T) {
	var b blobBuilder
	b.block(0x10, 1, "Main_Program_Sweep", 0, 3)
	b.instr(0x01, 0, 1) // A I0.0
	b.bitOperand(0x01, 0, 0)
	b.instr(0x02, 0x01, 1) // AN I0.1
	b.bitOperand(0x01, 0, 1)
	b.instr(0x07, 0, 1) // = Q0.0
	b.bitOperand(0x02, 0, 0)

	blocks, err := (&SiemensDecoder{}).Decode(b.build(), "S7-1500")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	ob := blocks[0]
	if ob.Kind != domain.BlockOrganization || ob.Number != 1 || ob.Name != "Main_Program_Sweep" {
		t.Fatalf("unexpected block header: %+v", ob)
	}
	if len(ob.Instructions) != 3 {
		t.Fatalf("expected 3 instructions, got %d", len(ob.Instructions))
	}
	if ob.Instructions[0].SourceOp != "A" || ob.Instructions[0].Operands[0].Sym != "I0.0" {
		t.Fatalf("unexpected first instruction: %+v", ob.Instructions[0])
	}
	if !ob.Instructions[1].Negated {
		t.Fatalf("AN instruction should carry the negation flag")
	}
	if ob.Instructions[2].Operands[0].Sym != "Q0.0" {
		t.Fatalf("store operand not resolved: %+v", ob.Instructions[2].Operands[0])
	}
	if ob.Instructions[2].Line != 2 {
		t.Fatalf("expected line 2, got %d", ob.Instructions[2].Line)
	}
}

func TestSiemensDecodeOperandKinds(t *testing.T) {
	var b blobBuilder
	b.block(0x20, 5, "Mixer", 0, 4)
	b.instr(0x08, 0, 1) // L MW10
	b.u8(0x05)
	b.u8(0x03)
	b.u16(10)
	b.instr(0x08, 0, 1) // L 42
	b.u8(0x02)
	b.u32(42)
	b.instr(0x30, 0, 1) // SD T5
	b.u8(0x03)
	b.u16(5)
	b.instr(0x43, 0, 1) // CALL FB2
	b.u8(0x06)
	b.u8(0x30)
	b.u16(2)

	blocks, err := (&SiemensDecoder{}).Decode(b.build(), "S7-300")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	ops := blocks[0].Instructions
	if ops[0].Operands[0].Kind != domain.OperandAddress || ops[0].Operands[0].Sym != "MW10" {
		t.Fatalf("word address not decoded: %+v", ops[0].Operands[0])
	}
	if ops[1].Operands[0].Kind != domain.OperandInt || ops[1].Operands[0].Value != 42 {
		t.Fatalf("immediate not decoded: %+v", ops[1].Operands[0])
	}
	if ops[2].Operands[0].Kind != domain.OperandTimer || ops[2].Operands[0].Sym != "T5" {
		t.Fatalf("timer ref not decoded: %+v", ops[2].Operands[0])
	}
	if ops[3].Operands[0].Kind != domain.OperandBlock || ops[3].Operands[0].Sym != "FB2" {
		t.Fatalf("block ref not decoded: %+v", ops[3].Operands[0])
	}
}

func TestSiemensDecodeNetworkRecord(t *testing.T) {
	var b blobBuilder
	b.block(0x40, 1, "Motor_Data", blockFlagNetwork, 0)
	b.str("PROFINET")
	b.str("segment-2")

	blocks, err := (&SiemensDecoder{}).Decode(b.build(), "S7-1200")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	net := blocks[0].Network
	if net == nil || net.Protocol != "PROFINET" || net.BusSegment != "segment-2" {
		t.Fatalf("network record not decoded: %+v", net)
	}
}

func TestSiemensDecodeDeterministic(t *testing.T) {
	var b blobBuilder
	b.block(0x10, 1, "OB1", 0, 1)
	b.instr(0x01, 0, 1)
	b.bitOperand(0x01, 2, 3)
	b.block(0x20, 7, "FC7", 0, 1)
	b.instr(0x5F, 0, 0)
	blob := b.build()

	d := &SiemensDecoder{}
	first, err := d.Decode(blob, "S7-1500")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	second, err := d.Decode(blob, "S7-1500")
	if err != nil {
		t.Fatalf("decode again: %v", err)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 blocks from both decodes")
	}
	if first[0].ID() != second[0].ID() || first[1].ID() != second[1].ID() {
		t.Fatalf("block order not deterministic: %v vs %v", first, second)
	}
	if first[0].ID() != "OB1" || first[1].ID() != "FC7" {
		t.Fatalf("blocks not in source order: %s, %s", first[0].ID(), first[1].ID())
	}
}

func TestSiemensDecodeErrors(t *testing.T) {
	valid := func() *blobBuilder {
		var b blobBuilder
		b.block(0x10, 1, "OB1", 0, 1)
		b.instr(0x01, 0, 1)
		b.bitOperand(0x01, 0, 0)
		return &b
	}

	cases := []struct {
		name string
		blob []byte
	}{
		{"truncated header", []byte("S7")},
		{"bad magic", append([]byte("XXXX"), valid().build()[4:]...)},
		{"truncated body", valid().build()[:12]},
		{"checksum mismatch", func() []byte {
			blob := valid().build()
			blob[len(blob)-1] ^= 0xFF
			return blob
		}()},
		{"unknown block tag", func() []byte {
			var b blobBuilder
			b.block(0x99, 1, "X", 0, 0)
			return b.build()
		}()},
		{"db with instructions", func() []byte {
			var b blobBuilder
			b.block(0x40, 1, "DB1", 0, 1)
			b.instr(0x5F, 0, 0)
			return b.build()
		}()},
	}

	d := &SiemensDecoder{}
	for _, tc := range cases {
		_, err := d.Decode(tc.blob, "S7-1500")
		var decodeErr *domain.DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("%s: expected DecodeError, got %v", tc.name, err)
		}
		if decodeErr.Vendor != domain.VendorSiemens {
			t.Fatalf("%s: error missing vendor context: %+v", tc.name, decodeErr)
		}
	}
}

func TestSiemensDecodeUnknownModel(t *testing.T) {
	_, err := (&SiemensDecoder{}).Decode(nil, "S5-115U")
	var decodeErr *domain.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for unknown model, got %v", err)
	}
}
