package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/udmtek/udml-core/internal/domain"
)

// SiemensDecoder parses extracted SIMATIC project blobs (S7-300/400/1200/1500).
//
// Blob layout, all multi-byte fields big-endian:
//
//	header:  magic "S7PB" | version u8 | block count u16 | checksum u8
//	block:   type tag u8 | number u16 | name len u8 | name | flags u8 |
//	         instruction count u16 | instructions | [network record]
//	instr:   mnemonic code u8 | flags u8 (bit0 negated) | operand count u8 | operands
//	operand: kind u8 | payload (see readOperand)
//	network: protocol len u8 | protocol | segment len u8 | segment
//
// The checksum is the XOR of every byte after the header.
type SiemensDecoder struct{}

const (
	siemensMagic     = "S7PB"
	siemensVersion   = 1
	siemensHeaderLen = 8
	blockFlagNetwork = 0x01
	instrFlagNegated = 0x01
)

var siemensModels = map[string]struct{}{
	"S7-300": {}, "S7-400": {}, "S7-1200": {}, "S7-1500": {},
}

var siemensBlockTags = map[byte]domain.BlockKind{
	0x10: domain.BlockOrganization,
	0x20: domain.BlockFunction,
	0x30: domain.BlockFunctionBlock,
	0x40: domain.BlockData,
}

// Mnemonic codes as they appear in the extracted blob. The strings are the
// STL mnemonics the translator tables key on.
var siemensMnemonics = map[byte]string{
	0x01: "A", 0x02: "AN", 0x03: "O", 0x04: "ON", 0x05: "X", 0x06: "XN",
	0x07: "=", 0x08: "L", 0x09: "T", 0x0A: "S", 0x0B: "R",
	0x10: "+I", 0x11: "-I", 0x12: "*I", 0x13: "/I", 0x14: "MOD",
	0x15: "NEGI", 0x16: "ABS", 0x17: "SLW", 0x18: "SRW",
	0x20: "==I", 0x21: "<>I", 0x22: ">I", 0x23: "<I", 0x24: ">=I", 0x25: "<=I",
	0x30: "SD", 0x31: "SF", 0x32: "SP",
	0x38: "ZV", 0x39: "ZR",
	0x40: "JU", 0x41: "JC", 0x42: "JCN", 0x43: "CALL", 0x44: "BE", 0x45: "LBL",
	0x50: "LPI", 0x51: "TPQ",
	0x5F: "NOP",
}

var siemensAreas = map[byte]string{
	0x01: "I", 0x02: "Q", 0x03: "M", 0x04: "T", 0x05: "C", 0x06: "DB", 0x07: "PI", 0x08: "PQ",
}

func (d *SiemensDecoder) Vendor() domain.Vendor { return domain.VendorSiemens }

func (d *SiemensDecoder) Decode(raw []byte, model string) ([]domain.Block, error) {
	if _, ok := siemensModels[model]; !ok {
		return nil, d.errf(0, "unknown model variant %q", model)
	}
	if len(raw) < siemensHeaderLen {
		return nil, d.errf(len(raw), "truncated header: need %d bytes, have %d", siemensHeaderLen, len(raw))
	}
	if string(raw[:4]) != siemensMagic {
		return nil, d.errf(0, "bad magic %q", raw[:4])
	}
	if raw[4] != siemensVersion {
		return nil, d.errf(4, "unsupported format version %d", raw[4])
	}
	blockCount := int(binary.BigEndian.Uint16(raw[5:7]))
	if sum := xorChecksum(raw[siemensHeaderLen:]); sum != raw[7] {
		return nil, d.errf(7, "checksum mismatch: header %#x, computed %#x", raw[7], sum)
	}

	r := &reader{buf: raw, off: siemensHeaderLen, dec: d}
	blocks := make([]domain.Block, 0, blockCount)
	for i := 0; i < blockCount; i++ {
		b, err := d.readBlock(r)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if r.off != len(raw) {
		return nil, d.errf(r.off, "trailing garbage: %d bytes after last block", len(raw)-r.off)
	}
	return blocks, nil
}

func (d *SiemensDecoder) readBlock(r *reader) (domain.Block, error) {
	tag, err := r.u8("block type tag")
	if err != nil {
		return domain.Block{}, err
	}
	kind, ok := siemensBlockTags[tag]
	if !ok {
		return domain.Block{}, d.errf(r.off-1, "unknown block-type tag %#x", tag)
	}
	number, err := r.u16("block number")
	if err != nil {
		return domain.Block{}, err
	}
	name, err := r.lenPrefixed("block name")
	if err != nil {
		return domain.Block{}, err
	}
	flags, err := r.u8("block flags")
	if err != nil {
		return domain.Block{}, err
	}
	instrCount, err := r.u16("instruction count")
	if err != nil {
		return domain.Block{}, err
	}
	if kind == domain.BlockData && instrCount != 0 {
		return domain.Block{}, d.errf(r.off, "data block DB%d declares %d instructions", number, instrCount)
	}

	block := domain.Block{Kind: kind, Number: int(number), Name: name}
	for i := 0; i < int(instrCount); i++ {
		ins, err := d.readInstruction(r, i)
		if err != nil {
			return domain.Block{}, err
		}
		block.Instructions = append(block.Instructions, ins)
	}

	if flags&blockFlagNetwork != 0 {
		proto, err := r.lenPrefixed("network protocol")
		if err != nil {
			return domain.Block{}, err
		}
		seg, err := r.lenPrefixed("bus segment")
		if err != nil {
			return domain.Block{}, err
		}
		block.Network = &domain.NetworkInfo{Protocol: proto, BusSegment: seg}
	}
	return block, nil
}

func (d *SiemensDecoder) readInstruction(r *reader, line int) (domain.Instruction, error) {
	code, err := r.u8("mnemonic code")
	if err != nil {
		return domain.Instruction{}, err
	}
	mnemonic, ok := siemensMnemonics[code]
	if !ok {
		return domain.Instruction{}, d.errf(r.off-1, "unknown mnemonic code %#x", code)
	}
	flags, err := r.u8("instruction flags")
	if err != nil {
		return domain.Instruction{}, err
	}
	opCount, err := r.u8("operand count")
	if err != nil {
		return domain.Instruction{}, err
	}
	ins := domain.Instruction{
		SourceOp: mnemonic,
		Negated:  flags&instrFlagNegated != 0,
		Line:     line,
	}
	for i := 0; i < int(opCount); i++ {
		op, err := d.readOperand(r)
		if err != nil {
			return domain.Instruction{}, err
		}
		ins.Operands = append(ins.Operands, op)
	}
	return ins, nil
}

// readOperand resolves a raw operand to its symbolic form. Addresses are
// decoded here, never left as raw offsets.
func (d *SiemensDecoder) readOperand(r *reader) (domain.Operand, error) {
	kind, err := r.u8("operand kind")
	if err != nil {
		return domain.Operand{}, err
	}
	switch kind {
	case 0x01: // bit reference: area, byte address, bit index
		area, err := r.u8("bit area")
		if err != nil {
			return domain.Operand{}, err
		}
		areaName, ok := siemensAreas[area]
		if !ok {
			return domain.Operand{}, d.errf(r.off-1, "unknown operand area %#x", area)
		}
		byteAddr, err := r.u16("bit byte address")
		if err != nil {
			return domain.Operand{}, err
		}
		bit, err := r.u8("bit index")
		if err != nil {
			return domain.Operand{}, err
		}
		if bit > 7 {
			return domain.Operand{}, d.errf(r.off-1, "bit index %d out of range", bit)
		}
		return domain.Operand{Kind: domain.OperandBit, Sym: fmt.Sprintf("%s%d.%d", areaName, byteAddr, bit)}, nil
	case 0x02: // immediate int32
		v, err := r.u32("immediate value")
		if err != nil {
			return domain.Operand{}, err
		}
		return domain.Operand{Kind: domain.OperandInt, Value: int64(int32(v))}, nil
	case 0x03: // timer instance
		idx, err := r.u16("timer index")
		if err != nil {
			return domain.Operand{}, err
		}
		return domain.Operand{Kind: domain.OperandTimer, Sym: fmt.Sprintf("T%d", idx)}, nil
	case 0x04: // counter instance
		idx, err := r.u16("counter index")
		if err != nil {
			return domain.Operand{}, err
		}
		return domain.Operand{Kind: domain.OperandCounter, Sym: fmt.Sprintf("C%d", idx)}, nil
	case 0x05: // word address: area + word offset
		area, err := r.u8("address area")
		if err != nil {
			return domain.Operand{}, err
		}
		areaName, ok := siemensAreas[area]
		if !ok {
			return domain.Operand{}, d.errf(r.off-1, "unknown operand area %#x", area)
		}
		off, err := r.u16("word offset")
		if err != nil {
			return domain.Operand{}, err
		}
		return domain.Operand{Kind: domain.OperandAddress, Sym: fmt.Sprintf("%sW%d", areaName, off)}, nil
	case 0x06: // block reference
		tag, err := r.u8("target block tag")
		if err != nil {
			return domain.Operand{}, err
		}
		bk, ok := siemensBlockTags[tag]
		if !ok {
			return domain.Operand{}, d.errf(r.off-1, "unknown target block tag %#x", tag)
		}
		num, err := r.u16("target block number")
		if err != nil {
			return domain.Operand{}, err
		}
		return domain.Operand{Kind: domain.OperandBlock, Sym: fmt.Sprintf("%s%d", bk, num)}, nil
	default:
		return domain.Operand{}, d.errf(r.off-1, "unknown operand kind %#x", kind)
	}
}

func (d *SiemensDecoder) errf(offset int, format string, args ...any) error {
	return &domain.DecodeError{
		Vendor: domain.VendorSiemens,
		Reason: fmt.Sprintf(format, args...),
		Offset: offset,
	}
}

func xorChecksum(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum ^= c
	}
	return sum
}

// reader is a bounds-checked cursor over the blob.
type reader struct {
	buf []byte
	off int
	dec *SiemensDecoder
}

func (r *reader) need(n int, what string) error {
	if r.off+n > len(r.buf) {
		return r.dec.errf(r.off, "truncated input reading %s", what)
	}
	return nil
}

func (r *reader) u8(what string) (byte, error) {
	if err := r.need(1, what); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *reader) u16(what string) (uint16, error) {
	if err := r.need(2, what); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32(what string) (uint32, error) {
	if err := r.need(4, what); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) lenPrefixed(what string) (string, error) {
	n, err := r.u8(what + " length")
	if err != nil {
		return "", err
	}
	if err := r.need(int(n), what); err != nil {
		return "", err
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

var _ Decoder = (*SiemensDecoder)(nil)
