package decode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/udmtek/udml-core/internal/domain"
)

// MelsecDecoder parses Mitsubishi MELSEC instruction-list exports (FX/Q/L
// series). The export is line-oriented text:
//
//	BLOCK <P|FB|DB> <number> <name>
//	<MNEMONIC> [operand ...]
//	END
//
// Lines starting with ';' are comments. Operands use MELSEC device
// notation: X/Y (I/O bits), M (internal bits), D (data registers),
// T/C (timer/counter instances), K<n> (decimal constants), P<n> (pointers).
type MelsecDecoder struct{}

var melsecModels = map[string]struct{}{
	"FX": {}, "Q": {}, "L": {},
}

var melsecBlockKinds = map[string]domain.BlockKind{
	"P":  domain.BlockOrganization,
	"FB": domain.BlockFunctionBlock,
	"DB": domain.BlockData,
}

var melsecMnemonics = map[string]struct{}{
	"LD": {}, "LDI": {}, "AND": {}, "ANI": {}, "OR": {}, "ORI": {},
	"OUT": {}, "SET": {}, "RST": {}, "MOV": {},
	"ADD": {}, "SUB": {}, "MUL": {}, "DIV": {},
	"CMP": {}, "TON": {}, "CNT": {},
	"CJ": {}, "CALL": {}, "RET": {}, "NOP": {}, "LBL": {},
}

func (d *MelsecDecoder) Vendor() domain.Vendor { return domain.VendorMitsubishi }

func (d *MelsecDecoder) Decode(raw []byte, model string) ([]domain.Block, error) {
	if _, ok := melsecModels[model]; !ok {
		return nil, d.errf(0, "unknown model variant %q", model)
	}

	var (
		blocks  []domain.Block
		current *domain.Block
		line    int
	)
	for n, text := range strings.Split(string(raw), "\n") {
		text = strings.TrimSpace(text)
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		fields := strings.Fields(text)

		switch fields[0] {
		case "BLOCK":
			if current != nil {
				return nil, d.errf(n, "BLOCK without closing END")
			}
			if len(fields) < 4 {
				return nil, d.errf(n, "malformed BLOCK header %q", text)
			}
			kind, ok := melsecBlockKinds[fields[1]]
			if !ok {
				return nil, d.errf(n, "unknown block-type tag %q", fields[1])
			}
			num, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, d.errf(n, "bad block number %q", fields[2])
			}
			blocks = append(blocks, domain.Block{Kind: kind, Number: num, Name: strings.Join(fields[3:], " ")})
			current = &blocks[len(blocks)-1]
			line = 0
		case "END":
			if current == nil {
				return nil, d.errf(n, "END without open BLOCK")
			}
			current = nil
		default:
			if current == nil {
				return nil, d.errf(n, "instruction %q outside any block", fields[0])
			}
			if current.Kind == domain.BlockData {
				return nil, d.errf(n, "instruction %q inside data block DB%d", fields[0], current.Number)
			}
			if _, ok := melsecMnemonics[fields[0]]; !ok {
				return nil, d.errf(n, "unknown mnemonic %q", fields[0])
			}
			ins := domain.Instruction{SourceOp: fields[0], Line: line}
			for _, f := range fields[1:] {
				op, err := d.resolveOperand(n, f)
				if err != nil {
					return nil, err
				}
				ins.Operands = append(ins.Operands, op)
			}
			current.Instructions = append(current.Instructions, ins)
			line++
		}
	}
	if current != nil {
		return nil, d.errf(-1, "truncated input: block %s%d not closed", current.Kind, current.Number)
	}
	if len(blocks) == 0 {
		return nil, d.errf(0, "no blocks in input")
	}
	return blocks, nil
}

func (d *MelsecDecoder) resolveOperand(lineNo int, tok string) (domain.Operand, error) {
	if len(tok) < 2 {
		return domain.Operand{}, d.errf(lineNo, "malformed operand %q", tok)
	}
	digits := tok[1:]
	if _, err := strconv.Atoi(digits); err != nil {
		return domain.Operand{}, d.errf(lineNo, "unresolvable operand %q", tok)
	}
	switch tok[0] {
	case 'X', 'Y', 'M':
		return domain.Operand{Kind: domain.OperandBit, Sym: tok}, nil
	case 'D':
		return domain.Operand{Kind: domain.OperandAddress, Sym: tok}, nil
	case 'T':
		return domain.Operand{Kind: domain.OperandTimer, Sym: tok}, nil
	case 'C':
		return domain.Operand{Kind: domain.OperandCounter, Sym: tok}, nil
	case 'K':
		v, _ := strconv.ParseInt(digits, 10, 64)
		return domain.Operand{Kind: domain.OperandInt, Value: v}, nil
	case 'P':
		return domain.Operand{Kind: domain.OperandBlock, Sym: tok}, nil
	default:
		return domain.Operand{}, d.errf(lineNo, "unknown device class %q", tok)
	}
}

func (d *MelsecDecoder) errf(lineNo int, format string, args ...any) error {
	return &domain.DecodeError{
		Vendor: domain.VendorMitsubishi,
		Reason: fmt.Sprintf(format, args...),
		Offset: lineNo,
	}
}

var _ Decoder = (*MelsecDecoder)(nil)
