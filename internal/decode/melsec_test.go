package decode

import (
	"errors"
	"testing"

	"github.com/udmtek/udml-core/internal/domain"
)

const melsecProgram = `; conveyor interlock
BLOCK P 1 Conveyor_Main
LD X0
ANI X1
OUT Y0
MOV D0 D1
CNT C3 K100
END

BLOCK DB 1 Conveyor_Data
END
`

func TestMelsecDecode(t *testing.T) {
	blocks, err := (&MelsecDecoder{}).Decode([]byte(melsecProgram), "FX")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	main := blocks[0]
	if main.Kind != domain.BlockOrganization || main.Name != "Conveyor_Main" {
		t.Fatalf("unexpected main block: %+v", main)
	}
	if len(main.Instructions) != 5 {
		t.Fatalf("expected 5 instructions, got %d", len(main.Instructions))
	}
	if main.Instructions[0].SourceOp != "LD" || main.Instructions[0].Operands[0].Sym != "X0" {
		t.Fatalf("unexpected first instruction: %+v", main.Instructions[0])
	}
	cnt := main.Instructions[4]
	if cnt.Operands[0].Kind != domain.OperandCounter || cnt.Operands[1].Kind != domain.OperandInt {
		t.Fatalf("counter operands not resolved: %+v", cnt.Operands)
	}
	if cnt.Operands[1].Value != 100 {
		t.Fatalf("constant K100 not resolved: %+v", cnt.Operands[1])
	}
	if blocks[1].Kind != domain.BlockData || len(blocks[1].Instructions) != 0 {
		t.Fatalf("unexpected data block: %+v", blocks[1])
	}
}

func TestMelsecDecodeErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"unclosed block", "BLOCK P 1 Main\nLD X0\n"},
		{"unknown mnemonic", "BLOCK P 1 Main\nFROB X0\nEND\n"},
		{"unknown block tag", "BLOCK Z 1 Main\nEND\n"},
		{"instruction outside block", "LD X0\n"},
		{"bad operand", "BLOCK P 1 Main\nLD W9\nEND\n"},
		{"instructions in data block", "BLOCK DB 1 Data\nLD X0\nEND\n"},
		{"empty input", ""},
	}
	d := &MelsecDecoder{}
	for _, tc := range cases {
		_, err := d.Decode([]byte(tc.input), "Q")
		var decodeErr *domain.DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("%s: expected DecodeError, got %v", tc.name, err)
		}
		if decodeErr.Vendor != domain.VendorMitsubishi {
			t.Fatalf("%s: error missing vendor context: %+v", tc.name, decodeErr)
		}
	}
}

func TestForVendor(t *testing.T) {
	d, err := ForVendor(domain.VendorSiemens)
	if err != nil {
		t.Fatalf("siemens decoder: %v", err)
	}
	if d.Vendor() != domain.VendorSiemens {
		t.Fatalf("wrong decoder: %s", d.Vendor())
	}
	if _, err := ForVendor(domain.VendorOmron); err == nil {
		t.Fatalf("expected error for vendor without decoder")
	}
}
