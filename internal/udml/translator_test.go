package udml

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/udmtek/udml-core/internal/domain"
)

func fixedTranslator() *Translator {
	tr := NewTranslator()
	tr.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return tr
}

func bitOp(sym string) domain.Operand {
	return domain.Operand{Kind: domain.OperandBit, Sym: sym}
}

func motorBlocks() []domain.Block {
	return []domain.Block{
		{
			Kind: domain.BlockOrganization, Number: 1, Name: "Main_Program_Sweep",
			Instructions: []domain.Instruction{
				{SourceOp: "A", Operands: []domain.Operand{bitOp("I0.0")}, Line: 0},
				{SourceOp: "AN", Operands: []domain.Operand{bitOp("I0.1")}, Line: 1},
				{SourceOp: "=", Operands: []domain.Operand{bitOp("Q0.0")}, Line: 2},
			},
		},
	}
}

func TestTranslateSiemens(t *testing.T) {
	p, err := fixedTranslator().Translate(domain.VendorSiemens, motorBlocks())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if p.Vendor != domain.VendorSiemens {
		t.Fatalf("vendor tag lost: %s", p.Vendor)
	}
	ins := p.Blocks[0].Instructions
	want := []domain.Opcode{domain.OpAnd, domain.OpAnd, domain.OpStore}
	for i, op := range want {
		if ins[i].Opcode != op {
			t.Fatalf("instruction %d: expected %s, got %s", i, op, ins[i].Opcode)
		}
		if !ins[i].Opcode.Valid() {
			t.Fatalf("instruction %d: opcode outside unified set", i)
		}
	}
	if !ins[1].Negated {
		t.Fatalf("AN must translate to a negated AND")
	}
	if ins[0].SourceOp != "A" {
		t.Fatalf("source mnemonic not kept for traceability: %q", ins[0].SourceOp)
	}
}

func TestTranslateDeterministic(t *testing.T) {
	tr := fixedTranslator()
	first, err := tr.Translate(domain.VendorSiemens, motorBlocks())
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	second, err := tr.Translate(domain.VendorSiemens, motorBlocks())
	if err != nil {
		t.Fatalf("translate again: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("translation not deterministic:\n%+v\nvs\n%+v", first, second)
	}
}

func TestTranslateUnsupportedOpcode(t *testing.T) {
	blocks := motorBlocks()
	blocks[0].Instructions = append(blocks[0].Instructions,
		domain.Instruction{SourceOp: "LOOP", Line: 3})

	p, err := fixedTranslator().Translate(domain.VendorSiemens, blocks)
	var unsupported *domain.UnsupportedOpcodeError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedOpcodeError, got %v", err)
	}
	if unsupported.Vendor != domain.VendorSiemens || unsupported.Mnemonic != "LOOP" {
		t.Fatalf("error missing context: %+v", unsupported)
	}
	if p != nil {
		t.Fatalf("failed translation must leave no partial program, got %+v", p)
	}
}

func TestTranslateMitsubishiNegation(t *testing.T) {
	blocks := []domain.Block{{
		Kind: domain.BlockOrganization, Number: 1, Name: "Main",
		Instructions: []domain.Instruction{
			{SourceOp: "LD", Operands: []domain.Operand{bitOp("X0")}},
			{SourceOp: "ANI", Operands: []domain.Operand{bitOp("X1")}, Line: 1},
			{SourceOp: "OUT", Operands: []domain.Operand{bitOp("Y0")}, Line: 2},
		},
	}}
	p, err := fixedTranslator().Translate(domain.VendorMitsubishi, blocks)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	ins := p.Blocks[0].Instructions
	if ins[1].Opcode != domain.OpAnd || !ins[1].Negated {
		t.Fatalf("ANI must map to negated AND: %+v", ins[1])
	}
	if ins[2].Opcode != domain.OpStore {
		t.Fatalf("OUT must map to STORE: %+v", ins[2])
	}
}

func TestTranslateUnknownVendor(t *testing.T) {
	if _, err := fixedTranslator().Translate(domain.Vendor("beckhoff"), motorBlocks()); err == nil {
		t.Fatalf("expected error for vendor without table")
	}
}

func TestTranslatePreservesNetworkMetadata(t *testing.T) {
	blocks := []domain.Block{{
		Kind: domain.BlockData, Number: 1, Name: "Motor_Data",
		Network: &domain.NetworkInfo{Protocol: "PROFINET", BusSegment: "segment-2"},
	}}
	p, err := fixedTranslator().Translate(domain.VendorSiemens, blocks)
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	net := p.Blocks[0].Network
	if net == nil || net.Protocol != "PROFINET" {
		t.Fatalf("network metadata lost: %+v", net)
	}
	if net == blocks[0].Network {
		t.Fatalf("translated program must not alias caller-owned metadata")
	}
}
