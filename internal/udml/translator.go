// Package udml implements the unified device machine language: translation
// from decoded vendor blocks, semantics-preserving optimization, control-flow
// complexity analysis, and the versioned export codec.
package udml

import (
	"fmt"
	"time"

	"github.com/udmtek/udml-core/internal/domain"
)

// Translator maps vendor instruction blocks onto the unified opcode set.
// The mapping tables are fixed at construction and never mutated, so one
// Translator is safe to share across goroutines.
type Translator struct {
	tables map[domain.Vendor]map[string]mapping
	now    func() time.Time
}

func NewTranslator() *Translator {
	return &Translator{
		tables: vendorTables,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Translate produces a fresh Program whose every instruction carries a
// unified opcode. Any mnemonic absent from the vendor table aborts the whole
// translation: silently dropping logic is unacceptable here.
func (t *Translator) Translate(vendor domain.Vendor, blocks []domain.Block) (*domain.Program, error) {
	table, ok := t.tables[vendor]
	if !ok {
		return nil, fmt.Errorf("no opcode table for vendor %q", vendor)
	}

	out := make([]domain.Block, 0, len(blocks))
	for _, b := range blocks {
		nb := domain.Block{
			Kind:   b.Kind,
			Number: b.Number,
			Name:   b.Name,
		}
		if b.Network != nil {
			net := *b.Network
			nb.Network = &net
		}
		if len(b.Instructions) > 0 {
			nb.Instructions = make([]domain.Instruction, 0, len(b.Instructions))
		}
		for _, ins := range b.Instructions {
			m, ok := table[ins.SourceOp]
			if !ok {
				return nil, &domain.UnsupportedOpcodeError{Vendor: vendor, Mnemonic: ins.SourceOp}
			}
			operands := make([]domain.Operand, len(ins.Operands))
			copy(operands, ins.Operands)
			nb.Instructions = append(nb.Instructions, domain.Instruction{
				Opcode:   m.op,
				Operands: operands,
				Negated:  ins.Negated || m.negate,
				SourceOp: ins.SourceOp,
				Line:     ins.Line,
			})
		}
		out = append(out, nb)
	}

	return &domain.Program{
		Vendor:       vendor,
		Blocks:       out,
		TranslatedAt: t.now(),
	}, nil
}
