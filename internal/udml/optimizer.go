package udml

import "github.com/udmtek/udml-core/internal/domain"

// Optimize returns a fresh, semantically equivalent Program with redundant
// instructions removed and known reducible pairs fused. It is explicit
// opt-in; Translate never optimizes.
//
// The pass is deliberately conservative:
//   - only NOPs and dead accumulator loads are removed;
//   - the only fusion is LOAD x ; STORE y -> MOVE x,y on adjacent pairs;
//   - nothing is changed across a jump, label, call, or return, and
//     timer/counter instructions are never touched, so reachable blocks and
//     timer/counter instance identities are preserved.
func Optimize(p *domain.Program) *domain.Program {
	out := &domain.Program{
		Vendor:       p.Vendor,
		TranslatedAt: p.TranslatedAt,
		Blocks:       make([]domain.Block, 0, len(p.Blocks)),
	}
	for _, b := range p.Blocks {
		nb := domain.Block{Kind: b.Kind, Number: b.Number, Name: b.Name}
		if b.Network != nil {
			net := *b.Network
			nb.Network = &net
		}
		nb.Instructions = optimizeBlock(b.Instructions)
		out.Blocks = append(out.Blocks, nb)
	}
	return out
}

func optimizeBlock(ins []domain.Instruction) []domain.Instruction {
	if len(ins) == 0 {
		return nil
	}
	ins = dropNops(ins)
	ins = dropDeadLoads(ins)
	ins = fuseLoadStore(ins)
	return ins
}

func dropNops(ins []domain.Instruction) []domain.Instruction {
	out := make([]domain.Instruction, 0, len(ins))
	for _, i := range ins {
		if i.Opcode == domain.OpNop {
			continue
		}
		out = append(out, i)
	}
	return out
}

// dropDeadLoads removes a LOAD whose accumulator value is overwritten by an
// immediately following LOAD before anything could read it. Adjacency keeps
// the pass trivially sound: jump targets are explicit LBL instructions, so a
// LOAD can never be entered from elsewhere.
func dropDeadLoads(ins []domain.Instruction) []domain.Instruction {
	out := make([]domain.Instruction, 0, len(ins))
	for i := 0; i < len(ins); i++ {
		cur := ins[i]
		if cur.Opcode == domain.OpLoad && i+1 < len(ins) && ins[i+1].Opcode == domain.OpLoad {
			continue // result provably unused
		}
		out = append(out, cur)
	}
	return out
}

// fuseLoadStore rewrites adjacent LOAD x ; STORE y into MOVE x,y when both
// sit inside the same pure window.
func fuseLoadStore(ins []domain.Instruction) []domain.Instruction {
	out := make([]domain.Instruction, 0, len(ins))
	for i := 0; i < len(ins); i++ {
		cur := ins[i]
		if cur.Opcode == domain.OpLoad && !cur.Negated && i+1 < len(ins) {
			next := ins[i+1]
			if next.Opcode == domain.OpStore && !next.Negated &&
				len(cur.Operands) == 1 && len(next.Operands) == 1 {
				out = append(out, domain.Instruction{
					Opcode:   domain.OpMove,
					Operands: []domain.Operand{cur.Operands[0], next.Operands[0]},
					SourceOp: cur.SourceOp + "+" + next.SourceOp,
					Line:     cur.Line,
				})
				i++
				continue
			}
		}
		out = append(out, cur)
	}
	return out
}
