package udml

import (
	"strconv"

	"github.com/udmtek/udml-core/internal/domain"
)

// Analyze computes structural complexity metrics over a Program. Pure query:
// the Program is never mutated.
//
// Cyclomatic complexity is E − N + 2·P over the control-flow graph each
// block's conditional/jump instructions imply, where basic blocks are the
// nodes. Nesting depth counts overlapping conditional-jump regions.
func Analyze(p *domain.Program) domain.ComplexityReport {
	report := domain.ComplexityReport{}
	for i := range p.Blocks {
		b := &p.Blocks[i]
		bc := analyzeBlock(b)
		report.InstructionCount += bc.Instructions
		report.BranchCount += bc.Branches
		report.Cyclomatic += bc.Cyclomatic
		if bc.MaxNesting > report.MaxNestingDepth {
			report.MaxNestingDepth = bc.MaxNesting
		}
		report.Blocks = append(report.Blocks, bc)
	}
	return report
}

func analyzeBlock(b *domain.Block) domain.BlockComplexity {
	bc := domain.BlockComplexity{
		Block:        b.ID(),
		Instructions: len(b.Instructions),
	}
	if len(b.Instructions) == 0 {
		return bc
	}

	for _, ins := range b.Instructions {
		if ins.Opcode.IsBranch() {
			bc.Branches++
		}
	}

	nodes, edges, components := buildCFG(b.Instructions)
	bc.Cyclomatic = edges - nodes + 2*components
	bc.MaxNesting = nestingDepth(b.Instructions)
	return bc
}

// buildCFG partitions the instruction sequence into basic blocks (leaders:
// entry, jump targets, instructions after a branch), then counts nodes,
// edges, and weakly connected components.
func buildCFG(ins []domain.Instruction) (nodes, edges, components int) {
	labels := map[string]int{} // label key -> instruction index
	for i, in := range ins {
		if in.Opcode == domain.OpLabel && len(in.Operands) == 1 {
			labels[operandKey(in.Operands[0])] = i
		}
	}
	target := func(in domain.Instruction) (int, bool) {
		if len(in.Operands) != 1 {
			return 0, false
		}
		idx, ok := labels[operandKey(in.Operands[0])]
		return idx, ok
	}

	leader := make([]bool, len(ins))
	leader[0] = true
	for i, in := range ins {
		switch in.Opcode {
		case domain.OpJmp, domain.OpJz, domain.OpJnz:
			if t, ok := target(in); ok {
				leader[t] = true
			}
			if i+1 < len(ins) {
				leader[i+1] = true
			}
		case domain.OpRet:
			if i+1 < len(ins) {
				leader[i+1] = true
			}
		}
	}

	nodeOf := make([]int, len(ins))
	for i := range ins {
		if leader[i] {
			nodes++
		}
		nodeOf[i] = nodes - 1
	}

	// Collect directed edges, counting each (from,to) once.
	seen := map[cfgEdge]struct{}{}
	addEdge := func(from, to int) {
		e := cfgEdge{from, to}
		if _, dup := seen[e]; !dup {
			seen[e] = struct{}{}
			edges++
		}
	}
	for i, in := range ins {
		last := i+1 >= len(ins) || leader[i+1]
		if !last {
			continue
		}
		from := nodeOf[i]
		switch in.Opcode {
		case domain.OpJmp:
			if t, ok := target(in); ok {
				addEdge(from, nodeOf[t])
			}
		case domain.OpJz, domain.OpJnz:
			if t, ok := target(in); ok {
				addEdge(from, nodeOf[t])
			}
			if i+1 < len(ins) {
				addEdge(from, nodeOf[i+1])
			}
		case domain.OpRet:
			// terminates the block; no successor
		default:
			if i+1 < len(ins) {
				addEdge(from, nodeOf[i+1])
			}
		}
	}

	components = countComponents(nodes, seen)
	return nodes, edges, components
}

type cfgEdge struct{ from, to int }

func countComponents(nodes int, edges map[cfgEdge]struct{}) int {
	if nodes == 0 {
		return 0
	}
	parent := make([]int, nodes)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	for e := range edges {
		a, b := find(e.from), find(e.to)
		if a != b {
			parent[a] = b
		}
	}
	roots := map[int]struct{}{}
	for i := 0; i < nodes; i++ {
		roots[find(i)] = struct{}{}
	}
	return len(roots)
}

// nestingDepth treats each conditional jump and its target label as a region
// and returns the maximum number of overlapping regions.
func nestingDepth(ins []domain.Instruction) int {
	labels := map[string]int{}
	for i, in := range ins {
		if in.Opcode == domain.OpLabel && len(in.Operands) == 1 {
			labels[operandKey(in.Operands[0])] = i
		}
	}

	depth := make([]int, len(ins)+1)
	for i, in := range ins {
		if !in.Opcode.IsConditionalBranch() || len(in.Operands) != 1 {
			continue
		}
		t, ok := labels[operandKey(in.Operands[0])]
		if !ok {
			continue
		}
		lo, hi := i, t
		if lo > hi {
			lo, hi = hi, lo
		}
		for j := lo; j < hi; j++ {
			depth[j]++
		}
	}
	max := 0
	for _, d := range depth {
		if d > max {
			max = d
		}
	}
	return max
}

func operandKey(op domain.Operand) string {
	if op.Sym != "" {
		return op.Sym
	}
	return string(op.Kind) + ":" + strconv.FormatInt(op.Value, 10)
}
