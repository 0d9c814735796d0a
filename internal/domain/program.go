package domain

import (
	"strconv"
	"time"
)

// BlockKind matches the program organization units found in vendor projects.
type BlockKind string

const (
	BlockOrganization  BlockKind = "OB"
	BlockFunction      BlockKind = "FC"
	BlockFunctionBlock BlockKind = "FB"
	BlockData          BlockKind = "DB"
)

// NetworkInfo is the optional comm metadata attached to a block.
type NetworkInfo struct {
	Protocol   string `json:"protocol"`
	BusSegment string `json:"bus_segment,omitempty"`
}

// Block is an ordered instruction sequence owned by exactly one Program.
type Block struct {
	Kind         BlockKind     `json:"type"`
	Number       int           `json:"number"`
	Name         string        `json:"name"`
	Instructions []Instruction `json:"instructions"`
	Network      *NetworkInfo  `json:"network,omitempty"`
}

// ID renders the block identifier, e.g. "OB1".
func (b *Block) ID() string {
	return string(b.Kind) + strconv.Itoa(b.Number)
}

// Program is a fully translated UDML program. Invariant: every instruction
// opcode is drawn from the unified set.
type Program struct {
	Vendor       Vendor    `json:"vendor"`
	Blocks       []Block   `json:"blocks"`
	TranslatedAt time.Time `json:"translated_at"`
}

// BlockComplexity holds the metrics computed for a single block.
type BlockComplexity struct {
	Block        string `json:"block"`
	Instructions int    `json:"instructions"`
	Branches     int    `json:"branches"`
	Cyclomatic   int    `json:"cyclomatic"`
	MaxNesting   int    `json:"max_nesting"`
}

// ComplexityReport is a read-only view derived from a Program.
type ComplexityReport struct {
	InstructionCount int               `json:"instruction_count"`
	BranchCount      int               `json:"branch_count"`
	Cyclomatic       int               `json:"cyclomatic"`
	MaxNestingDepth  int               `json:"max_nesting_depth"`
	Blocks           []BlockComplexity `json:"blocks"`
}
