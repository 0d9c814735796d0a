package udml

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/udmtek/udml-core/internal/domain"
)

// FormatVersion is the current export schema version. Consumers must ignore
// fields they do not recognize so additive changes stay backward-parsable.
const FormatVersion = "1"

type programDoc struct {
	Version  string          `json:"version"`
	Vendor   domain.Vendor   `json:"vendor"`
	Blocks   []domain.Block  `json:"blocks"`
	Metadata programMetadata `json:"metadata"`
}

type programMetadata struct {
	TranslatedAt time.Time `json:"translated_at"`
}

// Marshal serializes a Program into the versioned export document.
func Marshal(p *domain.Program) ([]byte, error) {
	doc := programDoc{
		Version:  FormatVersion,
		Vendor:   p.Vendor,
		Blocks:   p.Blocks,
		Metadata: programMetadata{TranslatedAt: p.TranslatedAt},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Unmarshal parses an export document back into a Program, enforcing the
// unified-opcode invariant: a document carrying any opcode outside the
// unified set is rejected.
func Unmarshal(data []byte) (*domain.Program, error) {
	var doc programDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse program document: %w", err)
	}
	if doc.Version == "" {
		return nil, fmt.Errorf("program document missing version")
	}
	if doc.Vendor == "" {
		return nil, fmt.Errorf("program document missing vendor")
	}
	for bi := range doc.Blocks {
		for ii, ins := range doc.Blocks[bi].Instructions {
			if !ins.Opcode.Valid() {
				return nil, fmt.Errorf("block %s instruction %d: opcode %q not in unified set",
					doc.Blocks[bi].ID(), ii, ins.Opcode)
			}
		}
	}
	return &domain.Program{
		Vendor:       doc.Vendor,
		Blocks:       doc.Blocks,
		TranslatedAt: doc.Metadata.TranslatedAt,
	}, nil
}
