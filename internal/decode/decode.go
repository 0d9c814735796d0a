// Package decode turns vendor-specific PLC project blobs into normalized
// instruction blocks. Decoders are stateless: the same input always yields
// the same block sequence, ordered by appearance in the source. Decoded
// instructions keep their vendor mnemonic in SourceOp; opcodes stay unset
// until translation.
package decode

import (
	"fmt"
	"sort"

	"github.com/udmtek/udml-core/internal/domain"
)

type Decoder interface {
	Vendor() domain.Vendor
	Decode(raw []byte, model string) ([]domain.Block, error)
}

var decoders = map[domain.Vendor]Decoder{
	domain.VendorSiemens:    &SiemensDecoder{},
	domain.VendorMitsubishi: &MelsecDecoder{},
}

// ForVendor returns the registered decoder for v.
func ForVendor(v domain.Vendor) (Decoder, error) {
	d, ok := decoders[v]
	if !ok {
		return nil, fmt.Errorf("no decoder registered for vendor %q", v)
	}
	return d, nil
}

// Vendors lists the vendor families with a registered decoder.
func Vendors() []domain.Vendor {
	out := make([]domain.Vendor, 0, len(decoders))
	for v := range decoders {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
