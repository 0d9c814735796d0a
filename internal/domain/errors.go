package domain

import "fmt"

// DecodeError reports a malformed or unsupported vendor binary. It is fatal
// to the decode call that raised it and carries enough context for the
// orchestration layer to surface to an operator.
type DecodeError struct {
	Vendor Vendor
	Reason string
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s (offset %d)", e.Vendor, e.Reason, e.Offset)
}

// UnsupportedOpcodeError aborts a translation: silently dropping an unmapped
// vendor instruction would lose control-flow semantics.
type UnsupportedOpcodeError struct {
	Vendor   Vendor
	Mnemonic string
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("translate %s: unsupported opcode %q", e.Vendor, e.Mnemonic)
}

// InsufficientDataError marks a detector or degradation model that could not
// run because its input lacked a required field or enough history. The
// surrounding analysis skips the source and continues.
type InsufficientDataError struct {
	Source string
	Field  string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: insufficient data: missing %s", e.Source, e.Field)
}
