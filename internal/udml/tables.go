package udml

import "github.com/udmtek/udml-core/internal/domain"

// mapping binds one vendor mnemonic to the unified set. negate marks
// mnemonics with built-in negation (AN, LDI, XIO, ...) so the translated
// instruction carries an explicit flag instead of a vendor-only spelling.
type mapping struct {
	op     domain.Opcode
	negate bool
}

var siemensTable = map[string]mapping{
	"A":    {op: domain.OpAnd},
	"AN":   {op: domain.OpAnd, negate: true},
	"O":    {op: domain.OpOr},
	"ON":   {op: domain.OpOr, negate: true},
	"X":    {op: domain.OpXor},
	"XN":   {op: domain.OpXor, negate: true},
	"=":    {op: domain.OpStore},
	"L":    {op: domain.OpLoad},
	"T":    {op: domain.OpStore},
	"S":    {op: domain.OpSet},
	"R":    {op: domain.OpReset},
	"+I":   {op: domain.OpAdd},
	"-I":   {op: domain.OpSub},
	"*I":   {op: domain.OpMul},
	"/I":   {op: domain.OpDiv},
	"MOD":  {op: domain.OpMod},
	"NEGI": {op: domain.OpNeg},
	"ABS":  {op: domain.OpAbs},
	"SLW":  {op: domain.OpShl},
	"SRW":  {op: domain.OpShr},
	"==I":  {op: domain.OpEq},
	"<>I":  {op: domain.OpNe},
	">I":   {op: domain.OpGt},
	"<I":   {op: domain.OpLt},
	">=I":  {op: domain.OpGe},
	"<=I":  {op: domain.OpLe},
	"SD":   {op: domain.OpTon},
	"SF":   {op: domain.OpTof},
	"SP":   {op: domain.OpTp},
	"ZV":   {op: domain.OpCtu},
	"ZR":   {op: domain.OpCtd},
	"JU":   {op: domain.OpJmp},
	"JC":   {op: domain.OpJnz},
	"JCN":  {op: domain.OpJz},
	"CALL": {op: domain.OpCall},
	"BE":   {op: domain.OpRet},
	"LBL":  {op: domain.OpLabel},
	"LPI":  {op: domain.OpReadIO},
	"TPQ":  {op: domain.OpWriteIO},
	"NOP":  {op: domain.OpNop},
}

var mitsubishiTable = map[string]mapping{
	"LD":   {op: domain.OpLoad},
	"LDI":  {op: domain.OpLoad, negate: true},
	"AND":  {op: domain.OpAnd},
	"ANI":  {op: domain.OpAnd, negate: true},
	"OR":   {op: domain.OpOr},
	"ORI":  {op: domain.OpOr, negate: true},
	"OUT":  {op: domain.OpStore},
	"SET":  {op: domain.OpSet},
	"RST":  {op: domain.OpReset},
	"MOV":  {op: domain.OpMove},
	"ADD":  {op: domain.OpAdd},
	"SUB":  {op: domain.OpSub},
	"MUL":  {op: domain.OpMul},
	"DIV":  {op: domain.OpDiv},
	"CMP":  {op: domain.OpEq},
	"TON":  {op: domain.OpTon},
	"CNT":  {op: domain.OpCtu},
	"CJ":   {op: domain.OpJnz},
	"CALL": {op: domain.OpCall},
	"RET":  {op: domain.OpRet},
	"LBL":  {op: domain.OpLabel},
	"NOP":  {op: domain.OpNop},
}

var rockwellTable = map[string]mapping{
	"XIC":  {op: domain.OpLoad},
	"XIO":  {op: domain.OpLoad, negate: true},
	"OTE":  {op: domain.OpStore},
	"OTL":  {op: domain.OpSet},
	"OTU":  {op: domain.OpReset},
	"MOV":  {op: domain.OpMove},
	"TON":  {op: domain.OpTon},
	"TOF":  {op: domain.OpTof},
	"CTU":  {op: domain.OpCtu},
	"CTD":  {op: domain.OpCtd},
	"ADD":  {op: domain.OpAdd},
	"SUB":  {op: domain.OpSub},
	"MUL":  {op: domain.OpMul},
	"DIV":  {op: domain.OpDiv},
	"EQU":  {op: domain.OpEq},
	"NEQ":  {op: domain.OpNe},
	"GRT":  {op: domain.OpGt},
	"LES":  {op: domain.OpLt},
	"GEQ":  {op: domain.OpGe},
	"LEQ":  {op: domain.OpLe},
	"JSR":  {op: domain.OpCall},
	"JMP":  {op: domain.OpJmp},
	"LBL":  {op: domain.OpLabel},
	"NOP":  {op: domain.OpNop},
}

var lsTable = map[string]mapping{
	"LD":   {op: domain.OpLoad},
	"LDN":  {op: domain.OpLoad, negate: true},
	"OUT":  {op: domain.OpStore},
	"AND":  {op: domain.OpAnd},
	"OR":   {op: domain.OpOr},
	"SET":  {op: domain.OpSet},
	"RST":  {op: domain.OpReset},
	"MOV":  {op: domain.OpMove},
	"ADD":  {op: domain.OpAdd},
	"SUB":  {op: domain.OpSub},
	"CALL": {op: domain.OpCall},
	"NOP":  {op: domain.OpNop},
}

var omronTable = map[string]mapping{
	"LD":     {op: domain.OpLoad},
	"LD NOT": {op: domain.OpLoad, negate: true},
	"OUT":    {op: domain.OpStore},
	"AND":    {op: domain.OpAnd},
	"OR":     {op: domain.OpOr},
	"SET":    {op: domain.OpSet},
	"RSET":   {op: domain.OpReset},
	"MOV":    {op: domain.OpMove},
	"ADD":    {op: domain.OpAdd},
	"SUB":    {op: domain.OpSub},
	"NOP":    {op: domain.OpNop},
}

var vendorTables = map[domain.Vendor]map[string]mapping{
	domain.VendorSiemens:    siemensTable,
	domain.VendorMitsubishi: mitsubishiTable,
	domain.VendorRockwell:   rockwellTable,
	domain.VendorLS:         lsTable,
	domain.VendorOmron:      omronTable,
}
