package types

// primitiveKind distinguishes how a basic primitive is represented and
// sized; every name in this table is one of the source language's fixed
// built-in scalar types (spec.md §3).
type primitiveKind uint8

const (
	primInt primitiveKind = iota
	primFloat
	primBool
)

type primitiveInfo struct {
	kind  primitiveKind
	width int // bits, for int/float; bool is always 1-bit in the IR
	bytes int // C2 sizer byte width
}

// primitives is the fixed table of built-in basic type names (spec.md
// §3: "u8,i8,u16,i16,u32,i32,u64,i64,f32,f64,bool,char,usize").
var primitives = map[string]primitiveInfo{
	"u8":    {primInt, 8, 1},
	"i8":    {primInt, 8, 1},
	"u16":   {primInt, 16, 2},
	"i16":   {primInt, 16, 2},
	"u32":   {primInt, 32, 4},
	"i32":   {primInt, 32, 4},
	"u64":   {primInt, 64, 8},
	"i64":   {primInt, 64, 8},
	"usize": {primInt, 64, 8},
	"f32":   {primFloat, 32, 4},
	"f64":   {primFloat, 64, 8},
	"bool":  {primBool, 1, 1},
	"char":  {primInt, 8, 1},
}

// vectorSubtypes is the subset of primitives a Vector's subtype name may
// name; "subtypes other than the enumerated primitive set are a static
// error" (spec.md §4.1).
var vectorSubtypes = map[string]bool{
	"i8": true, "u8": true, "i16": true, "u16": true,
	"i32": true, "u32": true, "i64": true, "u64": true,
	"f32": true, "f64": true,
}

const (
	pointerSize  = 8
	funcPtrSize  = 8
	usizeWidth   = 64
)
