// Package eval implements CL's co-resident type/scope checker and
// tree-walk evaluator, plus the runtime Value/Env model they share.
package eval

import "github.com/clang/cl/token"

// Kind is the closed set of runtime value types a ValueSlot can hold.
// Distinct from token.Type, which also names keywords; Kind is the
// evaluator's own small lattice (spec §3's Type set minus Unknown, which is
// internal to the checker and never observed by user code).
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindFloat
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// KindFromTypeToken maps a type-keyword token to its Kind.
func KindFromTypeToken(tt token.Type) Kind {
	switch tt {
	case token.INT:
		return KindInt
	case token.FLOAT:
		return KindFloat
	case token.STRING:
		return KindString
	case token.BOOL:
		return KindBool
	case token.VOID:
		return KindVoid
	}
	return KindVoid
}

// Value is a tagged scalar. CL has no first-class functions, so unlike the
// teacher's Value type there is no Closure/Continuation/Macro/Pair variant
// here — only the four scalar kinds spec §3 defines, following the direct
// fields style of the teacher's simpler internal Value struct rather than
// its interface{}-payload variant.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	S    string
	B    bool
}

func IntValue(i int64) Value     { return Value{Kind: KindInt, I: i} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, F: f} }
func StringValue(s string) Value { return Value{Kind: KindString, S: s} }
func BoolValue(b bool) Value     { return Value{Kind: KindBool, B: b} }
func VoidValue() Value           { return Value{Kind: KindVoid} }

// String renders a Value the way print/println would.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return formatInt(v.I)
	case KindFloat:
		return formatFloat(v.F)
	case KindString:
		return v.S
	case KindBool:
		if v.B {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
