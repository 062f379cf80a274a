package eval

import (
	"math"

	"github.com/clang/cl/token"
)

// resolveBinaryType implements spec §4.3's operator resolution table,
// grounded on original_source/compiler/c_runtime/rustmm_operators.h (the
// authoritative list of which (lhs,op,rhs) combinations the runtime ABI
// actually exposes) and original_source/interpreter/src/types.rs's
// Operations trait for the semantic mapping. Returns the result Kind, or
// an error if the combination is illegal.
func resolveBinaryType(lhs Kind, op token.Type, rhs Kind) (Kind, error) {
	numeric := func(k Kind) bool { return k == KindInt || k == KindFloat }

	switch op {
	case token.PLUS:
		switch {
		case lhs == KindInt && rhs == KindInt:
			return KindInt, nil
		case numeric(lhs) && numeric(rhs):
			return KindFloat, nil
		case lhs == KindString && rhs == KindString:
			return KindString, nil
		}
		return 0, illegalOp("+", lhs, rhs)

	case token.MINUS, token.STAR, token.SLASH:
		switch {
		case lhs == KindInt && rhs == KindInt:
			return KindInt, nil
		case numeric(lhs) && numeric(rhs):
			return KindFloat, nil
		}
		return 0, illegalOp(opSymbol(op), lhs, rhs)

	case token.EQ, token.NEQ:
		switch {
		case numeric(lhs) && numeric(rhs):
			return KindBool, nil
		case lhs == KindString && rhs == KindString:
			return KindBool, nil
		case lhs == KindBool && rhs == KindBool:
			return KindBool, nil
		}
		return 0, illegalOp(opSymbol(op), lhs, rhs)

	case token.LT, token.GT, token.LE, token.GE:
		if numeric(lhs) && numeric(rhs) {
			return KindBool, nil
		}
		return 0, illegalOp(opSymbol(op), lhs, rhs)

	case token.AND, token.OR:
		if lhs == KindBool && rhs == KindBool {
			return KindBool, nil
		}
		return 0, illegalOp(opSymbol(op), lhs, rhs)
	}

	return 0, &IllegalOperation{Msg: "unknown operator " + opSymbol(op)}
}

func illegalOp(sym string, lhs, rhs Kind) error {
	return &IllegalOperation{Msg: sym + " not defined for " + lhs.String() + ", " + rhs.String()}
}

func opSymbol(op token.Type) string {
	switch op {
	case token.PLUS:
		return "+"
	case token.MINUS:
		return "-"
	case token.STAR:
		return "*"
	case token.SLASH:
		return "/"
	case token.EQ:
		return "=="
	case token.NEQ:
		return "!="
	case token.LT:
		return "<"
	case token.GT:
		return ">"
	case token.LE:
		return "<="
	case token.GE:
		return ">="
	case token.AND:
		return "&&"
	case token.OR:
		return "||"
	case token.BANG:
		return "!"
	}
	return op.String()
}

// applyBinary evaluates a binary operator over two already-evaluated
// operands. Short-circuit evaluation of && and || is handled by the
// caller before operands are even evaluated; by the time this function
// runs both operands are real values.
func applyBinary(op token.Type, l, r Value) (Value, error) {
	switch op {
	case token.PLUS:
		if l.Kind == KindString && r.Kind == KindString {
			return StringValue(truncateString(l.S + r.S)), nil
		}
		if l.Kind == KindInt && r.Kind == KindInt {
			return IntValue(wrapInt32(l.I + r.I)), nil
		}
		return FloatValue(asFloat(l) + asFloat(r)), nil

	case token.MINUS:
		if l.Kind == KindInt && r.Kind == KindInt {
			return IntValue(wrapInt32(l.I - r.I)), nil
		}
		return FloatValue(asFloat(l) - asFloat(r)), nil

	case token.STAR:
		if l.Kind == KindInt && r.Kind == KindInt {
			return IntValue(wrapInt32(l.I * r.I)), nil
		}
		return FloatValue(asFloat(l) * asFloat(r)), nil

	case token.SLASH:
		if l.Kind == KindInt && r.Kind == KindInt {
			if r.I == 0 {
				return Value{}, &DivisionByZero{}
			}
			q := l.I / r.I
			// Go's integer division already truncates toward zero.
			return IntValue(wrapInt32(q)), nil
		}
		rf := asFloat(r)
		if rf == 0 {
			return Value{}, &DivisionByZero{}
		}
		return FloatValue(asFloat(l) / rf), nil

	case token.EQ:
		return BoolValue(valuesEqual(l, r)), nil
	case token.NEQ:
		return BoolValue(!valuesEqual(l, r)), nil
	case token.LT:
		return BoolValue(asFloat(l) < asFloat(r)), nil
	case token.GT:
		return BoolValue(asFloat(l) > asFloat(r)), nil
	case token.LE:
		return BoolValue(asFloat(l) <= asFloat(r)), nil
	case token.GE:
		return BoolValue(asFloat(l) >= asFloat(r)), nil
	case token.AND:
		return BoolValue(l.B && r.B), nil
	case token.OR:
		return BoolValue(l.B || r.B), nil
	}
	return Value{}, &IllegalOperation{Msg: "unknown operator " + opSymbol(op)}
}

// wrapInt32 masks an arithmetic result to signed 32-bit range, matching the
// Int type's "signed 32-bit integer semantics" (spec §3) and the C runtime
// ABI's int32_t representation. Value.I is int64 purely so it can also hold
// the unmasked intermediate results of this arithmetic.
func wrapInt32(v int64) int64 {
	return int64(int32(v))
}

func asFloat(v Value) float64 {
	if v.Kind == KindInt {
		return float64(v.I)
	}
	return v.F
}

// valuesEqual follows IEEE float semantics (NaN != NaN even via ==).
func valuesEqual(l, r Value) bool {
	switch {
	case l.Kind == KindString && r.Kind == KindString:
		return l.S == r.S
	case l.Kind == KindBool && r.Kind == KindBool:
		return l.B == r.B
	default:
		lf, rf := asFloat(l), asFloat(r)
		if math.IsNaN(lf) || math.IsNaN(rf) {
			return false
		}
		return lf == rf
	}
}

// truncateString enforces the runtime's 511-byte string capacity (the 512
// byte struct reserves one byte for bookkeeping in the original C layout).
func truncateString(s string) string {
	const limit = 511
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

// applyUnary evaluates CL's one unary operator, ! (Bool only, per spec §4.3
// — there is no unary minus in the grammar).
func applyUnary(op token.Type, v Value) (Value, error) {
	if op != token.BANG {
		return Value{}, &IllegalOperation{Msg: "unknown unary operator " + opSymbol(op)}
	}
	if v.Kind != KindBool {
		return Value{}, &IllegalOperation{Msg: "! not defined for " + v.Kind.String()}
	}
	return BoolValue(!v.B), nil
}
