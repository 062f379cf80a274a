package eval

import "strconv"

// formatInt matches the runtime's rt_builtin_intToString, which uses C's
// "%d" via snprintf.
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatFloat matches the runtime's rt_builtin_floatToString, which uses
// C's "%f" (fixed six fraction digits) via snprintf, so evaluated output
// and lowered-then-compiled output render identically.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
