package engine

// BuiltinNumFmt maps the built-in number-format IDs shared by both file
// families to their patterns. IDs outside this table are custom formats.
var BuiltinNumFmt = map[int]string{
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "m/d/yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
}

var builtinNumFmtID = func() map[string]int {
	out := make(map[string]int, len(BuiltinNumFmt))
	for id, pattern := range BuiltinNumFmt {
		out[pattern] = id
	}
	return out
}()

// BuiltinNumFmtID reports the built-in ID for a pattern, if one exists.
func BuiltinNumFmtID(pattern string) (int, bool) {
	id, ok := builtinNumFmtID[pattern]
	return id, ok
}
