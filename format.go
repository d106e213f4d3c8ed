// format.go — total, bounded value formatting for snapshots.
//
// safeRepr never panics and never exceeds the configured cap: pretty
// printing is attempted first, then the terse String form, then a fixed
// placeholder. Truncation is cosmetic only.
package stepscript

func safeRepr(v Value, max int) string {
	s, ok := tryFormat(v)
	if !ok {
		s = tryString(v)
	}
	return truncateRepr(s, max)
}

func tryFormat(v Value) (s string, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = "", false
		}
	}()
	return FormatValue(v), true
}

func tryString(v Value) (s string) {
	defer func() {
		if recover() != nil {
			s = "<unprintable>"
		}
	}()
	return v.String()
}

// truncateRepr caps s at max runes, appending "..." when it had to cut.
func truncateRepr(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
