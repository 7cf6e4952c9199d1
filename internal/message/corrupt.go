package message

const (
	corruptWindow = 100
	corruptRatio  = 0.2
)

// IsCorrupt reports whether s looks like binary data rather than text: more
// than 20% of its first 100 characters are control characters (other than
// tab, LF and CR), DEL or the replacement character. Empty text is never
// corrupt.
func IsCorrupt(s string) bool {
	var inspected, bad int
	for _, r := range s {
		if inspected == corruptWindow {
			break
		}
		inspected++
		if (r < 0x20 && r != '\t' && r != '\n' && r != '\r') || r == 0x7f || r == 0xfffd {
			bad++
		}
	}
	if inspected == 0 {
		return false
	}
	return float64(bad) > float64(inspected)*corruptRatio
}

func clean(s string) bool {
	return s != "" && !IsCorrupt(s)
}
