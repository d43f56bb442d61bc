package channel

// isSub reports whether needle occurs contiguously somewhere in haystack.
func isSub(haystack, needle []byte) bool {
	if len(needle) == 0 {
		return true
	}

	for len(haystack) > 0 {
		if hasPrefix(haystack, needle) {
			return true
		}
		haystack = haystack[1:]
	}

	return false
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

// roughlyContains reports whether every byte of needle appears in haystack
// in order, not necessarily contiguously -- used to confirm an echoed
// command that a device may have interspersed with pagination, bolding, or
// cursor-move bytes.
func roughlyContains(needle, haystack []byte) bool {
	if isSub(haystack, needle) {
		return true
	}

	if len(haystack) < len(needle) {
		return false
	}

	remaining := haystack

	for _, nb := range needle {
		idx := -1
		for i, hb := range remaining {
			if hb == nb {
				idx = i
				break
			}
		}
		if idx == -1 {
			return false
		}
		remaining = remaining[idx+1:]
	}

	return true
}

func charInCutset(b byte, cutset []byte) bool {
	for _, c := range cutset {
		if b == c {
			return true
		}
	}
	return false
}

// trimCutsetLeft strips leading bytes found in cutset from b.
func trimCutsetLeft(b, cutset []byte) []byte {
	from := 0
	for from < len(b) && charInCutset(b[from], cutset) {
		from++
	}
	return b[from:]
}

// trimCutsetRight strips trailing bytes found in cutset from b.
func trimCutsetRight(b, cutset []byte) []byte {
	to := len(b)
	for to > 0 && charInCutset(b[to-1], cutset) {
		to--
	}
	return b[:to]
}

// trimCutset strips bytes found in cutset from both ends of b.
func trimCutset(b, cutset []byte) []byte {
	return trimCutsetLeft(trimCutsetRight(b, cutset), cutset)
}
