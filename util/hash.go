package util

import (
	"unicode"
	"unicode/utf8"
)

// DJB-style string hash, used to bucket archive paths. The three variants
// must stay consistent with the matching comparison functions below:
// two paths that compare equal must produce the same hash.

// HashPath hashes a path byte-for-byte (case-sensitive lookups).
func HashPath(s string) uint32 {
	hash := uint32(5381)
	for i := 0; i < len(s); i++ {
		hash = ((hash << 5) + hash) ^ uint32(s[i])
	}
	return hash
}

// HashPathFoldASCII hashes a path one byte at a time, folding only
// 'A'..'Z'. Many legacy archive formats store plain US-ASCII names, so
// this avoids UTF-8 decoding on the hot lookup path.
func HashPathFoldASCII(s string) uint32 {
	hash := uint32(5381)
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		hash = ((hash << 5) + hash) ^ uint32(b)
	}
	return hash
}

// HashPathFold hashes a path by UTF-8 codepoint, lowercasing each rune
// before mixing in its encoded bytes.
func HashPathFold(s string) uint32 {
	hash := uint32(5381)
	var buf [utf8.UTFMax]byte
	for _, r := range s {
		n := utf8.EncodeRune(buf[:], unicode.ToLower(r))
		for i := 0; i < n; i++ {
			hash = ((hash << 5) + hash) ^ uint32(buf[i])
		}
	}
	return hash
}

// EqualFoldASCII compares two strings byte-wise, folding only 'A'..'Z'.
func EqualFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// EqualFold compares two strings rune-wise after lowercasing. It uses the
// same folding as HashPathFold so hash and comparison agree on equality.
func EqualFold(a, b string) bool {
	for len(a) > 0 && len(b) > 0 {
		ra, na := utf8.DecodeRuneInString(a)
		rb, nb := utf8.DecodeRuneInString(b)
		if unicode.ToLower(ra) != unicode.ToLower(rb) {
			return false
		}
		a, b = a[na:], b[nb:]
	}
	return len(a) == len(b)
}
