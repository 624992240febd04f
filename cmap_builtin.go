package pdf

import "strings"

// identityCMap implements the Identity-H/Identity-V built-in encodings
// (ISO 32000-1 §9.7.5.2): every code is its own CID, decoded as a
// fixed-width big-endian value.
type identityCMap struct {
	width int
}

func (e *identityCMap) Decode(raw string) string {
	w := e.width
	if w <= 0 {
		w = 2
	}
	b := []byte(raw)
	var sb strings.Builder
	sb.Grow(len(b) / w)
	for i := 0; i+w <= len(b); i += w {
		var code rune
		for j := 0; j < w; j++ {
			code = code<<8 | rune(b[i+j])
		}
		sb.WriteRune(code)
	}
	return sb.String()
}

// predefinedCMaps holds the two encodings every CID-keyed font is required
// to support without an external CMap resource.
var predefinedCMaps = map[string]TextEncoding{
	"Identity-H": &identityCMap{width: 2},
	"Identity-V": &identityCMap{width: 2},
}

// builtinCMapEncoding resolves the fixed Identity-H/Identity-V encodings
// that don't go through the predefined-CMap registry.
func builtinCMapEncoding(name string) TextEncoding {
	return predefinedCMaps[name]
}
