// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

// symbolTable maps the Adobe Symbol font's code points (as used by PDF's
// built-in /Symbol encoding) to Unicode. Codes not listed pass through
// unchanged for the ASCII punctuation/digit range the font shares with
// Latin text, and are otherwise unmapped.
var symbolTable = map[rune]rune{
	0x41: 0x0391, 0x42: 0x0392, 0x47: 0x0393, 0x44: 0x0394, 0x45: 0x0395,
	0x5A: 0x0396, 0x48: 0x0397, 0x51: 0x0398, 0x49: 0x0399, 0x4B: 0x039A,
	0x4C: 0x039B, 0x4D: 0x039C, 0x4E: 0x039D, 0x58: 0x039E, 0x4F: 0x039F,
	0x50: 0x03A0, 0x52: 0x03A1, 0x53: 0x03A3, 0x54: 0x03A4, 0x55: 0x03A5,
	0x46: 0x03A6, 0x43: 0x03A7, 0x59: 0x03A8, 0x57: 0x03A9,

	0x61: 0x03B1, 0x62: 0x03B2, 0x67: 0x03B3, 0x64: 0x03B4, 0x65: 0x03B5,
	0x7A: 0x03B6, 0x68: 0x03B7, 0x71: 0x03B8, 0x69: 0x03B9, 0x6B: 0x03BA,
	0x6C: 0x03BB, 0x6D: 0x03BC, 0x6E: 0x03BD, 0x78: 0x03BE, 0x6F: 0x03BF,
	0x70: 0x03C0, 0x72: 0x03C1, 0x73: 0x03C2, 0x74: 0x03C3, 0x75: 0x03C4,
	0x66: 0x03C6, 0x63: 0x03C7, 0x79: 0x03C8, 0x77: 0x03C9,

	0xB0: 0x00B0, // degree
	0xB1: 0x00B1, // plus-minus
	0xB4: 0x2219, // bullet operator
	0xD7: 0x00D7, // multiplication sign
	0xB8: 0x00F7, // division sign
	0xA3: 0x2264, // less-than-or-equal
	0xB3: 0x2265, // greater-than-or-equal
	0xB9: 0x2260, // not equal
	0xC5: 0x2229, // intersection
	0xC8: 0x222A, // union
	0xA5: 0x221E, // infinity
	0xD6: 0x221A, // radical
	0xA6: 0x0192, // function (florin)
	0xE5: 0x2211, // summation
	0xD0: 0x2212, // minus sign
	0xD5: 0x221D, // proportional to
	0xC4: 0x2295, // circled plus
	0xB5: 0x00D7, // multiply (alt.)
}

// zapfDingbatsTable maps the Adobe ZapfDingbats font's code points to
// Unicode's Dingbats block (U+2700-U+27BF) and a few Miscellaneous Symbols.
var zapfDingbatsTable = map[rune]rune{
	0x20: 0x0020, // space
	0x21: 0x2701, 0x22: 0x2702, 0x23: 0x2703, 0x24: 0x2704, 0x25: 0x260E,
	0x26: 0x2706, 0x27: 0x2707, 0x28: 0x2708, 0x29: 0x2709, 0x2A: 0x261B,
	0x2B: 0x261E, 0x2C: 0x270C, 0x2D: 0x270D, 0x2E: 0x270E, 0x2F: 0x270F,
	0x30: 0x2710, 0x31: 0x2711, 0x32: 0x2712, 0x33: 0x2713, 0x34: 0x2714,
	0x35: 0x2715, 0x36: 0x2716, 0x37: 0x2717, 0x38: 0x2718, 0x39: 0x2719,
	0x41: 0x2721, 0x42: 0x2722, 0x43: 0x2723, 0x44: 0x2724, 0x45: 0x2725,
	0x76: 0x2776, 0x77: 0x2777, 0x78: 0x2778, 0x79: 0x2779, 0x7A: 0x277A,
}

func encodeSymbol(r rune) ([]byte, bool) {
	return encodeSingleByteTable(symbolTable, r)
}

func encodeZapfDingbats(r rune) ([]byte, bool) {
	return encodeSingleByteTable(zapfDingbatsTable, r)
}

// encodeSingleByteTable inverts the code->Unicode table to find the byte
// that produces r, falling back to a direct ASCII pass-through for the
// ranges both fonts share with plain Latin text (space, digits, basic
// punctuation below 0x41).
func encodeSingleByteTable(table map[rune]rune, r rune) ([]byte, bool) {
	for code, u := range table {
		if u == r {
			return []byte{byte(code)}, true
		}
	}
	if r < 0x41 && r < 0x80 {
		return []byte{byte(r)}, true
	}
	return nil, false
}
