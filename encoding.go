// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// EOLStyle selects the line terminator an OutputEncoder writes.
type EOLStyle int

const (
	EOLUnix EOLStyle = iota // "\n"
	EOLDOS                  // "\r\n"
	EOLMac                  // "\r"
)

func (e EOLStyle) bytes() []byte {
	switch e {
	case EOLDOS:
		return []byte("\r\n")
	case EOLMac:
		return []byte("\r")
	default:
		return []byte("\n")
	}
}

// OutputEncoder maps a Unicode code point sequence to output bytes for one
// of the built-in target encodings, or a user-supplied map loaded from
// disk. Unmapped code points are dropped, matching spec's default of
// "unmapped -> empty".
type OutputEncoder struct {
	name string
	enc  func(r rune) ([]byte, bool)
	eol  EOLStyle
}

// NewOutputEncoder returns the built-in encoder named name (matched
// case-insensitively: UTF-8, UCS-2, Latin1, ASCII7, Symbol, ZapfDingbats).
func NewOutputEncoder(name string, eol EOLStyle) (*OutputEncoder, error) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8", "":
		return &OutputEncoder{name: "UTF-8", enc: encodeUTF8, eol: eol}, nil
	case "ucs-2", "ucs2":
		return &OutputEncoder{name: "UCS-2", enc: encodeUCS2, eol: eol}, nil
	case "latin1", "latin-1":
		return &OutputEncoder{name: "Latin1", enc: encodeCharmap(charmap.ISO8859_1), eol: eol}, nil
	case "ascii7", "ascii-7":
		return &OutputEncoder{name: "ASCII7", enc: encodeASCII7, eol: eol}, nil
	case "symbol":
		return &OutputEncoder{name: "Symbol", enc: encodeSymbol, eol: eol}, nil
	case "zapfdingbats", "dingbats":
		return &OutputEncoder{name: "ZapfDingbats", enc: encodeZapfDingbats, eol: eol}, nil
	default:
		return nil, fmt.Errorf("pdf: unknown output encoding %q", name)
	}
}

// LoadMapEncoder builds an OutputEncoder from a user-supplied map file.
// Each line is either "<hex-from> <hex-to>" (a contiguous remap of a single
// code point) or "<hex-begin> <hex-end> <hex-out>" (a range collapsing to
// one output code point, used for e.g. dropping accents to a base letter).
func LoadMapEncoder(r io.Reader, eol EOLStyle) (*OutputEncoder, error) {
	m := map[rune]rune{}
	var ranges []struct{ lo, hi, out rune }

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch len(fields) {
		case 2:
			from, err := parseHexRune(fields[0])
			if err != nil {
				return nil, err
			}
			to, err := parseHexRune(fields[1])
			if err != nil {
				return nil, err
			}
			m[from] = to
		case 3:
			lo, err := parseHexRune(fields[0])
			if err != nil {
				return nil, err
			}
			hi, err := parseHexRune(fields[1])
			if err != nil {
				return nil, err
			}
			out, err := parseHexRune(fields[2])
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, struct{ lo, hi, out rune }{lo, hi, out})
		default:
			return nil, fmt.Errorf("pdf: malformed encoding map line %q", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	enc := func(r rune) ([]byte, bool) {
		if to, ok := m[r]; ok {
			return runeToUTF8Bytes(to), true
		}
		for _, rg := range ranges {
			if r >= rg.lo && r <= rg.hi {
				return runeToUTF8Bytes(rg.out), true
			}
		}
		return nil, false
	}
	return &OutputEncoder{name: "custom", eol: eol, enc: enc}, nil
}

func parseHexRune(s string) (rune, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("pdf: malformed hex code point %q: %w", s, err)
	}
	return rune(n), nil
}

func runeToUTF8Bytes(r rune) []byte {
	return []byte(string(r))
}

// Name reports the encoder's canonical name.
func (e *OutputEncoder) Name() string { return e.name }

// Encode writes s to w, translating each rune through the encoder's target
// encoding and terminating every line with the encoder's EOL style. Unmapped
// runes are silently dropped, per spec's "unmapped -> empty" default.
func (e *OutputEncoder) Encode(w io.Writer, s string) error {
	bw := bufio.NewWriter(w)
	eol := e.eol.bytes()
	for _, line := range strings.Split(s, "\n") {
		for _, r := range line {
			if r == '\r' {
				continue
			}
			b, ok := e.enc(r)
			if !ok {
				continue
			}
			if _, err := bw.Write(b); err != nil {
				return err
			}
		}
		if _, err := bw.Write(eol); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormFeed writes a page-break marker (form feed, 0x0C). It always writes;
// callers decide whether page breaks are wanted.
func (e *OutputEncoder) FormFeed(w io.Writer) error {
	_, err := w.Write([]byte{0x0C})
	return err
}

func encodeUTF8(r rune) ([]byte, bool) {
	return []byte(string(r)), true
}

func encodeUCS2(r rune) ([]byte, bool) {
	if r > 0xFFFF {
		return nil, false // outside the BMP
	}
	return []byte{byte(r >> 8), byte(r)}, true
}

func encodeASCII7(r rune) ([]byte, bool) {
	if r > 0x7F {
		return nil, false
	}
	return []byte{byte(r)}, true
}

func encodeCharmap(cm *charmap.Charmap) func(rune) ([]byte, bool) {
	return func(r rune) ([]byte, bool) {
		b, ok := cm.EncodeRune(r)
		if !ok {
			return nil, false
		}
		return []byte{b}, true
	}
}
