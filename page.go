// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
)

// parseFontStyles parses font name to detect bold, italic, underline styles
func parseFontStyles(fontName string) (bold, italic, underline bool) {
	// Optimized: avoid ToLower allocation by checking both cases inline
	n := len(fontName)

	// Check for "bold" or "black" (case-insensitive, no allocation)
	for i := 0; i+3 < n; i++ {
		c := fontName[i]
		// Check for "bold"
		if (c == 'B' || c == 'b') &&
			(fontName[i+1] == 'O' || fontName[i+1] == 'o') &&
			(fontName[i+2] == 'L' || fontName[i+2] == 'l') &&
			(fontName[i+3] == 'D' || fontName[i+3] == 'd') {
			bold = true
			break
		}
		// Check for "black" (also considered bold)
		if i+4 < n &&
			(c == 'B' || c == 'b') &&
			(fontName[i+1] == 'L' || fontName[i+1] == 'l') &&
			(fontName[i+2] == 'A' || fontName[i+2] == 'a') &&
			(fontName[i+3] == 'C' || fontName[i+3] == 'c') &&
			(fontName[i+4] == 'K' || fontName[i+4] == 'k') {
			bold = true
			break
		}
	}

	// Check for "italic" or "oblique" (case-insensitive, no allocation)
	for i := 0; i+5 < n; i++ {
		c := fontName[i]
		// Check for "italic"
		if (c == 'I' || c == 'i') &&
			(fontName[i+1] == 'T' || fontName[i+1] == 't') &&
			(fontName[i+2] == 'A' || fontName[i+2] == 'a') &&
			(fontName[i+3] == 'L' || fontName[i+3] == 'l') &&
			(fontName[i+4] == 'I' || fontName[i+4] == 'i') &&
			(fontName[i+5] == 'C' || fontName[i+5] == 'c') {
			italic = true
			break
		}
		// Check for "oblique"
		if i+6 < n &&
			(c == 'O' || c == 'o') &&
			(fontName[i+1] == 'B' || fontName[i+1] == 'b') &&
			(fontName[i+2] == 'L' || fontName[i+2] == 'l') &&
			(fontName[i+3] == 'I' || fontName[i+3] == 'i') &&
			(fontName[i+4] == 'Q' || fontName[i+4] == 'q') &&
			(fontName[i+5] == 'U' || fontName[i+5] == 'u') &&
			(fontName[i+6] == 'E' || fontName[i+6] == 'e') {
			italic = true
			break
		}
	}

	underline = false
	return
}

// FontCacheInterface is satisfied by *FontCache; it lets Page accept any
// cache implementation that stores parsed fonts keyed by string.
type FontCacheInterface interface {
	Get(key string) (*Font, bool)
	Set(key string, font *Font)
}

// A Page represent a single page in a PDF file.
// The methods interpret a Page dictionary stored in V.
type Page struct {
	V         Value
	fontCache FontCacheInterface // Optional font cache for performance optimization (interface supports both implementations)
}

// Cleanup releases resources held by the Page, specifically the fontCache reference.
// Call this after processing a page to prevent memory leaks in batch operations.
// This method is safe to call multiple times.
func (p *Page) Cleanup() {
	p.fontCache = nil
}

// Page returns the page for the given page number.
// Page numbers are indexed starting at 1, not 0.
// If the page is not found, Page returns a Page with p.V.IsNull().
func (r *Reader) Page(num int) Page {
	num-- // now 0-indexed
	page := r.Trailer().Key("Root").Key("Pages")
Search:
	for page.Key("Type").Name() == "Pages" {
		count := int(page.Key("Count").Int64())
		if count < num {
			return Page{V: Value{}}
		}
		kids := page.Key("Kids")
		for i := 0; i < kids.Len(); i++ {
			kid := kids.Index(i)
			if kid.Key("Type").Name() == "Pages" {
				c := int(kid.Key("Count").Int64())
				if num < c {
					page = kid
					continue Search
				}
				num -= c
				continue
			}
			if kid.Key("Type").Name() == "Page" {
				if num == 0 {
					return Page{V: kid}
				}
				num--
			}
		}
		break
	}
	return Page{V: Value{}}
}

// NumPage returns the number of pages in the PDF file.
func (r *Reader) NumPage() int {
	return int(r.Trailer().Key("Root").Key("Pages").Key("Count").Int64())
}

// SetFontCache sets a font cache for this page to improve performance
// during text extraction by reusing parsed fonts.
// Deprecated: Use SetFontCacheInterface for better flexibility.
func (p *Page) SetFontCache(cache *FontCache) {
	p.fontCache = cache
}

// SetFontCacheInterface sets the font cache implementation used when resolving fonts.
func (p *Page) SetFontCacheInterface(cache FontCacheInterface) {
	p.fontCache = cache
}

// GetPlainText returns all the text in the PDF file
func (r *Reader) GetPlainText() (reader io.Reader, err error) {
	pages := r.NumPage()

	// Set a reasonable object cache capacity to prevent unlimited growth
	// For sequential page processing, limit cache to prevent memory explosion
	if r.GetCacheCapacity() <= 0 {
		cacheSize := pages * 10
		if cacheSize > 5000 {
			cacheSize = 5000 // Cap at 5000 objects
		}
		r.SetCacheCapacity(cacheSize)
	}

	var buf bytes.Buffer
	fonts := make(map[string]*Font)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		for _, name := range p.Fonts() { // cache fonts so we don't continually parse charmap
			if _, ok := fonts[name]; !ok {
				f := p.Font(name)
				fonts[name] = &f
			}
		}
		text, err := p.GetPlainText(context.Background(), fonts)
		if err != nil {
			return &bytes.Buffer{}, err
		}
		buf.WriteString(text)

		// CRITICAL FIX: Clear Page's fontCache reference after each page to prevent accumulation
		p.Cleanup()
	}

	// CRITICAL FIX: Clear the fonts map and trigger GC after all pages processed
	// This releases memory from accumulated Font objects
	fonts = nil

	return &buf, nil
}

// IsSameSentence reports whether b continues the same run of text as a: same
// font, size and style, on the same baseline, with no more than ordinary
// word-spacing between them.
func IsSameSentence(a, b Text) bool {
	if a.Font != b.Font || a.FontSize != b.FontSize {
		return false
	}
	if a.Bold != b.Bold || a.Italic != b.Italic || a.Underline != b.Underline || a.Vertical != b.Vertical {
		return false
	}
	const lineTolerance = 1.0
	if math.Abs(a.Y-b.Y) > lineTolerance {
		return false
	}
	gap := b.X - (a.X + a.W)
	maxGap := a.FontSize * 0.6
	return gap <= maxGap
}

// GetStyledTexts returns list all sentences in an array, that are included styles
func (r *Reader) GetStyledTexts() (sentences []Text, err error) {
	totalPage := r.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)

		if p.V.IsNull() || p.V.Key("Contents").Kind() == Null {
			continue
		}
		var lastTextStyle Text
		texts := p.Content().Text
		for _, text := range texts {
			if lastTextStyle == (Text{}) {
				lastTextStyle = text
				continue
			}

			if IsSameSentence(lastTextStyle, text) {
				lastTextStyle.S = lastTextStyle.S + text.S
			} else {
				sentences = append(sentences, lastTextStyle)
				lastTextStyle = text
			}
		}
		if len(lastTextStyle.S) > 0 {
			sentences = append(sentences, lastTextStyle)
		}
	}

	return sentences, err
}

func (p Page) findInherited(key string) Value {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return Value{}
}

// defaultPageBox is the US Letter box substituted when a page's MediaBox is
// missing or malformed.
var defaultPageBox = Rect{Point{0, 0}, Point{612, 792}}

// rectFromValue reads a 4-element numeric array (as used by MediaBox,
// CropBox and annotation Rect entries) into a normalized Rect, with Min/Max
// swapped into order if the PDF stored them reversed.
func rectFromValue(v Value) (Rect, bool) {
	if v.Kind() != Array || v.Len() != 4 {
		return Rect{}, false
	}
	var n [4]float64
	for i := 0; i < 4; i++ {
		x := v.Index(i)
		if x.Kind() != Integer && x.Kind() != Real {
			return Rect{}, false
		}
		n[i] = x.Float64()
	}
	x0, y0, x1, y1 := n[0], n[1], n[2], n[3]
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	return Rect{Point{x0, y0}, Point{x1, y1}}, true
}

// MediaBox returns the page's media box, inherited from an ancestor Pages
// node if the page itself doesn't specify one, defaulting to US Letter.
func (p Page) MediaBox() Rect {
	if r, ok := rectFromValue(p.findInherited("MediaBox")); ok {
		return r
	}
	return defaultPageBox
}

// CropBox returns the page's crop box, defaulting to the media box.
func (p Page) CropBox() Rect {
	if r, ok := rectFromValue(p.findInherited("CropBox")); ok {
		return r
	}
	return p.MediaBox()
}

// Rotate returns the page's inherited /Rotate value, normalized to a
// multiple of 90 in [0, 360).
func (p Page) Rotate() int {
	v := p.findInherited("Rotate")
	if v.Kind() != Integer && v.Kind() != Real {
		return 0
	}
	deg := int(v.Float64())
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return (deg / 90) * 90 % 360
}

// Resources returns the resources dictionary associated with the page.
func (p Page) Resources() Value {
	return p.findInherited("Resources")
}

// Fonts returns a list of the fonts associated with the page.
func (p Page) Fonts() []string {
	return p.Resources().Key("Font").Keys()
}

// Font returns the font with the given name associated with the page.
func (p Page) Font(name string) Font {
	fontValue := p.Resources().Key("Font").Key(name)

	// Use global font cache if available
	if p.fontCache != nil {
		// Generate cache key from page resources and font name
		key := fmt.Sprintf("page:%v:font:%s", p.V, name)

		// Try to get from cache
		if cached, ok := p.fontCache.Get(key); ok {
			return *cached
		}

		// Create new font and cache it
		font := Font{V: fontValue}
		p.fontCache.Set(key, &font)
		return font
	}

	// No cache available, return new font
	return Font{V: fontValue}
}

// A Font represent a font in a PDF file.
// The methods interpret a Font dictionary stored in V.
type Font struct {
	V   Value
	enc TextEncoding
	cid *ExtendedCIDFont
}

type fontScope struct {
	fonts  map[string]*Font
	parent *fontScope
}

func (s *fontScope) Get(name string) *Font {
	for scope := s; scope != nil; scope = scope.parent {
		if scope.fonts == nil {
			continue
		}
		if f, ok := scope.fonts[name]; ok {
			return f
		}
	}
	return nil
}

func (p Page) buildFontScope(resources Value, cache map[string]*Font, parent *fontScope) *fontScope {
	scope := &fontScope{parent: parent}
	fontDict := resources.Key("Font")
	if fontDict.Kind() != Dict {
		return scope
	}
	scope.fonts = make(map[string]*Font)
	for _, name := range fontDict.Keys() {
		if cache != nil {
			if f, ok := cache[name]; ok {
				scope.fonts[name] = f
				continue
			}
		}
		fontValue := fontDict.Key(name)
		font := &Font{V: fontValue}
		scope.fonts[name] = font
		if cache != nil {
			cache[name] = font
		}
	}
	return scope
}

// BaseFont returns the font's name (BaseFont property).
func (f Font) BaseFont() string {
	return f.V.Key("BaseFont").Name()
}

// FirstChar returns the code point of the first character in the font.
func (f Font) FirstChar() int {
	return int(f.V.Key("FirstChar").Int64())
}

// LastChar returns the code point of the last character in the font.
func (f Font) LastChar() int {
	return int(f.V.Key("LastChar").Int64())
}

// Widths returns the widths of the glyphs in the font.
// In a well-formed PDF, len(f.Widths()) == f.LastChar()+1 - f.FirstChar().
func (f Font) Widths() []float64 {
	x := f.V.Key("Widths")
	var out []float64
	for i := 0; i < x.Len(); i++ {
		out = append(out, x.Index(i).Float64())
	}
	return out
}

// Width returns the width of the given code point.
func (f *Font) Width(code int) float64 {
	if f.subtype() == "Type0" {
		// Identity-H/V is by far the most common CID encoding in the wild
		// (xpdf and poppler make the same simplifying assumption); CID ==
		// character code holds for it.
		return float64(f.cidFont().GetWidth(code))
	}
	first := f.FirstChar()
	last := f.LastChar()
	if code < first || last < code {
		return 0
	}
	return f.V.Key("Widths").Index(code - first).Float64()
}

// VerticalWidth returns the vertical advance (W2/DW2) for a CID, for fonts
// using vertical writing mode. Returns 0 for non-CID fonts.
func (f *Font) VerticalWidth(code int) float64 {
	if f.subtype() != "Type0" {
		return 0
	}
	return f.cidFont().VerticalWidth(code)
}

// cidFont lazily builds and caches the descendant CID font's width/vertical
// metrics, parsed from its W/DW/W2/DW2 entries.
func (f *Font) cidFont() *ExtendedCIDFont {
	if f.cid == nil {
		f.cid = NewExtendedCIDFont(f.descendantFont())
	}
	return f.cid
}

// Encoder returns the encoding between font code point sequences and UTF-8.
// Pointer receiver is required so the computed encoder is cached on the shared
// Font instance instead of a copy. The previous value-receiver implementation
// rebuilt the encoder for every call, causing large allocations to pile up
// during batch extraction.
func (f *Font) Encoder() TextEncoding {
	if f == nil {
		return nil
	}

	if f.enc == nil { // caching the Encoder so we don't have to continually parse charmap
		f.enc = f.buildEncoder()
		if f.enc == nil {
			f.enc = &nopEncoder{}
		}
	}
	return f.enc
}

func (f *Font) buildEncoder() TextEncoding {
	if f.subtype() == "Type0" {
		if enc := f.type0Encoder(); enc != nil {
			return enc
		}
		return nil
	}
	if f.subtype() == "Type3" {
		if enc := f.cmapEncodingFromValue(f.V.Key("ToUnicode")); enc != nil {
			return enc
		}
		return f.simpleEncoder()
	}
	return f.simpleEncoder()
}

func (f *Font) simpleEncoder() TextEncoding {
	enc := f.V.Key("Encoding")
	switch enc.Kind() {
	case Name:
		switch enc.Name() {
		case "WinAnsiEncoding":
			return &byteEncoder{&winAnsiEncoding}
		case "MacRomanEncoding":
			return &byteEncoder{&macRomanEncoding}
		case "Identity-H":
			return f.charmapEncoding()
		default:
			if DebugOn {
				println("unknown encoding", enc.Name())
			}
			return &nopEncoder{}
		}
	case Dict:
		return &dictEncoder{enc.Key("Differences")}
	case Null:
		return f.charmapEncoding()
	case Stream:
		return f.cmapEncodingFromValue(enc)
	default:
		if DebugOn {
			println("unexpected encoding", enc.String())
		}
		return &nopEncoder{}
	}
}

func (f *Font) type0Encoder() TextEncoding {
	// Prefer ToUnicode if available
	if enc := f.cmapEncodingFromValue(f.V.Key("ToUnicode")); enc != nil {
		return enc
	}

	encoding := f.V.Key("Encoding")
	switch encoding.Kind() {
	case Stream:
		if enc := f.cmapEncodingFromValue(encoding); enc != nil {
			return enc
		}
	case Name:
		if enc := builtinCMapEncoding(encoding.Name()); enc != nil {
			return enc
		}
	case Null:
		// fall through to descendant or builtins
	default:
		if DebugOn {
			fmt.Printf("type0 encoding unexpected kind %s\n", encoding.String())
		}
	}

	// Some documents embed ToUnicode on the descendant font
	if desc := f.descendantFont(); desc.Kind() == Dict {
		if enc := f.cmapEncodingFromValue(desc.Key("ToUnicode")); enc != nil {
			return enc
		}
	}

	// Final fallback to Identity-H encoding
	fallback := "Identity-H"
	if f.writingMode() == 1 {
		fallback = "Identity-V"
	}
	if enc := builtinCMapEncoding(fallback); enc != nil {
		return enc
	}
	return nil
}

func (f Font) cmapEncodingFromValue(v Value) TextEncoding {
	if v.Kind() != Stream {
		return nil
	}
	m := readCmap(v)
	if m == nil {
		return nil
	}
	return m
}

func (f Font) subtype() string {
	return f.V.Key("Subtype").Name()
}

func (f Font) descendantFont() Value {
	desc := f.V.Key("DescendantFonts")
	if desc.Kind() != Array || desc.Len() == 0 {
		return Value{}
	}
	return desc.Index(0)
}

func (f Font) writingMode() int {
	desc := f.descendantFont()
	if desc.Kind() != Dict {
		return 0
	}
	return int(desc.Key("WMode").Int64())
}

func (f *Font) charmapEncoding() TextEncoding {
	if enc := f.cmapEncodingFromValue(f.V.Key("ToUnicode")); enc != nil {
		return enc
	}
	return &byteEncoder{&pdfDocEncoding}
}

type dictEncoder struct {
	v Value
}

func (e *dictEncoder) Decode(raw string) (text string) {
	r := make([]rune, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		ch := rune(raw[i])
		n := -1
		for j := 0; j < e.v.Len(); j++ {
			x := e.v.Index(j)
			if x.Kind() == Integer {
				n = int(x.Int64())
				continue
			}
			if x.Kind() == Name {
				if int(raw[i]) == n {
					r := Type1GlyphNames[x.Name()]
					if r != 0 {
						ch = r
						break
					}
				}
				n++
			}
		}
		r = append(r, ch)
	}
	return string(r)
}

// A TextEncoding represents a mapping between
// font code points and UTF-8 text.
type TextEncoding interface {
	// Decode returns the UTF-8 text corresponding to
	// the sequence of code points in raw.
	Decode(raw string) (text string)
}

type nopEncoder struct {
}

func (e *nopEncoder) Decode(raw string) (text string) {
	return raw
}

type byteEncoder struct {
	table *[256]rune
}

func (e *byteEncoder) Decode(raw string) (text string) {
	r := make([]rune, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		r = append(r, e.table[raw[i]])
	}
	return string(r)
}

// noRune is substituted for a ToUnicode cmap lookup that resolves to no
// mapping, matching the Unicode replacement character convention.
const noRune = '�'

// newDict returns an empty dictionary Value, used as a placeholder pushed
// onto the calculator stack by PostScript cmap operators (findresource,
// begincmap) whose result is never inspected, only popped.
func newDict() Value {
	return Value{data: dict{}}
}

type byteRange struct {
	low  string
	high string
}

type bfchar struct {
	orig string
	repl string
}

type bfrange struct {
	lo  string
	hi  string
	dst Value
}

type cmap struct {
	space   [4][]byteRange // codespace range
	bfrange []bfrange
	bfchar  []bfchar
	use     TextEncoding
}

var cmapRegistry sync.Map

func registerCMap(name string, enc TextEncoding) {
	if name == "" || enc == nil {
		return
	}
	cmapRegistry.Store(name, enc)
}

func lookupCMap(name string) TextEncoding {
	if name == "" {
		return nil
	}
	if v, ok := cmapRegistry.Load(name); ok {
		if enc, ok := v.(TextEncoding); ok {
			return enc
		}
	}
	return nil
}

func (m *cmap) Decode(raw string) (text string) {
	var r []rune
Parse:
	for len(raw) > 0 {
		for n := 1; n <= 4 && n <= len(raw); n++ { // number of digits in character replacement (1-4 possible)
			for _, space := range m.space[n-1] { // find matching codespace Ranges for number of digits
				if space.low <= raw[:n] && raw[:n] <= space.high { // see if value is in range
					text := raw[:n]
					raw = raw[n:]
					for _, bfchar := range m.bfchar { // check for matching bfchar
						if len(bfchar.orig) == n && bfchar.orig == text {
							r = append(r, []rune(utf16Decode(bfchar.repl))...)
							continue Parse
						}
					}
					for _, bfrange := range m.bfrange { // check for matching bfrange
						if len(bfrange.lo) == n && bfrange.lo <= text && text <= bfrange.hi {
							if bfrange.dst.Kind() == String {
								s := bfrange.dst.RawString()
								if bfrange.lo != text { // value isn't at the beginning of the range so scale result
									b := []byte(s)
									b[len(b)-1] += text[len(text)-1] - bfrange.lo[len(bfrange.lo)-1] // increment last byte by difference
									s = string(b)
								}
								r = append(r, []rune(utf16Decode(s))...)
								continue Parse
							}
							if bfrange.dst.Kind() == Array {
								n := text[len(text)-1] - bfrange.lo[len(bfrange.lo)-1]
								v := bfrange.dst.Index(int(n))
								if v.Kind() == String {
									s := v.RawString()
									r = append(r, []rune(utf16Decode(s))...)
									continue Parse
								}
								if DebugOn {
									fmt.Printf("array %v\n", bfrange.dst)
								}
							} else {
								if DebugOn {
									fmt.Printf("unknown dst %v\n", bfrange.dst)
								}
							}
							r = append(r, noRune)
							continue Parse
						}
					}
					if m.use != nil {
						if out := m.use.Decode(text); out != "" {
							r = append(r, []rune(out)...)
							continue Parse
						}
					}
					r = append(r, noRune)
					continue Parse
				}
			}
		}
		if DebugOn {
			println("no code space found")
		}
		r = append(r, noRune)
		raw = raw[1:]
	}
	return string(r)
}

func readCmap(toUnicode Value) *cmap {
	return readCmapWithContext(context.Background(), toUnicode)
}

// readCmapWithContext reads a cmap with context cancellation support.
// If ctx is nil, it uses context.Background().
func readCmapWithContext(ctx context.Context, toUnicode Value) *cmap {
	if ctx == nil {
		ctx = context.Background()
	}
	n := -1
	var m cmap
	ok := true
	var cmapName string
	InterpretWithContext(ctx, toUnicode, func(stk *Stack, op string) {
		if !ok {
			return
		}
		switch op {
		case "findresource":
			stk.Pop() // category
			stk.Pop() // key
			stk.Push(newDict())
		case "begincmap":
			stk.Push(newDict())
		case "endcmap":
			stk.Pop()
		case "begincodespacerange":
			n = int(stk.Pop().Int64())
		case "endcodespacerange":
			if n < 0 {
				if DebugOn {
					println("missing begincodespacerange")
				}
				ok = false
				return
			}
			for i := 0; i < n; i++ {
				hi, lo := stk.Pop().RawString(), stk.Pop().RawString()
				if len(lo) == 0 || len(lo) != len(hi) {
					if DebugOn {
						println("bad codespace range")
					}
					ok = false
					return
				}
				m.space[len(lo)-1] = append(m.space[len(lo)-1], byteRange{lo, hi})
			}
			n = -1
		case "beginbfchar":
			n = int(stk.Pop().Int64())
		case "endbfchar":
			if n < 0 {
				if DebugOn {
					println("missing beginbfchar")
				}
				ok = false
				return
			}
			for i := 0; i < n; i++ {
				repl, orig := stk.Pop().RawString(), stk.Pop().RawString()
				m.bfchar = append(m.bfchar, bfchar{orig, repl})
			}
		case "beginbfrange":
			n = int(stk.Pop().Int64())
		case "endbfrange":
			if n < 0 {
				if DebugOn {
					println("missing beginbfrange")
				}
				ok = false
				return
			}
			for i := 0; i < n; i++ {
				dst, srcHi, srcLo := stk.Pop(), stk.Pop().RawString(), stk.Pop().RawString()
				m.bfrange = append(m.bfrange, bfrange{srcLo, srcHi, dst})
			}
		case "usecmap":
			base := stk.Pop()
			name := base.Name()
			if name == "" {
				name = base.Text()
			}
			if name == "" {
				break
			}
			if enc := builtinCMapEncoding(name); enc != nil {
				m.use = enc
			} else if enc := lookupCMap(name); enc != nil {
				m.use = enc
			} else if DebugOn {
				fmt.Printf("unknown usecmap %s\n", name)
			}
		case "defineresource":
			category := stk.Pop().Name()
			value := stk.Pop()
			key := stk.Pop().Name()
			if category == "CMap" && key != "" {
				cmapName = key
			}
			stk.Push(value)
		default:
			if DebugOn {
				println("interp\t", op)
			}
		}
	})
	if !ok {
		return nil
	}
	if cmapName != "" {
		registerCMap(cmapName, &m)
	}
	return &m
}

type matrix [3][3]float64

var ident = matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

func (x matrix) mul(y matrix) matrix {
	var z matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				z[i][j] += x[i][k] * y[k][j]
			}
		}
	}
	return z
}

func matrixFromValue(v Value) (matrix, bool) {
	if v.Kind() != Array || v.Len() != 6 {
		return matrix{}, false
	}
	var m matrix
	for i := 0; i < 6; i++ {
		m[i/2][i%2] = v.Index(i).Float64()
	}
	m[2][2] = 1
	return m, true
}

func applyMatrixToPoint(m matrix, x, y float64) (float64, float64) {
	px := x*m[0][0] + y*m[1][0] + m[2][0]
	py := x*m[0][1] + y*m[1][1] + m[2][1]
	return px, py
}

// rotationMatrix returns the CTM that implements a page's /Rotate value,
// expressed in this package's row-vector matrix convention, so that it can
// simply seed contentWithFonts's initial CTM and compose naturally with any
// cm operators that follow. w and h are the page's pre-rotation MediaBox
// width and height.
func rotationMatrix(rotate int, w, h float64) matrix {
	switch ((rotate % 360) + 360) % 360 {
	case 90:
		return matrix{{0, -1, 0}, {1, 0, 0}, {0, w, 1}}
	case 180:
		return matrix{{-1, 0, 0}, {0, -1, 0}, {w, h, 1}}
	case 270:
		return matrix{{0, 1, 0}, {-1, 0, 0}, {h, 0, 1}}
	default:
		return ident
	}
}

// rotationFromMatrix2x2 classifies the 2x2 linear part of a rendering
// matrix into the quarter-turn (0-3, clockwise) it represents, per spec
// §4.8's "rotation inferred from the sign pattern of the 2x2 part".
func rotationFromMatrix2x2(a, b, c, d float64) int {
	const eps = 1e-6
	switch {
	case math.Abs(b) < eps && math.Abs(c) < eps:
		if a < 0 && d < 0 {
			return 2
		}
		return 0
	case math.Abs(a) < eps && math.Abs(d) < eps:
		if c < 0 && b > 0 {
			return 3
		}
		return 1
	default:
		return 0
	}
}

// appendDevicePoint transforms a user-space point through m and appends it
// to the path under construction, updating the tracked current point.
func (ce *contentExtractor) appendDevicePoint(m matrix, x, y float64) {
	px, py := applyMatrixToPoint(m, x, y)
	ce.curPt = Point{px, py}
	ce.curPath = append(ce.curPath, ce.curPt)
}

// paintPath finishes the path currently under construction: it records a
// fill rectangle candidate when fill is true (gated on an actual paint
// operator, unlike the teacher's unconditional re-driven Rect append), then
// resolves a pending W/W* clip against the just-finished path, and finally
// clears path-construction state ready for the next subpath.
func (ce *contentExtractor) paintPath(g *gstate, fill bool) {
	bbox, ok := ce.pathBBox()
	if ok && fill {
		ce.rect = append(ce.rect, bbox)
	}
	if ce.clipPending && ok {
		if g.ClipActive {
			g.Clip = intersectRect(g.Clip, bbox)
		} else {
			g.Clip = bbox
			g.ClipActive = true
		}
	}
	ce.clipPending = false
	ce.curPath = nil
}

// pathBBox returns the bounding box of the path currently under
// construction, in device space.
func (ce *contentExtractor) pathBBox() (Rect, bool) {
	if len(ce.curPath) == 0 {
		return Rect{}, false
	}
	r := Rect{ce.curPath[0], ce.curPath[0]}
	for _, pt := range ce.curPath[1:] {
		if pt.X < r.Min.X {
			r.Min.X = pt.X
		}
		if pt.Y < r.Min.Y {
			r.Min.Y = pt.Y
		}
		if pt.X > r.Max.X {
			r.Max.X = pt.X
		}
		if pt.Y > r.Max.Y {
			r.Max.Y = pt.Y
		}
	}
	return r, true
}

// intersectRect returns the intersection of two rects. If they don't
// overlap, the result is degenerate (Min > Max on some axis), matching how
// an empty clip region behaves for subsequent containment checks.
func intersectRect(a, b Rect) Rect {
	r := Rect{
		Min: Point{math.Max(a.Min.X, b.Min.X), math.Max(a.Min.Y, b.Min.Y)},
		Max: Point{math.Min(a.Max.X, b.Max.X), math.Min(a.Max.Y, b.Max.Y)},
	}
	return r
}

// cmyk2rgb converts a CMYK color to RGB using the standard naive formula
// used throughout PDF viewers absent an embedded ICC profile.
func cmyk2rgb(c, m, y, k float64) [3]float64 {
	return [3]float64{
		1 - math.Min(1, c+k),
		1 - math.Min(1, m+k),
		1 - math.Min(1, y+k),
	}
}

// colorFromComponents dispatches on the number of numeric operands left on
// the stack by SC/sc/SCN/scn/RG/rg/K/k to build an RGB color: 1 component is
// gray, 3 is RGB, 4 is CMYK. SCN/scn may carry a trailing pattern name
// operand, which is dropped; pattern and separation color spaces are
// evaluated only enough to choose one of these three component counts.
func colorFromComponents(args []Value) ([3]float64, bool) {
	var nums []float64
	for _, a := range args {
		if a.Kind() == Integer || a.Kind() == Real {
			nums = append(nums, a.Float64())
		}
	}
	switch len(nums) {
	case 1:
		return [3]float64{nums[0], nums[0], nums[0]}, true
	case 3:
		return [3]float64{nums[0], nums[1], nums[2]}, true
	case 4:
		return cmyk2rgb(nums[0], nums[1], nums[2], nums[3]), true
	default:
		return [3]float64{}, false
	}
}

// A Text represents a single piece of text drawn on a page.
type Text struct {
	Font      string     // the font used
	FontSize  float64    // the font size, in points (1/72 of an inch)
	X         float64    // the X coordinate, in points, increasing left to right
	Y         float64    // the Y coordinate, in points, increasing bottom to top
	W         float64    // the width of the text, in points
	S         string     // the actual UTF-8 text
	Vertical  bool       // whether the text is drawn vertically (CJK vertical writing mode)
	Bold      bool       // whether the text is bold
	Italic    bool       // whether the text is italic
	Underline bool       // whether the text is underlined
	LinkURI   string     // URI of an overlapping link annotation, if any
	Seq       int        // order of emission within the content stream
	RGB       [3]float64 // the color (0-1 per channel) the glyph was painted with
	Rotation  int        // quarter turns (0-3) of the rendering matrix, clockwise
	Clipped   bool       // whether an active clip path or text render mode 4-7 applies
	Invisible bool       // whether the text render mode (3 or 7) paints nothing
}

// A Rect represents a rectangle.
type Rect struct {
	Min, Max Point
}

// GetContentExtractorSlices returns a pair of pre-sized, zero-length
// Text/Rect slices for a contentExtractor to accumulate into, avoiding the
// repeated small reallocations append would otherwise do as a page's text
// and rect counts grow from zero.
func GetContentExtractorSlices() ([]Text, []Rect) {
	return make([]Text, 0, 256), make([]Rect, 0, 16)
}

// A Point represents an X, Y pair.
type Point struct {
	X float64
	Y float64
}

// Content describes the basic content on a page: the text and any drawn rectangles.
type Content struct {
	Text []Text
	Rect []Rect
}

type gstate struct {
	Tc    float64
	Tw    float64
	Th    float64
	Tl    float64
	Tf    Font
	Tfs   float64
	Tmode int
	Trise float64
	Tm    matrix
	Tlm   matrix
	Trm   matrix
	CTM   matrix

	LineWidth   float64
	FillColor   [3]float64
	StrokeColor [3]float64
	ClipActive  bool
	Clip        Rect
}

// noClip is the sentinel "no active clip" rectangle, chosen so it behaves as
// an identity element under intersectRect. Rect{}'s zero value would instead
// mean "clipped to nothing", which is wrong for an unclipped gstate.
var noClip = Rect{Point{-1e18, -1e18}, Point{1e18, 1e18}}

// GetPlainText returns the page's all text without format.
// fonts can be passed in (to improve parsing performance) or left nil
// ctx can be used to cancel the extraction operation (pass context.Background() if not needed)
func (p Page) GetPlainText(ctx context.Context, fonts map[string]*Font) (string, error) {
	// Check if context is cancelled before starting expensive operation
	if ctx != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
	}

	// Handle in case the content page is empty
	if p.V.IsNull() || p.V.Key("Contents").Kind() == Null {
		return "", nil
	}

	content, err := p.contentWithFonts(fonts)
	if err != nil {
		return "", wrapError("extract page content", err)
	}

	text := textRunsToPlain(Accumulate(content.Text))

	// p is a copy of the caller's Page, so this clears only the local
	// fontCache reference; the caller's Page keeps its own.
	p.fontCache = nil

	return text, nil
}

// GetPlainTextWithSmartOrdering extracts plain text using an improved text ordering algorithm
// that handles multi-column layouts and complex reading orders.
// ctx can be used to cancel the extraction operation (pass context.Background() if not needed)
func (p Page) GetPlainTextWithSmartOrdering(ctx context.Context, fonts map[string]*Font) (string, error) {
	// Check if context is cancelled before starting expensive operation
	if ctx != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
	}

	// Handle in case the content page is empty
	if p.V.IsNull() || p.V.Key("Contents").Kind() == Null {
		return "", nil
	}

	content, err := p.contentWithFonts(fonts)
	if err != nil {
		return "", wrapError("extract page content", err)
	}

	text := Layout(Accumulate(content.Text), DefaultLayoutOptions())

	// p is a copy of the caller's Page; this clears only the local reference.
	p.fontCache = nil

	return text, nil
}

func textRunsToPlain(texts []Text) string {
	if len(texts) == 0 {
		return ""
	}

	// work on a copy so callers of Content() are not affected by ordering changes
	runs := append([]Text(nil), texts...)
	sort.Sort(TextVertical(runs))

	const lineTolerance = 2.0
	var lines [][]Text
	var currentLine []Text
	var currentCoord float64

	for i, t := range runs {
		lineCoord := effectiveLineCoord(t)
		if i == 0 || math.Abs(lineCoord-currentCoord) <= lineTolerance {
			currentLine = append(currentLine, t)
			if len(currentLine) == 1 {
				currentCoord = lineCoord
			} else {
				currentCoord = (currentCoord*float64(len(currentLine)-1) + lineCoord) / float64(len(currentLine))
			}
			continue
		}
		if len(currentLine) > 0 {
			sort.Slice(currentLine, func(i, j int) bool {
				return effectiveOrderCoord(currentLine[i]) < effectiveOrderCoord(currentLine[j])
			})
			lines = append(lines, currentLine)
		}
		currentLine = []Text{t}
		currentCoord = lineCoord
	}

	if len(currentLine) > 0 {
		sort.Slice(currentLine, func(i, j int) bool {
			return effectiveOrderCoord(currentLine[i]) < effectiveOrderCoord(currentLine[j])
		})
		lines = append(lines, currentLine)
	}

	totalLen := 0
	for _, line := range lines {
		for _, t := range line {
			totalLen += len(t.S) + 1 // +1 for potential space
		}
		totalLen++ // for newline
	}

	var builder strings.Builder
	builder.Grow(totalLen)
	for i, line := range lines {
		appendLine(&builder, line)
		if i < len(lines)-1 {
			builder.WriteByte('\n')
		}
	}
	return strings.TrimSpace(builder.String())
}

func appendLine(builder *strings.Builder, line []Text) {
	const minGap = 0.5
	var prevEnd float64
	hasPrev := false
	allVertical := true
	for _, t := range line {
		if !t.Vertical {
			allVertical = false
			break
		}
	}

	for _, t := range line {
		if hasPrev {
			var gap float64
			if allVertical {
				gap = math.Abs(t.Y - prevEnd)
			} else {
				gap = t.X - prevEnd
			}
			spaceThreshold := math.Max(t.FontSize*0.2, minGap)
			if gap > spaceThreshold && !allVertical {
				builder.WriteByte(' ')
			}
		}
		builder.WriteString(t.S)
		if allVertical {
			prevEnd = t.Y
		} else {
			prevEnd = t.X + t.W
		}
		hasPrev = true
	}
}

//go:inline
func effectiveLineCoord(t Text) float64 {
	if t.Vertical {
		return t.X
	}
	return t.Y
}

//go:inline
func effectiveOrderCoord(t Text) float64 {
	if t.Vertical {
		return -t.Y
	}
	return t.X
}

// Column represents the contents of a column
type Column struct {
	Position int64
	Content  TextVertical
}

// Columns is a list of column
type Columns []*Column

// GetTextByColumn returns the page's all text grouped by column
func (p Page) GetTextByColumn() (Columns, error) {
	var result Columns
	var err error

	defer func() {
		if r := recover(); r != nil {
			result = Columns{}
			err = wrapError("extract text by column", fmt.Errorf("%v", r))
		}
	}()

	showText := func(enc TextEncoding, currentX, currentY float64, s string) {
		var textBuilder bytes.Buffer

		for _, ch := range enc.Decode(s) {
			_, err := textBuilder.WriteRune(ch)
			if err != nil {
				panic(err)
			}
		}
		text := Text{
			S: textBuilder.String(),
			X: currentX,
			Y: currentY,
		}

		var currentColumn *Column
		columnFound := false
		for _, column := range result {
			if int64(currentX) == column.Position {
				currentColumn = column
				columnFound = true
				break
			}
		}

		if !columnFound {
			currentColumn = &Column{
				Position: int64(currentX),
				Content:  TextVertical{},
			}
			result = append(result, currentColumn)
		}

		currentColumn.Content = append(currentColumn.Content, text)
	}

	p.walkTextBlocks(showText)

	for _, column := range result {
		sort.Sort(column.Content)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})

	return result, err
}

// Row represents the contents of a row
type Row struct {
	Position int64
	Content  TextHorizontal
}

// Rows is a list of rows
type Rows []*Row

// GetTextByRow returns the page's all text grouped by rows
func (p Page) GetTextByRow() (Rows, error) {
	var result Rows
	var err error

	defer func() {
		if r := recover(); r != nil {
			result = Rows{}
			err = wrapError("extract text by row", fmt.Errorf("%v", r))
		}
	}()

	showText := func(enc TextEncoding, currentX, currentY float64, s string) {
		var textBuilder bytes.Buffer
		for _, ch := range enc.Decode(s) {
			_, err := textBuilder.WriteRune(ch)
			if err != nil {
				panic(err)
			}
		}

		// if DebugOn {
		// 	fmt.Println(textBuilder.String())
		// }

		text := Text{
			S: textBuilder.String(),
			X: currentX,
			Y: currentY,
		}

		var currentRow *Row
		rowFound := false
		for _, row := range result {
			if int64(currentY) == row.Position {
				currentRow = row
				rowFound = true
				break
			}
		}

		if !rowFound {
			currentRow = &Row{
				Position: int64(currentY),
				Content:  TextHorizontal{},
			}
			result = append(result, currentRow)
		}

		currentRow.Content = append(currentRow.Content, text)
	}

	p.walkTextBlocks(showText)

	for _, row := range result {
		sort.Sort(row.Content)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Position > result[j].Position
	})

	return result, err
}

// Layout returns the page's text reassembled according to opts, using the
// recursive gap-histogram splitter (reading-order and physical/table/
// line-printer modes) or content-stream order (raw mode).
func (p Page) Layout(opts LayoutOptions) (string, error) {
	content, err := p.contentWithFonts(nil)
	if err != nil {
		return "", wrapError("extract page content for layout", err)
	}
	texts := Accumulate(content.Text)
	attachUnderlinesAndLinks(texts, content.Rect, p.linkRects())
	return Layout(texts, opts), nil
}

// Lines returns the page's text grouped into reading-order lines, the unit
// FindText and GetTextInRect operate over.
func (p Page) Lines() ([]Line, error) {
	content, err := p.contentWithFonts(nil)
	if err != nil {
		return nil, wrapError("extract page content for lines", err)
	}
	texts := Accumulate(content.Text)
	attachUnderlinesAndLinks(texts, content.Rect, p.linkRects())
	return Lines(texts, false), nil
}

// linkRects resolves the page's /Annots into a map from target URI to the
// annotation's page-space rectangle, for attachUnderlinesAndLinks. Only
// /Link annotations whose action dictionary is a /URI action are included;
// other action types (GoTo, JavaScript, ...) aren't link targets this
// package surfaces.
func (p Page) linkRects() map[string]Rect {
	annots := p.V.Key("Annots")
	if annots.Kind() != Array || annots.Len() == 0 {
		return nil
	}
	var out map[string]Rect
	for i := 0; i < annots.Len(); i++ {
		a := annots.Index(i)
		if a.Key("Subtype").Name() != "Link" {
			continue
		}
		action := a.Key("A")
		if action.Key("S").Name() != "URI" {
			continue
		}
		uri := action.Key("URI")
		if uri.Kind() != String || uri.Text() == "" {
			continue
		}
		r, ok := rectFromValue(a.Key("Rect"))
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]Rect)
		}
		out[uri.Text()] = r
	}
	return out
}

// FindText searches the page's text in reading order for query, returning
// the bounding box of the first match.
func (p Page) FindText(query string, opts FindTextOptions) (Rect, bool, error) {
	lines, err := p.Lines()
	if err != nil {
		return Rect{}, false, err
	}
	r, ok := FindText(lines, query, opts, nil)
	return r, ok, nil
}

// GetTextInRect returns the text whose runs overlap rect, in reading order.
func (p Page) GetTextInRect(rect Rect) (string, error) {
	lines, err := p.Lines()
	if err != nil {
		return "", err
	}
	return GetText(lines, rect), nil
}

func (p Page) walkTextBlocks(walker func(enc TextEncoding, x, y float64, s string)) {
	// Handle in case the content page is empty
	if p.V.IsNull() || p.V.Key("Contents").Kind() == Null {
		return
	}

	scope := p.buildFontScope(p.Resources(), nil, nil)
	processor := textProcessor{
		page:   p,
		walker: walker,
	}
	processor.process(p.V.Key("Contents"), p.Resources(), scope, ident)
}

type textProcessor struct {
	page   Page
	walker func(enc TextEncoding, x, y float64, s string)
}

func (tp *textProcessor) process(strm Value, resources Value, scope *fontScope, ctm matrix) {
	if strm.Kind() == Null {
		return
	}
	var enc TextEncoding = &nopEncoder{}
	var currentX, currentY float64
	Interpret(strm, func(stk *Stack, op string) {
		n := stk.Len()
		args := make([]Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		default:
			return
		case "T*": // move to start of next line
		case "Tf":
			if len(args) != 2 {
				panic("bad Tf operator")
			}
			if font := scope.Get(args[0].Name()); font != nil {
				enc = font.Encoder()
				if enc == nil {
					enc = &nopEncoder{}
				}
			} else {
				enc = &nopEncoder{}
			}
		case "\"":
			if len(args) != 3 {
				panic("bad \\\" operator")
			}
			fallthrough
		case "'":
			if len(args) != 1 {
				panic("bad ' operator")
			}
			fallthrough
		case "Tj":
			if len(args) != 1 {
				panic("bad Tj operator")
			}
			tp.emit(enc, currentX, currentY, args[0].RawString(), ctm)
		case "TJ":
			v := args[0]
			for i := 0; i < v.Len(); i++ {
				x := v.Index(i)
				if x.Kind() == String {
					tp.emit(enc, currentX, currentY, x.RawString(), ctm)
				}
			}
		case "Td":
			tp.emit(enc, currentX, currentY, "", ctm)
		case "Tm":
			if len(args) != 6 {
				panic("bad Tm operator")
			}
			currentX = args[4].Float64()
			currentY = args[5].Float64()
		case "Do":
			if len(args) != 1 {
				panic("bad Do operator")
			}
			tp.handleDo(args[0], resources, scope, ctm)
		}
	})
}

func (tp *textProcessor) emit(enc TextEncoding, x, y float64, raw string, ctm matrix) {
	if tp.walker == nil {
		return
	}
	tx, ty := applyMatrixToPoint(ctm, x, y)
	tp.walker(enc, tx, ty, raw)
}

func (tp *textProcessor) handleDo(arg Value, resources Value, scope *fontScope, ctm matrix) {
	name := arg.Name()
	if name == "" {
		return
	}
	xobjects := resources.Key("XObject")
	if xobjects.Kind() != Dict {
		return
	}
	xobj := xobjects.Key(name)
	if xobj.Kind() != Stream || xobj.Key("Subtype").Name() != "Form" {
		return
	}
	formRes := xobj.Key("Resources")
	if formRes.Kind() == Null {
		formRes = resources
	}
	childScope := tp.page.buildFontScope(formRes, nil, scope)
	childCTM := ctm
	if m, ok := matrixFromValue(xobj.Key("Matrix")); ok {
		childCTM = m.mul(childCTM)
	}
	tp.process(xobj, formRes, childScope, childCTM)
}

// Content returns the page's content.
func (p Page) Content() Content {
	content, _ := p.contentWithFonts(nil)
	return content
}

func (p Page) contentWithFonts(fonts map[string]*Font) (Content, error) {
	var content Content
	var err error
	var scope *fontScope

	// Recover from panics in content stream processing and convert to errors
	defer func() {
		if r := recover(); r != nil {
			content = Content{}
			err = wrapError("process content stream", fmt.Errorf("%v", r))
		}
		// CRITICAL FIX: Clear scope references to break potential circular references
		// and allow GC to reclaim font objects. This prevents accumulation of Font
		// objects across multiple page extractions.
		if scope != nil {
			scope.fonts = nil
			scope.parent = nil
		}
	}()

	// Handle in case the content page is empty
	if p.V.IsNull() || p.V.Key("Contents").Kind() == Null {
		return Content{}, nil
	}

	textSlice, rectSlice := GetContentExtractorSlices()
	extractor := contentExtractor{page: p, text: textSlice, rect: rectSlice}
	scope = p.buildFontScope(p.Resources(), fonts, nil)
	box := p.MediaBox()
	w, h := box.Max.X-box.Min.X, box.Max.Y-box.Min.Y
	initial := gstate{
		Th:   1,
		CTM:  rotationMatrix(p.Rotate(), w, h),
		Clip: noClip,
	}
	extractor.process(p.V.Key("Contents"), p.Resources(), scope, initial)
	texts := extractor.text
	if len(extractor.actualText) > 0 {
		ranges := extractor.atRanges
		replaced := func(t Text) bool {
			for _, r := range ranges {
				if t.Seq >= r.Start && t.Seq < r.End {
					return true
				}
			}
			return false
		}
		texts = ApplyActualText(texts, extractor.actualText, replaced)
	}
	content = Content{texts, extractor.rect}
	return content, err
}

type contentExtractor struct {
	page       Page
	text       []Text
	rect       []Rect
	textCap    int // Track capacity to avoid frequent reallocations
	growHint   int // Hint for next growth size
	seq        int // monotonically increasing emission order, for raw-order mode
	actualText []ActualTextSpan
	atRanges   []seqRange // Seq range each actualText entry replaces, parallel to actualText

	// Path construction state. This lives on the extractor rather than
	// gstate: q/Q save and restore graphics state parameters, not the path
	// currently under construction (ISO 32000-1 §8.4.1).
	curPath      []Point
	curPathStart Point
	curPt        Point
	clipPending  bool
}

// seqRange is a half-open [Start, End) range of Text.Seq values.
type seqRange struct {
	Start, End int
}

// actualTextMarker tracks one nested BDC/EMC marked-content span while its
// body is being processed, so EMC can tell whether the span carried an
// /ActualText property and, if so, splice in its substitute text.
type actualTextMarker struct {
	hasText  bool
	text     string
	startSeq int
	font     string
	fontSize float64
}

// actualTextProperty resolves the /ActualText entry of a BDC operator's
// properties operand, which is either an inline dict or a name looked up in
// the page resources' /Properties dict (ISO 32000-1 §14.6.2).
func actualTextProperty(props, resources Value) (string, bool) {
	switch props.Kind() {
	case Dict:
		// already resolved
	case Name:
		props = resources.Key("Properties").Key(props.Name())
	default:
		return "", false
	}
	at := props.Key("ActualText")
	if at.Kind() != String {
		return "", false
	}
	return at.Text(), true
}

func (ce *contentExtractor) process(strm Value, resources Value, scope *fontScope, initial gstate) {
	if strm.Kind() == Null {
		return
	}
	g := initial
	var enc TextEncoding = &nopEncoder{}
	var gstack []gstate
	var mcStack []actualTextMarker
	Interpret(strm, func(stk *Stack, op string) {
		n := stk.Len()
		args := make([]Value, n)
		for i := n - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		switch op {
		default:
			return

		case "BMC":
			mcStack = append(mcStack, actualTextMarker{})

		case "BDC":
			marker := actualTextMarker{startSeq: ce.seq, font: g.Tf.BaseFont(), fontSize: g.Tfs * g.Th}
			if len(args) == 2 {
				if text, ok := actualTextProperty(args[1], resources); ok {
					marker.hasText = true
					marker.text = text
				}
			}
			mcStack = append(mcStack, marker)

		case "EMC":
			if len(mcStack) == 0 {
				return
			}
			marker := mcStack[len(mcStack)-1]
			mcStack = mcStack[:len(mcStack)-1]
			if !marker.hasText {
				return
			}
			ce.finishActualText(marker)

		case "cm":
			if len(args) != 6 {
				panic("bad cm operator")
			}
			var m matrix
			for i := 0; i < 6; i++ {
				m[i/2][i%2] = args[i].Float64()
			}
			m[2][2] = 1
			g.CTM = m.mul(g.CTM)

		case "w":
			if len(args) != 1 {
				panic("bad w")
			}
			g.LineWidth = args[0].Float64()

		case "J", "j", "M", "ri", "i":
			// Line cap/join/miter-limit, rendering intent and flatness only
			// affect rasterized appearance, not extracted text or geometry.

		case "d":
			// Dash pattern: affects stroke appearance only.

		case "gs":
			// ExtGState dict lookup: ca/CA (alpha) and soft masks don't
			// affect the text/rect geometry this extractor produces.

		case "m":
			if len(args) != 2 {
				panic("bad m")
			}
			px, py := applyMatrixToPoint(g.CTM, args[0].Float64(), args[1].Float64())
			pt := Point{px, py}
			ce.curPath = append(ce.curPath, pt)
			ce.curPathStart = pt
			ce.curPt = pt

		case "l":
			if len(args) != 2 {
				panic("bad l")
			}
			px, py := applyMatrixToPoint(g.CTM, args[0].Float64(), args[1].Float64())
			ce.curPt = Point{px, py}
			ce.curPath = append(ce.curPath, ce.curPt)

		case "c":
			// Cubic Bezier with two explicit control points; only the
			// control and end points are tracked, enough to bound the path.
			if len(args) != 6 {
				panic("bad c")
			}
			ce.appendDevicePoint(g.CTM, args[0].Float64(), args[1].Float64())
			ce.appendDevicePoint(g.CTM, args[2].Float64(), args[3].Float64())
			ce.appendDevicePoint(g.CTM, args[4].Float64(), args[5].Float64())

		case "v":
			// First control point coincides with the current point, which
			// the preceding m/l/re already contributed to curPath.
			if len(args) != 4 {
				panic("bad v")
			}
			ce.appendDevicePoint(g.CTM, args[0].Float64(), args[1].Float64())
			ce.appendDevicePoint(g.CTM, args[2].Float64(), args[3].Float64())

		case "y":
			// Second control point coincides with the end point.
			if len(args) != 4 {
				panic("bad y")
			}
			ce.appendDevicePoint(g.CTM, args[0].Float64(), args[1].Float64())
			ce.appendDevicePoint(g.CTM, args[2].Float64(), args[3].Float64())

		case "h":
			ce.curPath = append(ce.curPath, ce.curPathStart)
			ce.curPt = ce.curPathStart

		case "re":
			if len(args) != 4 {
				panic("bad re")
			}
			x, y, w, h := args[0].Float64(), args[1].Float64(), args[2].Float64(), args[3].Float64()
			for _, corner := range [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}} {
				px, py := applyMatrixToPoint(g.CTM, corner[0], corner[1])
				ce.curPath = append(ce.curPath, Point{px, py})
			}
			ce.curPathStart = ce.curPath[len(ce.curPath)-4]
			ce.curPt = ce.curPathStart

		case "S", "s":
			ce.paintPath(&g, false)

		case "f", "F", "f*", "B", "b", "B*", "b*":
			ce.paintPath(&g, true)

		case "n":
			ce.paintPath(&g, false)

		case "W", "W*":
			// The nonzero/even-odd distinction doesn't affect a rectangular
			// bounding-box clip, so both set the same pending-clip flag.
			ce.clipPending = true

		case "CS":
			// Selecting a new stroke color space resets the stroke color
			// to black until the next SC/SCN (ISO 32000-1 §8.6.8).
			g.StrokeColor = [3]float64{}

		case "cs":
			g.FillColor = [3]float64{}

		case "G":
			if len(args) == 1 {
				g.StrokeColor = [3]float64{args[0].Float64(), args[0].Float64(), args[0].Float64()}
			}

		case "g":
			if len(args) == 1 {
				g.FillColor = [3]float64{args[0].Float64(), args[0].Float64(), args[0].Float64()}
			}

		case "RG":
			if c, ok := colorFromComponents(args); ok {
				g.StrokeColor = c
			}

		case "rg":
			if c, ok := colorFromComponents(args); ok {
				g.FillColor = c
			}

		case "K":
			if c, ok := colorFromComponents(args); ok {
				g.StrokeColor = c
			}

		case "k":
			if c, ok := colorFromComponents(args); ok {
				g.FillColor = c
			}

		case "SC", "SCN":
			if c, ok := colorFromComponents(args); ok {
				g.StrokeColor = c
			}

		case "sc", "scn":
			if c, ok := colorFromComponents(args); ok {
				g.FillColor = c
			}

		case "q":
			gstack = append(gstack, g)

		case "Q":
			if len(gstack) == 0 {
				return
			}
			g = gstack[len(gstack)-1]
			gstack = gstack[:len(gstack)-1]

		case "BT":
			g.Tm = ident
			g.Tlm = g.Tm

		case "ET":
		case "T*":
			x := matrix{{1, 0, 0}, {0, 1, 0}, {0, -g.Tl, 1}}
			g.Tlm = x.mul(g.Tlm)
			g.Tm = g.Tlm

		case "Tc":
			if len(args) != 1 {
				panic("bad Tc")
			}
			g.Tc = args[0].Float64()

		case "TD":
			if len(args) != 2 {
				panic("bad TD")
			}
			g.Tl = -args[1].Float64()
			fallthrough
		case "Td":
			if len(args) != 2 {
				panic("bad Td")
			}
			tx := args[0].Float64()
			ty := args[1].Float64()
			x := matrix{{1, 0, 0}, {0, 1, 0}, {tx, ty, 1}}
			g.Tlm = x.mul(g.Tlm)
			g.Tm = g.Tlm

		case "Tf":
			if len(args) != 2 {
				panic("bad Tf")
			}
			name := args[0].Name()
			if font := scope.Get(name); font != nil {
				g.Tf = *font
				enc = g.Tf.Encoder()
				if enc == nil {
					enc = &nopEncoder{}
				}
			} else {
				g.Tf = Font{}
				enc = &nopEncoder{}
			}
			g.Tfs = args[1].Float64()

		case "\"":
			if len(args) != 3 {
				panic("bad \\\" operator")
			}
			g.Tw = args[0].Float64()
			g.Tc = args[1].Float64()
			args = args[2:]
			fallthrough
		case "'":
			if len(args) != 1 {
				panic("bad ' operator")
			}
			x := matrix{{1, 0, 0}, {0, 1, 0}, {0, -g.Tl, 1}}
			g.Tlm = x.mul(g.Tlm)
			g.Tm = g.Tlm
			fallthrough
		case "Tj":
			if len(args) != 1 {
				panic("bad Tj operator")
			}
			ce.appendText(&g, enc, args[0].RawString())

		case "TJ":
			v := args[0]
			for i := 0; i < v.Len(); i++ {
				x := v.Index(i)
				if x.Kind() == String {
					ce.appendText(&g, enc, x.RawString())
				} else {
					tx := -x.Float64() / 1000 * g.Tfs * g.Th
					g.Tm = matrix{{1, 0, 0}, {0, 1, 0}, {tx, 0, 1}}.mul(g.Tm)
				}
			}
			ce.appendText(&g, enc, "\n")

		case "TL":
			if len(args) != 1 {
				panic("bad TL")
			}
			g.Tl = args[0].Float64()

		case "Tm":
			if len(args) != 6 {
				panic("bad Tm")
			}
			var m matrix
			for i := 0; i < 6; i++ {
				m[i/2][i%2] = args[i].Float64()
			}
			m[2][2] = 1
			g.Tm = m
			g.Tlm = m

		case "Tr":
			if len(args) != 1 {
				panic("bad Tr")
			}
			g.Tmode = int(args[0].Int64())

		case "Ts":
			if len(args) != 1 {
				panic("bad Ts")
			}
			g.Trise = args[0].Float64()

		case "Tw":
			if len(args) != 1 {
				panic("bad Tw")
			}
			g.Tw = args[0].Float64()

		case "Tz":
			if len(args) != 1 {
				panic("bad Tz")
			}
			g.Th = args[0].Float64() / 100

		case "Do":
			if len(args) != 1 {
				panic("bad Do")
			}
			ce.handleDo(args[0], resources, scope, g)
		}
	})
}

// finishActualText records an ActualTextSpan for a BDC/EMC span that just
// closed, using the midpoint of whatever characters it painted (if any) as
// the substitute text's position.
func (ce *contentExtractor) finishActualText(marker actualTextMarker) {
	var sumX, sumY float64
	count := 0
	for i := len(ce.text) - 1; i >= 0 && ce.text[i].Seq >= marker.startSeq; i-- {
		sumX += ce.text[i].X
		sumY += ce.text[i].Y
		count++
	}
	span := ActualTextSpan{
		Text:     marker.text,
		Font:     marker.font,
		FontSize: marker.fontSize,
	}
	if count > 0 {
		span.MidX = sumX / float64(count)
		span.MidY = sumY / float64(count)
	}
	ce.actualText = append(ce.actualText, span)
	ce.atRanges = append(ce.atRanges, seqRange{Start: marker.startSeq, End: ce.seq})
}

func (ce *contentExtractor) appendText(g *gstate, enc TextEncoding, s string) {
	if enc == nil {
		enc = &nopEncoder{}
	}

	decoded := enc.Decode(s)
	decodedLen := len(decoded)
	if decodedLen == 0 {
		return
	}

	vertical := g.Tf.writingMode() == 1

	// Aggressive pre-allocation strategy to minimize reallocations
	oldLen := len(ce.text)
	newLen := oldLen + decodedLen

	// Only reallocate if necessary
	if cap(ce.text) < newLen {
		// Use adaptive growth strategy based on usage patterns
		// For first allocation or small slices: allocate generously
		// For large slices: grow by 50% + needed space
		var newCap int
		if oldLen < 100 {
			// Small slice: allocate at least 512 to avoid early reallocations
			newCap = 512
			if newLen > newCap {
				newCap = newLen * 2
			}
		} else if oldLen < 10000 {
			// Medium slice: 50% growth
			newCap = oldLen + oldLen/2 + decodedLen
		} else {
			// Large slice: 25% growth to save memory
			newCap = oldLen + oldLen/4 + decodedLen
		}

		// Use hint from previous growth if available
		if ce.growHint > 0 && newCap < ce.growHint {
			newCap = ce.growHint
		}

		// Allocate new slice - copy is unavoidable but minimize frequency
		newText := make([]Text, oldLen, newCap)
		copy(newText, ce.text)
		ce.text = newText
		ce.textCap = newCap

		// Update growth hint for next time
		ce.growHint = newCap + decodedLen*2
	}

	// Extend slice to final size - avoids repeated append overhead
	ce.text = ce.text[:newLen]

	// Pre-compute common values outside loop
	f := g.Tf.BaseFont()
	if i := strings.Index(f, "+"); i >= 0 {
		f = f[i+1:]
	}
	bold, italic, underline := parseFontStyles(f)

	// Pre-compute base transformation matrix components
	// Trm = matrix{{g.Tfs * g.Th, 0, 0}, {0, g.Tfs, 0}, {0, g.Trise, 1}}.mul(g.Tm).mul(g.CTM)
	// Pre-compute the constant part: textMatrix = {{g.Tfs * g.Th, 0, 0}, {0, g.Tfs, 0}, {0, g.Trise, 1}}
	tfsth := g.Tfs * g.Th
	tfs := g.Tfs
	trise := g.Trise

	// Cache CTM values for faster access
	ctm := g.CTM

	// tm0 holds only rows 0 and 1 of the text matrix at call time. Only row
	// 2 (the translation) changes per character within a Tj/TJ run (see the
	// per-character g.Tm update below), so the 2x2 linear part of Trm used
	// for rotation detection, and hence a run's rotation bucket, is the same
	// for every character emitted by this call.
	tm0 := g.Tm
	temp00 := tfsth * tm0[0][0]
	temp01 := tfsth * tm0[0][1]
	temp02c := tfsth * tm0[0][2]
	temp10 := tfs * tm0[1][0]
	temp11 := tfs * tm0[1][1]
	temp12c := tfs * tm0[1][2]
	trm00 := temp00*ctm[0][0] + temp01*ctm[1][0] + temp02c*ctm[2][0]
	trm01 := temp00*ctm[0][1] + temp01*ctm[1][1] + temp02c*ctm[2][1]
	trm10 := temp10*ctm[0][0] + temp11*ctm[1][0] + temp12c*ctm[2][0]
	trm11 := temp10*ctm[0][1] + temp11*ctm[1][1] + temp12c*ctm[2][1]
	rotation := rotationFromMatrix2x2(trm00, trm01, trm10, trm11)

	invisible := g.Tmode == 3 || g.Tmode == 7
	clipped := g.ClipActive || (g.Tmode >= 4 && g.Tmode <= 7)
	rgb := g.FillColor
	if g.Tmode == 1 || g.Tmode == 5 {
		rgb = g.StrokeColor
	}

	// Batch processing: fill slice directly instead of append
	n := 0
	for i, ch := range decoded {
		var w0, w1 float64
		if n < len(s) {
			code := int(s[n])
			w0 = g.Tf.Width(code)
			if vertical {
				w1 = g.Tf.VerticalWidth(code)
			}
		}
		n++

		// Inline matrix multiplication to avoid function call overhead
		// Trm = textMatrix.mul(g.Tm).mul(g.CTM)
		tm := g.Tm
		// Row 2: trise * tm[1] + tm[2]
		temp20 := trise*tm[1][0] + tm[2][0]
		temp21 := trise*tm[1][1] + tm[2][1]
		temp22 := trise*tm[1][2] + tm[2][2]

		// Second: result.mul(ctm)
		trm20 := temp20*ctm[0][0] + temp21*ctm[1][0] + temp22*ctm[2][0]
		trm21 := temp20*ctm[0][1] + temp21*ctm[1][1] + temp22*ctm[2][1]

		// Direct assignment instead of append - no reallocation
		ce.text[oldLen+i] = Text{
			Font:      f,
			FontSize:  trm00,
			X:         trm20,
			Y:         trm21,
			W:         w0 / 1000 * trm00,
			S:         string(ch),
			Vertical:  vertical,
			Bold:      bold,
			Italic:    italic,
			Underline: underline,
			Seq:       ce.seq,
			RGB:       rgb,
			Rotation:  rotation,
			Clipped:   clipped,
			Invisible: invisible,
		}
		ce.seq++

		if vertical {
			ty := w1/1000*g.Tfs + g.Tc
			// Vertical writing advances along the text matrix's y basis
			// vector instead of its x basis vector; horizontal scaling
			// (Th) does not apply to vertical advances (ISO 32000-2 §9.4.3).
			g.Tm[2][0] += ty * g.Tm[1][0]
			g.Tm[2][1] += ty * g.Tm[1][1]
			g.Tm[2][2] += ty * g.Tm[1][2]
		} else {
			tx := w0/1000*g.Tfs + g.Tc
			tx *= g.Th
			// Update g.Tm inline: g.Tm = matrix{{1, 0, 0}, {0, 1, 0}, {tx, 0, 1}}.mul(g.Tm)
			g.Tm[2][0] += tx * g.Tm[0][0]
			g.Tm[2][1] += tx * g.Tm[0][1]
			g.Tm[2][2] += tx * g.Tm[0][2]
		}
	}
}

func (ce *contentExtractor) handleDo(arg Value, resources Value, scope *fontScope, g gstate) {
	name := arg.Name()
	if name == "" {
		return
	}
	xobjects := resources.Key("XObject")
	if xobjects.Kind() != Dict {
		return
	}
	xobj := xobjects.Key(name)
	if xobj.Kind() != Stream || xobj.Key("Subtype").Name() != "Form" {
		return
	}
	formRes := xobj.Key("Resources")
	if formRes.Kind() == Null {
		formRes = resources
	}
	childScope := ce.page.buildFontScope(formRes, nil, scope)
	childState := g
	if m, ok := matrixFromValue(xobj.Key("Matrix")); ok {
		childState.CTM = m.mul(childState.CTM)
	}
	ce.process(xobj, formRes, childScope, childState)
}

// TextVertical implements sort.Interface for sorting
// a slice of Text values in vertical order, top to bottom,
// and then left to right within a line.
type TextVertical []Text

func (x TextVertical) Len() int      { return len(x) }
func (x TextVertical) Swap(i, j int) { x[i], x[j] = x[j], x[i] }
func (x TextVertical) Less(i, j int) bool {
	if x[i].Y != x[j].Y {
		return x[i].Y > x[j].Y
	}
	return x[i].X < x[j].X
}

// TextHorizontal implements sort.Interface for sorting
// a slice of Text values in horizontal order, left to right,
// and then top to bottom within a column.
type TextHorizontal []Text

func (x TextHorizontal) Len() int      { return len(x) }
func (x TextHorizontal) Swap(i, j int) { x[i], x[j] = x[j], x[i] }
func (x TextHorizontal) Less(i, j int) bool {
	if x[i].X != x[j].X {
		return x[i].X < x[j].X
	}
	return x[i].Y > x[j].Y
}

// An Outline is a tree describing the outline (also known as the table of contents)
// of a document.
type Outline struct {
	Title string    // title for this element
	Child []Outline // child elements
}

// Outline returns the document outline.
// The Outline returned is the root of the outline tree and typically has no Title itself.
// That is, the children of the returned root are the top-level entries in the outline.
func (r *Reader) Outline() Outline {
	return buildOutline(r.Trailer().Key("Root").Key("Outlines"))
}

func buildOutline(entry Value) Outline {
	var x Outline
	x.Title = entry.Key("Title").Text()
	for child := entry.Key("First"); child.Kind() == Dict; child = child.Key("Next") {
		x.Child = append(x.Child, buildOutline(child))
	}
	return x
}
