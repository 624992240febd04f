// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// LayoutMode selects how a page's text runs are reassembled into output text.
type LayoutMode int

const (
	// ModeReadingOrder runs the recursive splitter and flattens the
	// resulting tree in natural reading order (the default).
	ModeReadingOrder LayoutMode = iota
	// ModePhysicalLayout preserves the original geometric layout, padding
	// with spaces so columns line up visually.
	ModePhysicalLayout
	// ModeTableLayout is physical layout with relaxed column overlap
	// slack, so adjacent table cells don't get merged.
	ModeTableLayout
	// ModeLinePrinter uses a caller-supplied fixed character grid.
	ModeLinePrinter
	// ModeRawOrder skips the splitter and emits runs in content-stream order.
	ModeRawOrder
)

// LayoutOptions controls the layout analyzer.
type LayoutOptions struct {
	Mode             LayoutMode
	FixedPitch       float64 // character cell width, 0 = estimate from content
	FixedLineSpacing float64 // character cell height, 0 = estimate from content
	ClipText         bool
	PageBreaks       bool // emit form-feed between pages (caller-level concern)
}

// DefaultLayoutOptions returns reading-order layout with no fixed grid.
func DefaultLayoutOptions() LayoutOptions {
	return LayoutOptions{Mode: ModeReadingOrder, PageBreaks: true}
}

// Line is a single reconstructed line of text with its bounding box, used
// by FindText and GetText.
type Line struct {
	Items      []Text
	MinX, MaxX float64
	MinY, MaxY float64
}

func (l Line) String() string {
	var b strings.Builder
	appendLine(&b, l.Items)
	return b.String()
}

// splitKind tags a node of the recursive-splitter tree.
type splitKind int

const (
	splitLeaf splitKind = iota
	splitHorizontal        // split top/bottom on a vertical gap
	splitVertical          // split left/right on a horizontal gap
)

type splitNode struct {
	kind       splitKind
	items      []Text // populated only for leaves
	children   []*splitNode
	smallSplit bool // gap only marginally above threshold: soft paragraph break
	minX, maxX float64
	minY, maxY float64
}

const (
	vertSplitChunkMin = 2.0  // * avg_fontsize: reject narrower splits
	smallSplitSlack   = 0.15 // fraction above threshold still counted as "small"
)

// vGapThreshold implements the linearly-decreasing vertical gap threshold
// described for the recursive splitter: max 3.0, slope -0.5, min 0.8 lines
// (table mode: max 0.5, slope -0.02, min 0.2).
func vGapThreshold(estLines float64, table bool) float64 {
	if table {
		t := 0.5 - 0.02*estLines
		if t < 0.2 {
			t = 0.2
		}
		return t
	}
	t := 3.0 - 0.5*estLines
	if t < 0.8 {
		t = 0.8
	}
	return t
}

// hGapThreshold is the horizontal analogue; the source text gives an exact
// formula only for the vertical case, so the horizontal threshold reuses a
// fixed multiple of the average font size (documented in DESIGN.md).
func hGapThreshold(table bool) float64 {
	if table {
		return 0.3
	}
	return 1.0
}

func bbox(items []Text) (minX, maxX, minY, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, t := range items {
		x0, x1 := t.X, t.X+math.Abs(t.W)
		y0, y1 := t.Y-0.35*t.FontSize, t.Y+t.FontSize // ascent 1.0, descent 0.35
		if x0 < minX {
			minX = x0
		}
		if x1 > maxX {
			maxX = x1
		}
		if y0 < minY {
			minY = y0
		}
		if y1 > maxY {
			maxY = y1
		}
	}
	return
}

func avgFontSize(items []Text) float64 {
	if len(items) == 0 {
		return 1
	}
	var sum float64
	for _, t := range items {
		sum += t.FontSize
	}
	a := sum / float64(len(items))
	if a <= 0 {
		return 1
	}
	return a
}

// gapHistogram finds the largest gap between sorted, non-overlapping runs
// of [lo,hi) intervals on one axis. Returns the gap center and width.
func gapHistogram(intervals [][2]float64, binSize float64) (pos, width float64, found bool) {
	if len(intervals) < 2 {
		return 0, 0, false
	}
	sorted := make([][2]float64, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i][0] < sorted[j][0] })

	// merge overlapping/near-touching (within binSize) intervals
	merged := sorted[:1]
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv[0] <= last[1]+binSize {
			if iv[1] > last[1] {
				last[1] = iv[1]
			}
			continue
		}
		merged = append(merged, iv)
	}

	bestWidth := -1.0
	var bestPos float64
	for i := 1; i < len(merged); i++ {
		gap := merged[i][0] - merged[i-1][1]
		if gap > bestWidth {
			bestWidth = gap
			bestPos = (merged[i][0] + merged[i-1][1]) / 2
		}
	}
	if bestWidth <= 0 {
		return 0, 0, false
	}
	return bestPos, bestWidth, true
}

// splitChars is the recursive splitter from spec §4.10: it partitions a set
// of text runs into a tree of horizontal/vertical splits, bottoming out in
// leaves once no gap clears the size-adjusted threshold.
func splitChars(items []Text, table bool) *splitNode {
	minX, maxX, minY, maxY := bbox(items)
	node := &splitNode{items: items, minX: minX, maxX: maxX, minY: minY, maxY: maxY}
	if len(items) <= 1 {
		node.kind = splitLeaf
		return node
	}

	avg := avgFontSize(items)
	minFS := avg
	for _, t := range items {
		if t.FontSize > 0 && t.FontSize < minFS {
			minFS = t.FontSize
		}
	}
	bin := 0.05 * minFS
	if bin < 0.01 {
		bin = 0.01
	}

	var vIntervals, hIntervals [][2]float64
	estLines := (maxY - minY) / avg
	for _, t := range items {
		x0, x1 := t.X, t.X+math.Abs(t.W)
		y0, y1 := t.Y-0.35*t.FontSize, t.Y+t.FontSize
		hIntervals = append(hIntervals, [2]float64{x0, x1})
		vIntervals = append(vIntervals, [2]float64{y0, y1})
	}

	vPos, vWidth, vOK := gapHistogram(vIntervals, bin)
	hPos, hWidth, hOK := gapHistogram(hIntervals, bin)

	vThresh := vGapThreshold(estLines, table) * avg
	hThresh := hGapThreshold(table) * avg

	vOK = vOK && vWidth > vThresh
	hOK = hOK && hWidth > hThresh

	minChunk := vertSplitChunkMin * avg

	tryVertical := func() (*splitNode, bool) {
		var left, right []Text
		for _, t := range items {
			mid := t.Y + 0.325*t.FontSize
			if mid > vPos {
				left = append(left, t) // larger Y = higher on page = "top"
			} else {
				right = append(right, t)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			return nil, false
		}
		_, _, lMinY, lMaxY := bbox(left)
		_, _, rMinY, rMaxY := bbox(right)
		if lMaxY-lMinY < minChunk || rMaxY-rMinY < minChunk {
			return nil, false
		}
		n := &splitNode{kind: splitHorizontal, minX: minX, maxX: maxX, minY: minY, maxY: maxY}
		n.smallSplit = vWidth < vThresh*(1+smallSplitSlack)
		n.children = []*splitNode{splitChars(left, table), splitChars(right, table)}
		return n, true
	}

	tryHorizontal := func() (*splitNode, bool) {
		var left, right []Text
		for _, t := range items {
			mid := t.X + math.Abs(t.W)/2
			if mid < hPos {
				left = append(left, t)
			} else {
				right = append(right, t)
			}
		}
		if len(left) == 0 || len(right) == 0 {
			return nil, false
		}
		lMinX, lMaxX, _, _ := bbox(left)
		rMinX, rMaxX, _, _ := bbox(right)
		if lMaxX-lMinX < minChunk || rMaxX-rMinX < minChunk {
			return nil, false
		}
		n := &splitNode{kind: splitVertical, minX: minX, maxX: maxX, minY: minY, maxY: maxY}
		n.smallSplit = hWidth < hThresh*(1+smallSplitSlack)
		n.children = []*splitNode{splitChars(left, table), splitChars(right, table)}
		return n, true
	}

	switch {
	case vOK && (!hOK || vWidth >= hWidth):
		if n, ok := tryVertical(); ok {
			return n
		}
		if hOK {
			if n, ok := tryHorizontal(); ok {
				return n
			}
		}
	case hOK:
		if n, ok := tryHorizontal(); ok {
			return n
		}
		if vOK {
			if n, ok := tryVertical(); ok {
				return n
			}
		}
	}

	node.kind = splitLeaf
	return node
}

// readingOrderDirection reports whether the majority of adjacent runs flow
// left-to-right (true) or right-to-left (false).
func readingOrderDirection(items []Text) bool {
	sorted := make([]Text, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })
	ltr, rtl := 0, 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].X >= sorted[i-1].X {
			ltr++
		} else {
			rtl++
		}
	}
	return ltr >= rtl
}

// flatten walks the split tree in reading order, producing leaves in the
// order their content should be emitted.
func flatten(n *splitNode, out *[]*splitNode) {
	if n == nil {
		return
	}
	if n.kind == splitLeaf {
		*out = append(*out, n)
		return
	}
	ltr := true
	if len(n.items) == 0 && len(n.children) == 2 {
		all := append(append([]Text{}, n.children[0].items...), n.children[1].items...)
		if len(all) == 0 {
			all = collectItems(n)
		}
		ltr = readingOrderDirection(all)
	}
	switch n.kind {
	case splitHorizontal:
		// top child first (larger Y), then bottom
		top, bottom := n.children[0], n.children[1]
		if top.minY < bottom.minY {
			top, bottom = bottom, top
		}
		flatten(top, out)
		flatten(bottom, out)
	case splitVertical:
		left, right := n.children[0], n.children[1]
		if left.minX > right.minX {
			left, right = right, left
		}
		if !ltr {
			left, right = right, left
		}
		flatten(left, out)
		flatten(right, out)
	}
}

func collectItems(n *splitNode) []Text {
	if n.kind == splitLeaf {
		return n.items
	}
	var out []Text
	for _, c := range n.children {
		out = append(out, collectItems(c)...)
	}
	return out
}

// leafToLines groups a leaf's runs into sorted lines (§4.10 "leaf → lines").
func leafToLines(items []Text) []Line {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]Text, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Y-sorted[j].Y) > 1e-6 {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	const rawModeCharOverlap = 0.3
	var lines []Line
	var cur []Text
	var curY float64
	for i, t := range sorted {
		if i == 0 || math.Abs(t.Y-curY) <= rawModeCharOverlap*maxFS(cur, t.FontSize) {
			cur = append(cur, t)
			curY = (curY*float64(len(cur)-1) + t.Y) / float64(len(cur))
			if len(cur) == 1 {
				curY = t.Y
			}
			continue
		}
		lines = append(lines, newLine(cur))
		cur = []Text{t}
		curY = t.Y
	}
	if len(cur) > 0 {
		lines = append(lines, newLine(cur))
	}
	return lines
}

func maxFS(items []Text, extra float64) float64 {
	m := extra
	for _, t := range items {
		if t.FontSize > m {
			m = t.FontSize
		}
	}
	if m <= 0 {
		return 1
	}
	return m
}

func newLine(items []Text) Line {
	sort.SliceStable(items, func(i, j int) bool { return items[i].X < items[j].X })
	minX, maxX, minY, maxY := bbox(items)
	return Line{Items: items, MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}
}

// Layout reorders a page's text runs per opts and renders them to a single
// string. This is the primary entry point for C10.
func Layout(texts []Text, opts LayoutOptions) string {
	if opts.ClipText {
		texts = visibleTexts(texts)
	}
	if len(texts) == 0 {
		return ""
	}
	switch opts.Mode {
	case ModeRawOrder:
		return layoutRaw(texts)
	case ModePhysicalLayout:
		return layoutGrid(texts, opts, false)
	case ModeTableLayout:
		return layoutGrid(texts, opts, true)
	case ModeLinePrinter:
		return layoutGrid(texts, opts, false)
	default:
		lines := Lines(texts, false)
		var b strings.Builder
		for i, l := range lines {
			appendLine(&b, l.Items)
			if i < len(lines)-1 {
				b.WriteByte('\n')
			}
		}
		return strings.TrimRight(b.String(), "\n")
	}
}

// visibleTexts drops runs painted invisible (render mode 3/7) or under an
// active clip path, for callers that set LayoutOptions.ClipText to honor
// real clip-path tracking instead of emitting every glyph the content
// stream painted.
func visibleTexts(texts []Text) []Text {
	out := make([]Text, 0, len(texts))
	for _, t := range texts {
		if t.Invisible || t.Clipped {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Lines runs the per-rotation recursive splitter and returns the resulting
// lines in reading order. Runs are grouped into four buckets by their
// glyph-space rotation (0-3 quarter turns, from the rendering matrix's 2x2
// sign pattern — see Text.Rotation), matching spec.md's per-rotation
// processing, and the buckets are emitted in rotation order.
func Lines(texts []Text, table bool) []Line {
	var buckets [4][]Text
	for _, t := range texts {
		buckets[t.Rotation&3] = append(buckets[t.Rotation&3], t)
	}

	var lines []Line
	for _, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		tree := splitChars(bucket, table)
		var leaves []*splitNode
		flatten(tree, &leaves)
		for _, leaf := range leaves {
			lines = append(lines, leafToLines(leaf.items)...)
		}
	}
	return lines
}

func layoutRaw(texts []Text) string {
	sorted := make([]Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	var lines [][]Text
	var cur []Text
	var prev Text
	for i, t := range sorted {
		if i == 0 {
			cur = append(cur, t)
			prev = t
			continue
		}
		primaryDelta := t.X - (prev.X + prev.W)
		secondaryOverlap := math.Abs(t.Y - prev.Y)
		if primaryDelta > 0.5*t.FontSize || secondaryOverlap > 0.2*t.FontSize {
			lines = append(lines, cur)
			cur = []Text{t}
		} else {
			cur = append(cur, t)
		}
		prev = t
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}

	var b strings.Builder
	for i, line := range lines {
		appendLine(&b, line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// layoutGrid implements physical-layout / table-layout mode: text is
// assigned to a character-cell lattice and rendered by padding with spaces.
func layoutGrid(texts []Text, opts LayoutOptions, table bool) string {
	lines := Lines(texts, table)
	if len(lines) == 0 {
		return ""
	}

	cellW := opts.FixedPitch
	if cellW <= 0 {
		cellW = smallestAdvance(texts)
	}
	cellH := opts.FixedLineSpacing
	if cellH <= 0 {
		cellH = avgFontSize(texts) * 1.2
	}
	if cellW <= 0 {
		cellW = 6
	}
	if cellH <= 0 {
		cellH = 12
	}

	minX := math.Inf(1)
	maxY := math.Inf(-1)
	for _, l := range lines {
		if l.MinX < minX {
			minX = l.MinX
		}
		if l.MaxY > maxY {
			maxY = l.MaxY
		}
	}

	slack := 0.0
	if table {
		slack = cellW * 0.05
	}

	type gridRow struct {
		row   int
		cells map[int]rune
		maxCol int
	}
	rows := map[int]*gridRow{}
	var rowOrder []int
	for _, l := range lines {
		row := int((maxY - l.MaxY) / cellH)
		gr, ok := rows[row]
		if !ok {
			gr = &gridRow{row: row, cells: map[int]rune{}}
			rows[row] = gr
			rowOrder = append(rowOrder, row)
		}
		for _, t := range l.Items {
			col := int((t.X - minX + slack) / cellW)
			for j, r := range []rune(t.S) {
				c := col + j
				gr.cells[c] = r
				if c > gr.maxCol {
					gr.maxCol = c
				}
			}
		}
	}
	sort.Ints(rowOrder)

	var b strings.Builder
	for i, rn := range rowOrder {
		gr := rows[rn]
		line := make([]rune, gr.maxCol+1)
		for j := range line {
			line[j] = ' '
		}
		for c, r := range gr.cells {
			if c >= 0 && c < len(line) {
				line[c] = r
			}
		}
		b.WriteString(strings.TrimRight(string(line), " "))
		if i < len(rowOrder)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func smallestAdvance(texts []Text) float64 {
	min := math.Inf(1)
	for _, t := range texts {
		if len(t.S) == 0 {
			continue
		}
		adv := t.W / float64(len([]rune(t.S)))
		if adv > 0 && adv < min {
			min = adv
		}
	}
	if math.IsInf(min, 1) {
		return 0
	}
	return min
}

// FindTextOptions controls findText's search semantics (spec.md §4.10).
type FindTextOptions struct {
	CaseSensitive bool
	WholeWord     bool
	Backward      bool
	StartAtTop    bool
	StopAtBottom  bool
	StartAtLast   bool
	StopAtLast    bool
}

// FindText scans lines in reading order for query and returns the bounding
// box of the first (or, if Backward, last) match.
func FindText(lines []Line, query string, opts FindTextOptions, last *Rect) (Rect, bool) {
	if query == "" {
		return Rect{}, false
	}
	fold := func(s string) string {
		if opts.CaseSensitive {
			return s
		}
		return strings.ToLower(s)
	}
	needle := fold(query)

	order := make([]int, len(lines))
	for i := range order {
		order[i] = i
	}
	if opts.Backward {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	skipping := (opts.StartAtLast || opts.StopAtLast) && last != nil

	for _, idx := range order {
		l := lines[idx]
		if skipping {
			if l.MaxY > last.Min.Y || (l.MaxY == last.Min.Y && l.MinX < last.Max.X) {
				continue
			}
		}
		text := l.String()
		hay := fold(text)
		pos := strings.Index(hay, needle)
		if pos < 0 {
			continue
		}
		if opts.WholeWord {
			if pos > 0 && isWordRune(rune(hay[pos-1])) {
				continue
			}
			end := pos + len(needle)
			if end < len(hay) && isWordRune(rune(hay[end])) {
				continue
			}
		}
		return boundingBoxForRange(l, pos, pos+len(needle)), true
	}
	return Rect{}, false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// boundingBoxForRange returns the union bounding box of the text runs
// contributing to line l's byte range [start,end).
func boundingBoxForRange(l Line, start, end int) Rect {
	minX, maxX := math.Inf(1), math.Inf(-1)
	pos := 0
	for _, t := range l.Items {
		runLen := len(t.S)
		runEnd := pos + runLen
		if runEnd > start && pos < end {
			if t.X < minX {
				minX = t.X
			}
			if t.X+t.W > maxX {
				maxX = t.X + t.W
			}
		}
		pos = runEnd
		if runLen == 0 {
			pos++ // separator between runs approximated as one byte
		}
	}
	if math.IsInf(minX, 1) {
		minX, maxX = l.MinX, l.MaxX
	}
	return Rect{Min: Point{X: minX, Y: l.MinY}, Max: Point{X: maxX, Y: l.MaxY}}
}

// GetText intersects each line with rect and concatenates the overlapping
// substrings in reading order.
func GetText(lines []Line, rect Rect) string {
	var b strings.Builder
	for _, l := range lines {
		if l.MaxY < rect.Min.Y || l.MinY > rect.Max.Y {
			continue
		}
		var kept []Text
		for _, t := range l.Items {
			if t.X+t.W < rect.Min.X || t.X > rect.Max.X {
				continue
			}
			kept = append(kept, t)
		}
		if len(kept) == 0 {
			continue
		}
		appendLine(&b, kept)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// attachUnderlinesAndLinks attaches underline/link annotations to the words
// they decorate (spec.md §4.9/§4.10). underlines is the set of thin fill
// rectangles tracked by the content interpreter as candidate underlines;
// linkRects maps an annotation URI to its page-space rectangle.
func attachUnderlinesAndLinks(texts []Text, underlines []Rect, linkRects map[string]Rect) {
	const underlineBaselineSlack = 0.3
	const hyperlinkSlack = 2.0

	for i := range texts {
		t := &texts[i]
		for _, u := range underlines {
			slack := underlineBaselineSlack * t.FontSize
			if u.Max.Y <= t.Y+slack && u.Max.Y >= t.Y-slack-t.FontSize {
				overlap := math.Min(u.Max.X, t.X+t.W) - math.Max(u.Min.X, t.X)
				if overlap >= 0.5*t.W {
					t.Underline = true
				}
			}
		}
		if len(linkRects) == 0 {
			continue
		}
		cx, cy := t.X+t.W/2, t.Y+t.FontSize/2
		slack := hyperlinkSlack * t.FontSize
		for uri, r := range linkRects {
			if cx >= r.Min.X-slack && cx <= r.Max.X+slack && cy >= r.Min.Y-slack && cy <= r.Max.Y+slack {
				t.LinkURI = uri
				break
			}
		}
	}
}
