// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import "math"

// tinyCharThreshold is the "tiny" size cutoff below which characters are
// dropped unless the page as a whole is made of tiny text.
const tinyCharThreshold = 3.0

// tinyCharBudget caps how many tiny characters may be dropped before the
// filter gives up and assumes the whole page is legitimately small text
// (e.g. footnotes, fine print, or a font whose em square reports small
// sizes by convention).
const tinyCharBudget = 50000

// FilterTinyChars drops characters smaller than tinyCharThreshold, unless
// doing so would exceed the page-level tiny-char budget, in which case the
// filter is disabled for the rest of the page and everything is kept.
func FilterTinyChars(texts []Text) []Text {
	tinyCount := 0
	for _, t := range texts {
		if t.FontSize < tinyCharThreshold {
			tinyCount++
		}
	}
	if tinyCount > tinyCharBudget {
		return texts
	}

	out := make([]Text, 0, len(texts)-tinyCount)
	for _, t := range texts {
		if t.FontSize < tinyCharThreshold {
			continue
		}
		out = append(out, t)
	}
	return out
}

// fakeBoldLow and fakeBoldHigh bound the center-to-center distance (as a
// multiple of font size) within which two same-glyph characters are
// considered a fake-bold shadow pair rather than two distinct letters.
const (
	fakeBoldLow  = 0.1
	fakeBoldHigh = 0.2
)

// DedupFakeBold collapses "fake bold" shadow characters: some PDF
// generators simulate bold by painting the same glyph twice, offset by a
// fraction of an em. Texts must already be in the order they were painted;
// the earlier of each pair is kept.
func DedupFakeBold(texts []Text) []Text {
	out := make([]Text, 0, len(texts))
	used := make([]bool, len(texts))

	for i := range texts {
		if used[i] {
			continue
		}
		out = append(out, texts[i])
		for j := i + 1; j < len(texts); j++ {
			if used[j] || texts[j].S != texts[i].S {
				continue
			}
			dist := math.Hypot(texts[j].X-texts[i].X, texts[j].Y-texts[i].Y)
			fs := texts[i].FontSize
			if fs <= 0 {
				continue
			}
			ratio := dist / fs
			if ratio >= fakeBoldLow && ratio <= fakeBoldHigh {
				used[j] = true
				out[len(out)-1].Bold = true
			}
		}
	}
	return out
}

// ActualTextSpan records a marked-content span's substitute Unicode text
// and the geometric midpoint of the characters it replaces. The
// content-stream interpreter (C8) is responsible for recognizing
// BDC/.../EMC spans carrying an /ActualText property and producing these;
// ApplyActualText then drops the suppressed original characters and adds
// the substitute text starting at the midpoint.
type ActualTextSpan struct {
	Text     string
	MidX     float64
	MidY     float64
	FontSize float64
	Font     string
}

// ApplyActualText removes the characters an ActualText span replaces and
// appends one Text run per rune of the span's substitute string after the
// kept runs: the first rune sits at the span's midpoint and each following
// rune is placed FontSize further along x.
func ApplyActualText(texts []Text, spans []ActualTextSpan, replaced func(Text) bool) []Text {
	if len(spans) == 0 {
		return texts
	}

	out := make([]Text, 0, len(texts)+len(spans))
	spanEmitted := make([]bool, len(spans))
	for _, t := range texts {
		if replaced(t) {
			continue
		}
		out = append(out, t)
	}
	for i, span := range spans {
		if spanEmitted[i] {
			continue
		}
		x := span.MidX
		for _, r := range span.Text {
			out = append(out, Text{
				Font:     span.Font,
				FontSize: span.FontSize,
				X:        x,
				Y:        span.MidY,
				S:        string(r),
			})
			x += span.FontSize
		}
		spanEmitted[i] = true
	}
	return out
}

// Accumulate applies the C9 text-page-accumulator passes, in order: tiny-
// character filtering, then fake-bold deduplication. Callers that also have
// ActualText spans should call ApplyActualText first.
func Accumulate(texts []Text) []Text {
	return DedupFakeBold(FilterTinyChars(texts))
}
