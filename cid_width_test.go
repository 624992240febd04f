package pdf

import "testing"

func type0FontFixture(w array, dw2 array) Value {
	descendant := dict{
		name("DW"): int64(1000),
		name("W"):  w,
	}
	if dw2 != nil {
		descendant[name("DW2")] = dw2
	}
	fontDict := dict{
		name("Subtype"):         name("Type0"),
		name("DescendantFonts"): array{descendant},
	}
	return Value{data: fontDict}
}

func TestFontWidth_Type0UsesCIDWidths(t *testing.T) {
	// W: CID 65 has width 600, everything else falls back to DW (1000).
	f := &Font{V: type0FontFixture(array{int64(65), array{int64(600)}}, nil)}

	if got := f.Width(65); got != 600 {
		t.Fatalf("Width(65) = %v, want 600", got)
	}
	if got := f.Width(66); got != 1000 {
		t.Fatalf("Width(66) (default) = %v, want 1000", got)
	}
}

func TestFontWidth_SimpleFontUsesWidthsArray(t *testing.T) {
	fontDict := dict{
		name("Subtype"):   name("TrueType"),
		name("FirstChar"): int64(32),
		name("LastChar"):  int64(34),
		name("Widths"):    array{int64(250), int64(300), int64(400)},
	}
	f := &Font{V: Value{data: fontDict}}

	if got := f.Width(33); got != 300 {
		t.Fatalf("Width(33) = %v, want 300", got)
	}
	if got := f.Width(100); got != 0 {
		t.Fatalf("Width(100) out of range = %v, want 0", got)
	}
}

func TestFontVerticalWidth_UsesW2OrDefault(t *testing.T) {
	f := &Font{V: type0FontFixture(nil, array{float64(-880), float64(500), float64(880)})}

	// No per-CID W2 entries parsed from this fixture, so VerticalWidth
	// should fall back to DW2's default vertical displacement.
	if got := f.VerticalWidth(10); got != -880 {
		t.Fatalf("VerticalWidth default = %v, want -880", got)
	}

	simple := &Font{V: Value{data: dict{name("Subtype"): name("Type1")}}}
	if got := simple.VerticalWidth(10); got != 0 {
		t.Fatalf("VerticalWidth on simple font = %v, want 0", got)
	}
}
