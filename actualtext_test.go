// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// buildActualTextPDF builds a single-page PDF whose content stream paints
// "AT" inside a BDC/EMC span carrying an /ActualText of "Acme, Inc.", using
// the same bytes.Buffer + buf.Len()-as-offset pattern as buildMinimalPDF.
func buildActualTextPDF() []byte {
	var buf bytes.Buffer
	offsets := make([]int, 1, 6)

	buf.WriteString("%PDF-1.4\n")

	offsets = append(offsets, buf.Len())
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets = append(offsets, buf.Len())
	buf.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets = append(offsets, buf.Len())
	buf.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 4 0 R >> >> /MediaBox [0 0 612 792] /Contents 5 0 R >>\nendobj\n")

	offsets = append(offsets, buf.Len())
	buf.WriteString("4 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	content := "BT /F1 12 Tf 72 712 Td " +
		"/Span << /ActualText (Acme, Inc.) >> BDC " +
		"(AT) Tj " +
		"EMC ET"
	offsets = append(offsets, buf.Len())
	buf.WriteString(fmt.Sprintf("5 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(content), content))

	xrefPos := buf.Len()
	buf.WriteString("xref\n")
	buf.WriteString(fmt.Sprintf("0 %d\n", len(offsets)))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	buf.WriteString("trailer\n")
	buf.WriteString(fmt.Sprintf("<< /Size %d /Root 1 0 R >>\n", len(offsets)))
	buf.WriteString("startxref\n")
	buf.WriteString(fmt.Sprintf("%d\n", xrefPos))
	buf.WriteString("%%EOF")

	return buf.Bytes()
}

func TestActualTextSubstitution(t *testing.T) {
	data := buildActualTextPDF()
	reader, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	page := reader.Page(1)
	if page.V.IsNull() {
		t.Fatal("page is null")
	}

	content := page.Content()
	for _, text := range content.Text {
		if text.S == "A" || text.S == "T" {
			t.Errorf("expected glyphs %q painted under the ActualText span to be replaced, found %q", text.S, text.S)
		}
	}

	var got strings.Builder
	for _, text := range content.Text {
		got.WriteString(text.S)
	}
	if !strings.Contains(got.String(), "Acme, Inc.") {
		t.Errorf("expected substitute text %q in content, got %q", "Acme, Inc.", got.String())
	}
}
