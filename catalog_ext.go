// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

// Info returns the document information dictionary (the trailer's /Info
// entry): title, author, subject, keywords, creator, producer and the
// creation/modification dates, as raw text strings. Missing entries come
// back as the empty string.
type Info struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate string
	ModDate      string
}

// Info returns the document's information dictionary, following the
// teacher's Outline()/Trailer() accessor style.
func (r *Reader) Info() Info {
	d := r.Trailer().Key("Info")
	return Info{
		Title:        d.Key("Title").Text(),
		Author:       d.Key("Author").Text(),
		Subject:      d.Key("Subject").Text(),
		Keywords:     d.Key("Keywords").Text(),
		Creator:      d.Key("Creator").Text(),
		Producer:     d.Key("Producer").Text(),
		CreationDate: d.Key("CreationDate").Text(),
		ModDate:      d.Key("ModDate").Text(),
	}
}

// Destination is a named destination: a target page plus the /Fit-family
// view parameters that follow it in the destination array.
type Destination struct {
	Name   string
	PageNo int // 1-based; 0 if the target page could not be located
	Fit    string
	Params []float64
}

// NamedDestinations returns the document's named destinations, read from
// either the modern /Names /Dests name tree or the legacy /Dests dictionary.
func (r *Reader) NamedDestinations() []Destination {
	root := r.Trailer().Key("Root")

	var dests []Destination
	if tree := root.Key("Names").Key("Dests"); tree.Kind() == Dict {
		dests = append(dests, r.walkDestNameTree(tree)...)
	}
	if legacy := root.Key("Dests"); legacy.Kind() == Dict {
		for _, name := range legacy.Keys() {
			dests = append(dests, r.destFromValue(name, legacy.Key(name)))
		}
	}
	return dests
}

func (r *Reader) walkDestNameTree(node Value) []Destination {
	var out []Destination
	if kids := node.Key("Kids"); kids.Kind() == Array {
		for i := 0; i < kids.Len(); i++ {
			out = append(out, r.walkDestNameTree(kids.Index(i))...)
		}
		return out
	}
	names := node.Key("Names")
	for i := 0; i+1 < names.Len(); i += 2 {
		out = append(out, r.destFromValue(names.Index(i).Text(), names.Index(i+1)))
	}
	return out
}

func (r *Reader) destFromValue(name string, v Value) Destination {
	arr := v
	if v.Kind() == Dict {
		arr = v.Key("D")
	}
	d := Destination{Name: name}
	if arr.Kind() != Array || arr.Len() == 0 {
		return d
	}
	d.PageNo = r.pageNumberOf(arr.Index(0))
	if arr.Len() > 1 {
		d.Fit = arr.Index(1).Name()
	}
	for i := 2; i < arr.Len(); i++ {
		d.Params = append(d.Params, arr.Index(i).Float64())
	}
	return d
}

// pageNumberOf returns the 1-based page number of a page dictionary
// reference, or 0 if it cannot be located by walking the page tree.
func (r *Reader) pageNumberOf(pageRef Value) int {
	if pageRef.Kind() != Dict {
		return 0
	}
	for i := 1; i <= r.NumPage(); i++ {
		if r.Page(i).V.String() == pageRef.String() {
			return i
		}
	}
	return 0
}

// EmbeddedFile describes one entry from the document's embedded-file name
// tree (/Names /EmbeddedFiles).
type EmbeddedFile struct {
	Name        string
	Description string
	Size        int64
	MimeType    string
}

// EmbeddedFiles lists the document's embedded files.
func (r *Reader) EmbeddedFiles() []EmbeddedFile {
	tree := r.Trailer().Key("Root").Key("Names").Key("EmbeddedFiles")
	if tree.Kind() != Dict {
		return nil
	}
	return r.walkEmbeddedFileTree(tree)
}

func (r *Reader) walkEmbeddedFileTree(node Value) []EmbeddedFile {
	var out []EmbeddedFile
	if kids := node.Key("Kids"); kids.Kind() == Array {
		for i := 0; i < kids.Len(); i++ {
			out = append(out, r.walkEmbeddedFileTree(kids.Index(i))...)
		}
		return out
	}
	names := node.Key("Names")
	for i := 0; i+1 < names.Len(); i += 2 {
		spec := names.Index(i + 1)
		ef := spec.Key("EF").Key("F")
		out = append(out, EmbeddedFile{
			Name:        names.Index(i).Text(),
			Description: spec.Key("Desc").Text(),
			Size:        ef.Key("Params").Key("Size").Int64(),
			MimeType:    ef.Key("Subtype").Name(),
		})
	}
	return out
}

// OCGState is the visibility of one optional-content group, keyed by its
// dictionary's text form (stable across repeated lookups within one Reader).
type OCGState map[string]bool

// DefaultOCGState returns the visibility each optional-content group has
// under the document's default configuration (/OCProperties /D): every
// group listed in /OCGs starts on, then /D /ON turns groups on and /D /OFF
// turns them off. /BaseState and each group's own /Usage are not consulted.
func (r *Reader) DefaultOCGState() OCGState {
	props := r.Trailer().Key("Root").Key("OCProperties")
	state := OCGState{}
	if props.Kind() != Dict {
		return state
	}
	all := props.Key("OCGs")
	for i := 0; i < all.Len(); i++ {
		state[all.Index(i).String()] = true
	}
	cfg := props.Key("D")
	if on := cfg.Key("ON"); on.Kind() == Array {
		for i := 0; i < on.Len(); i++ {
			state[on.Index(i).String()] = true
		}
	}
	if off := cfg.Key("OFF"); off.Kind() == Array {
		for i := 0; i < off.Len(); i++ {
			state[off.Index(i).String()] = false
		}
	}
	return state
}

// EvaluateOCG evaluates a content item's /OC visibility against state. ocg
// may be a single optional-content group dictionary, or an OCMD
// (/Type /OCMD) carrying a /VE visibility expression ("And"/"Or"/"Not"
// followed by group references, per ISO 32000-1 §8.11.2.3). Unknown groups
// default to visible, matching the spec's "missing group is on" convention.
func (r *Reader) EvaluateOCG(ocg Value, state OCGState) bool {
	if ocg.Kind() != Dict {
		return true
	}
	if ocg.Key("Type").Name() == "OCMD" {
		if ve := ocg.Key("VE"); ve.Kind() == Array {
			return evaluateVisibilityExpr(ve, state)
		}
		if groups := ocg.Key("OCGs"); groups.Kind() == Array {
			// P defaults to AnyOn.
			p := ocg.Key("P").Name()
			return evaluateGroupSet(groups, state, p)
		}
		return evaluateSingleGroup(ocg.Key("OCGs"), state)
	}
	return evaluateSingleGroup(ocg, state)
}

func evaluateSingleGroup(g Value, state OCGState) bool {
	if g.Kind() != Dict {
		return true
	}
	vis, known := state[g.String()]
	if !known {
		return true
	}
	return vis
}

func evaluateGroupSet(groups Value, state OCGState, policy string) bool {
	anyOn, allOn, anyOff, allOff := false, true, false, true
	for i := 0; i < groups.Len(); i++ {
		vis := evaluateSingleGroup(groups.Index(i), state)
		if vis {
			anyOn = true
		} else {
			allOn = false
		}
		if !vis {
			anyOff = true
		} else {
			allOff = false
		}
	}
	switch policy {
	case "AllOn":
		return allOn
	case "AnyOff":
		return anyOff
	case "AllOff":
		return allOff
	default: // AnyOn
		return anyOn
	}
}

func evaluateVisibilityExpr(ve Value, state OCGState) bool {
	if ve.Len() == 0 {
		return true
	}
	op := ve.Index(0).Name()
	switch op {
	case "Not":
		if ve.Len() < 2 {
			return true
		}
		return !evaluateOperand(ve.Index(1), state)
	case "And":
		for i := 1; i < ve.Len(); i++ {
			if !evaluateOperand(ve.Index(i), state) {
				return false
			}
		}
		return true
	case "Or":
		for i := 1; i < ve.Len(); i++ {
			if evaluateOperand(ve.Index(i), state) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

func evaluateOperand(v Value, state OCGState) bool {
	if v.Kind() == Array {
		return evaluateVisibilityExpr(v, state)
	}
	return evaluateSingleGroup(v, state)
}
