// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pdftotext extracts the text of a PDF file, in the manner of
// poppler's pdftotext.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	pdf "github.com/go-pdftext/pdftext"
)

const (
	exitOK               = 0
	exitOpenError        = 1
	exitOutputError      = 2
	exitPermissionDenied = 3
	exitUsageError       = 99
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("pdftotext", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	firstPage := fs.Int("f", 1, "first page to extract")
	lastPage := fs.Int("l", 0, "last page to extract (0 = last page of document)")
	layout := fs.Bool("layout", false, "preserve physical layout")
	table := fs.Bool("table", false, "table layout, similar to -layout but optimized for tables")
	linePrinter := fs.Bool("lineprinter", false, "use strict fixed-pitch/height layout")
	raw := fs.Bool("raw", false, "keep content-stream order instead of reading order")
	fixedPitch := fs.Float64("fixed", 0, "assume fixed-pitch character width (with -lineprinter)")
	lineSpacing := fs.Float64("linespacing", 0, "assume fixed line spacing (with -lineprinter)")
	clip := fs.Bool("clip", false, "drop text hidden by clipping or drawn invisible")
	enc := fs.String("enc", "UTF-8", "output text encoding")
	eol := fs.String("eol", "unix", "output end-of-line convention: unix, dos, or mac")
	noPageBreaks := fs.Bool("nopgbrk", false, "don't insert a form feed between pages")
	ownerPassword := fs.String("opw", "", "owner password, for encrypted files")
	userPassword := fs.String("upw", "", "user password, for encrypted files")
	quiet := fs.Bool("q", false, "don't print diagnostic messages")
	cfgPath := fs.String("cfg", "", "read default settings from a config file")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		return exitUsageError
	}

	rest := fs.Args()
	if len(rest) < 1 || len(rest) > 2 {
		usage()
		return exitUsageError
	}
	inPath := rest[0]
	outPath := ""
	if len(rest) == 2 {
		outPath = rest[1]
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	cfg := pdf.DefaultConfig()
	if *cfgPath != "" {
		loaded, err := pdf.LoadConfig(*cfgPath)
		if err != nil {
			reportError(*quiet, pdf.KindConfigError, err)
			return exitUsageError
		}
		cfg = loaded
	}
	if explicit["enc"] {
		cfg.Encoding = *enc
	}
	if explicit["eol"] {
		switch strings.ToLower(*eol) {
		case "unix":
			cfg.EOL = pdf.EOLUnix
		case "dos":
			cfg.EOL = pdf.EOLDOS
		case "mac":
			cfg.EOL = pdf.EOLMac
		default:
			fmt.Fprintf(os.Stderr, "pdftotext: unknown -eol value %q\n", *eol)
			return exitUsageError
		}
	}
	encoder, err := cfg.Encoder()
	if err != nil {
		reportError(*quiet, pdf.KindConfigError, err)
		return exitUsageError
	}

	if *quiet {
		pdf.SetReporter(nil)
	} else {
		pdf.SetReporter(pdf.NewSlogReporter(slog.New(slog.NewTextHandler(os.Stderr, nil))))
	}

	f, err := os.Open(inPath)
	if err != nil {
		reportError(*quiet, pdf.KindIOError, err)
		return exitOpenError
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		reportError(*quiet, pdf.KindIOError, err)
		return exitOpenError
	}

	tried := false
	reader, err := pdf.NewReaderEncrypted(f, fi.Size(), func() string {
		if tried {
			return ""
		}
		tried = true
		if *ownerPassword != "" {
			return *ownerPassword
		}
		return *userPassword
	})
	if err == pdf.ErrInvalidPassword {
		reportError(*quiet, pdf.KindPermissionDenied, err)
		return exitPermissionDenied
	}
	if err != nil {
		reportError(*quiet, pdf.KindIOError, err)
		return exitOpenError
	}

	last := *lastPage
	if last <= 0 || last > reader.NumPage() {
		last = reader.NumPage()
	}
	if *firstPage < 1 {
		*firstPage = 1
	}
	if *firstPage > last {
		fmt.Fprintf(os.Stderr, "pdftotext: first page %d is after last page %d\n", *firstPage, last)
		return exitUsageError
	}

	opts := pdf.DefaultLayoutOptions()
	opts.ClipText = *clip
	opts.PageBreaks = !*noPageBreaks
	switch {
	case *linePrinter:
		opts.Mode = pdf.ModeLinePrinter
		opts.FixedPitch = *fixedPitch
		opts.FixedLineSpacing = *lineSpacing
	case *table:
		opts.Mode = pdf.ModeTableLayout
	case *layout:
		opts.Mode = pdf.ModePhysicalLayout
	case *raw:
		opts.Mode = pdf.ModeRawOrder
	default:
		opts.Mode = pdf.ModeReadingOrder
	}

	var out io.Writer
	if outPath == "" || outPath == "-" {
		out = os.Stdout
	} else {
		outFile, err := os.Create(outPath)
		if err != nil {
			reportError(*quiet, pdf.KindIOError, err)
			return exitOutputError
		}
		defer outFile.Close()
		out = outFile
	}
	bw := bufio.NewWriter(out)

	for i := *firstPage; i <= last; i++ {
		page := reader.Page(i)
		text, err := page.Layout(opts)
		if err != nil {
			reportError(*quiet, pdf.KindSyntaxError, err)
			continue
		}
		if err := encoder.Encode(bw, text); err != nil {
			reportError(*quiet, pdf.KindIOError, err)
			return exitOutputError
		}
		if opts.PageBreaks && i < last {
			if err := encoder.FormFeed(bw); err != nil {
				reportError(*quiet, pdf.KindIOError, err)
				return exitOutputError
			}
		}
	}
	if err := bw.Flush(); err != nil {
		reportError(*quiet, pdf.KindIOError, err)
		return exitOutputError
	}
	return exitOK
}

func reportError(quiet bool, kind pdf.ErrorKind, err error) {
	if quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "pdftotext: %s: %v\n", kind, err)
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: pdftotext [options] <PDF-file> [text-file]")
	fmt.Fprintln(os.Stderr, "  -f <int>            : first page to convert")
	fmt.Fprintln(os.Stderr, "  -l <int>             : last page to convert")
	fmt.Fprintln(os.Stderr, "  -layout              : maintain original physical layout")
	fmt.Fprintln(os.Stderr, "  -table               : similar to -layout, but optimized for tables")
	fmt.Fprintln(os.Stderr, "  -lineprinter         : use strict fixed-pitch/height layout")
	fmt.Fprintln(os.Stderr, "  -raw                 : keep strings in content stream order")
	fmt.Fprintln(os.Stderr, "  -fixed <number>      : assume fixed-pitch characters, with given width")
	fmt.Fprintln(os.Stderr, "  -linespacing <number>: fixed line spacing for -lineprinter mode")
	fmt.Fprintln(os.Stderr, "  -clip                : drop text hidden by clipping or drawn invisible")
	fmt.Fprintln(os.Stderr, "  -enc <string>        : output text encoding name")
	fmt.Fprintln(os.Stderr, "  -eol <string>        : output end-of-line convention (unix, dos, mac)")
	fmt.Fprintln(os.Stderr, "  -nopgbrk             : don't insert page breaks between pages")
	fmt.Fprintln(os.Stderr, "  -opw <string>        : owner password (for encrypted files)")
	fmt.Fprintln(os.Stderr, "  -upw <string>        : user password (for encrypted files)")
	fmt.Fprintln(os.Stderr, "  -q                   : don't print any messages or errors")
	fmt.Fprintln(os.Stderr, "  -cfg <string>        : configuration file to use")
}
