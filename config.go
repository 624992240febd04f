// Copyright 2024 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Config holds the `-cfg` file settings: default output encoding, EOL
// style, and a path to a user-supplied code-point map table.
type Config struct {
	Encoding   string
	EOL        EOLStyle
	UnicodeMap string // path to a map file loaded via LoadMapEncoder
}

// DefaultConfig returns the built-in defaults: UTF-8 output, Unix EOL.
func DefaultConfig() Config {
	return Config{Encoding: "UTF-8", EOL: EOLUnix}
}

// LoadConfig reads a line-oriented `key value` configuration file, one
// setting per line, blank lines and lines starting with "#" ignored.
// Recognized keys: "encoding", "eol" (unix|dos|mac), "unicodeMap".
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("pdf: open config %s: %w", path, err)
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig parses a configuration file's contents from r, starting from
// DefaultConfig and overriding whatever keys appear.
func ParseConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			return cfg, fmt.Errorf("pdf: config line %d: expected \"key value\", got %q", lineNo, line)
		}
		key, value := strings.ToLower(strings.TrimSpace(fields[0])), strings.TrimSpace(fields[1])
		switch key {
		case "encoding":
			cfg.Encoding = value
		case "eol":
			switch strings.ToLower(value) {
			case "unix":
				cfg.EOL = EOLUnix
			case "dos":
				cfg.EOL = EOLDOS
			case "mac":
				cfg.EOL = EOLMac
			default:
				return cfg, fmt.Errorf("pdf: config line %d: unknown eol %q", lineNo, value)
			}
		case "unicodemap":
			cfg.UnicodeMap = value
		default:
			return cfg, fmt.Errorf("pdf: config line %d: unknown key %q", lineNo, key)
		}
	}
	if err := sc.Err(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Encoder builds the OutputEncoder described by cfg, loading the
// user-supplied unicode map from disk if cfg.UnicodeMap is set (which
// takes precedence over cfg.Encoding).
func (cfg Config) Encoder() (*OutputEncoder, error) {
	if cfg.UnicodeMap != "" {
		f, err := os.Open(cfg.UnicodeMap)
		if err != nil {
			return nil, fmt.Errorf("pdf: open unicode map %s: %w", cfg.UnicodeMap, err)
		}
		defer f.Close()
		return LoadMapEncoder(f, cfg.EOL)
	}
	return NewOutputEncoder(cfg.Encoding, cfg.EOL)
}
