// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

// Package rpsl implements the Block Reader and Attribute Extractor: it
// turns a gzipped RIR bulk dump into a stream of model.Block values and
// pulls scalar/multi-value attributes back out of them.
package rpsl

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"rirdb-ingest/pkg/model"
)

// knownPrefixes are the lowercased first tokens a retained block must
// start with, matched against the beginning of the block's first line.
var knownPrefixes = []string{
	"inetnum:", "inet6num:", "route:", "route6:", "as-set:",
	"mntner", "person", "role", "organisation", "irt",
	"aut-num", "as-set", "route-set", "domain",
}

// RegistryForFilename derives the cust_source tag from the start of
// name's base filename, e.g. "ripe.db.inetnum.gz" -> "RIPE".
func RegistryForFilename(name string) (string, bool) {
	base := strings.ToLower(filepath.Base(name))
	switch {
	case strings.HasPrefix(base, "afrinic"):
		return "AFRINIC", true
	case strings.HasPrefix(base, "apnic"):
		return "APNIC", true
	case strings.HasPrefix(base, "arin"):
		return "ARIN", true
	case strings.HasPrefix(base, "ripe"):
		return "RIPE", true
	case strings.Contains(base, "lacnic"):
		return "LACNIC", true
	default:
		return "", false
	}
}

// openStream opens path, transparently gzip-decompressing when the
// extension is .gz, and returns a reader plus a combined closer.
func openStream(path string) (io.Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return gz, multiCloser{gz, f}, nil
	}
	return f, f, nil
}

type multiCloser struct {
	first  io.Closer
	second io.Closer
}

func (m multiCloser) Close() error {
	err1 := m.first.Close()
	err2 := m.second.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// ReadBlocks reads path to completion and returns every retained block,
// each carrying the registry tag derived from path's filename. Unknown
// filenames are logged and yield blocks with an empty Source.
func ReadBlocks(path string) ([]model.Block, error) {
	source, ok := RegistryForFilename(path)
	if !ok {
		log.Printf("ERROR: unrecognised registry filename %s, tagging blocks with empty source", path)
	}

	r, closer, err := openStream(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var blocks []model.Block
	var pending []string

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if isRetained(pending) {
			lines := make([]string, len(pending))
			copy(lines, pending)
			lines = append(lines, "cust_source: "+source)
			blocks = append(blocks, model.Block{Lines: lines, Source: source})
		}
		pending = pending[:0]
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "%") || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "remarks:") {
			continue
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}

		pending = append(pending, line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return blocks, nil
}

// isRetained reports whether a pending block's first line matches one
// of the known RPSL record kinds.
func isRetained(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(lines[0]))
	for _, prefix := range knownPrefixes {
		if strings.HasPrefix(first, prefix) {
			return true
		}
	}
	return false
}
