// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Mark Feghali

package rpsl

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"rirdb-ingest/pkg/model"
)

// None is returned by Single when an attribute is absent, matching the
// source's sentinel "none" string.
const None = "none"

var whitespaceRun = regexp.MustCompile(`\s+`)
var tokenSeparator = regexp.MustCompile(`[ ,]+`)

// compilePattern builds the `^name:\s*(.+)$` regex for a given attribute
// name, anchored per-line (regexp.MustCompile with (?m) equivalent).
// Column-aligned dumps pad many spaces after the colon, so the
// separator is \s* rather than \s? — the same fix applied to the
// range patterns in pkg/cidrrange.
func compilePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(name) + `:\s*(.+)$`)
}

// text joins a block's lines the way the reader stored them, decoding
// lossily so invalid UTF-8 never crashes the extractor.
func text(b model.Block) string {
	joined := strings.Join(b.Lines, "\n")
	if utf8.ValidString(joined) {
		return joined
	}
	return strings.ToValidUTF8(joined, "�")
}

// Single returns the whitespace-collapsed concatenation of every line
// in b matching "<name>: value", or None if there is no match.
func Single(b model.Block, name string) string {
	matches := compilePattern(name).FindAllStringSubmatch(text(b), -1)
	if len(matches) == 0 {
		return None
	}
	fragments := make([]string, 0, len(matches))
	for _, m := range matches {
		fragments = append(fragments, strings.TrimSpace(m[1]))
	}
	joined := strings.Join(fragments, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(joined, " "))
}

// Multi returns the deduplicated list of tokens across every line in b
// matching "<name>: value", splitting on runs of spaces or commas.
// Hyphens inside a token are preserved.
func Multi(b model.Block, name string) []string {
	matches := compilePattern(name).FindAllStringSubmatch(text(b), -1)
	if len(matches) == 0 {
		return nil
	}
	fragments := make([]string, 0, len(matches))
	for _, m := range matches {
		fragments = append(fragments, strings.TrimSpace(m[1]))
	}
	joined := strings.Join(fragments, " ")

	seen := make(map[string]bool)
	var out []string
	for _, tok := range tokenSeparator.Split(joined, -1) {
		tok = strings.TrimSpace(tok)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// FirstValue returns the trimmed value of the first line in b matching
// "<name>: value", or "" if there is no match. Unlike Single, it does
// not join repeated occurrences of the attribute.
func FirstValue(b model.Block, name string) string {
	m := compilePattern(name).FindStringSubmatch(text(b))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Has reports whether b contains at least one line for attribute name.
func Has(b model.Block, name string) bool {
	return compilePattern(name).MatchString(text(b))
}
