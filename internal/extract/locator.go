// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"

	"github.com/pdiddy/edgar-engine/internal/schema"
)

// line is one line of the normalized buffer with its byte position.
type line struct {
	start int
	end   int
	text  string
}

// splitLines indexes the buffer by line. Offsets address the original
// buffer, so a boundary's position survives into segment slicing.
func splitLines(text string) []line {
	lines := make([]line, 0, strings.Count(text, "\n")+1)
	start := 0
	for {
		idx := strings.IndexByte(text[start:], '\n')
		if idx < 0 {
			lines = append(lines, line{start: start, end: len(text), text: text[start:]})
			return lines
		}
		end := start + idx
		lines = append(lines, line{start: start, end: end, text: text[start:end]})
		start = end + 1
	}
}

// candidate is one line that matched an item's header pattern. ItemIndex
// addresses the item list the locator was given, which for quarterly
// reports is a per-part subset.
type candidate struct {
	ItemIndex  int
	Offset     int
	LineEnd    int
	Confidence int
}

// locate scans every line against every item's header patterns and
// returns all candidates in document order. A line matching more than one
// item yields one candidate per item; ranking is the disambiguator's job.
func locate(items []*schema.Item, lines []line) []candidate {
	var cands []candidate
	for _, ln := range lines {
		if len(ln.text) < 5 || strings.IndexAny(ln.text, "IiPp") < 0 {
			continue
		}
		for idx, it := range items {
			conf, ok := it.Match(ln.text)
			if !ok {
				continue
			}
			cands = append(cands, candidate{
				ItemIndex:  idx,
				Offset:     ln.start,
				LineEnd:    ln.end,
				Confidence: conf,
			})
		}
	}
	return cands
}

// signatureOffset returns the start of the last signature-marker line, or
// -1 when the buffer has none. The last occurrence is authoritative: a
// contents listing may name the section long before it appears.
func signatureOffset(lines []line) int {
	off := -1
	for _, ln := range lines {
		if schema.IsSignatureLine(ln.text) {
			off = ln.start
		}
	}
	return off
}
