// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tables deletes regions of normalized text that are primarily
// tabular numeric data. Financial statement tables add no narrative value
// and dilute the header context that boundary matching depends on.
package tables

import (
	"regexp"
	"strings"

	"github.com/pdiddy/edgar-engine/internal/normalize"
)

// Classification thresholds. A block is deleted only when it spans at least
// MinBlockLines non-blank lines and its numeric-to-alphabetic character
// ratio exceeds NumericRatio. Tuned conservatively: a narrative paragraph
// that merely mentions numbers stays far below the ratio.
const (
	MinBlockLines = 4
	NumericRatio  = 1.0
)

// headerLineRe guards blocks that contain a section or part header; a
// header row inside a dense numeric region must survive removal.
var headerLineRe = regexp.MustCompile(`(?i)^[ \t]*(ITEMS?[ \t]+\d|PART[ \t]+(\d|[IVX])|SIGNATURE)`)

// Remove returns the buffer with tabular numeric blocks deleted.
// Classification is local and stateless per block; no cross-block memory.
func Remove(nt normalize.NormalizedText) normalize.NormalizedText {
	lines := strings.Split(nt.Text, "\n")
	keep := make([]string, 0, len(lines))

	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			keep = append(keep, lines[i])
			i++
			continue
		}

		// Collect the contiguous non-blank block starting here.
		j := i
		for j < len(lines) && strings.TrimSpace(lines[j]) != "" {
			j++
		}
		block := lines[i:j]

		if !isTabular(block) {
			keep = append(keep, block...)
		}
		i = j
	}

	return normalize.NormalizedText{
		Text:        strings.Join(keep, "\n"),
		OriginalLen: nt.OriginalLen,
	}
}

// isTabular classifies one contiguous line block.
func isTabular(block []string) bool {
	if len(block) < MinBlockLines {
		return false
	}
	var numeric, alpha int
	for _, line := range block {
		if headerLineRe.MatchString(line) {
			return false
		}
		for _, r := range line {
			switch {
			case r >= '0' && r <= '9':
				numeric++
			case r == '$' || r == '%' || r == '(' || r == ')' ||
				r == ',' || r == '.' || r == '-':
				numeric++
			case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
				alpha++
			}
		}
	}
	if alpha == 0 {
		return numeric > 0
	}
	return float64(numeric)/float64(alpha) > NumericRatio
}

// rawTableRe matches literal <TABLE> regions in plain-text era filings,
// removed before normalization ever sees them. Plain-text tables carry
// <S>/<C> column markers and no row or cell elements; the presence of
// both <tr> and <td> markup means real HTML, whose tables may hold
// narrative and must go through the line-block classifier instead.
var (
	rawTableRe = regexp.MustCompile(`(?is)<TABLE>.*?</TABLE>`)
	rowTagRe   = regexp.MustCompile(`(?i)<tr[\s>]`)
	cellTagRe  = regexp.MustCompile(`(?i)<td[\s>]`)
)

// StripRaw deletes literal <TABLE> regions from a raw plain-text
// document. HTML documents pass through untouched.
func StripRaw(content string) string {
	if rowTagRe.MatchString(content) && cellTagRe.MatchString(content) {
		return content
	}
	return rawTableRe.ReplaceAllString(content, "")
}
