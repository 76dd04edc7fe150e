// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"github.com/pdiddy/edgar-engine/internal/normalize"
	"github.com/pdiddy/edgar-engine/internal/schema"
)

// sliceSections cuts the buffer between consecutive accepted boundaries
// and returns the flattened text per item index. The last section runs to
// end, which the caller has already bounded at the signature marker.
func sliceSections(text string, accepted []candidate, end int) map[int]string {
	sections := make(map[int]string, len(accepted))
	for i, b := range accepted {
		stop := end
		if i+1 < len(accepted) {
			stop = accepted[i+1].Offset
		}
		if stop > b.Offset {
			sections[b.ItemIndex] = normalize.CollapseLines(text[b.Offset:stop])
		}
	}
	return sections
}

// segmentItems locates and disambiguates the given items within one
// region of the buffer, returning their sections keyed by item index and
// the accepted boundaries in offset order.
func segmentItems(items []*schema.Item, text string, lines []line, start, end int, th Thresholds) (map[int]string, []candidate) {
	var region []line
	for _, ln := range lines {
		if ln.start >= start && ln.start < end {
			region = append(region, ln)
		}
	}
	cands := locate(items, region)
	accepted := disambiguate(cands, len(items), th)
	return sliceSections(text, accepted, end), accepted
}

// lastHeaderBefore returns the start of the last line before limit that
// matches the part's header pattern, or -1. The last match is
// authoritative: contents entries precede the real part header.
func lastHeaderBefore(p *schema.Part, lines []line, limit int) int {
	off := -1
	for _, ln := range lines {
		if ln.start >= limit {
			break
		}
		if p.MatchHeader(ln.text) {
			off = ln.start
		}
	}
	return off
}
