// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

// Thresholds are the tunable parameters of boundary disambiguation.
// Package-level defaults apply in production; tests override per case.
type Thresholds struct {
	// MinGap is the minimum byte distance between consecutive accepted
	// boundaries. Defeats same-line and immediately adjacent false
	// matches without rejecting genuinely short sections.
	MinGap int

	// TocWindow is the lookahead distance in bytes. A candidate followed
	// within the window by a later item's candidate is treated as a
	// contents entry rather than a section header.
	TocWindow int
}

func defaultThresholds() Thresholds {
	return Thresholds{MinGap: 80, TocWindow: 160}
}

// disambiguate selects at most one boundary per item in a single
// left-to-right sweep over the item order. Accepted boundaries are
// strictly increasing in offset; items with no acceptable candidate are
// simply not present in the result. Candidate lists arrive in document
// order, the way locate produces them.
func disambiguate(cands []candidate, itemCount int, th Thresholds) []candidate {
	perItem := make([][]candidate, itemCount)
	for _, c := range cands {
		perItem[c.ItemIndex] = append(perItem[c.ItemIndex], c)
	}

	bodylike := func(c candidate) bool {
		for _, d := range cands {
			if d.ItemIndex <= c.ItemIndex {
				continue
			}
			if d.Offset > c.Offset && d.Offset-c.Offset <= th.TocWindow {
				return false
			}
		}
		return true
	}

	var accepted []candidate
	lastOffset := -th.MinGap - 1

	for i := 0; i < itemCount; i++ {
		var passing []candidate
		for _, c := range perItem[i] {
			if c.Offset > lastOffset+th.MinGap {
				passing = append(passing, c)
			}
		}
		if len(passing) == 0 {
			continue
		}

		// The next item's first body-like candidate bounds this item's
		// section start: a match beyond it is a cross-reference inside a
		// later section, not this item's header.
		limit := -1
		for j := i + 1; j < itemCount && limit < 0; j++ {
			for _, d := range perItem[j] {
				if d.Offset > lastOffset && bodylike(d) {
					limit = d.Offset
					break
				}
			}
		}

		plausible := passing
		if limit >= 0 {
			var bounded []candidate
			for _, c := range passing {
				if c.Offset < limit {
					bounded = append(bounded, c)
				}
			}
			if len(bounded) > 0 {
				plausible = bounded
			}
		}

		pool := plausible
		var body []candidate
		for _, c := range plausible {
			if bodylike(c) {
				body = append(body, c)
			}
		}
		if len(body) > 0 {
			pool = body
		}

		// Prefer the last occurrence: contents entries and cross
		// references precede the real section. When near-coincident
		// candidates survive, the higher-confidence one wins.
		pick := pool[len(pool)-1]
		for k := len(pool) - 2; k >= 0; k-- {
			if pick.Offset-pool[k].Offset > th.TocWindow {
				break
			}
			if pool[k].Confidence > pick.Confidence {
				pick = pool[k]
			}
		}

		accepted = append(accepted, pick)
		lastOffset = pick.Offset
	}

	return accepted
}
