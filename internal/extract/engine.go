// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract segments normalized filings into item-keyed sections.
// The engine is pure: one raw filing in, one outcome out, no I/O. A
// filing that cannot be segmented yields a failure outcome, never an
// error that aborts the batch.
package extract

import (
	"fmt"
	"strings"

	"github.com/pdiddy/edgar-engine/internal/archive"
	"github.com/pdiddy/edgar-engine/internal/header"
	"github.com/pdiddy/edgar-engine/internal/normalize"
	"github.com/pdiddy/edgar-engine/internal/schema"
	"github.com/pdiddy/edgar-engine/internal/tables"
	"github.com/pdiddy/edgar-engine/pkg/types"
)

// SignatureKey is the output field holding the signature-block text when
// its retention is enabled.
const SignatureKey = "signature"

// Engine segments raw filings according to the registered schemas.
// Safe for concurrent use: all state is read-only after construction.
type Engine struct {
	cfg        types.ExtractionConfig
	thresholds Thresholds
}

// NewEngine validates the configuration against the registered schemas
// and returns a ready engine. An unknown filing type or a retained item
// that no requested schema defines is a configuration error, surfaced
// here rather than once per filing mid-run.
func NewEngine(cfg types.ExtractionConfig) (*Engine, error) {
	fts := cfg.FilingTypes
	if len(fts) == 0 {
		for _, t := range types.SupportedFilingTypes {
			fts = append(fts, string(t))
		}
	}
	if err := schema.Validate(fts); err != nil {
		return nil, err
	}
	if err := validateRetained(cfg.ItemsToRetain, fts); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, thresholds: defaultThresholds()}, nil
}

// validateRetained confirms every retained identifier names an item in at
// least one requested schema, either by item ID or by output key.
func validateRetained(retain, filingTypes []string) error {
	if len(retain) == 0 {
		return nil
	}
	var schemas []*schema.Schema
	for _, ft := range filingTypes {
		s, err := schema.Lookup(types.FilingType(ft), "")
		if err != nil {
			return err
		}
		schemas = append(schemas, s)
		if types.FilingType(ft) == types.FilingCurrent {
			// Numeric-era current reports carry their own taxonomy.
			if obs, err := schema.Lookup(types.FilingType(ft), "2004-01-01"); err == nil {
				schemas = append(schemas, obs)
			}
		}
	}
	for _, id := range retain {
		found := false
		for _, s := range schemas {
			if s.HasItem(id) {
				found = true
				break
			}
			for _, it := range s.Items {
				if it.Key == id {
					found = true
					break
				}
			}
		}
		if !found {
			return fmt.Errorf("retained item %q is not defined by any requested filing type", id)
		}
	}
	return nil
}

// Extract runs the full pipeline for one filing: header parse, document
// normalization, table removal, boundary location and disambiguation,
// and section slicing. Always returns exactly one outcome.
func (e *Engine) Extract(raw types.RawFiling) types.ExtractionOutcome {
	out := types.ExtractionOutcome{Accession: raw.Accession}

	meta := header.Parse(raw)
	if meta.Links.HTMLIndex == "" {
		meta.Links = archive.SourceLinks(meta.CIK, raw.Accession)
	}
	if !meta.HasRequiredFields() {
		out.Failure = &types.ExtractionFailure{
			Accession: raw.Accession,
			Reason:    types.FailureMetadata,
			Detail:    "header block lacks CIK or filing type",
			Metadata:  &meta,
		}
		return out
	}

	sch, err := schema.Lookup(meta.Type, meta.FilingDate)
	if err != nil {
		out.Failure = &types.ExtractionFailure{
			Accession: raw.Accession,
			Reason:    types.FailureUnsupportedType,
			Detail:    err.Error(),
			Metadata:  &meta,
		}
		return out
	}

	content := raw.Content
	if e.cfg.RemoveTables {
		content = []byte(tables.StripRaw(string(content)))
	}
	nt := normalize.Document(content)
	if e.cfg.RemoveTables {
		nt = tables.Remove(nt)
	}
	if strings.TrimSpace(nt.Text) == "" {
		out.Failure = &types.ExtractionFailure{
			Accession: raw.Accession,
			Reason:    types.FailureEmptyDocument,
			Detail:    fmt.Sprintf("no narrative text in %d raw bytes", nt.OriginalLen),
			Metadata:  &meta,
		}
		return out
	}

	out.Filing = &types.ExtractedFiling{
		Metadata: meta,
		Filename: raw.Filename,
		Segments: e.segment(sch, nt.Text),
	}
	return out
}

// segment produces the item segments for one normalized buffer, in schema
// order. Every retained schema key appears exactly once; absent items
// carry empty text.
func (e *Engine) segment(sch *schema.Schema, text string) []types.ItemSegment {
	lines := splitLines(text)

	end := len(text)
	sig := signatureOffset(lines)
	// A marker in the front half of the buffer is a contents entry, not
	// the signature section; only a trailing marker bounds extraction.
	sigTerminal := sig > len(text)/2
	if sigTerminal {
		end = sig
	}

	var segs []types.ItemSegment
	if len(sch.Parts) > 0 {
		segs = e.segmentParts(sch, text, lines, end)
	} else {
		sections, _ := segmentItems(sch.Items, text, lines, 0, end, e.thresholds)
		segs = e.itemSegments(sch.Items, sections)
	}

	if e.cfg.IncludeSignature && sigTerminal {
		segs = append(segs, types.ItemSegment{
			Key:  SignatureKey,
			Text: normalize.CollapseLines(text[sig:]),
		})
	}
	return segs
}

// segmentParts handles part-structured filings: the buffer is split at
// the part headers and each part's items are segmented within its own
// region, so identically numbered items in different parts cannot
// collide. Each part also emits a whole-part field; when no item header
// is found inside a part, that field is the only text recovered for it.
// The Part I region runs from the last PART I header before the first
// accepted item boundary, so a contents-listing header cannot drag
// front matter into the whole-part text.
func (e *Engine) segmentParts(sch *schema.Schema, text string, lines []line, end int) []types.ItemSegment {
	p2 := lastHeaderBefore(sch.Parts[1], lines, end)
	p1end := end
	if p2 >= 0 {
		p1end = p2
	}

	items1 := partItems(sch, sch.Parts[0].Number)
	sections1, accepted1 := segmentItems(items1, text, lines, 0, p1end, e.thresholds)
	firstItem := p1end
	if len(accepted1) > 0 {
		firstItem = accepted1[0].Offset
	}
	p1 := lastHeaderBefore(sch.Parts[0], lines, firstItem)
	if p1 < 0 {
		p1 = 0
	}
	partText1 := ""
	if p1end > p1 {
		partText1 = normalize.CollapseLines(text[p1:p1end])
	}

	items2 := partItems(sch, sch.Parts[1].Number)
	partText2 := ""
	sections2 := map[int]string{}
	if p2 >= 0 && end > p2 {
		partText2 = normalize.CollapseLines(text[p2:end])
		sections2, _ = segmentItems(items2, text, lines, p2, end, e.thresholds)
	}

	segs := []types.ItemSegment{{Key: sch.Parts[0].Key, Text: partText1}}
	segs = append(segs, e.itemSegments(items1, sections1)...)
	segs = append(segs, types.ItemSegment{Key: sch.Parts[1].Key, Text: partText2})
	segs = append(segs, e.itemSegments(items2, sections2)...)
	return segs
}

// partItems returns the schema items scoped to one part, in schema order.
func partItems(sch *schema.Schema, number int) []*schema.Item {
	var items []*schema.Item
	for _, it := range sch.Items {
		if it.Part == number {
			items = append(items, it)
		}
	}
	return items
}

// itemSegments emits one segment per retained item, in item order.
func (e *Engine) itemSegments(items []*schema.Item, sections map[int]string) []types.ItemSegment {
	var segs []types.ItemSegment
	for idx, it := range items {
		if !e.retained(it) {
			continue
		}
		segs = append(segs, types.ItemSegment{Key: it.Key, Text: sections[idx]})
	}
	return segs
}

// retained reports whether an item survives the items-to-retain filter.
// Both bare identifiers ("1A") and full output keys are accepted.
func (e *Engine) retained(it *schema.Item) bool {
	if len(e.cfg.ItemsToRetain) == 0 {
		return true
	}
	for _, id := range e.cfg.ItemsToRetain {
		if id == it.ID || id == it.Key {
			return true
		}
	}
	return false
}
