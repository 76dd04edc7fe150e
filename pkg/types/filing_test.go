// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func sampleFiling() *ExtractedFiling {
	return &ExtractedFiling{
		Metadata: FilingMetadata{
			CIK:        "320193",
			Company:    "WIDGETRON INC",
			Type:       FilingAnnual,
			FilingDate: "2023-02-03",
		},
		Filename: "0000320193-23-000006.txt",
		Segments: []ItemSegment{
			{Key: "item_1", Text: "Item 1. Business"},
			{Key: "item_1A", Text: ""},
			{Key: "item_2", Text: "Item 2. Properties"},
		},
	}
}

func TestMarshalJSONKeyOrder(t *testing.T) {
	data, err := json.Marshal(sampleFiling())
	if err != nil {
		t.Fatal(err)
	}
	record := string(data)

	// Downstream consumers rely on metadata first, then items in schema
	// order, absent items included with empty text.
	keys := []string{`"cik"`, `"company"`, `"filing_type"`, `"filename"`,
		`"item_1"`, `"item_1A"`, `"item_2"`}
	last := -1
	for _, k := range keys {
		idx := strings.Index(record, k)
		if idx < 0 {
			t.Fatalf("key %s missing from record: %s", k, record)
		}
		if idx < last {
			t.Errorf("key %s out of order", k)
		}
		last = idx
	}

	// The record stays valid JSON despite the hand-built encoding.
	var decoded map[string]string
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("record does not round-trip: %v", err)
	}
	if decoded["item_1A"] != "" {
		t.Errorf("item_1A = %q, want empty", decoded["item_1A"])
	}
	if decoded["cik"] != "320193" {
		t.Errorf("cik = %q", decoded["cik"])
	}
}

func TestSegment(t *testing.T) {
	f := sampleFiling()

	text, ok := f.Segment("item_2")
	if !ok || text != "Item 2. Properties" {
		t.Errorf("Segment(item_2) = %q, %v", text, ok)
	}

	text, ok = f.Segment("item_1A")
	if !ok || text != "" {
		t.Errorf("Segment(item_1A) = %q, %v; absent items keep their key", text, ok)
	}

	if _, ok := f.Segment("item_99"); ok {
		t.Error("Segment(item_99) reported an unknown key as present")
	}
}

func TestOutcomeSucceeded(t *testing.T) {
	ok := ExtractionOutcome{Accession: "a", Filing: sampleFiling()}
	if !ok.Succeeded() {
		t.Error("outcome with a filing should succeed")
	}

	bad := ExtractionOutcome{
		Accession: "b",
		Failure:   &ExtractionFailure{Accession: "b", Reason: FailureMetadata},
	}
	if bad.Succeeded() {
		t.Error("outcome with a failure should not succeed")
	}
}

func TestHasRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		meta FilingMetadata
		want bool
	}{
		{"complete", FilingMetadata{CIK: "320193", Type: FilingAnnual}, true},
		{"missing CIK", FilingMetadata{Type: FilingAnnual}, false},
		{"missing type", FilingMetadata{CIK: "320193"}, false},
		{"empty", FilingMetadata{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.HasRequiredFields(); got != tt.want {
				t.Errorf("HasRequiredFields() = %v, want %v", got, tt.want)
			}
		})
	}
}
