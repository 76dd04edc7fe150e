// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package header parses the fixed-format key:value block the archive
// prepends to every submission into a FilingMetadata record. Metadata
// parsing is independent of narrative-text success: a filing whose body
// cannot be segmented still yields usable metadata, and vice versa.
package header

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/pdiddy/edgar-engine/pkg/types"
)

// headerEndRe marks where the authoritative header block stops. Exhibits
// and later sub-documents repeat company blocks that must be ignored.
var headerEndRe = regexp.MustCompile(`(?i)^\s*(</SEC-HEADER>|<DOCUMENT>)`)

// sicCodeRe pulls the numeric code out of a classification value like
// "PHARMACEUTICAL PREPARATIONS [2834]".
var sicCodeRe = regexp.MustCompile(`\[(\d+)\]`)

// maxHeaderLines bounds the scan; real header blocks are under a hundred
// lines, and a missing terminator must not walk the whole document.
const maxHeaderLines = 300

// Parse reads the first header block of a raw submission and maps each
// recognized key to its metadata field. Absent keys leave empty fields,
// never an error. Fields already known from the raw filing record (CIK,
// filing type, source links) backfill anything the header lacks.
func Parse(raw types.RawFiling) types.FilingMetadata {
	meta := types.FilingMetadata{
		CIK:   raw.CIK,
		Type:  raw.Type,
		Links: raw.Links,
	}

	sc := bufio.NewScanner(bytes.NewReader(raw.Content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for n := 0; sc.Scan() && n < maxHeaderLines; n++ {
		line := sc.Text()
		if headerEndRe.MatchString(line) {
			break
		}
		key, value, ok := splitHeaderLine(line)
		if !ok || value == "" {
			continue
		}
		assign(&meta, key, value)
	}

	return meta
}

// splitHeaderLine splits "KEY:	VALUE" lines, tolerating tab or space
// padding. Lines without a colon, and SGML tag lines, are not key:value.
func splitHeaderLine(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "<") {
		return "", "", false
	}
	idx := strings.Index(trimmed, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.ToUpper(strings.TrimSpace(trimmed[:idx]))
	value = strings.TrimSpace(trimmed[idx+1:])
	return key, value, true
}

// assign maps one recognized header key to its metadata field. First
// occurrence wins: the filer block precedes exhibit company blocks.
func assign(meta *types.FilingMetadata, key, value string) {
	switch key {
	case "COMPANY CONFORMED NAME":
		if meta.Company == "" {
			meta.Company = value
		}
	case "CENTRAL INDEX KEY":
		if meta.CIK == "" {
			meta.CIK = strings.TrimLeft(value, "0")
		}
	case "CONFORMED SUBMISSION TYPE":
		if meta.Type == "" {
			meta.Type = types.FilingType(value)
		}
	case "FILED AS OF DATE":
		if meta.FilingDate == "" {
			meta.FilingDate = formatDate(value)
		}
	case "CONFORMED PERIOD OF REPORT":
		if meta.PeriodOfReport == "" {
			meta.PeriodOfReport = formatDate(value)
		}
	case "STANDARD INDUSTRIAL CLASSIFICATION":
		if meta.SIC == "" {
			if m := sicCodeRe.FindStringSubmatch(value); m != nil {
				meta.SIC = m[1]
			} else {
				meta.SIC = value
			}
		}
	case "STATE OF INCORPORATION":
		if meta.StateOfInc == "" {
			meta.StateOfInc = value
		}
	case "STATE":
		if meta.StateLocation == "" {
			meta.StateLocation = value
		}
	case "FISCAL YEAR END":
		if meta.FiscalYearEnd == "" {
			meta.FiscalYearEnd = value
		}
	}
}

// formatDate converts the archive's YYYYMMDD dates to YYYY-MM-DD.
// Values in any other shape pass through unchanged.
func formatDate(v string) string {
	if len(v) != 8 {
		return v
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return v
		}
	}
	return v[:4] + "-" + v[4:6] + "-" + v[6:]
}
