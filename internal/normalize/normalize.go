// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts a raw filing document into a plain-text buffer
// with deterministic whitespace and line structure. Headers that were their
// own markup blocks stay on their own lines, which downstream boundary
// matching depends on.
package normalize

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// NormalizedText is the plain-text form of one filing document. Ephemeral:
// it exists only within a single extraction call.
type NormalizedText struct {
	// Text is the normalized buffer. Line boundaries are significant.
	Text string

	// OriginalLen is the size of the raw document, kept for diagnostics.
	OriginalLen int
}

// Document runs the full normalization pipeline: select the narrative
// sub-document, drop embedded non-narrative payloads, strip markup, decode
// entities, and canonicalize whitespace. It never fails; malformed markup
// degrades to conservative tag stripping.
func Document(content []byte) NormalizedText {
	text := decode(content)
	text = selectNarrativeDocument(text)
	text = stripPayloads(text)

	if looksLikeHTML(text) {
		if plain, ok := htmlToText(text); ok {
			text = plain
		} else {
			text = stripTags(text)
		}
	} else {
		text = stripTags(text)
	}

	text = CleanText(text)
	return NormalizedText{Text: text, OriginalLen: len(content)}
}

// decode converts the raw bytes to UTF-8 using the declared or detected
// charset. Undetectable input passes through unchanged.
func decode(content []byte) string {
	enc, _, _ := charset.DetermineEncoding(content, "")
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return string(content)
	}
	return string(decoded)
}

var (
	documentRe = regexp.MustCompile(`(?is)<DOCUMENT>.*?</DOCUMENT>`)
	docTypeRe  = regexp.MustCompile(`(?i)<TYPE>([^\s<]+)`)
)

// selectNarrativeDocument picks the first <DOCUMENT> block whose declared
// type is a report form (10-K, 10-Q, 8-K and their amendments). Exhibits and
// other sub-documents are skipped. A submission without recognizable blocks
// is used whole.
func selectNarrativeDocument(text string) string {
	docs := documentRe.FindAllString(text, -1)
	for _, doc := range docs {
		m := docTypeRe.FindStringSubmatch(doc)
		if m == nil {
			continue
		}
		t := strings.ToUpper(m[1])
		if strings.HasPrefix(t, "10") || strings.HasPrefix(t, "8") {
			return doc
		}
	}
	return text
}

// payloadRes match embedded non-narrative payloads removed in their
// entirety: uuencoded PDFs and graphics, XBRL/XML data blocks, scripts and
// stylesheets. Go regexps have no backreferences, so each pair is explicit.
var payloadRes = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<PDF>.*?</PDF>`),
	regexp.MustCompile(`(?is)<GRAPHIC>.*?</GRAPHIC>`),
	regexp.MustCompile(`(?is)<ZIP>.*?</ZIP>`),
	regexp.MustCompile(`(?is)<EXCEL>.*?</EXCEL>`),
	regexp.MustCompile(`(?is)<XBRL[^>]*>.*?</XBRL>`),
	regexp.MustCompile(`(?is)<XML>.*?</XML>`),
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
	// Sub-document declaration lines; their values are not narrative.
	regexp.MustCompile(`(?im)^<(TYPE|SEQUENCE|FILENAME|DESCRIPTION|TEXT)>.*$`),
}

func stripPayloads(text string) string {
	for _, re := range payloadRes {
		text = re.ReplaceAllString(text, "")
	}
	return text
}

var htmlHintRe = regexp.MustCompile(`(?i)<(html|body|div|p|td|tr|table|font|br|span)[\s/>]`)

// looksLikeHTML reports whether the document carries real HTML markup, as
// opposed to the tag-sprinkled plain text of older filings.
func looksLikeHTML(text string) bool {
	return htmlHintRe.MatchString(text)
}

// blockTags are elements whose boundaries become line breaks, so a header
// that was its own block stays its own line.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true,
	"table": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "center": true, "blockquote": true,
	"pre": true, "hr": true, "ul": true, "ol": true,
}

// skipTags are elements whose entire subtree is non-narrative.
var skipTags = map[string]bool{
	"script": true, "style": true, "head": true, "title": true, "noscript": true,
}

// htmlToText parses the markup and walks the tree, emitting text nodes with
// block-level line breaks and cell separators. The parser decodes character
// entities. Returns ok=false when parsing yields nothing usable, signalling
// the caller to fall back to tag stripping.
func htmlToText(text string) (string, bool) {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return "", false
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if skipTags[n.Data] {
				return
			}
			if blockTags[n.Data] {
				b.WriteByte('\n')
			}
			if n.Data == "td" || n.Data == "th" {
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if blockTags[n.Data] {
				b.WriteByte('\n')
			}
			if n.Data == "td" || n.Data == "th" {
				b.WriteByte(' ')
			}
		}
	}
	walk(doc)

	out := b.String()
	if strings.TrimSpace(out) == "" && strings.TrimSpace(text) != "" {
		return "", false
	}
	return out, true
}

var (
	blockCloseRe = regexp.MustCompile(`(?i)<\s*/\s*(div|tr|p|li|h[1-6]|table)\s*>`)
	brRe         = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	cellCloseRe  = regexp.MustCompile(`(?i)<\s*/\s*(td|th)\s*>`)
	tagRe        = regexp.MustCompile(`<[^><\n]{0,200}?>`)
)

// stripTags is the conservative fallback: insert line breaks for block
// closers, drop everything that looks like a tag, and decode entities.
// Used for plain-text era filings and for markup the parser cannot handle.
func stripTags(text string) string {
	text = blockCloseRe.ReplaceAllString(text, "\n")
	text = brRe.ReplaceAllString(text, "\n")
	text = cellCloseRe.ReplaceAllString(text, " ")
	text = tagRe.ReplaceAllString(text, "")
	return html.UnescapeString(text)
}

// charReplacer canonicalizes Windows-1252 artifacts and typographic
// variants that otherwise break header matching.
var charReplacer = strings.NewReplacer(
	" ", " ", "​", " ", " ", " ",
	"‐", "-", "‑", "-", "‒", "-", "–", "-",
	"—", "-", "―", "-",
	"‘", "'", "’", "'", "“", `"`, "”", `"`,
	"\x91", "'", "\x92", "'", "\x93", `"`, "\x94", `"`,
	"\x95", "*", "\x96", "-", "\x97", "-",
)

var (
	// Spaced-out headers ("I T E M  7", "P A R T II") from letter-spaced
	// typesetting, rejoined so the patterns can see them.
	spacedItemRe = regexp.MustCompile(`(?im)^([ \t]*)(I[ \t]*T[ \t]*E[ \t]*M[ \t]*S?)([ \t]+)(\d{1,2}[ \t]*[ABC]?)`)
	spacedPartRe = regexp.MustCompile(`(?im)^([ \t]*)(P[ \t]*A[ \t]*R[ \t]*T)([ \t]+)(\d{1,2}|[IVX]{1,4})`)
	spacedSigRe  = regexp.MustCompile(`(?im)^([ \t]*)(S[ \t]*I[ \t]*G[ \t]*N[ \t]*A[ \t]*T[ \t]*U[ \t]*R[ \t]*E[ \t]*(?:S|\([ \t]*s[ \t]*\))?)[ \t]*$`)

	// Navigation and layout lines that poison boundary matching.
	navLineRe  = regexp.MustCompile(`(?im)^[ \t]*(TABLE[ \t]+OF[ \t]+CONTENTS|INDEX[ \t]+TO[ \t]+FINANCIAL[ \t]+STATEMENTS|BACK[ \t]+TO[ \t]+CONTENTS|QUICKLINKS)[ \t]*$`)
	pageNumRe  = regexp.MustCompile(`(?m)^[ \t]*-{0,2}[ \t]*\d{1,4}[ \t]*-{0,2}[ \t]*$`)
	pageWordRe = regexp.MustCompile(`(?im)^[ \t]*Page[ \t]+\d+[ \t]*$`)

	spaceRunRe = regexp.MustCompile(`[ \t]{2,}`)
	blankRunRe = regexp.MustCompile(`\n{3,}`)
)

// CleanText canonicalizes characters, repairs broken section headers,
// removes navigation and page-number lines, and normalizes whitespace while
// preserving line boundaries.
func CleanText(text string) string {
	text = charReplacer.Replace(text)

	text = repairHeader(text, spacedItemRe)
	text = repairHeader(text, spacedPartRe)
	text = repairHeader(text, spacedSigRe)

	text = navLineRe.ReplaceAllString(text, "")
	text = pageNumRe.ReplaceAllString(text, "")
	text = pageWordRe.ReplaceAllString(text, "")

	// Collapse intra-line whitespace runs; line boundaries stay put.
	text = spaceRunRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// repairHeader rejoins a letter-spaced header label, preserving case:
// indent + label without inner whitespace + single space + identifier.
func repairHeader(text string, re *regexp.Regexp) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		groups := re.FindStringSubmatch(match)
		var b bytes.Buffer
		b.WriteString(groups[1])
		b.WriteString(removeWhitespace(groups[2]))
		if len(groups) > 4 {
			b.WriteByte(' ')
			b.WriteString(removeWhitespace(groups[4]))
		}
		return b.String()
	})
}

func removeWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
}

var (
	blankLinesRe = regexp.MustCompile(`(?: *\n *){2,}`)
	newlineRe    = regexp.MustCompile(`\n`)
)

// CollapseLines flattens a segment for output: paragraph breaks become
// single newlines, remaining line breaks become spaces.
func CollapseLines(text string) string {
	const mark = "\x00"
	text = blankLinesRe.ReplaceAllString(text, mark)
	text = newlineRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, mark, "\n")
	text = spaceRunRe.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
