// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema holds the per-filing-type item taxonomies and their
// header-matching patterns. Taxonomies are data, not control flow: adding a
// filing type means adding a table here, not new branches in the pipeline.
package schema

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/edgar-engine/pkg/types"
)

// Confidence levels assigned to boundary candidates by pattern specificity.
const (
	// ConfidenceBare is a match on the item number alone ("Item 7").
	ConfidenceBare = 1

	// ConfidenceTitled is a match that also carries the item's title
	// ("Item 7. Management's Discussion ...").
	ConfidenceTitled = 2
)

// ObsoleteCurrentCutoff is the last filing date on which current reports
// used the numeric item taxonomy. Filings dated after it use dotted
// identifiers ("1.01" .. "9.01").
var ObsoleteCurrentCutoff = time.Date(2004, 8, 23, 0, 0, 0, 0, time.UTC)

// romanNumerals maps decimal item numbers to their roman spellings; older
// filings number both parts and items in roman.
var romanNumerals = map[string]string{
	"1": "I", "2": "II", "3": "III", "4": "IV", "5": "V",
	"6": "VI", "7": "VII", "8": "VIII", "9": "IX", "10": "X",
	"11": "XI", "12": "XII", "13": "XIII", "14": "XIV", "15": "XV",
	"16": "XVI", "17": "XVII", "18": "XVIII", "19": "XIX", "20": "XX",
}

// Item is one recognized section of a filing type.
type Item struct {
	// ID is the item identifier within the taxonomy (e.g. "1A", "5.02").
	ID string

	// Part scopes the item for quarterly reports (1 or 2); 0 otherwise.
	Part int

	// Title is the legally defined section title.
	Title string

	// Key is the flat output field name ("item_1A", "part_2_item_6").
	Key string

	titled *regexp.Regexp
	bare   *regexp.Regexp
}

// Match tests a single normalized line against the item's header patterns
// and returns the match confidence. Case-insensitive, tolerant of variable
// spacing and trailing punctuation.
func (it *Item) Match(line string) (int, bool) {
	if it.titled.MatchString(line) {
		return ConfidenceTitled, true
	}
	if it.bare.MatchString(line) {
		return ConfidenceBare, true
	}
	return 0, false
}

// Part is a top-level grouping of items in quarterly reports.
type Part struct {
	// Number is the part number (1 or 2).
	Number int

	// Key is the whole-part output field name ("part_1").
	Key string

	header *regexp.Regexp
}

// MatchHeader tests a line against the part's header pattern ("PART I" / "PART 1").
func (p *Part) MatchHeader(line string) bool {
	return p.header.MatchString(line)
}

// Schema is the ordered catalogue of items for one filing type. Immutable
// after construction and shared by reference across all filings of the type.
type Schema struct {
	// Type is the filing type this schema segments.
	Type types.FilingType

	// Variant distinguishes taxonomy generations ("" or "obsolete").
	Variant string

	// Items lists the recognized items in legal order.
	Items []*Item

	// Parts lists the top-level part groupings; empty except for 10-Q.
	Parts []*Part
}

// ItemKeys returns the output field names in schema order.
func (s *Schema) ItemKeys() []string {
	keys := make([]string, len(s.Items))
	for i, it := range s.Items {
		keys[i] = it.Key
	}
	return keys
}

// HasItem reports whether id names an item in this schema.
func (s *Schema) HasItem(id string) bool {
	for _, it := range s.Items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// signatureRe matches the marker line that opens the signature section.
// Filings spell it "SIGNATURE", "SIGNATURES", or "Signature(s)".
var signatureRe = regexp.MustCompile(`(?i)^[ \t]*SIGNATURE(S|\(S\))?[ \t]*[.:]?[ \t]*$`)

// IsSignatureLine reports whether a normalized line is a signature marker.
func IsSignatureLine(line string) bool {
	return signatureRe.MatchString(line)
}

// idPattern builds the regexp fragment matching an item identifier with
// tolerated internal spacing, roman-numeral alternatives for plain numbers,
// and escaped dots for current-report identifiers.
func idPattern(id string) string {
	if strings.Contains(id, ".") {
		return regexp.QuoteMeta(id)
	}
	// Split trailing letter suffix ("1A" -> "1", "A").
	numEnd := len(id)
	for numEnd > 0 && id[numEnd-1] >= 'A' && id[numEnd-1] <= 'Z' {
		numEnd--
	}
	num, suffix := id[:numEnd], id[numEnd:]

	var b strings.Builder
	if roman, ok := romanNumerals[num]; ok && suffix == "" {
		fmt.Fprintf(&b, "(?:%s|%s)", roman, num)
	} else {
		b.WriteString(num)
	}
	if suffix != "" {
		b.WriteString(`[ \t]*`)
		b.WriteString(suffix)
		if id == "9A" {
			// Sarbanes-Oxley transition filings title this "Item 9A(T)".
			b.WriteString(`(?:\(T\))?`)
		}
	}
	return b.String()
}

// newItem compiles the header patterns for one item. The bare pattern
// requires the identifier at line start after an ITEM label; the titled
// pattern additionally requires the leading words of the item's title.
func newItem(id string, part int, title string) *Item {
	key := "item_" + id
	if part > 0 {
		key = fmt.Sprintf("part_%d_item_%s", part, id)
	}

	idPat := idPattern(id)
	// Terminator keeps "Item 1" from matching "Item 1A" or "Item 16":
	// the identifier must be followed by a non-alphanumeric rune or EOL.
	bare := fmt.Sprintf(`(?i)^[ \t]*ITEMS?[ \t]+%s(?:[^0-9A-Za-z]|$)`, idPat)
	titled := fmt.Sprintf(`(?i)^[ \t]*ITEMS?[ \t]+%s[^0-9A-Za-z\n]{0,8}%s`,
		idPat, titleAnchor(title))

	return &Item{
		ID:     id,
		Part:   part,
		Title:  title,
		Key:    key,
		bare:   regexp.MustCompile(bare),
		titled: regexp.MustCompile(titled),
	}
}

// titleAnchor returns a regexp fragment for the first words of a title,
// enough to distinguish a titled header from a bare cross-reference.
func titleAnchor(title string) string {
	words := strings.Fields(title)
	n := 2
	if len(words) < n {
		n = len(words)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = regexp.QuoteMeta(strings.Trim(words[i], ".,;:"))
	}
	// Separator tolerates the punctuation filings put inside titles.
	return strings.Join(parts, `[ \t,.:]+`)
}

// newPart compiles the header pattern for a quarterly-report part.
func newPart(number int) *Part {
	num := fmt.Sprintf("%d", number)
	pat := fmt.Sprintf(`(?i)^[ \t]*PART[ \t]*(?:%s|%s)(?:[^0-9A-Za-z]|$)`,
		romanNumerals[num], num)
	return &Part{
		Number: number,
		Key:    fmt.Sprintf("part_%d", number),
		header: regexp.MustCompile(pat),
	}
}

func build(ft types.FilingType, variant string, parts []*Part, items []*Item) *Schema {
	return &Schema{Type: ft, Variant: variant, Parts: parts, Items: items}
}

// registry holds the immutable schemas, initialized once at process start.
var registry = map[string]*Schema{
	"10-K":         annualSchema(),
	"10-Q":         quarterlySchema(),
	"8-K":          currentSchema(),
	"8-K-obsolete": currentObsoleteSchema(),
}

// Lookup returns the schema for a filing type. The filing date selects the
// taxonomy generation for current reports; an empty or unparseable date
// selects the modern taxonomy.
func Lookup(ft types.FilingType, filingDate string) (*Schema, error) {
	key := string(ft)
	if ft == types.FilingCurrent && isObsoleteCurrent(filingDate) {
		key = "8-K-obsolete"
	}
	s, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("no schema registered for filing type %q", ft)
	}
	return s, nil
}

// Validate confirms every requested filing type has a registered schema.
// Called at startup, before any worker is dispatched.
func Validate(filingTypes []string) error {
	for _, ft := range filingTypes {
		if _, ok := registry[ft]; !ok {
			return fmt.Errorf("unsupported filing type %q (supported: 10-K, 10-Q, 8-K)", ft)
		}
	}
	return nil
}

// isObsoleteCurrent reports whether a filing date falls in the numeric-item
// era of current reports. Accepts "2004-08-23" and "20040823" forms.
func isObsoleteCurrent(filingDate string) bool {
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if t, err := time.Parse(layout, filingDate); err == nil {
			return !t.After(ObsoleteCurrentCutoff)
		}
	}
	return false
}

func annualSchema() *Schema {
	specs := []struct {
		id    string
		title string
	}{
		{"1", "Business"},
		{"1A", "Risk Factors"},
		{"1B", "Unresolved Staff Comments"},
		{"1C", "Cybersecurity"},
		{"2", "Properties"},
		{"3", "Legal Proceedings"},
		{"4", "Mine Safety Disclosures"},
		{"5", "Market for Registrant's Common Equity, Related Stockholder Matters and Issuer Purchases of Equity Securities"},
		{"6", "Selected Financial Data"},
		{"7", "Management's Discussion and Analysis of Financial Condition and Results of Operations"},
		{"7A", "Quantitative and Qualitative Disclosures About Market Risk"},
		{"8", "Financial Statements and Supplementary Data"},
		{"9", "Changes in and Disagreements with Accountants on Accounting and Financial Disclosure"},
		{"9A", "Controls and Procedures"},
		{"9B", "Other Information"},
		{"9C", "Disclosure Regarding Foreign Jurisdictions that Prevent Inspections"},
		{"10", "Directors, Executive Officers and Corporate Governance"},
		{"11", "Executive Compensation"},
		{"12", "Security Ownership of Certain Beneficial Owners and Management and Related Stockholder Matters"},
		{"13", "Certain Relationships and Related Transactions, and Director Independence"},
		{"14", "Principal Accountant Fees and Services"},
		{"15", "Exhibits, Financial Statement Schedules"},
		{"16", "Form 10-K Summary"},
	}
	items := make([]*Item, len(specs))
	for i, s := range specs {
		items[i] = newItem(s.id, 0, s.title)
	}
	return build(types.FilingAnnual, "", nil, items)
}

func quarterlySchema() *Schema {
	part1 := []struct {
		id    string
		title string
	}{
		{"1", "Financial Statements"},
		{"2", "Management's Discussion and Analysis of Financial Condition and Results of Operations"},
		{"3", "Quantitative and Qualitative Disclosures About Market Risk"},
		{"4", "Controls and Procedures"},
	}
	part2 := []struct {
		id    string
		title string
	}{
		{"1", "Legal Proceedings"},
		{"1A", "Risk Factors"},
		{"2", "Unregistered Sales of Equity Securities and Use of Proceeds"},
		{"3", "Defaults Upon Senior Securities"},
		{"4", "Mine Safety Disclosures"},
		{"5", "Other Information"},
		{"6", "Exhibits"},
	}
	var items []*Item
	for _, s := range part1 {
		items = append(items, newItem(s.id, 1, s.title))
	}
	for _, s := range part2 {
		items = append(items, newItem(s.id, 2, s.title))
	}
	return build(types.FilingQuarterly, "", []*Part{newPart(1), newPart(2)}, items)
}

func currentSchema() *Schema {
	specs := []struct {
		id    string
		title string
	}{
		{"1.01", "Entry into a Material Definitive Agreement"},
		{"1.02", "Termination of a Material Definitive Agreement"},
		{"1.03", "Bankruptcy or Receivership"},
		{"1.04", "Mine Safety - Reporting of Shutdowns and Patterns of Violations"},
		{"1.05", "Material Cybersecurity Incidents"},
		{"2.01", "Completion of Acquisition or Disposition of Assets"},
		{"2.02", "Results of Operations and Financial Condition"},
		{"2.03", "Creation of a Direct Financial Obligation or an Obligation under an Off-Balance Sheet Arrangement of a Registrant"},
		{"2.04", "Triggering Events That Accelerate or Increase a Direct Financial Obligation or an Obligation under an Off-Balance Sheet Arrangement"},
		{"2.05", "Costs Associated with Exit or Disposal Activities"},
		{"2.06", "Material Impairments"},
		{"3.01", "Notice of Delisting or Failure to Satisfy a Continued Listing Rule or Standard; Transfer of Listing"},
		{"3.02", "Unregistered Sales of Equity Securities"},
		{"3.03", "Material Modification to Rights of Security Holders"},
		{"4.01", "Changes in Registrant's Certifying Accountant"},
		{"4.02", "Non-Reliance on Previously Issued Financial Statements or a Related Audit Report or Completed Interim Review"},
		{"5.01", "Changes in Control of Registrant"},
		{"5.02", "Departure of Directors or Certain Officers; Election of Directors; Appointment of Certain Officers; Compensatory Arrangements of Certain Officers"},
		{"5.03", "Amendments to Articles of Incorporation or Bylaws; Change in Fiscal Year"},
		{"5.04", "Temporary Suspension of Trading Under Registrant's Employee Benefit Plans"},
		{"5.05", "Amendment to Registrant's Code of Ethics, or Waiver of a Provision of the Code of Ethics"},
		{"5.06", "Change in Shell Company Status"},
		{"5.07", "Submission of Matters to a Vote of Security Holders"},
		{"5.08", "Shareholder Director Nominations"},
		{"6.01", "ABS Informational and Computational Material"},
		{"6.02", "Change of Servicer or Trustee"},
		{"6.03", "Change in Credit Enhancement or Other External Support"},
		{"6.04", "Failure to Make a Required Distribution"},
		{"6.05", "Securities Act Updating Disclosure"},
		{"7.01", "Regulation FD Disclosure"},
		{"8.01", "Other Events"},
		{"9.01", "Financial Statements and Exhibits"},
	}
	items := make([]*Item, len(specs))
	for i, s := range specs {
		items[i] = newItem(s.id, 0, s.title)
	}
	return build(types.FilingCurrent, "", nil, items)
}

func currentObsoleteSchema() *Schema {
	specs := []struct {
		id    string
		title string
	}{
		{"1", "Changes in Control of Registrant"},
		{"2", "Acquisition or Disposition of Assets"},
		{"3", "Bankruptcy or Receivership"},
		{"4", "Changes in Registrant's Certifying Accountant"},
		{"5", "Other Events"},
		{"6", "Resignations of Registrant's Directors"},
		{"7", "Financial Statements and Exhibits"},
		{"8", "Change in Fiscal Year"},
		{"9", "Regulation FD Disclosure"},
		{"10", "Amendments to the Registrant's Code of Ethics"},
		{"11", "Temporary Suspension of Trading Under Registrant's Employee Benefit Plans"},
		{"12", "Results of Operations and Financial Condition"},
	}
	items := make([]*Item, len(specs))
	for i, s := range specs {
		items[i] = newItem(s.id, 0, s.title)
	}
	return build(types.FilingCurrent, "obsolete", nil, items)
}
