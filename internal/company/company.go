package company

import "strings"

// WorkItem identifies one client account to enrich. TaxID is the CNPJ as an
// opaque string: leading zeros are significant and alphanumeric formats must
// survive untouched.
type WorkItem struct {
	ClientID string
	TaxID    string
}

// ActivityKind tells whether an activity is the company's principal one.
type ActivityKind string

const (
	KindPrimary   ActivityKind = "PRIMARIO"
	KindSecondary ActivityKind = "SECUNDARIO"
)

// MatchLabel records whether an activity code belongs to the reference list.
type MatchLabel string

const (
	Match    MatchLabel = "IGUAL"
	Mismatch MatchLabel = "DIFERENTE"
)

// ClassifiedActivity is one declared economic activity of a company, tagged
// against the reference code list.
type ClassifiedActivity struct {
	ClientID            string
	TaxID               string
	CompanyName         string
	TradeName           string
	SizeCategory        string
	Status              string
	ActivityCode        string
	ActivityDescription string
	Kind                ActivityKind
	Match               MatchLabel
}

// ErrorRecord captures a lookup that could not be classified.
type ErrorRecord struct {
	ClientID string
	TaxID    string
	Message  string
}

// ProcessedRow is a ClassifiedActivity ready to be written to the ledger,
// carrying the per-tax-id match counts of its flush batch and the generated
// INSERT statement.
type ProcessedRow struct {
	ClassifiedActivity
	MatchCount    int
	MismatchCount int
	Insert        string
}

// CleanTaxID strips everything but ASCII letters and digits. The result keeps
// leading zeros.
func CleanTaxID(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z':
			return r
		case r >= 'a' && r <= 'z':
			return r - ('a' - 'A')
		default:
			return -1
		}
	}, value)
}

// DedupeWorkItems keeps the first occurrence of each tax id, preserving order.
// Items without a tax id are dropped. The removed duplicates are returned so
// callers can report them.
func DedupeWorkItems(items []WorkItem) ([]WorkItem, []WorkItem) {
	seen := make(map[string]struct{}, len(items))
	kept := make([]WorkItem, 0, len(items))
	var dropped []WorkItem
	for _, item := range items {
		item.TaxID = strings.TrimSpace(item.TaxID)
		item.ClientID = strings.TrimSpace(item.ClientID)
		if item.TaxID == "" {
			dropped = append(dropped, item)
			continue
		}
		if _, ok := seen[item.TaxID]; ok {
			dropped = append(dropped, item)
			continue
		}
		seen[item.TaxID] = struct{}{}
		kept = append(kept, item)
	}
	return kept, dropped
}

// TaxIDs returns the set of tax ids in items.
func TaxIDs(items []WorkItem) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item.TaxID] = struct{}{}
	}
	return set
}
