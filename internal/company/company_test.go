package company

import "testing"

func TestCleanTaxIDKeepsLeadingZeros(t *testing.T) {
	tests := map[string]string{
		"04.134.893/0001-58": "04134893000158",
		" 00000000000000 ":   "00000000000000",
		"12.abc.345/0001-x9": "12ABC34500001X9",
		"":                   "",
	}
	for in, want := range tests {
		if got := CleanTaxID(in); got != want {
			t.Fatalf("CleanTaxID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDedupeWorkItemsKeepsFirstOccurrence(t *testing.T) {
	items := []WorkItem{
		{ClientID: "1", TaxID: "11222333000181"},
		{ClientID: "2", TaxID: " 04134893000158 "},
		{ClientID: "3", TaxID: "11222333000181"},
		{ClientID: "4", TaxID: ""},
	}
	kept, dropped := DedupeWorkItems(items)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept items, got %+v", kept)
	}
	if kept[0].ClientID != "1" || kept[1].TaxID != "04134893000158" {
		t.Fatalf("unexpected kept items: %+v", kept)
	}
	if len(dropped) != 2 || dropped[0].ClientID != "3" || dropped[1].ClientID != "4" {
		t.Fatalf("unexpected dropped items: %+v", dropped)
	}
}
