package classify

import (
	"errors"
	"strings"
	"testing"

	"cnpjscan/internal/company"
	"cnpjscan/internal/services"
	"cnpjscan/internal/services/receitaws"
)

var referenceCodes = []string{"4673700", "4642702", "4649406", "4651601", "4672900", "4679604", "4679699", "4742300", "4753900"}

func ptr(s string) *string { return &s }

func TestClassifyPrimaryMatch(t *testing.T) {
	c := New(referenceCodes)
	item := company.WorkItem{ClientID: "C1", TaxID: "11222333000181"}
	result := receitaws.Success{Company: receitaws.Company{
		Name:    ptr("Comércio Elétrico São João"),
		Primary: []receitaws.Activity{{Code: "47.42-3/00", Text: ptr("Comércio varejista de material elétrico")}},
	}}

	outcome := c.Classify(item, result)
	if outcome.Failed() {
		t.Fatalf("unexpected error %+v", outcome.Error)
	}
	if len(outcome.Activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(outcome.Activities))
	}
	row := outcome.Activities[0]
	if row.ActivityCode != "4742300" {
		t.Fatalf("unexpected code %q", row.ActivityCode)
	}
	if row.Match != company.Match || row.Kind != company.KindPrimary {
		t.Fatalf("unexpected labels %s/%s", row.Match, row.Kind)
	}
	if row.CompanyName != "COMERCIO ELETRICO SAO JOAO" {
		t.Fatalf("unexpected company name %q", row.CompanyName)
	}
	if row.ActivityDescription != "COMERCIO VAREJISTA DE MATERIAL ELETRICO" {
		t.Fatalf("unexpected description %q", row.ActivityDescription)
	}
	if row.TaxID != "11222333000181" || row.ClientID != "C1" {
		t.Fatalf("identity not carried: %+v", row)
	}
}

func TestClassifySecondaryAndDefaults(t *testing.T) {
	c := New(referenceCodes)
	item := company.WorkItem{ClientID: "7", TaxID: "04134893000158"}
	result := receitaws.Success{Company: receitaws.Company{
		Primary: []receitaws.Activity{
			{Code: "62.01-5/01", Text: ptr("Desenvolvimento de software")},
			{Code: "46.49-4/06"},
		},
		Secondary: []receitaws.Activity{
			{Code: "46.49-4/06"},
			{Code: "47.42-3/00", Text: ptr("")},
		},
	}}

	rows := c.Classify(item, result).Activities
	if len(rows) != 3 {
		t.Fatalf("expected first primary plus 2 secondaries, got %d", len(rows))
	}
	want := []struct {
		code  string
		kind  company.ActivityKind
		match company.MatchLabel
	}{
		{"6201501", company.KindPrimary, company.Mismatch},
		{"4649406", company.KindSecondary, company.Match},
		{"4742300", company.KindSecondary, company.Match},
	}
	for i, w := range want {
		if rows[i].ActivityCode != w.code || rows[i].Kind != w.kind || rows[i].Match != w.match {
			t.Errorf("row %d = %s/%s/%s, want %s/%s/%s", i, rows[i].ActivityCode, rows[i].Kind, rows[i].Match, w.code, w.kind, w.match)
		}
	}

	first := rows[0]
	if first.CompanyName != "NOME NAO ENCONTRADO" {
		t.Errorf("unexpected default name %q", first.CompanyName)
	}
	if first.TradeName != "NOME FANTASIA NAO ENCONTRADO" {
		t.Errorf("unexpected default trade name %q", first.TradeName)
	}
	if first.SizeCategory != DefaultSize {
		t.Errorf("unexpected default size %q", first.SizeCategory)
	}
	if first.Status != "SITUACAO NAO ENCONTRADA" {
		t.Errorf("unexpected default status %q", first.Status)
	}
	if rows[1].ActivityDescription != "DESCRICAO NAO ENCONTRADA" {
		t.Errorf("absent description should fall back, got %q", rows[1].ActivityDescription)
	}
	if rows[2].ActivityDescription != "" {
		t.Errorf("present empty description should stay empty, got %q", rows[2].ActivityDescription)
	}
}

func TestClassifyAPIError(t *testing.T) {
	c := New(referenceCodes)
	item := company.WorkItem{ClientID: "C2", TaxID: "00000000000000"}

	outcome := c.Classify(item, receitaws.APIError{Message: "CNPJ inválido"})
	if !outcome.Failed() {
		t.Fatal("expected error outcome")
	}
	if len(outcome.Activities) != 0 {
		t.Fatalf("expected no activities, got %d", len(outcome.Activities))
	}
	want := company.ErrorRecord{ClientID: "C2", TaxID: "00000000000000", Message: "CNPJ inválido"}
	if *outcome.Error != want {
		t.Fatalf("unexpected error record %+v", *outcome.Error)
	}

	outcome = c.Classify(item, receitaws.APIError{})
	if outcome.Error.Message != DefaultAPIError {
		t.Fatalf("expected default API message, got %q", outcome.Error.Message)
	}
}

func TestClassifyMalformed(t *testing.T) {
	c := New(referenceCodes)
	item := company.WorkItem{ClientID: "C3", TaxID: "12345678000199"}

	outcome := c.Classify(item, receitaws.Malformed{Raw: "<html>busy</html>"})
	if outcome.Error == nil || outcome.Error.Message != "<html>busy</html>" {
		t.Fatalf("expected raw body as message, got %+v", outcome.Error)
	}

	for _, result := range []receitaws.Result{receitaws.Malformed{Raw: "  "}, nil} {
		outcome = c.Classify(item, result)
		if outcome.Error == nil || outcome.Error.Message != DefaultMalformed {
			t.Fatalf("expected default malformed message for %#v, got %+v", result, outcome.Error)
		}
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := New(referenceCodes)
	item := company.WorkItem{ClientID: "C1", TaxID: "11222333000181"}
	result := receitaws.Success{Company: receitaws.Company{
		Primary:   []receitaws.Activity{{Code: "47.53-9/00"}},
		Secondary: []receitaws.Activity{{Code: "10.11-2/01"}, {Code: "46.72-9/00"}},
	}}
	first := c.Classify(item, result).Activities
	for i := 0; i < 5; i++ {
		again := c.Classify(item, result).Activities
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d row %d differs: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
}

func TestFromError(t *testing.T) {
	c := New(nil)
	item := company.WorkItem{ClientID: "C4", TaxID: "04134893000158"}
	err := services.Wrap(services.ErrTimeout, "receitaws", "lookup", "no response within 10s", errors.New("deadline exceeded"))

	record := c.FromError(item, err)
	if record.TaxID != item.TaxID || record.ClientID != item.ClientID {
		t.Fatalf("identity not carried: %+v", record)
	}
	if !strings.HasPrefix(record.Message, "Erro na requisição: ") || !strings.Contains(record.Message, "no response within 10s") {
		t.Fatalf("unexpected message %q", record.Message)
	}
}

func TestNewCleansReferenceCodes(t *testing.T) {
	c := New([]string{"47.42-3/00", " ", ""})
	if !c.Matches("4742300") || !c.Matches("47.42-3-00") {
		t.Fatal("expected formatted reference code to match")
	}
	if c.Matches("") {
		t.Fatal("blank code must not match")
	}
}
