package enrich

import (
	"fmt"
	"strconv"
	"strings"

	"cnpjscan/internal/company"
)

var insertColumns = []string{
	"CODCLI", "CNPJ", "NOME_EMPRESA", "NOME_FANTASIA", "PORTE", "SITUACAO_CNPJ",
	"CNAE", "DESCRICAO_CNAE", "TIPO_CNAE", "IGUALDADE", "QTD_IGUAL", "QTD_DIFERENTE",
}

// BuildProcessedRows attaches per-tax-id match counts and the INSERT statement
// to one flush batch of activities. Counts cover only the rows passed in, so
// all activities of a tax id must be in the same batch.
func BuildProcessedRows(activities []company.ClassifiedActivity, table string) []company.ProcessedRow {
	type tally struct{ match, mismatch int }
	counts := make(map[string]*tally)
	for _, activity := range activities {
		t, ok := counts[activity.TaxID]
		if !ok {
			t = &tally{}
			counts[activity.TaxID] = t
		}
		if activity.Match == company.Match {
			t.match++
		} else {
			t.mismatch++
		}
	}

	rows := make([]company.ProcessedRow, 0, len(activities))
	for _, activity := range activities {
		t := counts[activity.TaxID]
		row := company.ProcessedRow{
			ClassifiedActivity: activity,
			MatchCount:         t.match,
			MismatchCount:      t.mismatch,
		}
		row.Insert = InsertStatement(table, row)
		rows = append(rows, row)
	}
	return rows
}

// InsertStatement renders row as a single-row INSERT into table. Every value
// is a quoted literal with embedded quotes doubled.
func InsertStatement(table string, row company.ProcessedRow) string {
	values := []string{
		row.ClientID,
		row.TaxID,
		row.CompanyName,
		row.TradeName,
		row.SizeCategory,
		row.Status,
		row.ActivityCode,
		row.ActivityDescription,
		string(row.Kind),
		string(row.Match),
		strconv.Itoa(row.MatchCount),
		strconv.Itoa(row.MismatchCount),
	}
	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = "'" + strings.ReplaceAll(value, "'", "''") + "'"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		table,
		strings.Join(insertColumns, ", "),
		strings.Join(quoted, ", "),
	)
}
