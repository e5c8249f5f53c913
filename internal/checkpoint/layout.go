package checkpoint

import (
	"strconv"
	"strings"

	"cnpjscan/internal/company"
)

// Sheet names of the artifact workbook, in workbook order.
const (
	SheetProcessed = "Consultados"
	SheetRemaining = "Restantes"
	SheetErrors    = "Erros Consulta"
)

const (
	columnClientID = "CODCLI"
	columnTaxID    = "CNPJ"
	// taxIDColumn is the spreadsheet column holding the tax id in every sheet.
	taxIDColumn = "B"
	// textNumFmt is the builtin "@" (text) number format.
	textNumFmt = 49
)

var (
	processedHeader = []string{
		columnClientID, columnTaxID, "NOME EMPRESA", "NOME FANTASIA", "PORTE",
		"SITUACAO CNPJ", "CNAE", "DESCRICAO CNAE", "TIPO CNAE", "IGUALDADE",
		"QTD IGUAL", "QTD DIFERENTE", "COMANDO INSERT",
	}
	remainingHeader = []string{columnClientID, columnTaxID}
	errorsHeader    = []string{columnClientID, columnTaxID, "ERRO"}
)

var sheetOrder = []string{SheetProcessed, SheetRemaining, SheetErrors}

func headerFor(sheet string) []string {
	switch sheet {
	case SheetProcessed:
		return processedHeader
	case SheetRemaining:
		return remainingHeader
	case SheetErrors:
		return errorsHeader
	default:
		return nil
	}
}

// Tax ids are written as strings so excelize stores them as text cells.
func processedCells(row company.ProcessedRow) []any {
	return []any{
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
		row.MatchCount,
		row.MismatchCount,
		row.Insert,
	}
}

func errorCells(record company.ErrorRecord) []any {
	return []any{record.ClientID, record.TaxID, record.Message}
}

func remainingCells(item company.WorkItem) []any {
	return []any{item.ClientID, item.TaxID}
}

// columnIndex maps header names to their zero-based position.
func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToUpper(strings.TrimSpace(name))
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	return index
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellInt(row []string, idx int) int {
	n, err := strconv.Atoi(cell(row, idx))
	if err != nil {
		return 0
	}
	return n
}
