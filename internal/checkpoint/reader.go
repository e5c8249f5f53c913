package checkpoint

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"cnpjscan/internal/company"
)

var (
	// ErrMissingSheet reports an artifact without one of its sheets.
	ErrMissingSheet = errors.New("checkpoint sheet missing")
	// ErrUnexpectedLayout reports a sheet without the client and tax id columns.
	ErrUnexpectedLayout = errors.New("checkpoint sheet layout unexpected")
)

// Reader gives read-only access to an artifact workbook.
type Reader struct {
	path string
	file *excelize.File
}

// Summary counts the contents of an artifact.
type Summary struct {
	Path            string
	ProcessedRows   int
	ProcessedTaxIDs int
	MatchRows       int
	MismatchRows    int
	ErrorRows       int
	ErrorTaxIDs     int
	Resolved        int
	Remaining       int
}

// Open opens the artifact at path for reading.
func Open(path string) (*Reader, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", path, err)
	}
	return &Reader{path: path, file: file}, nil
}

// Path returns the artifact path.
func (r *Reader) Path() string {
	return r.path
}

// Close releases the workbook.
func (r *Reader) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// sheet returns the header index and body rows of name. present is false
// when the workbook has no such sheet.
func (r *Reader) sheet(name string) (map[string]int, [][]string, bool, error) {
	idx, err := r.file.GetSheetIndex(name)
	if err != nil {
		return nil, nil, false, fmt.Errorf("lookup sheet %s: %w", name, err)
	}
	if idx == -1 {
		return nil, nil, false, nil
	}
	rows, err := r.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, true, fmt.Errorf("read %s rows: %w", name, err)
	}
	if len(rows) == 0 {
		return map[string]int{}, nil, true, nil
	}
	return columnIndex(rows[0]), rows[1:], true, nil
}

func identityColumns(name string, header map[string]int) (int, int, error) {
	clientCol, okClient := header[columnClientID]
	taxCol, okTax := header[columnTaxID]
	if !okClient || !okTax {
		return 0, 0, fmt.Errorf("%w: %s needs %s and %s columns", ErrUnexpectedLayout, name, columnClientID, columnTaxID)
	}
	return clientCol, taxCol, nil
}

// Remaining returns the work items of the remaining sheet in row order. Rows
// without a tax id are skipped.
func (r *Reader) Remaining() ([]company.WorkItem, error) {
	header, rows, present, err := r.sheet(SheetRemaining)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, fmt.Errorf("%w: %s", ErrMissingSheet, SheetRemaining)
	}
	clientCol, taxCol, err := identityColumns(SheetRemaining, header)
	if err != nil {
		return nil, err
	}
	items := make([]company.WorkItem, 0, len(rows))
	for _, row := range rows {
		taxID := cell(row, taxCol)
		if taxID == "" {
			continue
		}
		items = append(items, company.WorkItem{ClientID: cell(row, clientCol), TaxID: taxID})
	}
	return items, nil
}

// Processed returns the rows of the processed ledger.
func (r *Reader) Processed() ([]company.ProcessedRow, error) {
	header, rows, present, err := r.sheet(SheetProcessed)
	if err != nil || !present || len(rows) == 0 {
		return nil, err
	}
	clientCol, taxCol, err := identityColumns(SheetProcessed, header)
	if err != nil {
		return nil, err
	}
	col := func(name string) int {
		if idx, ok := header[name]; ok {
			return idx
		}
		return -1
	}
	out := make([]company.ProcessedRow, 0, len(rows))
	for _, row := range rows {
		taxID := cell(row, taxCol)
		if taxID == "" {
			continue
		}
		out = append(out, company.ProcessedRow{
			ClassifiedActivity: company.ClassifiedActivity{
				ClientID:            cell(row, clientCol),
				TaxID:               taxID,
				CompanyName:         cell(row, col("NOME EMPRESA")),
				TradeName:           cell(row, col("NOME FANTASIA")),
				SizeCategory:        cell(row, col("PORTE")),
				Status:              cell(row, col("SITUACAO CNPJ")),
				ActivityCode:        cell(row, col("CNAE")),
				ActivityDescription: cell(row, col("DESCRICAO CNAE")),
				Kind:                company.ActivityKind(cell(row, col("TIPO CNAE"))),
				Match:               company.MatchLabel(cell(row, col("IGUALDADE"))),
			},
			MatchCount:    cellInt(row, col("QTD IGUAL")),
			MismatchCount: cellInt(row, col("QTD DIFERENTE")),
			Insert:        cell(row, col("COMANDO INSERT")),
		})
	}
	return out, nil
}

// Errors returns the records of the error ledger.
func (r *Reader) Errors() ([]company.ErrorRecord, error) {
	header, rows, present, err := r.sheet(SheetErrors)
	if err != nil || !present || len(rows) == 0 {
		return nil, err
	}
	clientCol, taxCol, err := identityColumns(SheetErrors, header)
	if err != nil {
		return nil, err
	}
	msgCol := -1
	if idx, ok := header["ERRO"]; ok {
		msgCol = idx
	}
	out := make([]company.ErrorRecord, 0, len(rows))
	for _, row := range rows {
		taxID := cell(row, taxCol)
		if taxID == "" {
			continue
		}
		out = append(out, company.ErrorRecord{
			ClientID: cell(row, clientCol),
			TaxID:    taxID,
			Message:  cell(row, msgCol),
		})
	}
	return out, nil
}

// ResolvedTaxIDs returns the union of tax ids in the processed and error
// ledgers. A missing ledger sheet counts as empty.
func (r *Reader) ResolvedTaxIDs() (map[string]struct{}, error) {
	processed, err := r.Processed()
	if err != nil {
		return nil, err
	}
	failed, err := r.Errors()
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]struct{}, len(processed)+len(failed))
	for _, row := range processed {
		resolved[row.TaxID] = struct{}{}
	}
	for _, record := range failed {
		resolved[record.TaxID] = struct{}{}
	}
	return resolved, nil
}

// Summary counts rows and distinct tax ids per sheet. A missing or malformed
// remaining sheet counts as zero remaining.
func (r *Reader) Summary() (Summary, error) {
	summary := Summary{Path: r.path}

	processed, err := r.Processed()
	if err != nil {
		return summary, err
	}
	failed, err := r.Errors()
	if err != nil {
		return summary, err
	}

	resolved := make(map[string]struct{}, len(processed)+len(failed))
	processedIDs := make(map[string]struct{}, len(processed))
	for _, row := range processed {
		processedIDs[row.TaxID] = struct{}{}
		resolved[row.TaxID] = struct{}{}
		switch row.Match {
		case company.Match:
			summary.MatchRows++
		case company.Mismatch:
			summary.MismatchRows++
		}
	}
	errorIDs := make(map[string]struct{}, len(failed))
	for _, record := range failed {
		errorIDs[record.TaxID] = struct{}{}
		resolved[record.TaxID] = struct{}{}
	}

	summary.ProcessedRows = len(processed)
	summary.ProcessedTaxIDs = len(processedIDs)
	summary.ErrorRows = len(failed)
	summary.ErrorTaxIDs = len(errorIDs)
	summary.Resolved = len(resolved)

	remaining, err := r.Remaining()
	switch {
	case err == nil:
		summary.Remaining = len(remaining)
	case errors.Is(err, ErrMissingSheet), errors.Is(err, ErrUnexpectedLayout):
	default:
		return summary, err
	}
	return summary, nil
}
