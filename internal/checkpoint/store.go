package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"cnpjscan/internal/company"
	"cnpjscan/internal/fileutil"
)

// Batch is one flush worth of session results plus the full remaining
// snapshot at the flush boundary.
type Batch struct {
	Processed []company.ProcessedRow
	Errors    []company.ErrorRecord
	Remaining []company.WorkItem
}

// Store merges flush batches into one artifact workbook.
type Store struct {
	path      string
	writeFile func(path string, write func(io.Writer) error) error
}

// NewStore returns a store for the artifact at path. The file is created on
// the first commit.
func NewStore(path string) *Store {
	return &Store{path: path, writeFile: fileutil.WriteAtomic}
}

// Path returns the artifact path.
func (s *Store) Path() string {
	return s.path
}

// Flush appends the batch's processed and error rows and replaces the
// remaining snapshot, committing all three sheets at once. On failure the
// file on disk is unchanged.
func (s *Store) Flush(batch Batch) (err error) {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Discard()
		}
	}()

	if err = tx.AppendProcessed(batch.Processed); err != nil {
		return err
	}
	if err = tx.AppendErrors(batch.Errors); err != nil {
		return err
	}
	if err = tx.ReplaceRemaining(batch.Remaining); err != nil {
		return err
	}
	return tx.Commit()
}

// Begin loads the artifact, or a fresh three-sheet workbook when the file
// does not exist yet. Changes stay in memory until Commit.
func (s *Store) Begin() (*Tx, error) {
	file, fresh, err := s.load()
	if err != nil {
		return nil, err
	}
	tx := &Tx{store: s, file: file, fresh: fresh}
	if err := tx.prepare(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return tx, nil
}

func (s *Store) load() (*excelize.File, bool, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file, err := newWorkbook()
			return file, true, err
		}
		return nil, false, fmt.Errorf("stat artifact: %w", err)
	}
	file, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, false, fmt.Errorf("open artifact %s: %w", s.path, err)
	}
	return file, false, nil
}

func newWorkbook() (*excelize.File, error) {
	file := excelize.NewFile()
	if err := file.SetSheetName(file.GetSheetName(0), sheetOrder[0]); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("name sheet %s: %w", sheetOrder[0], err)
	}
	for _, name := range sheetOrder[1:] {
		if _, err := file.NewSheet(name); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	file.SetActiveSheet(0)
	return file, nil
}

// Tx is an in-memory edit of the artifact. Ledger sheets only grow through
// the Append methods and the remaining sheet is only ever replaced.
type Tx struct {
	store     *Store
	file      *excelize.File
	fresh     bool
	textStyle int
	done      bool
}

// Fresh reports whether the artifact did not exist when the transaction began.
func (tx *Tx) Fresh() bool {
	return tx.fresh
}

func (tx *Tx) prepare() error {
	style, err := tx.file.NewStyle(&excelize.Style{NumFmt: textNumFmt})
	if err != nil {
		return fmt.Errorf("create text style: %w", err)
	}
	tx.textStyle = style
	for _, name := range sheetOrder {
		if err := tx.ensureSheet(name); err != nil {
			return err
		}
	}
	return nil
}

// ensureSheet creates a missing sheet, writes the header into an empty one,
// and marks the tax id column as text.
func (tx *Tx) ensureSheet(name string) error {
	idx, err := tx.file.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("lookup sheet %s: %w", name, err)
	}
	if idx == -1 {
		if _, err := tx.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	last, err := tx.lastRow(name)
	if err != nil {
		return err
	}
	if last == 0 {
		header := make([]any, 0, len(headerFor(name)))
		for _, column := range headerFor(name) {
			header = append(header, column)
		}
		if err := tx.file.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("write %s header: %w", name, err)
		}
	}
	if err := tx.file.SetColStyle(name, taxIDColumn, tx.textStyle); err != nil {
		return fmt.Errorf("set %s text column: %w", name, err)
	}
	return nil
}

func (tx *Tx) lastRow(sheet string) (int, error) {
	rows, err := tx.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, fmt.Errorf("read %s rows: %w", sheet, err)
	}
	return len(rows), nil
}

func (tx *Tx) writeRows(sheet string, firstRow int, rows [][]any) error {
	for i := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, firstRow+i)
		if err != nil {
			return err
		}
		if err := tx.file.SetSheetRow(sheet, cellName, &rows[i]); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, firstRow+i, err)
		}
	}
	return nil
}

func (tx *Tx) append(sheet string, rows [][]any) error {
	if tx.done {
		return errors.New("checkpoint: transaction already finished")
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := tx.lastRow(sheet)
	if err != nil {
		return err
	}
	return tx.writeRows(sheet, last+1, rows)
}

// AppendProcessed adds rows after the last existing row of the processed
// ledger.
func (tx *Tx) AppendProcessed(rows []company.ProcessedRow) error {
	cells := make([][]any, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, processedCells(row))
	}
	return tx.append(SheetProcessed, cells)
}

// AppendErrors adds records after the last existing row of the error ledger.
func (tx *Tx) AppendErrors(records []company.ErrorRecord) error {
	cells := make([][]any, 0, len(records))
	for _, record := range records {
		cells = append(cells, errorCells(record))
	}
	return tx.append(SheetErrors, cells)
}

// ReplaceRemaining swaps the body of the remaining sheet for items, keeping
// the header. Rows from the previous snapshot never survive.
func (tx *Tx) ReplaceRemaining(items []company.WorkItem) error {
	if tx.done {
		return errors.New("checkpoint: transaction already finished")
	}
	previous, err := tx.lastRow(SheetRemaining)
	if err != nil {
		return err
	}
	cells := make([][]any, 0, len(items))
	for _, item := range items {
		cells = append(cells, remainingCells(item))
	}
	if err := tx.writeRows(SheetRemaining, 2, cells); err != nil {
		return err
	}
	keep := len(items) + 1
	for row := previous; row > keep; row-- {
		if err := tx.file.RemoveRow(SheetRemaining, row); err != nil {
			return fmt.Errorf("clear %s row %d: %w", SheetRemaining, row, err)
		}
	}
	return nil
}

// Commit writes the workbook to a temporary file and renames it over the
// artifact.
func (tx *Tx) Commit() error {
	if tx.done {
		return errors.New("checkpoint: transaction already finished")
	}
	tx.done = true
	defer tx.file.Close()

	if err := os.MkdirAll(filepath.Dir(tx.store.path), 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}
	err := tx.store.writeFile(tx.store.path, func(w io.Writer) error {
		return tx.file.Write(w)
	})
	if err != nil {
		return fmt.Errorf("save artifact %s: %w", tx.store.path, err)
	}
	return nil
}

// Discard drops uncommitted changes. It is safe to call after Commit.
func (tx *Tx) Discard() {
	if tx.done {
		return
	}
	tx.done = true
	_ = tx.file.Close()
}
