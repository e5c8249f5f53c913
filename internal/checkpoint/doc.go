// Package checkpoint persists enrichment progress in a daily spreadsheet.
//
// The workbook has three sheets. Consultados and Erros Consulta are ledgers:
// rows are only ever appended. Restantes is a snapshot of outstanding work and
// is replaced wholesale on every flush. Tax ids are stored as text cells in
// every sheet so leading zeros survive. Writes go through a temporary file and
// a rename, so a failed flush leaves the previous artifact untouched.
package checkpoint
