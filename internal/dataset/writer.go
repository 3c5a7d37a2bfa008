// =============================================================================
// Retail Sales Cleaner - Cleaned Dataset Writer
// =============================================================================
//
// This module writes the retained records with the same column shape as the
// input file, one row per record:
//
//   Transaction ID,Category,Item,Price Per Unit,Quantity,Total Spent,...
//   TXN_6867343,Beverages,Soda,2.5,4,10,...
//
// Mapped columns are written from the reconciled record:
//   - dates in the configured layout (default 2006-01-02)
//   - decimals in canonical form (no trailing zeros)
//   - discount flags as True/False
// Unmapped columns are copied from the source row untouched.
//
// The same rows can be written as CSV or as an XLSX workbook.
//
// =============================================================================

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/config"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
)

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// WriteOptions contains options for writing the cleaned dataset.
type WriteOptions struct {
	// DateLayout formats the transaction date.
	// Default: "2006-01-02"
	DateLayout string

	// TrueValue and FalseValue are written for the discount flag.
	// Default: "True" / "False"
	TrueValue  string
	FalseValue string

	// SheetName is the worksheet name used for XLSX output.
	// Default: "Cleaned"
	SheetName string
}

// DefaultWriteOptions returns the default write options.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		DateLayout: "2006-01-02",
		TrueValue:  "True",
		FalseValue: "False",
		SheetName:  "Cleaned",
	}
}

// Writer formats records for output.
type Writer struct {
	headers []string
	columns config.Columns
	options WriteOptions
}

// NewWriter creates a Writer for the given source headers and column mapping.
func NewWriter(headers []string, columns config.Columns, options WriteOptions) *Writer {
	return &Writer{headers: headers, columns: columns, options: options}
}

// =============================================================================
// OUTPUT FUNCTIONS
// =============================================================================

// WriteCSV writes the header row and one row per record to w.
func (w *Writer) WriteCSV(out io.Writer, records []*record.Record) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(w.headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(w.Row(rec)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rec.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the cleaned dataset as an XLSX workbook to out. Decimal
// columns are written as numbers.
func (w *Writer) WriteXLSX(out io.Writer, records []*record.Record) error {
	f, err := w.workbook(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (w *Writer) workbook(records []*record.Record) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := w.options.SheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(w.headers))
	for i, h := range w.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		values := w.cells(rec)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", rec.Row, err)
		}
	}

	return f, nil
}

// =============================================================================
// ROW FORMATTING
// =============================================================================

// Row returns the output values of a record in header order.
func (w *Writer) Row(rec *record.Record) []string {
	row := make([]string, len(w.headers))
	for i, header := range w.headers {
		row[i] = w.value(rec, header)
	}
	return row
}

// cells is Row with decimal columns as float64 for spreadsheet output.
func (w *Writer) cells(rec *record.Record) []interface{} {
	out := make([]interface{}, len(w.headers))
	for i, header := range w.headers {
		if d := w.decimalField(rec, header); d != nil {
			out[i] = d.InexactFloat64()
			continue
		}
		out[i] = w.value(rec, header)
	}
	return out
}

func (w *Writer) value(rec *record.Record, header string) string {
	cols := w.columns

	if d := w.decimalField(rec, header); d != nil {
		return d.String()
	}

	switch header {
	case cols.TransactionDate:
		if rec.Date.IsZero() {
			return rec.RawDate
		}
		return rec.Date.Format(w.options.DateLayout)
	case cols.Item:
		return deref(rec.Item)
	case cols.Category:
		return deref(rec.Category)
	case cols.DiscountApplied:
		if rec.Discounted() {
			return w.options.TrueValue
		}
		return w.options.FalseValue
	case cols.Location:
		return rec.Location
	case cols.PricePerUnit, cols.Quantity, cols.TotalSpent:
		return ""
	}
	return rec.Source[header]
}

func (w *Writer) decimalField(rec *record.Record, header string) *decimal.Decimal {
	switch header {
	case w.columns.PricePerUnit:
		return rec.UnitPrice
	case w.columns.Quantity:
		return rec.Quantity
	case w.columns.TotalSpent:
		return rec.TotalSpent
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
