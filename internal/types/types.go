// =============================================================================
// Retail Sales Cleaner - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - csvparser
//   - xlsxparser
//   - record (loader)
//   - cleaner (input selection)
//
// =============================================================================

package types

// =============================================================================
// TABLE TYPES
// =============================================================================

// Table is a raw tabular data set, independent of the file format it was
// read from. Both the CSV and XLSX parsers produce a Table.
type Table struct {
	// Headers contains the column headers in source order.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	// Values are trimmed; a missing cell is the empty string.
	Rows []Row

	// SourceFile is the path to the file the table was read from.
	SourceFile string
}

// Row is a single data row of a Table.
type Row struct {
	// Number is the 1-indexed line (CSV) or row (XLSX) in the source file.
	// Useful for error reporting.
	Number int

	// Fields maps header name to cell value.
	Fields map[string]string
}

// RowCount returns the number of data rows (excluding headers).
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// HasColumn reports whether the table has a column with the given header.
func (t *Table) HasColumn(header string) bool {
	for _, h := range t.Headers {
		if h == header {
			return true
		}
	}
	return false
}

// MissingColumns returns the headers, in the given order, that the table lacks.
func (t *Table) MissingColumns(headers ...string) []string {
	var missing []string
	for _, header := range headers {
		if !t.HasColumn(header) {
			missing = append(missing, header)
		}
	}
	return missing
}
