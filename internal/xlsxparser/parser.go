// =============================================================================
// Retail Sales Cleaner - XLSX Input Parser
// =============================================================================
//
// This module reads a point-of-sale export delivered as an Excel workbook.
// The first non-empty row of the selected sheet holds the column headers;
// every following non-empty row is a transaction.
//
//   | Transaction Date | Item | Category  | Price Per Unit | Quantity | ... |
//   |------------------|------|-----------|----------------|----------|-----|
//   | 2023-01-01       | Soda | Beverages | 2.5            | 4        | ... |
//
// Cell values are read as displayed text, so the loader applies the same
// missing-value and number rules as for CSV input.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a sheet of an XLSX workbook into a Table.
//
// PARAMETERS:
//   - filePath: The path to the XLSX file.
//   - sheetName: The sheet to read. Empty selects the first sheet.
//
// RETURNS:
//   - A pointer to the Table containing the parsed data.
//   - An error if the file cannot be read or has no header row.
func Parse(filePath, sheetName string) (*types.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	table, err := parseFile(f, sheetName)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath

	return table, nil
}

// parseFile reads a sheet from an open workbook.
func parseFile(f *excelize.File, sheetName string) (*types.Table, error) {
	if sheetName == "" {
		sheetName = f.GetSheetName(0)
		if sheetName == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheetName, err)
	}

	table := &types.Table{}
	for i, row := range rows {
		// Skip empty rows.
		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		if table.Headers == nil {
			table.Headers = cleanHeaders(row)
			continue
		}

		fields := make(map[string]string, len(table.Headers))
		for col, header := range table.Headers {
			fields[header] = getCell(row, col)
		}

		table.Rows = append(table.Rows, types.Row{
			Number: i + 1,
			Fields: fields,
		})
	}

	if table.Headers == nil {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	return table, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// getCell safely returns a trimmed cell value.
func getCell(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

// cleanHeaders trims headers and names empty ones by position.
func cleanHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i := range row {
		header := getCell(row, i)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = header
	}
	return headers
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
