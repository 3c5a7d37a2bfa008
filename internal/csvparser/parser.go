// =============================================================================
// Retail Sales Cleaner - CSV Parser Module
// =============================================================================
//
// This module is responsible for reading the raw point-of-sale export. It
// handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Quoted fields with escape characters
//   - Ragged rows (missing trailing cells are treated as empty)
//   - Blank lines (skipped)
//
// The parser does not interpret values. Deciding what is missing or
// malformed is the job of the record loader.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/config"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/types"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed table.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the configuration.
//
// RETURNS:
//   - A pointer to the Table containing the parsed data.
//   - An error if the file cannot be read or parsed.
func Parse(filePath string, settings config.CSVSettings) (*types.Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ParseReader(file, settings)
	if err != nil {
		return nil, err
	}
	table.SourceFile = filePath

	return table, nil
}

// ParseReader reads CSV data from r. The first non-blank line is the header.
func ParseReader(r io.Reader, settings config.CSVSettings) (*types.Table, error) {
	csvReader := csv.NewReader(bufio.NewReader(r))
	configureReader(csvReader, settings)

	// Read the header row.
	var headers []string
	for headers == nil {
		row, err := csvReader.Read()
		if err == io.EOF {
			return nil, fmt.Errorf("CSV file is empty")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		if !isBlankLine(row) {
			headers = cleanHeaders(row)
		}
	}

	table := &types.Table{Headers: headers}

	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		// Skip blank lines. A row of delimiters only is a record with every
		// field missing and is kept so it is counted and dropped downstream.
		if isBlankLine(row) {
			continue
		}

		line, _ := csvReader.FieldPos(0)
		table.Rows = append(table.Rows, types.Row{
			Number: line,
			Fields: rowToMap(headers, row),
		})
	}

	return table, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	// Set the delimiter.
	// Handle special cases for common delimiters.
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ',' // Default to comma
		}
	}

	// Allow variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Allow lazy quotes (quotes that don't follow strict CSV rules).
	reader.LazyQuotes = true

	// Trim leading space from fields.
	reader.TrimLeadingSpace = true
}

// cleanHeaders trims header values and names empty headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))

		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}

		cleaned[i] = header
	}

	return cleaned
}

// rowToMap converts a row to a map of header -> trimmed value.
func rowToMap(headers []string, row []string) map[string]string {
	rowMap := make(map[string]string, len(headers))

	for colIndex, header := range headers {
		if colIndex < len(row) {
			rowMap[header] = strings.TrimSpace(row[colIndex])
		} else {
			// Column is missing in this row.
			rowMap[header] = ""
		}
	}

	return rowMap
}

// isBlankLine reports whether a record came from a line holding nothing but
// whitespace. encoding/csv already skips empty lines.
func isBlankLine(row []string) bool {
	return len(row) == 1 && strings.TrimSpace(row[0]) == ""
}
