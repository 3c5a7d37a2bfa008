// =============================================================================
// Retail Sales Cleaner - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration.
//
// CONFIGURATION SOURCES (lowest to highest precedence):
//   1. Built-in defaults
//   2. Main Config (config.yaml)
//   3. Environment variables (optionally loaded from a .env file)
//   4. Command line flags (applied by the cmd package)
//
// A missing config file is not an error: the defaults describe the standard
// retail export layout.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// ENVIRONMENT VARIABLES
// =============================================================================

const (
	EnvInputFile = "SALESCLEAN_INPUT_FILE"
	EnvOutputDir = "SALESCLEAN_OUTPUT_DIR"
	EnvLogLevel  = "SALESCLEAN_LOG_LEVEL"
	EnvWorkers   = "SALESCLEAN_WORKERS"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// INPUT / OUTPUT SETTINGS
	// =========================================================================

	// InputFile is the raw sales export to clean (.csv or .xlsx).
	// Default: "./retail_store_sales.csv"
	InputFile string `yaml:"input_file"`

	// OutputDir is the directory where all output artifacts are written.
	// Default: "."
	OutputDir string `yaml:"output_dir"`

	// CleanDatasetName is the file name of the cleaned CSV dataset.
	// Placeholders {timestamp}, {date} and {uuid} are expanded.
	// Default: "retail_sales_clean.csv"
	CleanDatasetName string `yaml:"clean_dataset_name"`

	// CleanXLSXName is the file name of the optional XLSX copy.
	// Default: "retail_sales_clean.xlsx"
	CleanXLSXName string `yaml:"clean_xlsx_name"`

	// WriteXLSX also writes the cleaned dataset as an XLSX workbook.
	// Default: false
	WriteXLSX bool `yaml:"write_xlsx"`

	// ReportName is the file name of the text report.
	// Default: "retail_report.txt"
	ReportName string `yaml:"report_name"`

	// ChartName is the file name of the PNG bar chart.
	// Default: "sales_chart.png"
	ChartName string `yaml:"chart_name"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// Workers is the number of goroutines used to reconcile records.
	// Set to 1 for inline processing.
	// Default: 1
	Workers int `yaml:"workers"`

	// CurrencySymbol prefixes monetary values in the report and chart.
	// Default: "R"
	CurrencySymbol string `yaml:"currency_symbol"`

	// Tolerance is the largest accepted |price * quantity - total|, exclusive.
	// Default: 0.01
	Tolerance decimal.Decimal `yaml:"tolerance"`

	// NullValues are the cell tokens treated as missing.
	NullValues []string `yaml:"null_values"`

	// DateFormats are the Go time layouts tried, in order, when parsing
	// the transaction date of a retained record.
	DateFormats []string `yaml:"date_formats"`

	// CSVSettings contains settings for reading the input file.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Columns maps logical fields to input column headers.
	Columns Columns `yaml:"columns"`

	// Chart contains the chart rendering settings.
	Chart ChartSettings `yaml:"chart"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing the input file.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// SheetName selects the worksheet when the input is an XLSX workbook.
	// Empty means the first sheet.
	SheetName string `yaml:"sheet_name"`
}

// =============================================================================
// COLUMN MAPPING STRUCTURE
// =============================================================================

// Columns maps each logical transaction field to its column header.
type Columns struct {
	TransactionDate string `yaml:"transaction_date"`
	Item            string `yaml:"item"`
	Category        string `yaml:"category"`
	PricePerUnit    string `yaml:"price_per_unit"`
	Quantity        string `yaml:"quantity"`
	TotalSpent      string `yaml:"total_spent"`
	DiscountApplied string `yaml:"discount_applied"`
	Location        string `yaml:"location"`
}

// All returns every mapped header in a fixed order.
func (c Columns) All() []string {
	return []string{
		c.TransactionDate,
		c.Item,
		c.Category,
		c.PricePerUnit,
		c.Quantity,
		c.TotalSpent,
		c.DiscountApplied,
		c.Location,
	}
}

// =============================================================================
// CHART SETTINGS STRUCTURE
// =============================================================================

// ChartSettings controls the size of the rendered chart.
type ChartSettings struct {
	// Width in pixels. Default: 1000
	Width int `yaml:"width"`

	// Height in pixels. Default: 600
	Height int `yaml:"height"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - optional: When true, a missing file yields the defaults instead of an error.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read or parsed, or fails validation.
func LoadMainConfig(configPath string, optional bool) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// ApplyEnv overrides configuration values from environment variables.
// If envPath is non-empty that .env file must exist; otherwise a .env file in
// the working directory is loaded when present.
func ApplyEnv(config *MainConfig, envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	if v := os.Getenv(EnvInputFile); v != "" {
		config.InputFile = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		config.OutputDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", EnvWorkers, v)
		}
		config.Workers = workers
	}

	return validateMainConfig(config)
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputFile == "" {
		config.InputFile = "./retail_store_sales.csv"
	}
	if config.OutputDir == "" {
		config.OutputDir = "."
	}
	if config.CleanDatasetName == "" {
		config.CleanDatasetName = "retail_sales_clean.csv"
	}
	if config.CleanXLSXName == "" {
		config.CleanXLSXName = "retail_sales_clean.xlsx"
	}
	if config.ReportName == "" {
		config.ReportName = "retail_report.txt"
	}
	if config.ChartName == "" {
		config.ChartName = "sales_chart.png"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Workers == 0 {
		config.Workers = 1
	}
	if config.CurrencySymbol == "" {
		config.CurrencySymbol = "R"
	}
	if config.Tolerance.IsZero() {
		config.Tolerance = decimal.New(1, -2)
	}
	if config.NullValues == nil {
		config.NullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}
	}
	if config.DateFormats == nil {
		config.DateFormats = []string{
			"2006-01-02",
			"2006-01-02 15:04:05",
			"2006-01-02T15:04:05Z07:00",
			"01/02/2006",
			"02/01/2006",
			"2006/01/02",
			"Jan 2, 2006",
			"January 2, 2006",
			"20060102",
		}
	}

	// CSV settings defaults.
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}

	// Column defaults follow the standard retail export headers.
	c := &config.Columns
	if c.TransactionDate == "" {
		c.TransactionDate = "Transaction Date"
	}
	if c.Item == "" {
		c.Item = "Item"
	}
	if c.Category == "" {
		c.Category = "Category"
	}
	if c.PricePerUnit == "" {
		c.PricePerUnit = "Price Per Unit"
	}
	if c.Quantity == "" {
		c.Quantity = "Quantity"
	}
	if c.TotalSpent == "" {
		c.TotalSpent = "Total Spent"
	}
	if c.DiscountApplied == "" {
		c.DiscountApplied = "Discount Applied"
	}
	if c.Location == "" {
		c.Location = "Location"
	}

	if config.Chart.Width == 0 {
		config.Chart.Width = 1000
	}
	if config.Chart.Height == 0 {
		config.Chart.Height = 600
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1 (got %d)", config.Workers)
	}

	if config.Tolerance.IsNegative() {
		return fmt.Errorf("tolerance must be positive (got %s)", config.Tolerance)
	}

	if len(config.DateFormats) == 0 {
		return fmt.Errorf("date_formats must not be empty")
	}

	if config.Chart.Width < 200 || config.Chart.Height < 150 {
		return fmt.Errorf("chart must be at least 200x150 pixels (got %dx%d)", config.Chart.Width, config.Chart.Height)
	}

	seen := make(map[string]bool)
	for _, header := range config.Columns.All() {
		if seen[header] {
			return fmt.Errorf("column %q is mapped to more than one field", header)
		}
		seen[header] = true
	}

	return nil
}

// IsNull reports whether a cell value is one of the configured missing tokens.
func (c *MainConfig) IsNull(value string) bool {
	value = strings.TrimSpace(value)
	for _, token := range c.NullValues {
		if value == token {
			return true
		}
	}
	return false
}

// Validate checks the configuration after flag overrides.
func (c *MainConfig) Validate() error {
	return validateMainConfig(c)
}
