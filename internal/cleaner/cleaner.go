// =============================================================================
// Retail Sales Cleaner - Cleaning Pipeline
// =============================================================================
//
// This module orchestrates a full cleaning run for one input file, from
// parsing to the written artifacts.
//
// CLEANING PIPELINE:
//   1. Parse the input file (CSV or XLSX)
//   2. Load the rows into a record store
//   3. Build the reference lookups from complete rows
//   4. Reconcile missing fields
//   5. Drop unrecoverable records and normalize the rest
//   6. Validate the arithmetic identity
//   7. Compute the KPIs
//   8. Render every artifact in memory
//   9. Write the artifacts
//
// A failure in any step before 9 leaves the output directory untouched.
//
// =============================================================================

package cleaner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/retail-sales-cleaner/internal/chart"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/config"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/csvparser"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/dataset"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/kpi"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/logger"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/reconcile"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/record"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/report"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/types"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/validation"
	"github.com/ginjaninja78/retail-sales-cleaner/internal/xlsxparser"
	"github.com/ginjaninja78/retail-sales-cleaner/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of cleaning a single file.
type Result struct {
	// InputFile is the path to the input file that was processed.
	InputFile string

	// RunID identifies the run in logs, file names and the report.
	RunID string

	// Outputs lists the written artifacts. Empty on failure or dry run.
	Outputs []string

	// Report is the rendered report text. Empty on failure.
	Report string

	// Summary contains the computed KPIs. Nil on failure.
	Summary *kpi.Summary

	// Success indicates whether the run was successful.
	Success bool

	// Error contains the error if the run failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	// RowsLoaded is the number of input rows.
	RowsLoaded int

	// RowsCleaned is the number of retained records.
	RowsCleaned int

	// RowsDropped is RowsLoaded - RowsCleaned.
	RowsDropped int

	// ReferenceEntries is the number of distinct reference triples.
	ReferenceEntries int

	// ReferenceCollisions is the number of rebound reference keys.
	ReferenceCollisions int

	// Reconciled counts the fields filled by each rule.
	Reconciled reconcile.Stats

	// MaxDifference is the largest |price * quantity - total| seen.
	MaxDifference decimal.Decimal

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// CLEANER STRUCTURE
// =============================================================================

// Options control a run.
type Options struct {
	// DryRun runs and validates the pipeline without writing any artifact.
	DryRun bool
}

// Cleaner runs the cleaning pipeline with one configuration.
type Cleaner struct {
	config  *config.MainConfig
	options Options

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a new Cleaner instance.
//
// PARAMETERS:
//   - cfg: The application configuration.
//   - options: The run options.
//
// RETURNS:
//   - A new Cleaner instance.
func New(cfg *config.MainConfig, options Options) *Cleaner {
	return &Cleaner{
		config:  cfg,
		options: options,
		now:     time.Now,
	}
}

// artifact is an output rendered in memory, waiting to be written.
type artifact struct {
	name string
	data []byte
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the cleaning pipeline.
//
// RETURNS:
//   - A Result struct containing the outcome of the run.
func (c *Cleaner) Run(ctx context.Context) Result {
	startTime := c.now()
	runID := uuid.New().String()
	cfg := c.config

	log := logger.FromContext(ctx).With().Str("run_id", runID).Logger()
	ctx = logger.WithContext(ctx, log)

	result := Result{
		InputFile: cfg.InputFile,
		RunID:     runID,
	}
	fail := func(err error) Result {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)
		log.Error().Err(err).Msg("cleaning run failed")
		return result
	}

	// =========================================================================
	// STEP 1: PARSE INPUT FILE
	// =========================================================================

	log.Info().Str("input", cfg.InputFile).Msg("loading dataset")

	table, err := LoadTable(cfg)
	if err != nil {
		return fail(fmt.Errorf("failed to parse input: %w", err))
	}

	// =========================================================================
	// STEP 2: LOAD RECORD STORE
	// =========================================================================

	store, err := record.Load(ctx, table, cfg)
	if err != nil {
		return fail(fmt.Errorf("failed to load records: %w", err))
	}
	result.Stats.RowsLoaded = store.Len()
	log.Info().Int("rows", store.Len()).Msg("records loaded")

	// =========================================================================
	// STEP 3: BUILD REFERENCES
	// =========================================================================
	// Only rows with item, category and price take part.

	refs := reconcile.BuildReferences(ctx, store)
	result.Stats.ReferenceEntries = refs.Entries
	result.Stats.ReferenceCollisions = len(refs.Collisions)

	// =========================================================================
	// STEP 4: RECONCILE MISSING FIELDS
	// =========================================================================
	// Price from item, price from total / quantity, item from category and
	// price, total from price * quantity. In that order.

	stats, err := reconcile.NewReconciler(refs, cfg.Workers).Reconcile(ctx, store)
	if err != nil {
		return fail(fmt.Errorf("failed to reconcile records: %w", err))
	}
	result.Stats.Reconciled = stats
	log.Info().Int("fields_filled", stats.Filled()).Msg("records reconciled")

	// =========================================================================
	// STEP 5: FILTER RECORDS
	// =========================================================================

	filtered, err := reconcile.Filter(ctx, store, cfg.Columns.TransactionDate, cfg.DateFormats)
	if err != nil {
		return fail(fmt.Errorf("failed to filter records: %w", err))
	}
	result.Stats.RowsCleaned = len(filtered.Cleaned)
	result.Stats.RowsDropped = filtered.DroppedCount

	// =========================================================================
	// STEP 6: VALIDATE
	// =========================================================================
	// Any violation aborts the run before an artifact is written.

	validated := validation.NewValidator(cfg.Tolerance).ValidateAll(filtered.Cleaned)
	result.Stats.MaxDifference = validated.MaxDifference
	if err := validated.Err(); err != nil {
		log.Error().Msg(validation.FormatViolations(validated.Violations))
		return fail(err)
	}
	log.Info().Int("records", validated.RecordsValidated).Msg("validation passed")

	// =========================================================================
	// STEP 7: COMPUTE KPIS
	// =========================================================================

	summary, err := kpi.Aggregate(ctx, filtered.Cleaned, cfg.Workers)
	if err != nil {
		return fail(fmt.Errorf("failed to compute kpis: %w", err))
	}
	result.Summary = summary

	// =========================================================================
	// STEP 8: RENDER ARTIFACTS
	// =========================================================================

	reportText := report.Render(&report.Data{
		OriginalRows: result.Stats.RowsLoaded,
		CleanedRows:  result.Stats.RowsCleaned,
		DroppedRows:  result.Stats.RowsDropped,
		Summary:      summary,
		Collisions:   result.Stats.ReferenceCollisions,
		RunID:        runID,
		GeneratedAt:  startTime,
		Currency:     cfg.CurrencySymbol,
	})
	result.Report = reportText

	artifacts, err := c.render(store.Headers, filtered.Cleaned, summary, reportText)
	if err != nil {
		return fail(err)
	}

	// =========================================================================
	// STEP 9: WRITE ARTIFACTS
	// =========================================================================

	if c.options.DryRun {
		log.Info().Msg("dry run, no files written")
	} else {
		fm := utils.NewFileManager(cfg.OutputDir, runID)
		fm.Now = startTime
		if err := fm.EnsureDirectories(); err != nil {
			return fail(err)
		}

		params := map[string]string{"original": utils.BaseName(cfg.InputFile)}
		for _, a := range artifacts {
			path := fm.Path(a.name, params)
			if err := utils.WriteAtomic(path, func(w io.Writer) error {
				_, err := w.Write(a.data)
				return err
			}); err != nil {
				return fail(fmt.Errorf("failed to write output: %w", err))
			}
			result.Outputs = append(result.Outputs, path)
			log.Info().Str("path", path).Msg("file saved")
		}
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)

	return result
}

// render produces every output artifact in memory.
func (c *Cleaner) render(headers []string, cleaned []*record.Record, summary *kpi.Summary, reportText string) ([]artifact, error) {
	cfg := c.config
	var artifacts []artifact

	writer := dataset.NewWriter(headers, cfg.Columns, dataset.DefaultWriteOptions())

	var csvBuf bytes.Buffer
	if err := writer.WriteCSV(&csvBuf, cleaned); err != nil {
		return nil, fmt.Errorf("failed to render dataset: %w", err)
	}
	artifacts = append(artifacts, artifact{name: cfg.CleanDatasetName, data: csvBuf.Bytes()})

	if cfg.WriteXLSX {
		var xlsxBuf bytes.Buffer
		if err := writer.WriteXLSX(&xlsxBuf, cleaned); err != nil {
			return nil, fmt.Errorf("failed to render workbook: %w", err)
		}
		artifacts = append(artifacts, artifact{name: cfg.CleanXLSXName, data: xlsxBuf.Bytes()})
	}

	artifacts = append(artifacts, artifact{name: cfg.ReportName, data: []byte(reportText)})

	renderer, err := chart.NewRenderer(cfg.Chart.Width, cfg.Chart.Height, cfg.CurrencySymbol)
	if err != nil {
		return nil, err
	}
	var pngBuf bytes.Buffer
	if err := renderer.Render(&pngBuf, summary.Totals); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	artifacts = append(artifacts, artifact{name: cfg.ChartName, data: pngBuf.Bytes()})

	return artifacts, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// LoadTable parses the configured input file. Files ending in .xlsx are read
// as workbooks, anything else as delimited text.
func LoadTable(cfg *config.MainConfig) (*types.Table, error) {
	if !utils.FileExists(cfg.InputFile) {
		return nil, fmt.Errorf("input file not found: %s", cfg.InputFile)
	}
	if strings.EqualFold(filepath.Ext(cfg.InputFile), ".xlsx") {
		return xlsxparser.Parse(cfg.InputFile, cfg.CSVSettings.SheetName)
	}
	return csvparser.Parse(cfg.InputFile, cfg.CSVSettings)
}
