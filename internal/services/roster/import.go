package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/j-veylop/venue-usage-tui/internal/logger"
	"github.com/j-veylop/venue-usage-tui/internal/models"
)

// ReadFile imports a roster from an .xlsx or .csv file.
func ReadFile(project, path string) (*models.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("failed to close roster file", "error", err)
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(project, f)
	case ".csv":
		return ReadCSV(project, f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadXLSX imports the first sheet of a workbook.
func ReadXLSX(project string, r io.Reader) (*models.Roster, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	defer func() {
		if err := wb.Close(); err != nil {
			logger.Error("failed to close workbook", "error", err)
		}
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidRoster)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	logger.Debug("read workbook", "sheet", sheets[0], "rows", len(rows))
	return FromRecords(project, rows)
}

// ReadCSV imports a comma separated roster with a header row.
func ReadCSV(project string, r io.Reader) (*models.Roster, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return FromRecords(project, records)
}
