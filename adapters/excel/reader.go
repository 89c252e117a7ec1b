package excel

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gomeasure/internal/errors"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *slog.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, logger *slog.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger.With("component", "excel")}
}

// ReadTable reads a sheet into structured format. CSV files have a single
// table and ignore sheet.
func (r *DataReader) ReadTable(sheet string) (*Table, error) {
	if _, err := os.Stat(r.filePath); err != nil {
		return nil, errors.IOError(r.filePath, err)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows(r.filePath)
	default:
		rows, err = r.readSheetRows(sheet)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s must have a header row and at least one data row", r.filePath))
	}
	return r.processRows(rows), nil
}

// ReadKeyValues reads a two-column key/value sheet. A missing sheet yields
// an empty map. For CSV input the pairs come from a sidecar file named
// <base>.metadata.csv.
func (r *DataReader) ReadKeyValues(sheet string) (map[string]string, error) {
	var rows [][]string
	var err error

	switch r.fileType {
	case "csv":
		sidecar := strings.TrimSuffix(r.filePath, filepath.Ext(r.filePath)) + ".metadata.csv"
		if _, statErr := os.Stat(sidecar); statErr != nil {
			return map[string]string{}, nil
		}
		rows, err = r.readCSVRows(sidecar)
	default:
		if sheet == "" {
			return map[string]string{}, nil
		}
		rows, err = r.readSheetRows(sheet)
		if err != nil {
			var missing excelize.ErrSheetNotExist
			if stderrors.As(err, &missing) {
				return map[string]string{}, nil
			}
		}
	}
	if err != nil {
		return nil, err
	}

	pairs := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		key := strings.TrimSpace(row[0])
		if key == "" || strings.EqualFold(key, "key") {
			continue
		}
		pairs[key] = strings.TrimSpace(row[1])
	}
	return pairs, nil
}

// readSheetRows reads every row of a sheet
func (r *DataReader) readSheetRows(sheet string) ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.IOError(r.filePath, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("sheet read", "sheet", sheet, "rows", len(rows), "elapsed", time.Since(startTime))
	return rows, nil
}

// readCSVRows reads a whole CSV file
func (r *DataReader) readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.IOError(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	startTime := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("failed to parse %s: %w", path, err))
	}
	r.logger.Debug("csv read", "file", path, "rows", len(rows), "elapsed", time.Since(startTime))
	return rows, nil
}

// processRows converts raw string rows into a Table
func (r *DataReader) processRows(rows [][]string) *Table {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Info("file processed", "type", r.fileType, "columns", len(headers), "rows", len(dataRows))
	return &Table{Headers: headers, Rows: dataRows}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
