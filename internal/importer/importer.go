// Package importer provides CSV, Excel and JSON import for garment order sheets.
// It supports automatic delimiter detection, flexible column mapping,
// case-insensitive header recognition, and size-run ("wide") sheets where
// sizes form the header row.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/LayCut/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Orders   model.OrderSet `json:"orders"`
	Errors   []string       `json:"errors,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// OK reports whether the import produced orders without errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Orders) > 0
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Size     int
	Quantity int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"size":     {"size", "sizes", "size label", "label", "talla", "taille", "grösse"},
	"quantity": {"quantity", "qty", "count", "order", "ordered", "pcs", "pieces", "amount"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping (size, quantity) and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Size: -1, Quantity: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "size":
					if mapping.Size == -1 {
						mapping.Size = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Size: 0, Quantity: 1}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func isInteger(s string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(s))
	return err == nil
}

// ImportFile imports orders from a file, choosing the format by extension:
// .csv/.txt/.tsv as CSV, .xlsx/.xlsm as Excel and .json as a JSON object.
func ImportFile(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	return ImportBytes(filepath.Base(path), data)
}

// ImportBytes imports orders from in-memory file content. The name is only
// used to pick the format.
func ImportBytes(name string, data []byte) ImportResult {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ImportExcelFromReader(bytes.NewReader(data))
	case ".json":
		return ImportJSON(data)
	case ".csv", ".txt", ".tsv", "":
		return importCSVData(data)
	default:
		return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type %q", filepath.Ext(name))}}
	}
}

// ImportCSV imports orders from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
func ImportCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	return importCSVData(data)
}

func importCSVData(data []byte) ImportResult {
	result := ImportResult{}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	return importFromRows(records, "Line", result.Warnings)
}

// ImportCSVFromReader imports orders from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

// ImportExcel imports orders from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()
	return importWorkbook(f)
}

// ImportExcelFromReader imports orders from an Excel workbook stream.
func ImportExcelFromReader(r io.Reader) ImportResult {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()
	return importWorkbook(f)
}

func importWorkbook(f *excelize.File) ImportResult {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ImportResult{Errors: []string{"Excel file has no sheets"}}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	}
	return importFromRows(rows, "Row", nil)
}

// ImportJSON imports orders from a JSON object of size to quantity, or from a
// full plan request whose "orders" member holds that object.
func ImportJSON(data []byte) ImportResult {
	result := ImportResult{}

	var req model.PlanRequest
	if err := json.Unmarshal(data, &req); err == nil && len(req.Orders) > 0 {
		return addAll(result, req.Orders, "Entry")
	}

	var set model.OrderSet
	if err := json.Unmarshal(data, &set); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read JSON: %v", err))
		return result
	}
	return addAll(result, set, "Entry")
}

func addAll(result ImportResult, set model.OrderSet, prefix string) ImportResult {
	for i, line := range set {
		label := fmt.Sprintf("%s %d", prefix, i+1)
		if line.Quantity <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Quantity for %s must be positive", label, line.Size))
			continue
		}
		result = addOrder(result, line.Size, line.Quantity, label)
	}
	if len(result.Orders) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No orders found")
	}
	return result
}

// addOrder appends a size, summing quantities when the size already exists.
func addOrder(result ImportResult, size string, qty int, rowLabel string) ImportResult {
	for i := range result.Orders {
		if result.Orders[i].Size == size {
			result.Orders[i].Quantity += qty
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Size %s listed again, quantities merged", rowLabel, size))
			return result
		}
	}
	result.Orders = append(result.Orders, model.OrderLine{Size: size, Quantity: qty})
	return result
}

// mergeOrder adds qty to size, appending the size when it is new.
func mergeOrder(set model.OrderSet, size string, qty int) model.OrderSet {
	for i := range set {
		if set[i].Size == size {
			set[i].Quantity += qty
			return set
		}
	}
	return append(set, model.OrderLine{Size: size, Quantity: qty})
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	var data [][]string
	for _, row := range rows {
		if !isEmptyRow(row) {
			data = append(data, row)
		}
	}
	if len(data) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(data[0])
	if !hasHeader && isSizeRun(data) {
		return importSizeRun(data, rowPrefix, result)
	}

	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Size == -1 {
			missing = append(missing, "Size")
		}
		if mapping.Quantity == -1 {
			missing = append(missing, "Quantity")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if !isInteger(getCell(data[0], mapping.Quantity)) {
		// Unrecognized header; keep positional mapping
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")
	}

	for i := startRow; i < len(data); i++ {
		row := data[i]
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)

		size := getCell(row, mapping.Size)
		if size == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Missing size value", rowLabel))
			continue
		}
		qtyStr := getCell(row, mapping.Quantity)
		if qtyStr == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Missing quantity value", rowLabel))
			continue
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr))
			continue
		}
		if qty <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: Quantity must be positive", rowLabel))
			continue
		}
		result = addOrder(result, size, qty, rowLabel)
	}

	if len(result.Orders) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No orders found")
	}
	return result
}

// isSizeRun reports whether the rows look like a size run: a header of size
// labels followed by a row of quantities.
func isSizeRun(rows [][]string) bool {
	if len(rows) < 2 || len(rows[0]) < 2 {
		return false
	}
	for _, cell := range rows[0] {
		if isInteger(cell) {
			return false
		}
	}
	for _, cell := range rows[1] {
		if strings.TrimSpace(cell) != "" && !isInteger(cell) {
			return false
		}
	}
	return true
}

// importSizeRun reads sizes from the first row and sums the quantity rows below.
func importSizeRun(rows [][]string, rowPrefix string, result ImportResult) ImportResult {
	result.Warnings = append(result.Warnings, "Detected size-run layout")
	header := rows[0]

	for i := 1; i < len(rows); i++ {
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		for col, sizeCell := range header {
			size := strings.TrimSpace(sizeCell)
			qtyStr := getCell(rows[i], col)
			if size == "" || qtyStr == "" {
				continue
			}
			qty, err := strconv.Atoi(qtyStr)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: Invalid quantity '%s' for %s", rowLabel, qtyStr, size))
				continue
			}
			if qty == 0 {
				continue
			}
			if qty < 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: Quantity for %s must be positive", rowLabel, size))
				continue
			}
			result.Orders = mergeOrder(result.Orders, size, qty)
		}
	}

	if len(result.Orders) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No orders found")
	}
	return result
}
