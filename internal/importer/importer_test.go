package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/LayCut/internal/model"
	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Size,Qty\nS,10\nM,7\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Size;Qty\nS;10\nM;7\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Size\tQty\nS\t10\nM\t7\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Size", "Quantity"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Size != 0 || mapping.Quantity != 1 {
		t.Errorf("unexpected mapping: %+v", mapping)
	}
}

func TestDetectColumns_ReorderedAliases(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Style", " QTY ", "Talla"})
	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Size != 2 || mapping.Quantity != 1 {
		t.Errorf("unexpected mapping: %+v", mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"S", "10"})
	if isHeader {
		t.Error("data row should not be detected as a header")
	}
	if mapping.Size != 0 || mapping.Quantity != 1 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── CSV Tests ─────────────────────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Size,Qty\nXL,4\nS,10\nM,7\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	want := model.OrderSet{{Size: "XL", Quantity: 4}, {Size: "S", Quantity: 10}, {Size: "M", Quantity: 7}}
	assertOrders(t, want, result.Orders)
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("S,5\nM,3\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	assertOrders(t, model.OrderSet{{Size: "S", Quantity: 5}, {Size: "M", Quantity: 3}}, result.Orders)
}

func TestImportCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Groesse,Menge\nS,5\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	assertOrders(t, model.OrderSet{{Size: "S", Quantity: 5}}, result.Orders)
}

func TestImportCSVFromReader_SizeRun(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("S,M,L,XL\n10,20,0,5\n2,,1,\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	want := model.OrderSet{{Size: "S", Quantity: 12}, {Size: "M", Quantity: 20}, {Size: "XL", Quantity: 5}, {Size: "L", Quantity: 1}}
	assertOrders(t, want, result.Orders)
}

func TestImportCSVFromReader_DuplicateSizesMerged(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Size,Qty\nS,5\nM,3\nS,2\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	assertOrders(t, model.OrderSet{{Size: "S", Quantity: 7}, {Size: "M", Quantity: 3}}, result.Orders)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "merged") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a merge warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_InvalidRows(t *testing.T) {
	input := "Size,Qty\nS,five\nM,0\n,4\nL,-2\nXL,3\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Line 2") {
		t.Errorf("expected first error on Line 2, got %s", result.Errors[0])
	}
	assertOrders(t, model.OrderSet{{Size: "XL", Quantity: 3}}, result.Orders)
	if result.OK() {
		t.Error("result with errors should not be OK")
	}
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Size,Colour\nS,red\n"), ',')
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Quantity") {
		t.Errorf("expected missing Quantity error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_OnlyHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Size,Qty\n"), ',')
	if len(result.Errors) == 0 {
		t.Error("expected an error when no orders are present")
	}
}

func TestImportCSVFromReader_EmptyRowsIgnored(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Size,Qty\n\nS,5\n,\nM,3\n"), ',')
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Orders) != 2 {
		t.Errorf("expected 2 orders, got %d", len(result.Orders))
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	if err := os.WriteFile(path, []byte("Size;Qty\nS;5\nM;3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportCSV(path)
	if !result.OK() {
		t.Fatalf("import failed: %v", result.Errors)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("   \n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportCSV(path)
	if len(result.Errors) == 0 || result.Errors[0] != "File is empty" {
		t.Errorf("expected 'File is empty', got %v", result.Errors)
	}
}

// ─── JSON Tests ────────────────────────────────────────────

func TestImportJSON_Object(t *testing.T) {
	result := ImportJSON([]byte(`{"M": 3, "S": 5}`))
	if !result.OK() {
		t.Fatalf("import failed: %v", result.Errors)
	}
	assertOrders(t, model.OrderSet{{Size: "M", Quantity: 3}, {Size: "S", Quantity: 5}}, result.Orders)
}

func TestImportJSON_PlanRequest(t *testing.T) {
	result := ImportJSON([]byte(`{"orders": {"S": 5}, "maxBlocksPerCut": 2, "maxStackingCloth": 3}`))
	if !result.OK() {
		t.Fatalf("import failed: %v", result.Errors)
	}
	assertOrders(t, model.OrderSet{{Size: "S", Quantity: 5}}, result.Orders)
}

func TestImportJSON_Invalid(t *testing.T) {
	result := ImportJSON([]byte(`{"S": 0}`))
	if len(result.Errors) == 0 {
		t.Error("expected error for zero quantity")
	}
	result = ImportJSON([]byte(`not json`))
	if len(result.Errors) == 0 {
		t.Error("expected error for invalid JSON")
	}
}

// ─── Excel Tests ───────────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Size", "Quantity"},
		{"S", 40},
		{"M", 35},
		{"L", 12},
	})

	result := ImportExcel(path)
	if !result.OK() {
		t.Fatalf("import failed: %v", result.Errors)
	}
	want := model.OrderSet{{Size: "S", Quantity: 40}, {Size: "M", Quantity: 35}, {Size: "L", Quantity: 12}}
	assertOrders(t, want, result.Orders)
}

func TestImportExcel_SizeRun(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"XS", "S", "M"},
		{3, 8, 6},
	})

	result := ImportExcel(path)
	if !result.OK() {
		t.Fatalf("import failed: %v", result.Errors)
	}
	want := model.OrderSet{{Size: "XS", Quantity: 3}, {Size: "S", Quantity: 8}, {Size: "M", Quantity: 6}}
	assertOrders(t, want, result.Orders)
}

func TestImportBytes_Excel(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Size", "Qty"},
		{"M", 9},
	})
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	result := ImportBytes("upload.XLSX", data)
	if !result.OK() {
		t.Fatalf("import failed: %v", result.Errors)
	}
	assertOrders(t, model.OrderSet{{Size: "M", Quantity: 9}}, result.Orders)
}

func TestImportBytes_UnsupportedType(t *testing.T) {
	result := ImportBytes("orders.pdf", []byte("%PDF"))
	if len(result.Errors) == 0 {
		t.Error("expected error for unsupported type")
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportFile_DispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "orders.csv")
	jsonPath := filepath.Join(dir, "orders.json")
	if err := os.WriteFile(csvPath, []byte("S,5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(jsonPath, []byte(`{"S": 5}`), 0644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{csvPath, jsonPath} {
		result := ImportFile(path)
		if !result.OK() {
			t.Errorf("%s: import failed: %v", path, result.Errors)
			continue
		}
		assertOrders(t, model.OrderSet{{Size: "S", Quantity: 5}}, result.Orders)
	}
}

func assertOrders(t *testing.T, want, got model.OrderSet) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d orders, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("order %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}
