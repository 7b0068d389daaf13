package export

import (
	"fmt"
	"io"

	"github.com/piwi3910/LayCut/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names used in the exported workbook.
const (
	SheetPlan         = "Plan"
	SheetVerification = "Verification"
	SheetMetrics      = "Metrics"
)

// ExportXLSX writes the plan workbook to a file.
func ExportXLSX(path string, plan model.PlanResponse) error {
	f, err := buildWorkbook(plan)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.SaveAs(path)
}

// WriteXLSX writes a workbook with three sheets: the cut-by-size plan grid,
// per-size production verification, and headline metrics.
func WriteXLSX(w io.Writer, plan model.PlanResponse) error {
	f, err := buildWorkbook(plan)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

func buildWorkbook(plan model.PlanResponse) (*excelize.File, error) {
	if len(plan.CuttingPlan) == 0 {
		return nil, fmt.Errorf("no cuts to export")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetPlan); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetVerification, SheetMetrics} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	steps := []func(*excelize.File, model.PlanResponse, int) error{
		writePlanSheet,
		writeVerificationSheet,
		writeMetricsSheet,
	}
	for _, step := range steps {
		if err := step(f, plan, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// writePlanSheet writes one row per cut with a block-count column per size.
func writePlanSheet(f *excelize.File, plan model.PlanResponse, headerStyle int) error {
	sizes := plan.Orders.Sizes()

	header := []interface{}{"Cut", "Stack Size"}
	for _, size := range sizes {
		header = append(header, size)
	}
	header = append(header, "Total Blocks", "Pieces")
	if err := f.SetSheetRow(SheetPlan, "A1", &header); err != nil {
		return err
	}
	if err := styleHeader(f, SheetPlan, len(header), headerStyle); err != nil {
		return err
	}

	for i, cut := range plan.CuttingPlan {
		row := []interface{}{cut.CutNumber, cut.StackSize}
		for _, size := range sizes {
			if b := cut.Blocks.Blocks(size); b > 0 {
				row = append(row, b)
			} else {
				row = append(row, nil)
			}
		}
		row = append(row, cut.Blocks.Total(), cut.Cloth())

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetPlan, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeVerificationSheet(f *excelize.File, plan model.PlanResponse, headerStyle int) error {
	header := []interface{}{"Size", "Ordered", "Produced", "Excess", "Fulfilled", "Cuts"}
	if err := f.SetSheetRow(SheetVerification, "A1", &header); err != nil {
		return err
	}
	if err := styleHeader(f, SheetVerification, len(header), headerStyle); err != nil {
		return err
	}

	for i, v := range plan.ProductionVerification {
		row := []interface{}{v.Size, v.Ordered, v.Produced, v.Excess, v.Fulfilled, cutList(plan.Summary, v.Size)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetVerification, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetVerification, "F", "F", 40)
}

func writeMetricsSheet(f *excelize.File, plan model.PlanResponse, headerStyle int) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Plan ID", plan.PlanID},
		{"Priority", string(plan.Priority)},
		{"Max Blocks Per Cut", plan.Constraints.MaxBlocksPerCut},
		{"Max Stacking Cloth", plan.Constraints.MaxStackingCloth},
		{"Total Order Quantity", plan.TotalOrderQuantity},
		{"Total Cuts", plan.TotalCuts},
		{"Total Waste", plan.TotalWaste},
		{"Total Cloth Used", plan.TotalClothUsed},
		{"Block Utilization %", plan.BlockUtilizationPercent},
		{"Stack Utilization %", plan.StackUtilizationPercent},
		{"Cloth Efficiency %", plan.ClothEfficiencyPercent},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetMetrics, cell, &row); err != nil {
			return err
		}
	}
	if err := styleHeader(f, SheetMetrics, 2, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(SheetMetrics, "A", "B", 24)
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}
