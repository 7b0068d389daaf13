// Package export provides functionality for exporting cutting plans
// to various file formats.
package export

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/LayCut/internal/model"
)

// sizeColor represents an RGB color for a garment size.
type sizeColor struct {
	R, G, B int
}

// sizeColors is cycled through in order-set order so a size keeps its color
// across the whole report.
var sizeColors = []sizeColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	rowHeight    = 16.0
	blockWidth   = 18.0
	blockGap     = 2.0
	infoColWidth = 45.0
)

const footerText = "Generated by LayCut - Garment Cutting Plan Optimizer"

// ExportPDF writes the plan report to a file.
func ExportPDF(path string, plan model.PlanResponse) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PDF file: %w", err)
	}
	if err := WritePDF(f, plan); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePDF renders a cutting plan report: one or more pages with a lay
// diagram per cut, followed by a summary page with utilization figures and
// the production verification table.
func WritePDF(w io.Writer, plan model.PlanResponse) error {
	if len(plan.CuttingPlan) == 0 {
		return fmt.Errorf("no cuts to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	colors := colorIndex(plan.Orders)

	pdf.AddPage()
	y := renderPlanHeader(pdf, plan)
	for _, cut := range plan.CuttingPlan {
		if y+rowHeight > pageHeight-marginBottom-6 {
			renderFooter(pdf)
			pdf.AddPage()
			y = marginTop
		}
		renderCutRow(pdf, cut, plan.Constraints, colors, y)
		y += rowHeight + 2
	}
	renderFooter(pdf)

	pdf.AddPage()
	renderSummaryPage(pdf, plan, colors)
	renderFooter(pdf)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return pdf.Output(w)
}

// renderPlanHeader draws the title block and returns the y position below it.
func renderPlanHeader(pdf *fpdf.Fpdf, plan model.PlanResponse) float64 {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Cutting Plan: %d cuts for %d pieces", plan.TotalCuts, plan.TotalOrderQuantity)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Max blocks/cut: %d | Max stack: %d | Priority: %s | Waste: %d | Cloth efficiency: %d%%",
		plan.Constraints.MaxBlocksPerCut, plan.Constraints.MaxStackingCloth, plan.Priority,
		plan.TotalWaste, plan.ClothEfficiencyPercent)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, marginTop+headerHeight+5)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Plan "+plan.PlanID, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	return marginTop + headerHeight + 12
}

// renderCutRow draws one cut: its number and stack height on the left, then
// one rectangle per block whose height shows the stack relative to capacity.
func renderCutRow(pdf *fpdf.Fpdf, cut model.Cut, c model.Constraints, colors map[string]sizeColor, y float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(infoColWidth, 5, fmt.Sprintf("Cut %d", cut.CutNumber), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(marginLeft, y+5)
	pdf.CellFormat(infoColWidth, 4, fmt.Sprintf("Stack %d / %d layers", cut.StackSize, c.MaxStackingCloth), "", 0, "L", false, 0, "")
	pdf.SetXY(marginLeft, y+9)
	pdf.CellFormat(infoColWidth, 4, fmt.Sprintf("Blocks %d / %d", cut.Blocks.Total(), c.MaxBlocksPerCut), "", 0, "L", false, 0, "")

	x := marginLeft + infoColWidth
	maxX := pageWidth - marginRight
	fill := float64(cut.StackSize) / float64(max(1, c.MaxStackingCloth))
	boxH := math.Max(2, rowHeight*fill)

	for _, bc := range cut.Blocks {
		col := colors[bc.Size]
		for i := 0; i < bc.Blocks; i++ {
			if x+blockWidth > maxX {
				// Too many blocks for one row; note the remainder instead of drawing.
				pdf.SetXY(x, y+rowHeight/2-2)
				pdf.CellFormat(maxX-x, 4, "...", "", 0, "L", false, 0, "")
				return
			}
			// Empty capacity outline
			pdf.SetDrawColor(160, 160, 160)
			pdf.SetLineWidth(0.2)
			pdf.Rect(x, y, blockWidth, rowHeight, "D")

			pdf.SetFillColor(col.R, col.G, col.B)
			pdf.SetDrawColor(30, 30, 30)
			pdf.SetLineWidth(0.3)
			pdf.Rect(x, y+rowHeight-boxH, blockWidth, boxH, "FD")

			pdf.SetFont("Helvetica", "B", 8)
			labelW := pdf.GetStringWidth(bc.Size)
			if labelW < blockWidth-2 {
				pdf.SetXY(x+(blockWidth-labelW)/2, y+rowHeight/2-2)
				pdf.CellFormat(labelW, 4, bc.Size, "", 0, "C", false, 0, "")
			}
			x += blockWidth + blockGap
		}
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, plan model.PlanResponse, colors map[string]sizeColor) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cutting Plan Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Total Order Quantity", fmt.Sprintf("%d", plan.TotalOrderQuantity)},
		{"Total Cuts", fmt.Sprintf("%d", plan.TotalCuts)},
		{"Total Waste", fmt.Sprintf("%d pcs", plan.TotalWaste)},
		{"Cloth Used", fmt.Sprintf("%d layers", plan.TotalClothUsed)},
		{"Block Utilization", fmt.Sprintf("%d%%", plan.BlockUtilizationPercent)},
		{"Stack Utilization", fmt.Sprintf("%d%%", plan.StackUtilizationPercent)},
		{"Cloth Efficiency", fmt.Sprintf("%d%%", plan.ClothEfficiencyPercent)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Production Verification", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{10, 30, 30, 30, 30, 30, 97}
	headers := []string{"", "Size", "Ordered", "Produced", "Excess", "Status", "Cuts"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, v := range plan.ProductionVerification {
		if y+6 > pageHeight-marginBottom-6 {
			renderFooter(pdf)
			pdf.AddPage()
			y = marginTop
		}

		status := "OK"
		if !v.Fulfilled {
			status = "SHORT"
		}
		rowData := []string{
			"",
			v.Size,
			fmt.Sprintf("%d", v.Ordered),
			fmt.Sprintf("%d", v.Produced),
			fmt.Sprintf("%d", v.Excess),
			status,
			cutList(plan.Summary, v.Size),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, truncate(pdf, cell, colWidths[j]-2), "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}

		// Color swatch in the first column
		col := colors[v.Size]
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(marginLeft+3, y+1.5, 4, 3, "F")
		y += 6
	}
}

func renderFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, footerText, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// colorIndex assigns each size a color in order-set order.
func colorIndex(orders model.OrderSet) map[string]sizeColor {
	colors := make(map[string]sizeColor, len(orders))
	for i, line := range orders {
		colors[line.Size] = sizeColors[i%len(sizeColors)]
	}
	return colors
}

// cutList formats the cuts a size appears in, e.g. "#1 x2, #3 x1".
func cutList(summary []model.SizeSummary, size string) string {
	for _, s := range summary {
		if s.Size != size {
			continue
		}
		out := ""
		for i, ref := range s.Cuts {
			if i > 0 {
				out += ", "
			}
			out += fmt.Sprintf("#%d x%d", ref.CutNumber, ref.Blocks)
		}
		return out
	}
	return ""
}

// truncate shortens text with an ellipsis until it fits the given width.
func truncate(pdf *fpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
