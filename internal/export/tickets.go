package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/LayCut/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// TicketInfo holds the data encoded into each bundle ticket's QR code.
// One ticket follows one block of a cut through sewing.
type TicketInfo struct {
	PlanID    string `json:"plan"`
	CutNumber int    `json:"cut"`
	Size      string `json:"size"`
	Bundle    int    `json:"bundle"`  // 1-based block index within the size's blocks in the cut
	Bundles   int    `json:"bundles"` // blocks the size received in the cut
	Pieces    int    `json:"pieces"`  // garments in the bundle, equal to the stack height
}

// Ticket layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
const (
	ticketPageMarginTop  = 12.7 // mm
	ticketPageMarginLeft = 4.8  // mm
	ticketWidth          = 66.7 // mm per label
	ticketHeight         = 25.4 // mm per label
	ticketCols           = 3
	ticketRows           = 10
	ticketsPerPage       = ticketCols * ticketRows
	qrSize               = 20.0 // QR code size in mm
	ticketPadding        = 2.0  // mm internal padding
)

// CollectTickets expands a plan into one ticket per block, in cut order.
func CollectTickets(plan model.PlanResponse) []TicketInfo {
	var tickets []TicketInfo
	for _, cut := range plan.CuttingPlan {
		for _, bc := range cut.Blocks {
			for i := 1; i <= bc.Blocks; i++ {
				tickets = append(tickets, TicketInfo{
					PlanID:    plan.PlanID,
					CutNumber: cut.CutNumber,
					Size:      bc.Size,
					Bundle:    i,
					Bundles:   bc.Blocks,
					Pieces:    cut.StackSize,
				})
			}
		}
	}
	return tickets
}

// ExportTickets writes the bundle ticket sheet to a file.
func ExportTickets(path string, plan model.PlanResponse) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create tickets file: %w", err)
	}
	if err := WriteTickets(f, plan); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTickets generates a PDF of QR-coded bundle tickets, one per block.
// Each ticket shows the cut, size, bundle number and piece count, and a QR
// code encoding the same data as JSON. Tickets are laid out on a standard
// label sheet (Avery 5160 / 3 columns x 10 rows on US Letter).
func WriteTickets(w io.Writer, plan model.PlanResponse) error {
	tickets := CollectTickets(plan)
	if len(tickets) == 0 {
		return fmt.Errorf("no blocks to generate tickets for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, ticket := range tickets {
		if i%ticketsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % ticketsPerPage
		col := posOnPage % ticketCols
		row := posOnPage / ticketCols

		x := ticketPageMarginLeft + float64(col)*ticketWidth
		y := ticketPageMarginTop + float64(row)*ticketHeight

		if err := renderTicket(pdf, x, y, ticket); err != nil {
			return fmt.Errorf("failed to render ticket for cut %d size %q: %w", ticket.CutNumber, ticket.Size, err)
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render tickets: %w", err)
	}
	return pdf.Output(w)
}

// renderTicket draws a single ticket at the given position.
func renderTicket(pdf *fpdf.Fpdf, x, y float64, info TicketInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, ticketWidth, ticketHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%s_%d", info.CutNumber, info.Size, info.Bundle)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + ticketWidth - qrSize - ticketPadding
	qrY := y + (ticketHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + ticketPadding
	textW := ticketWidth - qrSize - 3*ticketPadding

	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+ticketPadding)
	pdf.CellFormat(textW, 5, truncate(pdf, "Size "+info.Size, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(textX, y+ticketPadding+6)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("Cut %d - bundle %d/%d", info.CutNumber, info.Bundle, info.Bundles), "", 1, "L", false, 0, "")

	pdf.SetXY(textX, y+ticketPadding+10)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d pcs", info.Pieces), "", 1, "L", false, 0, "")

	if len(info.PlanID) >= 8 {
		pdf.SetFont("Helvetica", "", 6)
		pdf.SetTextColor(100, 100, 100)
		pdf.SetXY(textX, y+ticketPadding+15)
		pdf.CellFormat(textW, 3, "Plan "+info.PlanID[:8], "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	return nil
}
