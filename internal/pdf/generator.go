package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/marketplace-service/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

func (g *Generator) Generate(report model.ClientsReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "Best clients report", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s - %s", formatDate(report.PeriodStart), formatDate(report.PeriodEnd)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	profession := "-"
	if report.BestProfession != nil {
		profession = fmt.Sprintf("%s (%s)", report.BestProfession.Profession, report.BestProfession.Total.StringFixed(2))
	}
	pdf.CellFormat(0, 6, tr("Best profession: "+profession), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	colWidths := []float64{12, 100, 60}
	drawTableRow(pdf, g.fontName, []string{"#", "Client", "Paid"}, colWidths, true)
	for i, client := range report.Clients {
		row := []string{
			fmt.Sprintf("%d", i+1),
			tr(client.FullName),
			client.Paid.StringFixed(2),
		}
		drawTableRow(pdf, g.fontName, row, colWidths, false)
	}
	if len(report.Clients) == 0 {
		pdf.CellFormat(0, 8, "No payments in the selected period.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i == len(cols)-1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
