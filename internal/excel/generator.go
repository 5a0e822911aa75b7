package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/marketplace-service/internal/model"
)

const summarySheet = "Best clients"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.ClientsReport) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, summarySheet, report); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, report model.ClientsReport) error {
	var firstErr error
	set := func(cell string, value interface{}) {
		if err := file.SetCellValue(sheet, cell, value); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	set("A1", "Period start")
	set("B1", formatDate(report.PeriodStart))
	set("A2", "Period end")
	set("B2", formatDate(report.PeriodEnd))
	set("A3", "Best profession")
	if report.BestProfession != nil {
		set("B3", report.BestProfession.Profession)
		set("C3", report.BestProfession.Total.StringFixed(2))
	} else {
		set("B3", "-")
	}

	tableRow := 5
	headers := []string{"#", "Client", "Client ID", "Paid"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, client := range report.Clients {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), i+1)
		set(fmt.Sprintf("B%d", row), client.FullName)
		set(fmt.Sprintf("C%d", row), client.ID.String())
		set(fmt.Sprintf("D%d", row), client.Paid.StringFixed(2))
	}

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "B", 32)
	_ = file.SetColWidth(sheet, "C", "C", 38)
	_ = file.SetColWidth(sheet, "D", "D", 14)
	return firstErr
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
