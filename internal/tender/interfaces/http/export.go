package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	tender "procurement-core/internal/tender/domain"
)

// BuildContractPDF renders a minimal PDF for a contract and its merge group.
func BuildContractPDF(t *tender.Tender, c *tender.Contract) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Contract")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Tender: %s", t.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Contract: %s", c.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", c.Status))
	pdf.Ln(5)
	if c.Value != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Amount (%s): %.2f", c.Value.Currency, c.Value.Amount))
		pdf.Ln(5)
		if c.Value.AmountNet > 0 {
			pdf.Cell(0, 6, fmt.Sprintf("Amount Net: %.2f", c.Value.AmountNet))
			pdf.Ln(5)
		}
	}
	pdf.Cell(0, 6, fmt.Sprintf("Awarded Amount: %.2f", t.AwardedAmount(c)))
	pdf.Ln(5)
	if c.DateSigned != nil {
		pdf.Cell(0, 6, fmt.Sprintf("Signed: %s", c.DateSigned.Format(time.RFC3339)))
		pdf.Ln(5)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Award", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Supplier", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, award := range t.MergeGroup(c) {
		supplier := ""
		if len(award.Suppliers) > 0 {
			supplier = award.Suppliers[0].Identifier.LegalName
		}
		amount := 0.0
		if award.Value != nil {
			amount = award.Value.Amount
		}
		pdf.CellFormat(60, 6, award.ID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, supplier, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildContractXLSX renders a minimal XLSX for a contract and its merge group.
func BuildContractXLSX(t *tender.Tender, c *tender.Contract) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	awardsSheet := "awards"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(awardsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Contract")
	_ = f.SetCellValue(summarySheet, "A3", "Tender")
	_ = f.SetCellValue(summarySheet, "B3", t.ID)
	_ = f.SetCellValue(summarySheet, "A4", "Contract")
	_ = f.SetCellValue(summarySheet, "B4", c.ID)
	_ = f.SetCellValue(summarySheet, "A5", "Status")
	_ = f.SetCellValue(summarySheet, "B5", c.Status)
	_ = f.SetCellValue(summarySheet, "A6", "Awarded Amount")
	_ = f.SetCellValue(summarySheet, "B6", t.AwardedAmount(c))
	if c.Value != nil {
		_ = f.SetCellValue(summarySheet, "A7", "Amount")
		_ = f.SetCellValue(summarySheet, "B7", c.Value.Amount)
		_ = f.SetCellValue(summarySheet, "A8", "Amount Net")
		_ = f.SetCellValue(summarySheet, "B8", c.Value.AmountNet)
		_ = f.SetCellValue(summarySheet, "A9", "Currency")
		_ = f.SetCellValue(summarySheet, "B9", c.Value.Currency)
	}
	if c.DateSigned != nil {
		_ = f.SetCellValue(summarySheet, "A10", "Signed")
		_ = f.SetCellValue(summarySheet, "B10", c.DateSigned.Format(time.RFC3339))
	}

	_ = f.SetCellValue(awardsSheet, "A1", "Award")
	_ = f.SetCellValue(awardsSheet, "B1", "Supplier")
	_ = f.SetCellValue(awardsSheet, "C1", "Status")
	_ = f.SetCellValue(awardsSheet, "D1", "Amount")
	for i, award := range t.MergeGroup(c) {
		row := i + 2
		supplier := ""
		if len(award.Suppliers) > 0 {
			supplier = award.Suppliers[0].Identifier.LegalName
		}
		amount := 0.0
		if award.Value != nil {
			amount = award.Value.Amount
		}
		_ = f.SetCellValue(awardsSheet, fmt.Sprintf("A%d", row), award.ID)
		_ = f.SetCellValue(awardsSheet, fmt.Sprintf("B%d", row), supplier)
		_ = f.SetCellValue(awardsSheet, fmt.Sprintf("C%d", row), award.Status)
		_ = f.SetCellValue(awardsSheet, fmt.Sprintf("D%d", row), amount)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
