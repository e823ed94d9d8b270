package payroll

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/nightwatch/nursepay/pay"
)

// RenderPDF writes a one-page A4 payslip.
func RenderPDF(w io.Writer, p Payslip) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", p.NurseName, p.Period), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Nurse: %s", p.NurseName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", p.Period.Start, p.Period.End))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", p.Status))
	pdf.Ln(12)

	// Earnings table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(60, 8, "Category", "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "Hours", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Rate", "B", 0, "R", false, 0, "")
	pdf.CellFormat(45, 8, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range p.Lines {
		if line.Hours.IsZero() {
			continue
		}
		pdf.CellFormat(60, 7, line.Category.Label(), "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, pay.FormatHours(line.Hours), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, pay.FormatMoney(line.Rate), "", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, pay.FormatMoney(line.Amount), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 8, "Gross pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, pay.FormatMoney(p.Output.GrossPay), "T", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, d := range p.Deductions {
		pdf.CellFormat(130, 7, d.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, pay.FormatMoney(d.Amount.Neg()), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(130, 9, "Net pay", "T", 0, "L", false, 0, "")
	pdf.CellFormat(45, 9, pay.FormatMoney(p.Output.NetPay), "T", 1, "R", false, 0, "")

	if len(p.Warnings) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		for _, warn := range p.Warnings {
			pdf.Cell(0, 5, "Warning: "+warn)
			pdf.Ln(5)
		}
	}

	return pdf.Output(w)
}
