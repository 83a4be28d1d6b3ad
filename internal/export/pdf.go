package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"botdesk/internal/domain/expense"
	"botdesk/internal/report"
)

var monthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// ReportPDF renders the monthly financial report: the summary block
// followed by the twelve-month expense table for the summary's year.
func ReportPDF(w io.Writer, s report.Summary, months [12]expense.MonthlyBreakdown) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	title := fmt.Sprintf("Reporte financiero — %s %d", monthName(s.Month), s.Year)
	pdf.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, tr("Generado el "+time.Now().Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Resumen"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	summaryRows := [][2]string{
		{"Ingreso recurrente mensual (MRR)", "$" + s.MRR.StringFixed(2)},
		{"Ingreso proyectado", "$" + s.ProjectedRevenue.StringFixed(2)},
		{"Ingreso cobrado", "$" + s.CollectedRevenue.StringFixed(2)},
		{"Gastos del mes", "$" + s.MonthExpenses.StringFixed(2)},
		{"Resultado neto", "$" + s.NetResult.StringFixed(2)},
		{"Proyectos activos", fmt.Sprintf("%d", s.ActiveProjects)},
	}
	for _, row := range summaryRows {
		pdf.CellFormat(90, 7, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, tr(row[1]), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Gastos por mes %d", s.Year)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 8)
	headers := []string{"Mes", "Fijos", "Marketing", "Operativos", "Servicios", "Otros", "Total"}
	widths := []float64{28, 26, 26, 26, 26, 26, 26}
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for m, b := range months {
		cells := []string{
			monthName(m + 1),
			b.Fixed.StringFixed(2),
			b.Marketing.StringFixed(2),
			b.Operational.StringFixed(2),
			b.Services.StringFixed(2),
			b.Other.StringFixed(2),
			b.Total.StringFixed(2),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(widths[0], 7, tr("Total anual"), "1", 0, "L", false, 0, "")
	total := expense.AnnualTotal(months)
	span := widths[1] + widths[2] + widths[3] + widths[4] + widths[5]
	pdf.CellFormat(span, 7, "", "1", 0, "C", false, 0, "")
	pdf.CellFormat(widths[6], 7, total.StringFixed(2), "1", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render report pdf: %w", err)
	}
	return nil
}

func monthName(m int) string {
	if m < 1 || m > 12 {
		return fmt.Sprintf("%d", m)
	}
	return monthNames[m-1]
}
