// Package export renders the user-facing download formats: the projects
// spreadsheet, the JSON backup, the monthly report PDF and the
// conversation-analysis Word document.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"botdesk/internal/domain/project"
)

// projectColumns is the fixed column set of the projects spreadsheet.
var projectColumns = []string{
	"Nombre", "Estado", "Cliente", "Precio mensual", "Fecha de corte",
	"Fecha de inicio", "Costo de instalación", "Requiere factura",
	"RFC", "Razón social", "Folio de factura",
}

// ProjectsXLSX writes the projects spreadsheet to w.
func ProjectsXLSX(w io.Writer, projects []project.Project) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Proyectos"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range projectColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, p := range projects {
		billing := "No"
		if p.BillingRequired {
			billing = "Sí"
		}
		row := []any{
			p.Name,
			string(p.Status),
			p.ClientName,
			p.MonthlyPrice.StringFixed(2),
			p.CutoffDate,
			p.StartDate,
			p.InstallationCost.StringFixed(2),
			billing,
			p.TaxID,
			p.LegalName,
			p.InvoiceFolio,
		}
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}
