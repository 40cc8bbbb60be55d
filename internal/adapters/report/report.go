// Package report renders the dashboard as spreadsheet downloads.
package report

import (
	"io"

	"github.com/gocarina/gocsv"
	pkgerrors "github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/headstock/internal/domain"
)

const sheet = "Products"

var header = []any{"ID", "Name", "Image", "Archived", "Purchased", "Sold", "Spent", "Income", "Balance", "Projected profit"}

// WriteXLSX writes one row per product followed by a totals row.
func WriteXLSX(w io.Writer, d domain.Dashboard) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return pkgerrors.Wrap(err, "xlsx sheet")
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return pkgerrors.Wrap(err, "xlsx header")
	}
	bold, styleErr := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if styleErr == nil {
		_ = f.SetRowStyle(sheet, 1, 1, bold)
	}

	row := 2
	for _, p := range d.Products {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{p.ID.String(), p.Name, p.Img, p.Archived, p.PurchasedCount, p.SellsCount, p.Spent, p.Income, p.Balance, p.ProjectedProfit}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return pkgerrors.Wrapf(err, "xlsx row %d", row)
		}
		row++
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	totals := []any{"", "Total", "", "", "", "", d.TotalSpent, d.TotalIncome, d.Balance}
	if err := f.SetSheetRow(sheet, cell, &totals); err != nil {
		return pkgerrors.Wrap(err, "xlsx totals")
	}
	if styleErr == nil {
		_ = f.SetRowStyle(sheet, row, row, bold)
	}
	_ = f.SetColWidth(sheet, "B", "B", 32)
	_ = f.SetColWidth(sheet, "C", "C", 40)

	return pkgerrors.Wrap(f.Write(w), "xlsx write")
}

// WriteCSV writes the product rows with a header line.
func WriteCSV(w io.Writer, rows []domain.DashboardRow) error {
	return pkgerrors.Wrap(gocsv.Marshal(rows, w), "csv write")
}
