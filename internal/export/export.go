// Package export writes the expense book as a spreadsheet download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"expensebook/internal/core"
)

// Format is a supported export file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	expensesSheet   = "Expenses"
	categoriesSheet = "By Category"
	uncategorized   = "Uncategorized"
)

var header = []string{"Date", "Description", "Category", "Amount"}

// ParseFormat accepts "csv" or "xlsx" in any case. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q: must be csv or xlsx", s)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename names an export taken on day, e.g. "expenses_20250115.xlsx".
func (f Format) Filename(day core.Date) string {
	return fmt.Sprintf("expenses_%s.%s", day.Format("20060102"), f)
}

// Write renders every expense, newest first, in the given format.
func Write(w io.Writer, format Format, expenses []core.Expense, categories []core.Category) error {
	rows := core.ListExpenses(expenses, core.DefaultListOptions())
	switch format {
	case FormatCSV:
		return writeCSV(w, rows, categories)
	case FormatXLSX:
		return writeXLSX(w, rows, categories)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func categoryName(id string, categories []core.Category) string {
	if c, ok := core.CategoryByID(id, categories); ok {
		return safeCell(c.Name)
	}
	return uncategorized
}

// safeCell quotes text that a spreadsheet would otherwise evaluate as a formula.
func safeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func writeCSV(w io.Writer, expenses []core.Expense, categories []core.Category) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		record := []string{e.Date.String(), safeCell(e.Description), categoryName(e.Category, categories), e.Amount.String()}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, expenses []core.Expense, categories []core.Category) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", expensesSheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(expensesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.Date.String(), safeCell(e.Description), categoryName(e.Category, categories), e.Amount.Float()}
		if err := f.SetSheetRow(expensesSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %s: %w", e.ID, err)
		}
	}

	if len(expenses) > 0 {
		last := len(expenses) + 1
		totalRow := last + 1
		if err := f.SetCellValue(expensesSheet, fmt.Sprintf("C%d", totalRow), "Total"); err != nil {
			return err
		}
		if err := f.SetCellFormula(expensesSheet, fmt.Sprintf("D%d", totalRow), fmt.Sprintf("SUM(D2:D%d)", last)); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(expensesSheet, "A", "A", 12)
	_ = f.SetColWidth(expensesSheet, "B", "B", 40)
	_ = f.SetColWidth(expensesSheet, "C", "C", 18)
	_ = f.SetColWidth(expensesSheet, "D", "D", 12)

	if err := writeCategorySheet(f, expenses, categories); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeCategorySheet(f *excelize.File, expenses []core.Expense, categories []core.Category) error {
	if _, err := f.NewSheet(categoriesSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.SetSheetRow(categoriesSheet, "A1", &[]string{"Category", "Total", "Share"}); err != nil {
		return err
	}

	total := core.TotalExpenses(expenses)
	row := 2
	for _, s := range core.ExpensesByCategory(expenses, categories) {
		if s.Total.Cents == 0 {
			continue
		}
		values := []any{
			categoryName(s.CategoryID, categories),
			s.Total.Float(),
			core.FormatPercent(core.PercentageOfTotal(s.Total, total)),
		}
		if err := f.SetSheetRow(categoriesSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		row++
	}
	_ = f.SetColWidth(categoriesSheet, "A", "A", 20)
	return nil
}
