// Package export writes the test-case table to an xlsx workbook and reads it back.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mario1918/testCaseGenie-NG/internal/model"
)

const SheetName = "Test Cases"

var ErrNoRows = errors.New("workbook has no test case rows")

var (
	headers = []string{"ID", "Title", "Steps", "Expected Result", "Priority", "Execution Status"}
	widths  = []float64{15, 40, 60, 60, 15, 15}
)

// Filename names an export by date, with the issue key when one is active.
func Filename(issueKey string, at time.Time) string {
	date := at.Format("2006-01-02")
	if issueKey = strings.TrimSpace(issueKey); issueKey != "" {
		return fmt.Sprintf("test-cases-%s-%s.xlsx", issueKey, date)
	}
	return fmt.Sprintf("TestCases_%s.xlsx", date)
}

// Write renders one header row plus one row per test case.
func Write(w io.Writer, cases []model.TestCase) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("sizing column %s: %w", col, err)
		}
	}

	for i, tc := range cases {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			tc.ID,
			tc.Title,
			tc.Steps,
			tc.ExpectedResult,
			tc.Priority,
			string(tc.ExecutionStatus.Normalize()),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Read loads test cases from a workbook produced by Write. Columns are matched
// by header name so reordered sheets still import; rows without a title are
// skipped.
func Read(r io.Reader) ([]model.TestCase, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ErrNoRows
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	cell := func(row []string, name string) string {
		i, ok := col[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	cases := make([]model.TestCase, 0, len(rows)-1)
	for _, row := range rows[1:] {
		title := cell(row, "Title")
		if title == "" {
			continue
		}
		tc := model.TestCase{
			ID:              cell(row, "ID"),
			Title:           title,
			Steps:           cell(row, "Steps"),
			ExpectedResult:  cell(row, "Expected Result"),
			Priority:        cell(row, "Priority"),
			ExecutionStatus: model.ExecutionStatus(cell(row, "Execution Status")).Normalize(),
		}
		if tc.Priority == "" {
			tc.Priority = model.DefaultPriority
		}
		cases = append(cases, tc)
	}
	if len(cases) == 0 {
		return nil, ErrNoRows
	}
	return cases, nil
}
