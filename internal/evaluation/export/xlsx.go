// Package export renders stored evaluations as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"mutafriches/internal/evaluation/models"
	"mutafriches/internal/parcel"
)

// Sheet names, in workbook order.
const (
	SheetSummary = "Summary"
	SheetUsages  = "Usages"
	SheetDetails = "Details"
	SheetParcel  = "Parcel"
)

// ContentType is the media type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename is the suggested download name for rec.
func Filename(rec *models.Record) string {
	return fmt.Sprintf("mutabilite-%s-%s.xlsx", rec.Identifier, rec.CreatedAt.Format("20060102"))
}

// Write renders rec as a workbook and writes it to w.
func Write(w io.Writer, rec *models.Record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	b := &builder{f: f, header: header}
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename default sheet: %w", err)
	}
	b.summary(rec)
	b.usages(rec)
	b.details(rec)
	b.parcel(rec)
	if b.err != nil {
		return b.err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// builder keeps the first error so sheet code can write rows without
// checking each call.
type builder struct {
	f      *excelize.File
	header int
	err    error
}

func (b *builder) sheet(name string) {
	if b.err != nil || name == SheetSummary {
		return
	}
	if _, err := b.f.NewSheet(name); err != nil {
		b.err = fmt.Errorf("create sheet %s: %w", name, err)
	}
}

func (b *builder) row(sheet string, n int, values ...any) {
	if b.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		b.err = err
		return
	}
	if err := b.f.SetSheetRow(sheet, cell, &values); err != nil {
		b.err = fmt.Errorf("write %s row %d: %w", sheet, n, err)
	}
}

func (b *builder) headerRow(sheet string, values ...any) {
	b.row(sheet, 1, values...)
	if b.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(values), 1)
	if err != nil {
		b.err = err
		return
	}
	if err := b.f.SetCellStyle(sheet, "A1", last, b.header); err != nil {
		b.err = fmt.Errorf("style %s header: %w", sheet, err)
	}
}

func (b *builder) summary(rec *models.Record) {
	rows := [][]any{
		{"Evaluation", rec.ID.String()},
		{"Parcel", rec.Identifier},
		{"Created at", rec.CreatedAt.UTC().Format("2006-01-02 15:04:05")},
		{"Reliability", rec.Reliability.Note},
		{"Reliability label", rec.Reliability.Label},
		{"Criteria filled", fmt.Sprintf("%d/%d", rec.Reliability.CriteriaFilled, rec.Reliability.CriteriaTotal)},
	}
	if rec.SourceEvaluationID != nil {
		rows = append(rows, []any{"Reused evaluation", rec.SourceEvaluationID.String()})
	}
	for i, r := range rows {
		b.row(SheetSummary, i+1, r...)
	}
	if b.err == nil {
		b.err = b.f.SetColWidth(SheetSummary, "A", "B", 40)
	}
}

func (b *builder) usages(rec *models.Record) {
	b.sheet(SheetUsages)
	b.headerRow(SheetUsages, "Rank", "Usage", "Index", "Advantages", "Constraints", "Explanation")
	for i, r := range rec.Results {
		b.row(SheetUsages, i+2, r.Rank, string(r.Usage), r.Index, r.Advantages, r.Constraints, r.Explanation)
	}
}

func (b *builder) details(rec *models.Record) {
	b.sheet(SheetDetails)
	b.headerRow(SheetDetails, "Usage", "Criterion", "Value", "Score", "Weight", "Weighted")
	n := 2
	for _, r := range rec.Results {
		for _, c := range r.Details {
			b.row(SheetDetails, n, string(r.Usage), string(c.Criterion), c.Value, c.RawScore, c.Weight, c.Weighted)
			n++
		}
	}
}

func (b *builder) parcel(rec *models.Record) {
	b.sheet(SheetParcel)
	b.headerRow(SheetParcel, "Criterion", "State", "Value")
	for i, v := range rec.Parcel.Criteria() {
		b.row(SheetParcel, i+2, string(v.Criterion), v.State.String(), cellValue(v))
	}
}

func cellValue(v parcel.Value) string {
	if !v.Known() {
		return ""
	}
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Key
}
