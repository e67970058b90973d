// Package xlsx renders operator reports as spreadsheets.
package xlsx

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

const sheetName = "Businesses"

// ContentType is the media type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var businessHeader = []string{
	"Business ID",
	"Name",
	"Sector",
	"Size",
	"UK Nation",
	"Subscription",
	"Plan",
	"Created",
	"Score %",
	"Status",
	"Required",
	"Completed",
	"Missing",
	"Overdue",
	"Needs Review",
	"Last Calculated",
}

type BusinessReport struct{}

func NewBusinessReport() *BusinessReport {
	return &BusinessReport{}
}

func (BusinessReport) WriteBusinessReport(ctx context.Context, w io.Writer, rows []domain.BusinessReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := writeRow(f, 1, toCells(businessHeader)); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(businessHeader), 1)
	if err := f.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeRow(f, i+2, reportCells(row)); err != nil {
			return err
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func reportCells(row domain.BusinessReportRow) []any {
	b := row.Business
	cells := []any{
		b.ID, b.Name, b.Sector, b.Size, b.UKNation,
		string(b.SubscriptionStatus), b.SubscriptionPlan, b.CreatedAt.UTC().Format("2006-01-02"),
	}
	if s := row.Score; s != nil {
		cells = append(cells,
			s.ScorePercent, string(s.StatusLabel), s.RequiredTotal, s.CompletedTotal,
			s.MissingCount, s.OverdueCount, s.NeedsReviewCount, s.LastCalculatedAt.UTC().Format("2006-01-02 15:04"),
		)
	}
	return cells
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func writeRow(f *excelize.File, rowNum int, cells []any) error {
	start, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheetName, start, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}
