package xlsx

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/simplycomply/compliance-api/internal/core/domain"
)

func TestWriteBusinessReport(t *testing.T) {
	created := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rows := []domain.BusinessReportRow{
		{
			Business: domain.Business{ID: "b1", Name: "Bright Smiles", Sector: "dental", SubscriptionStatus: domain.SubscriptionActive, CreatedAt: created},
			Score:    &domain.ComplianceScore{ScorePercent: 78, StatusLabel: domain.StatusOnTrack, RequiredTotal: 13, CompletedTotal: 10, LastCalculatedAt: created},
		},
		{Business: domain.Business{ID: "b2", Name: "Corner Office", Sector: "office", CreatedAt: created}},
	}

	var buf bytes.Buffer
	if err := NewBusinessReport().WriteBusinessReport(context.Background(), &buf, rows); err != nil {
		t.Fatalf("WriteBusinessReport() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows = %d, want 3", len(got))
	}
	if got[0][0] != "Business ID" || got[1][1] != "Bright Smiles" || got[1][8] != "78" || got[1][9] != "on_track" {
		t.Fatalf("unexpected rows %v", got)
	}
	if len(got[2]) != 8 {
		t.Fatalf("unscored row has %d cells, want 8", len(got[2]))
	}
}
