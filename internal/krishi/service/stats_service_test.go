package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/krishilink/krishi/internal/krishi/testutil"
	"go.uber.org/zap"
)

func seedFreight(t *testing.T, svc *FreightService, ctx context.Context, farmer string, distanceKm float64) *entity.FreightRequest {
	t.Helper()
	r, err := svc.Create(ctx, CreateFreightReq{
		FarmerName:        farmer,
		OriginVillage:     "Khatauli",
		DestinationMarket: "Muzaffarnagar Mandi",
		WeightKg:          500,
		DistanceKm:        distanceKm,
	})
	if err != nil {
		t.Fatalf("Create freight: %v", err)
	}
	return r
}

func TestSummaryDerivedFromRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	logger := zap.NewNop()
	repos := repository.NewRepositories(db)

	freightSvc := NewFreightService(db, repos, logger, nil)
	statsSvc := NewStatsService(repos, logger)

	testutil.SeedDriver(t, db, "Suresh Singh")
	testutil.SeedDriver(t, db, "Vijay Yadav")

	// Two farmers, one of them booking twice.
	seedFreight(t, freightSvc, ctx, "Ramesh Kumar", 50) // savings 300, co2 6
	seedFreight(t, freightSvc, ctx, "Ramesh Kumar", 100)
	seedFreight(t, freightSvc, ctx, "Sita Devi", 25)

	summary, err := statsSvc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.TotalSavings != 300+600+150 {
		t.Errorf("Expected savings 1050, got %v", summary.TotalSavings)
	}
	if summary.TotalCO2Kg != 6+12+3 {
		t.Errorf("Expected CO2 21, got %v", summary.TotalCO2Kg)
	}
	if summary.TotalFarmers != 2 {
		t.Errorf("Expected 2 distinct farmers, got %v", summary.TotalFarmers)
	}
	if summary.ActiveDrivers != 2 {
		t.Errorf("Expected 2 active drivers, got %v", summary.ActiveDrivers)
	}

	// Offline drivers drop out of the active count.
	db.Model(&entity.Driver{}).Where("name = ?", "Vijay Yadav").
		Update("status", entity.DriverStatusOffline)
	summary, err = statsSvc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.ActiveDrivers != 1 {
		t.Errorf("Expected 1 active driver, got %v", summary.ActiveDrivers)
	}
}

func TestExportWorkbook(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	logger := zap.NewNop()
	repos := repository.NewRepositories(db)

	freightSvc := NewFreightService(db, repos, logger, nil)
	statsSvc := NewStatsService(repos, logger)

	req := seedFreight(t, freightSvc, ctx, "Ramesh Kumar", 50)

	f, filename, err := statsSvc.ExportWorkbook(ctx)
	if err != nil {
		t.Fatalf("ExportWorkbook: %v", err)
	}
	defer f.Close()

	if !strings.HasPrefix(filename, "krishi-link-report-") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("Unexpected filename %q", filename)
	}
	if filename != "krishi-link-report-"+time.Now().Format("20060102")+".xlsx" {
		t.Errorf("Filename should carry today's date, got %q", filename)
	}

	rows, err := f.GetRows("Freight Requests")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header plus one row, got %d rows", len(rows))
	}
	if rows[1][0] != req.ID {
		t.Errorf("Expected first data cell %s, got %s", req.ID, rows[1][0])
	}

	if _, err := f.GetRows("B2B Quotes"); err != nil {
		t.Errorf("Expected quotes sheet: %v", err)
	}
}
