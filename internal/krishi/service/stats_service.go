package service

import (
	"context"
	"fmt"
	"time"

	"github.com/krishilink/krishi/internal/krishi/entity"
	"github.com/krishilink/krishi/internal/krishi/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// StatsService serves the ministry dashboard. Every number is derived from
// the registries at query time; there are no separately mutated counters to
// drift.
type StatsService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewStatsService(repos *repository.Repositories, logger *zap.Logger) *StatsService {
	return &StatsService{repos: repos, logger: logger}
}

// Summary is the dashboard aggregate block.
type Summary struct {
	TotalSavings  float64 `json:"total_savings"`
	TotalCO2Kg    float64 `json:"total_co2_kg"`
	TotalFarmers  int64   `json:"total_farmers"`
	ActiveDrivers int64   `json:"active_drivers"`
}

func (s *StatsService) Summary(ctx context.Context) (*Summary, error) {
	totals, err := s.repos.Freight.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate freight totals: %w", err)
	}
	active, err := s.repos.Driver.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count active drivers: %w", err)
	}
	return &Summary{
		TotalSavings:  totals.TotalSavings,
		TotalCO2Kg:    totals.TotalCO2Kg,
		TotalFarmers:  totals.FarmerCount,
		ActiveDrivers: active,
	}, nil
}

// Leaderboard lists drivers by completed jobs.
func (s *StatsService) Leaderboard(ctx context.Context) ([]entity.Driver, error) {
	return s.repos.Driver.List(ctx)
}

var freightExportHeaders = []string{
	"ID", "Farmer", "Origin", "Destination", "Weight (kg)", "Distance (km)",
	"Standard Price", "Krishi Price", "Savings", "CO2 Saved (kg)", "Status", "Driver",
}

var quoteExportHeaders = []string{
	"ID", "Buyer", "Farmer", "Commodity", "Quantity (t)", "Status",
	"Offer Price/t", "Offer Quantity (t)",
}

// ExportWorkbook renders the freight and quote books into an .xlsx file
// for the ministry dashboard download.
func (s *StatsService) ExportWorkbook(ctx context.Context) (*excelize.File, string, error) {
	freight, err := s.repos.Freight.List(ctx, "", "")
	if err != nil {
		return nil, "", fmt.Errorf("list freight: %w", err)
	}
	quotes, err := s.repos.Quote.List(ctx, "", "")
	if err != nil {
		return nil, "", fmt.Errorf("list quotes: %w", err)
	}

	f := excelize.NewFile()
	freightSheet := "Freight Requests"
	f.SetSheetName("Sheet1", freightSheet)
	quoteSheet := "B2B Quotes"
	f.NewSheet(quoteSheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range freightExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(freightSheet, col+"1", h)
		f.SetCellStyle(freightSheet, col+"1", col+"1", boldStyle)
	}
	for row, r := range freight {
		driver := ""
		if r.DriverName != nil {
			driver = *r.DriverName
		}
		values := []interface{}{
			r.ID, r.FarmerName, r.OriginVillage, r.DestinationMarket,
			r.WeightKg, r.DistanceKm, r.StandardPrice, r.DiscountedPrice,
			r.Savings, r.CO2SavedKg, string(r.Status), driver,
		}
		for i, v := range values {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetCellValue(freightSheet, fmt.Sprintf("%s%d", col, row+2), v)
		}
	}

	for i, h := range quoteExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(quoteSheet, col+"1", h)
		f.SetCellStyle(quoteSheet, col+"1", col+"1", boldStyle)
	}
	for row, q := range quotes {
		values := []interface{}{
			q.ID, q.BuyerName, q.FarmerName, q.Commodity, q.QuantityTons,
			string(q.Status), q.OfferPricePerTon, q.OfferQuantityTons,
		}
		for i, v := range values {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetCellValue(quoteSheet, fmt.Sprintf("%s%d", col, row+2), v)
		}
	}

	filename := fmt.Sprintf("krishi-link-report-%s.xlsx", time.Now().Format("20060102"))
	s.logger.Info("export generated",
		zap.Int("freight_rows", len(freight)),
		zap.Int("quote_rows", len(quotes)),
	)
	return f, filename, nil
}
