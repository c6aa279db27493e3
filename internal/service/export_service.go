package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/buildstok/inventory/backend-go/internal/domain"
	"github.com/buildstok/inventory/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const forecastSheet = "Forecast"

// ExportService renders forecast runs as XLSX reports and optionally archives
// them to object storage.
type ExportService struct {
	forecasts *ForecastService
	store     storage.ObjectStorage
	dir       string
}

// NewExportService creates an export service. store may be nil, in which case
// reports are only written locally.
func NewExportService(forecasts *ForecastService, store storage.ObjectStorage, dir string) *ExportService {
	return &ExportService{forecasts: forecasts, store: store, dir: dir}
}

// ExportForecastXLSX runs a forecast, writes it to a timestamped XLSX file
// under the export directory and uploads it when object storage is
// configured. It returns the local file path.
func (s *ExportService) ExportForecastXLSX(ctx context.Context) (string, error) {
	records, err := s.forecasts.GetForecasts(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to generate forecasts for export: %w", err)
	}

	f, err := BuildForecastWorkbook(records)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed creating export directory %s: %w", s.dir, err)
	}

	filename := fmt.Sprintf("forecast_%s.xlsx", time.Now().Format("20060102_150405"))
	path := filepath.Join(s.dir, filename)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed writing export %s: %w", path, err)
	}

	if s.store != nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed reading export for upload: %w", err)
		}
		key := "exports/" + filename
		if err := s.store.UploadObject(ctx, key, data); err != nil {
			// The local report is still valid; archiving is best-effort.
			log.Warn().Err(err).Str("key", key).Msg("failed to upload forecast export")
		}
	}

	return path, nil
}

// BuildForecastWorkbook renders forecast records into an XLSX workbook with
// one row per material.
func BuildForecastWorkbook(records []domain.ForecastRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", forecastSheet); err != nil {
		return nil, fmt.Errorf("failed naming sheet: %w", err)
	}

	headers := []string{
		"Material ID", "Name", "Unit", "Current Stock", "Daily Rate",
		"Trend Factor", "Stockout Date", "Days Until Stockout",
		"Reorder Point", "Recommended Order Qty", "Needs Reorder",
		"Urgency", "Confidence",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(forecastSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, r := range records {
		stockoutDate := ""
		if r.PredictedStockoutDate != nil {
			stockoutDate = r.PredictedStockoutDate.Format("2006-01-02")
		}
		daysUntil := ""
		if r.DaysUntilStockout != nil {
			daysUntil = fmt.Sprintf("%d", *r.DaysUntilStockout)
		}

		values := []interface{}{
			r.MaterialID, r.MaterialName, r.Unit, r.CurrentStock,
			r.DailyConsumptionRate, r.TrendFactor, stockoutDate, daysUntil,
			r.ReorderPoint, r.RecommendedOrderQty, r.NeedsReorder,
			string(r.Urgency), string(r.Confidence),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(forecastSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
