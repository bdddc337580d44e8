package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"homefinder-backend/internal/domains/property/model"
)

const exportSheet = "Properties"

var exportHeaders = []string{
	"ID",
	"Title",
	"City",
	"Location",
	"Type",
	"Bedrooms",
	"Bathrooms",
	"Area",
	"Furnishing",
	"Price",
	"Deposit",
	"Status",
	"Available From",
	"Amenities",
	"Images",
	"Created At",
}

func (s *propertyService) ExportMyProperties(ctx context.Context, ownerID uuid.UUID) (*excelize.File, error) {
	properties, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	f, err := buildPropertiesWorkbook(properties)
	if err != nil {
		return nil, fmt.Errorf("failed to build excel file: %w", err)
	}
	return f, nil
}

func buildPropertiesWorkbook(properties []*model.Property) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	// Row 1: Header
	for colIdx, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", lastCol+"1", headerStyle)
	}

	// Data rows start at row 2
	for i, p := range properties {
		row := []interface{}{
			p.ID.String(),
			p.Title,
			p.City,
			p.Location,
			p.PropertyType,
			p.Bedrooms,
			p.Bathrooms,
			p.Area.InexactFloat64(),
			p.Furnishing,
			p.Price.InexactFloat64(),
			p.Deposit.InexactFloat64(),
			p.Status,
			p.AvailableFrom.Format("2006-01-02"),
			strings.Join(p.Amenities, ", "),
			strings.Join(p.Images, "|"),
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(exportSheet, "A", lastCol, 18)

	return f, nil
}
