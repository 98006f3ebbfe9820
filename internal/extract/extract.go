// Package extract parses a detention statistics workbook into a facility
// snapshot.
package extract

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/lockdown-systems/icewatch/internal/model"
)

// ExpectedColumns are the workbook headers mapped into FacilityRecord
// fields, in the order they appear on the Facilities sheet.
var ExpectedColumns = []string{
	"Name", "Address", "City", "State", "Zip",
	"Male Crim", "Male Non-Crim", "Female Crim", "Female Non-Crim",
	"ICE Threat Level 1", "ICE Threat Level 2", "ICE Threat Level 3",
	"No ICE Threat Level",
}

// Options configures extraction.
type Options struct {
	SheetName string // facilities sheet, e.g. "Facilities FY25"
	HeaderRow int    // 1-based row carrying the column headers
}

// Extract reads the facilities sheet into a snapshot. A missing sheet or
// header row aborts with a descriptive error and emits no partial records.
// Rows with every cell blank are dropped; blank or unparseable numeric
// cells become null counts.
func Extract(path, sourceDate string, opts Options) (*model.Snapshot, error) {
	if opts.SheetName == "" {
		opts.SheetName = "Facilities FY25"
	}
	if opts.HeaderRow <= 0 {
		opts.HeaderRow = 7
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: open workbook %s", path)
	}

	sheet, ok := f.Sheet[opts.SheetName]
	if !ok {
		return nil, eris.Errorf("extract: sheet %q not found (have %s)",
			opts.SheetName, strings.Join(sheetNames(f), ", "))
	}
	if len(sheet.Rows) < opts.HeaderRow {
		return nil, eris.Errorf("extract: sheet %q has %d rows, header expected at row %d",
			opts.SheetName, len(sheet.Rows), opts.HeaderRow)
	}

	header := rowToStrings(sheet.Rows[opts.HeaderRow-1])
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}

	var missing []string
	for _, col := range ExpectedColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		zap.L().Warn("workbook is missing expected columns",
			zap.Strings("missing", missing),
			zap.Strings("available", header),
		)
	}

	var records []model.FacilityRecord
	for _, row := range sheet.Rows[opts.HeaderRow:] {
		cells := rowToStrings(row)
		if allBlank(cells) {
			continue
		}
		records = append(records, model.FacilityRecord{
			Name:             cellString(cells, colIdx, "Name"),
			Address:          cellString(cells, colIdx, "Address"),
			City:             cellString(cells, colIdx, "City"),
			State:            cellString(cells, colIdx, "State"),
			Zip:              cellString(cells, colIdx, "Zip"),
			MaleCrim:         cellNumber(cells, colIdx, "Male Crim"),
			MaleNonCrim:      cellNumber(cells, colIdx, "Male Non-Crim"),
			FemaleCrim:       cellNumber(cells, colIdx, "Female Crim"),
			FemaleNonCrim:    cellNumber(cells, colIdx, "Female Non-Crim"),
			ICEThreatLevel1:  cellNumber(cells, colIdx, "ICE Threat Level 1"),
			ICEThreatLevel2:  cellNumber(cells, colIdx, "ICE Threat Level 2"),
			ICEThreatLevel3:  cellNumber(cells, colIdx, "ICE Threat Level 3"),
			NoICEThreatLevel: cellNumber(cells, colIdx, "No ICE Threat Level"),
		})
	}

	zap.L().Info("extracted facilities",
		zap.String("workbook", path),
		zap.Int("count", len(records)),
	)

	return &model.Snapshot{
		Metadata: model.SnapshotMetadata{
			SourceFile:      path,
			SourceDate:      sourceDate,
			ExtractionDate:  time.Now().Format(time.RFC3339),
			TotalFacilities: len(records),
		},
		Facilities: records,
	}, nil
}

// Verify opens the workbook and logs its sheet census, failing when the
// file is not a readable XLSX.
func Verify(path string) error {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return eris.Wrapf(err, "extract: verify %s", path)
	}

	zap.L().Info("workbook verified", zap.String("path", path), zap.Int("sheets", len(f.Sheets)))
	for _, sheet := range f.Sheets {
		cols := 0
		if len(sheet.Rows) > 0 {
			cols = len(sheet.Rows[0].Cells)
		}
		zap.L().Info("sheet",
			zap.String("name", sheet.Name),
			zap.Int("rows", len(sheet.Rows)),
			zap.Int("cols", cols),
		)
	}
	return nil
}

func sheetNames(f *xlsx.File) []string {
	names := make([]string, 0, len(f.Sheets))
	for _, s := range f.Sheets {
		names = append(names, s.Name)
	}
	return names
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellString(cells []string, colIdx map[string]int, col string) string {
	i, ok := colIdx[col]
	if !ok || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func cellNumber(cells []string, colIdx map[string]int, col string) *float64 {
	s := cellString(cells, colIdx, col)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
