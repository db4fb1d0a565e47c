package collateral

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/fundraiser/internal/scoring"
)

const matchesSheet = "Matches"

// Columns is the header shared by the CSV and spreadsheet exports.
var Columns = []string{
	"rank", "investor", "fund",
	"fit_score", "stage_fit", "sector_fit", "geo_fit", "momentum",
	"why_now", "warm_paths", "urls", "email_draft",
}

// Rows flattens matches into export rows, ranked from 1.
func Rows(matches []scoring.Match) [][]string {
	rows := make([][]string, 0, len(matches))
	for i, m := range matches {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			m.Investor.Name,
			m.Investor.Fund,
			FormatScore(m.Score.FitScore),
			FormatScore(m.Score.StageFit),
			FormatScore(m.Score.SectorFit),
			FormatScore(m.Score.GeoFit),
			FormatScore(m.Score.Momentum),
			m.Score.Rationale,
			strings.Join(m.Investor.WarmPaths, "; "),
			strings.Join(m.Investor.URLs, "; "),
			strings.ReplaceAll(m.EmailDraft, "\n", " "),
		})
	}
	return rows
}

// CSV writes the header and one row per match.
func CSV(w io.Writer, matches []scoring.Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(Rows(matches)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// XLSX builds a workbook with a single sheet holding the export rows.
// Numeric columns are stored as numbers.
func XLSX(matches []scoring.Match) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", matchesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, name := range Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(matchesSheet, cell, name); err != nil {
			f.Close()
			return nil, err
		}
	}

	for row, values := range Rows(matches) {
		m := matches[row]
		numeric := map[int]any{
			0: row + 1,
			3: m.Score.FitScore,
			4: m.Score.StageFit,
			5: m.Score.SectorFit,
			6: m.Score.GeoFit,
			7: m.Score.Momentum,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			var v any = value
			if n, ok := numeric[col]; ok {
				v = n
			}
			if err := f.SetCellValue(matchesSheet, cell, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}
