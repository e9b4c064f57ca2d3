// internal/output/excel.go
package output

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet names used by ExcelWriter.
const (
	ExcelProfileSheet = "Profiles"
	ExcelPostSheet    = "Posts"
)

var (
	excelProfileHeader = []string{"run_id", "scraped_at", "username", "bio", "followers", "following", "likes", "verified", "error"}
	excelPostHeader    = []string{"run_id", "username", "position", "post_id", "likes", "comments", "shares", "views", "description", "hashtags", "timestamp", "error"}
)

// ExcelWriter collects runs into a workbook with a profile sheet and a post
// sheet. The file is written on Close.
type ExcelWriter struct {
	file     *excelize.File
	filePath string
	rows     map[string]int
}

// NewExcelWriter creates a new Excel writer
func NewExcelWriter(filePath string) (*ExcelWriter, error) {
	if filePath == "" {
		return nil, fmt.Errorf("Excel file path is required")
	}

	file := excelize.NewFile()
	if err := file.SetSheetName(file.GetSheetName(0), ExcelProfileSheet); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(ExcelPostSheet); err != nil {
		return nil, err
	}

	w := &ExcelWriter{
		file:     file,
		filePath: filePath,
		rows:     map[string]int{ExcelProfileSheet: 1, ExcelPostSheet: 1},
	}
	if err := w.writeHeaders(ExcelProfileSheet, excelProfileHeader); err != nil {
		return nil, err
	}
	if err := w.writeHeaders(ExcelPostSheet, excelPostHeader); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *ExcelWriter) Write(_ context.Context, run Run) error {
	profile, posts := Flatten(run)

	if err := w.appendRow(ExcelProfileSheet, []interface{}{
		profile.RunID, profile.ScrapedAt, profile.Username, nullable(profile.Bio),
		nullable(profile.Followers), nullable(profile.Following), nullable(profile.Likes),
		nullable(profile.Verified), profile.Error,
	}); err != nil {
		return err
	}
	for _, p := range posts {
		if err := w.appendRow(ExcelPostSheet, []interface{}{
			p.RunID, profile.Username, p.Position, p.PostID,
			nullable(p.Likes), nullable(p.Comments), nullable(p.Shares), nullable(p.Views),
			nullable(p.Description), hashtagCell(p.Hashtags), nullable(p.Timestamp), p.Error,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Close saves the workbook
func (w *ExcelWriter) Close() error {
	if w.file == nil {
		return nil
	}
	defer func() {
		w.file.Close()
		w.file = nil
	}()

	for sheet, header := range map[string][]string{ExcelProfileSheet: excelProfileHeader, ExcelPostSheet: excelPostHeader} {
		last, _ := excelize.ColumnNumberToName(len(header))
		if err := w.file.SetColWidth(sheet, "A", last, 15); err != nil {
			return err
		}
		if err := w.file.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}
	if err := w.file.SaveAs(w.filePath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func (w *ExcelWriter) writeHeaders(sheet string, header []string) error {
	values := make([]interface{}, len(header))
	for i, h := range header {
		values[i] = h
	}
	if err := w.appendRow(sheet, values); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return w.file.SetCellStyle(sheet, "A1", last, style)
}

func (w *ExcelWriter) appendRow(sheet string, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, w.rows[sheet])
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row: %w", sheet, err)
	}
	w.rows[sheet]++
	return nil
}
