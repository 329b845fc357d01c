// Package sheet reads stream titles from, and writes the broadcast schedule
// to, xlsx spreadsheets.
package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TitleColumn is the header of the column holding stream titles.
const TitleColumn = "name"

// StartLayout is the format of the Start Time column.
const StartLayout = "2006-01-02 15:04"

// Header is the first row of the schedule sheet.
var Header = []string{"Video Name", "YouTube Title", "Start Time", "Video URL", "RTMP URL"}

// Row is one scheduled video in the summary sheet.
type Row struct {
	VideoName    string
	YouTubeTitle string
	StartTime    string
	VideoURL     string
	RTMPURL      string
}

func (r Row) cells() []any {
	return []any{r.VideoName, r.YouTubeTitle, r.StartTime, r.VideoURL, r.RTMPURL}
}

// ReadTitles returns the TitleColumn values of the first sheet in row order.
func ReadTitles(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	col := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == TitleColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s: no %q column", path, TitleColumn)
	}

	var titles []string
	for _, row := range rows[1:] {
		if col < len(row) {
			titles = append(titles, row[col])
		} else {
			titles = append(titles, "")
		}
	}
	return titles, nil
}

// WriteSchedule writes Header and rows to a new workbook at path.
func WriteSchedule(path string, rows []Row) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	const name = "Sheet1"
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, r.cells()); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
