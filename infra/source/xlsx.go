package source

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kilianp07/rideslots/core/model"
)

// ReadXLSX reads a worksheet; sheet defaults to the first one. Date cells in
// current_time are stored by Excel as day serials and converted here.
func ReadXLSX(path, sheet string) (Table, error) {
	if _, err := os.Stat(path); err != nil {
		return Table{}, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, err
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return Table{}, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, err
	}
	if len(rows) == 0 {
		return Table{}, fmt.Errorf("sheet %q is empty", sheet)
	}

	t := Table{Header: rows[0]}
	timeCol := -1
	for i, h := range t.Header {
		if strings.TrimSpace(h) == ColCurrentTime {
			timeCol = i
		}
	}
	for _, rec := range rows[1:] {
		if blank(rec) {
			continue
		}
		row := make([]Cell, len(rec))
		for i, v := range rec {
			if i == timeCol {
				v = excelTime(v)
			}
			row[i] = TextCell(v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// excelTime rewrites a day serial as ISO-8601 and leaves text untouched.
func excelTime(v string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return v
	}
	t, err := excelSerialToTime(serial)
	if err != nil {
		return v
	}
	return model.FormatTimestamp(t)
}

func excelSerialToTime(serial float64) (time.Time, error) {
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, err
	}
	return t.Round(time.Millisecond).UTC(), nil
}
