// Package holidays reads holiday lists from uploaded spreadsheets.
package holidays

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const maxUploadBytes = 5 << 20

type Entry struct {
	Name string
	Date string // YYYY-MM-DD
}

// Skipped describes a data row that could not be imported.
type Skipped struct {
	Row    int
	Reason string
}

type Result struct {
	Entries []Entry
	Skipped []Skipped
}

var (
	nameHeaders = []string{"name", "title", "holiday", "holiday name", "occasion"}
	dateHeaders = []string{"date", "holiday date"}
)

// ParseSheet reads the first sheet of an .xls or .xlsx file. The first row
// must name a holiday column and a date column.
func ParseSheet(reader io.Reader, filename string) (Result, error) {
	rows, err := readRows(reader, filename)
	if err != nil {
		return Result{}, err
	}

	header := rows[0]
	nameIdx, dateIdx := -1, -1
	for i, h := range header {
		key := normalizeHeader(h)
		if nameIdx < 0 && contains(nameHeaders, key) {
			nameIdx = i
		}
		if dateIdx < 0 && contains(dateHeaders, key) {
			dateIdx = i
		}
	}
	if nameIdx < 0 || dateIdx < 0 {
		return Result{}, errors.New("header row must include a holiday name column and a date column")
	}

	var res Result
	for i, row := range rows[1:] {
		rowNum := i + 2
		name := cellValue(row, nameIdx)
		rawDate := cellValue(row, dateIdx)
		if name == "" && rawDate == "" {
			continue
		}
		if name == "" {
			res.Skipped = append(res.Skipped, Skipped{Row: rowNum, Reason: "missing name"})
			continue
		}
		date, ok := NormalizeDate(rawDate)
		if !ok {
			res.Skipped = append(res.Skipped, Skipped{Row: rowNum, Reason: fmt.Sprintf("unreadable date %q", rawDate)})
			continue
		}
		res.Entries = append(res.Entries, Entry{Name: name, Date: date})
	}
	return res, nil
}

func readRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadBytes {
		return nil, errors.New("spreadsheet is larger than 5 MB")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("open xls: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, errors.New("no worksheet found")
		}
		rows := workbook.ReadAllCells(10000)
		if len(rows) == 0 {
			return nil, errors.New("worksheet is empty")
		}
		return rows, nil
	case ".xlsx", ".xlsm":
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, errors.New("no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, errors.New("worksheet is empty")
		}
		return rows, nil
	default:
		return nil, errors.New("upload an .xls or .xlsx file")
	}
}

func normalizeHeader(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(header)), " ")
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Day-first layouts come before month-first ones.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1-2-06",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Jan 2, 2006",
	"January 2, 2006",
	"Monday, January 2, 2006",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeDate returns value as YYYY-MM-DD. Excel serial numbers are
// accepted.
func NormalizeDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		// Plain years like 2025 are not serials.
		if serial >= 30000 && serial <= 80000 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return parsed.Format("2006-01-02"), true
			}
		}
		return "", false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02"), true
		}
	}
	return "", false
}
