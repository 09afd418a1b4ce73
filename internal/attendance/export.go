package attendance

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
)

var exportHeaders = []string{"Date", "Login", "Logout", "Status", "Note", "EOD", "Hours"}

var toneFills = map[Tone]string{
	ToneWeekend: "FDE2E2",
	ToneLeave:   "FEF3C7",
	ToneHoliday: "DBEAFE",
}

// SheetName builds the sheet title for a person and month, within Excel's
// 31 character limit.
func SheetName(name string, year int, month time.Month) string {
	title := strings.TrimSpace(name)
	if title == "" {
		title = "Attendance"
	}
	for _, ch := range []string{":", "\\", "/", "?", "*", "[", "]"} {
		title = strings.ReplaceAll(title, ch, " ")
	}
	suffix := fmt.Sprintf(" %s %d", month.String()[:3], year)
	if len(title)+len(suffix) > 31 {
		title = title[:31-len(suffix)]
	}
	return title + suffix
}

// ExportXLSX writes records as a single-sheet workbook.
func ExportXLSX(w io.Writer, sheet string, records []backend.AttendanceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Attendance"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	toneStyles := map[Tone]int{}
	for tone, color := range toneFills {
		id, err := f.NewStyle(&excelize.Style{Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}})
		if err != nil {
			return err
		}
		toneStyles[tone] = id
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, rec := range records {
		row := i + 2
		st := DeriveStatus(rec)
		values := []any{
			FormatDate(rec.Date),
			FormatClock(rec.LoginTime),
			FormatClock(rec.LogoutTime),
			st.Label,
			rec.Note,
			rec.EOD,
			HoursWorked(rec.LoginTime, rec.LogoutTime),
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
		if style, ok := toneStyles[st.Tone]; ok {
			end, _ := excelize.CoordinatesToCellName(len(exportHeaders), row)
			if err := f.SetCellStyle(sheet, start, end, style); err != nil {
				return err
			}
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "E", "F", 40)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
