package attendance

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name string
		rec  backend.AttendanceRecord
		want Status
	}{
		{"worked day", backend.AttendanceRecord{LoginTime: "2025-04-01 09:00:00", LogoutTime: "2025-04-01 18:00:00"}, Status{}},
		{"leave", backend.AttendanceRecord{Note: "Sick Leave"}, Status{Leave: true, Label: "Leave", Tone: ToneLeave}},
		{"lowercase leave", backend.AttendanceRecord{Note: "on leave"}, Status{Leave: true, Label: "Leave", Tone: ToneLeave}},
		{"leave with times is not leave", backend.AttendanceRecord{Note: "half day leave", LoginTime: "09:00"}, Status{}},
		{"holiday", backend.AttendanceRecord{Note: "Diwali"}, Status{Holiday: true, Label: "Diwali", Tone: ToneHoliday}},
		{"weekend holiday note", backend.AttendanceRecord{Note: "Holiday (2nd/4th Saturday or Sunday)"}, Status{Weekend: true, Label: "Weekend", Tone: ToneWeekend}},
		{"worked on sunday", backend.AttendanceRecord{Note: "Sunday shift", LoginTime: "09:00", LogoutTime: "12:00"}, Status{Weekend: true, Label: "Weekend", Tone: ToneWeekend}},
		{"leave on saturday", backend.AttendanceRecord{Note: "Leave Saturday"}, Status{Weekend: true, Leave: true, Label: "Leave", Tone: ToneWeekend}},
		{"blank", backend.AttendanceRecord{}, Status{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.rec))
		})
	}
}

func TestOnLeaveToday(t *testing.T) {
	assert.False(t, OnLeaveToday(nil))
	assert.True(t, OnLeaveToday(&backend.TodayRecord{Note: "Casual Leave"}))
	assert.False(t, OnLeaveToday(&backend.TodayRecord{Note: "Casual Leave", LoginTime: "09:00"}))
	assert.False(t, OnLeaveToday(&backend.TodayRecord{}))
}

func TestPanelState(t *testing.T) {
	assert.Equal(t, PanelCheckIn, PanelState(backend.CheckStatus{}))
	assert.Equal(t, PanelCheckIn, PanelState(backend.CheckStatus{Status: true, Record: &backend.TodayRecord{}}))
	assert.Equal(t, PanelCheckOut, PanelState(backend.CheckStatus{Status: true, Record: &backend.TodayRecord{LoginTime: "2025-04-01 09:00:00"}}))
	assert.Equal(t, PanelDone, PanelState(backend.CheckStatus{Status: true, Record: &backend.TodayRecord{LoginTime: "2025-04-01 09:00:00", LogoutTime: "2025-04-01 17:00:00"}}))
	assert.Equal(t, "check-out", PanelCheckOut.String())
}

func TestHoursWorked(t *testing.T) {
	assert.Equal(t, "8h 30m", HoursWorked("2025-04-01 09:15:00", "2025-04-01 17:45:00"))
	assert.Equal(t, "0h 5m", HoursWorked("2025-04-01T09:00:00Z", "2025-04-01T09:05:00Z"))
	assert.Equal(t, "Invalid Time", HoursWorked("2025-04-01 17:00:00", "2025-04-01 09:00:00"))
	assert.Equal(t, "Invalid Time", HoursWorked("2025-04-01 09:00:00", "2025-04-01 09:00:00"))
	assert.Equal(t, "N/A", HoursWorked("2025-04-01 09:00:00", ""))
	assert.Equal(t, "N/A", HoursWorked("", ""))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "10/04/2025", FormatDate("2025-04-10"))
	assert.Equal(t, "10/04/2025", FormatDate("2025-04-10T00:00:00Z"))
	assert.Equal(t, "junk", FormatDate("junk"))
	assert.Equal(t, "09:05 AM", FormatClock("2025-04-10 09:05:00"))
	assert.Equal(t, "06:30 PM", FormatClock("2025-04-10 18:30:00"))
	assert.Equal(t, "-", FormatClock(""))
	assert.Equal(t, "Thursday", Weekday("2025-04-10"))
}

func TestFillMonth(t *testing.T) {
	// April 2025 starts on a Tuesday: days 12 and 13 fall in week 2, 26 and 27 in week 4.
	records := []backend.AttendanceRecord{
		{ID: "5", Date: "2025-04-01", LoginTime: "2025-04-01 09:00:00"},
		{ID: "6", Date: "2025-04-12", Note: "Worked"},
	}
	filled := FillMonth(records, 2025, time.April)
	require.Len(t, filled, 30)

	assert.Equal(t, backend.FlexID("5"), filled[0].ID)
	assert.Equal(t, "Tuesday", filled[0].Day)
	assert.Equal(t, "Worked", filled[11].Note, "existing record on a 2nd-week Saturday is kept")
	assert.Equal(t, weekendHolidayNote, filled[12].Note)
	assert.Equal(t, weekendHolidayNote, filled[25].Note)
	assert.Equal(t, weekendHolidayNote, filled[26].Note)
	assert.Empty(t, filled[4].Note, "first-week Saturday stays blank")
	assert.Empty(t, filled[18].Note, "third-week Saturday stays blank")
	assert.Equal(t, "2025-04-30", filled[29].Date)
}

func TestSortByDate(t *testing.T) {
	records := []backend.AttendanceRecord{{Date: "2025-04-03"}, {Date: "2025-04-01"}, {Date: "2025-04-02 00:00:00"}}
	SortByDate(records)
	assert.Equal(t, "2025-04-01", records[0].Date)
	assert.Equal(t, "2025-04-03", records[2].Date)
}

func TestParseMonth(t *testing.T) {
	now := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	y, m, err := ParseMonth("", now)
	require.NoError(t, err)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.July, m)

	y, m, err = ParseMonth("2024-02", now)
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.February, m)

	_, _, err = ParseMonth("02/2024", now)
	assert.Error(t, err)
}

func TestBuildRows(t *testing.T) {
	now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	rows := BuildRows([]backend.AttendanceRecord{
		{Date: "2025-04-02", LoginTime: "2025-04-02 09:00:00", EOD: "did things"},
		{Date: "2025-04-03", Note: "Eid"},
	}, now)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsToday)
	assert.True(t, rows[0].HasEOD)
	assert.Equal(t, "N/A", rows[0].Hours)
	assert.Equal(t, "Wednesday", rows[0].Day)
	assert.Equal(t, "N/A", rows[1].Hours, "a day without times still shows a placeholder")
	assert.Equal(t, "Eid", rows[1].Status.Label)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Ravi Kumar Apr 2025", SheetName("Ravi Kumar", 2025, time.April))
	assert.Equal(t, "Attendance Jan 2024", SheetName("", 2024, time.January))
	long := SheetName("A very long employee name that overflows", 2025, time.May)
	assert.LessOrEqual(t, len(long), 31)
	assert.Equal(t, "a b Jun 2025", SheetName("a/b", 2025, time.June))
}

func TestExportXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := ExportXLSX(&buf, "Ravi Apr 2025", []backend.AttendanceRecord{
		{Date: "2025-04-01", LoginTime: "2025-04-01 09:00:00", LogoutTime: "2025-04-01 17:30:00", EOD: "reviewed PRs"},
		{Date: "2025-04-02", Note: "Sick Leave"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "Ravi Apr 2025", f.GetSheetName(0))
	rows, err := f.GetRows("Ravi Apr 2025")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])
	assert.Equal(t, []string{"01/04/2025", "09:00 AM", "05:30 PM", "", "", "reviewed PRs", "8h 30m"}, rows[1])
	assert.Equal(t, "Leave", rows[2][3])
	require.Len(t, rows[2], len(exportHeaders))
	assert.Equal(t, "N/A", rows[2][6])
}
