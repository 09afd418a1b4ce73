// Package attendance derives the display state of attendance rows.
//
// The status of a row is never stored by the backend; it is read off the
// presence of login/logout times and keywords in the note.
package attendance

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
)

type Tone string

const (
	ToneNone    Tone = ""
	ToneWeekend Tone = "weekend"
	ToneLeave   Tone = "leave"
	ToneHoliday Tone = "holiday"
)

type Status struct {
	Weekend bool
	Leave   bool
	Holiday bool
	Label   string
	Tone    Tone
}

func DeriveStatus(rec backend.AttendanceRecord) Status {
	note := strings.TrimSpace(rec.Note)
	noTimes := strings.TrimSpace(rec.LoginTime) == "" && strings.TrimSpace(rec.LogoutTime) == ""

	st := Status{
		Weekend: strings.Contains(note, "Saturday") || strings.Contains(note, "Sunday"),
	}
	st.Leave = (strings.Contains(note, "Leave") || strings.Contains(note, "leave")) && noTimes
	st.Holiday = noTimes && note != "" && !st.Weekend && !st.Leave

	switch {
	case st.Leave:
		st.Label = "Leave"
	case st.Holiday:
		st.Label = note
	case st.Weekend:
		st.Label = "Weekend"
	}

	switch {
	case st.Weekend:
		st.Tone = ToneWeekend
	case st.Leave:
		st.Tone = ToneLeave
	case st.Holiday:
		st.Tone = ToneHoliday
	}
	return st
}

// OnLeaveToday drives the "you are on leave" banner on the check-in panel.
func OnLeaveToday(rec *backend.TodayRecord) bool {
	if rec == nil {
		return false
	}
	return strings.TrimSpace(rec.Note) != "" &&
		strings.TrimSpace(rec.LoginTime) == "" &&
		strings.TrimSpace(rec.LogoutTime) == ""
}

type Panel int

const (
	PanelCheckIn Panel = iota
	PanelCheckOut
	PanelDone
)

func (p Panel) String() string {
	switch p {
	case PanelCheckOut:
		return "check-out"
	case PanelDone:
		return "done"
	default:
		return "check-in"
	}
}

func PanelState(status backend.CheckStatus) Panel {
	if !status.Status || status.Record == nil || strings.TrimSpace(status.Record.LoginTime) == "" {
		return PanelCheckIn
	}
	if strings.TrimSpace(status.Record.LogoutTime) == "" {
		return PanelCheckOut
	}
	return PanelDone
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000000Z",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"15:04:05",
	"15:04",
}

// ParseTimestamp reads the time formats the backend emits.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func HoursWorked(login, logout string) string {
	in, okIn := ParseTimestamp(login)
	out, okOut := ParseTimestamp(logout)
	if !okIn || !okOut {
		return "N/A"
	}
	if !out.After(in) {
		return "Invalid Time"
	}
	total := int(out.Sub(in).Minutes())
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}

// FormatClock renders a timestamp as "09:05 AM", or "-" when absent.
func FormatClock(value string) string {
	t, ok := ParseTimestamp(value)
	if !ok {
		return "-"
	}
	return t.Format("03:04 PM")
}

// FormatDate renders YYYY-MM-DD as dd/mm/yyyy.
func FormatDate(value string) string {
	t, err := time.Parse("2006-01-02", dateKey(value))
	if err != nil {
		return value
	}
	return t.Format("02/01/2006")
}

func Weekday(value string) string {
	t, err := time.Parse("2006-01-02", dateKey(value))
	if err != nil {
		return ""
	}
	return t.Weekday().String()
}

func dateKey(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 10 {
		return value[:10]
	}
	return value
}

const weekendHolidayNote = "Holiday (2nd/4th Saturday or Sunday)"

// FillMonth returns one row per day of the month. Existing records are kept;
// a missing Saturday or Sunday in the 2nd or 4th week becomes a holiday row.
func FillMonth(records []backend.AttendanceRecord, year int, month time.Month) []backend.AttendanceRecord {
	byDate := make(map[string]backend.AttendanceRecord, len(records))
	for _, rec := range records {
		byDate[dateKey(rec.Date)] = rec
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	out := make([]backend.AttendanceRecord, 0, days)
	for day := 1; day <= days; day++ {
		d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		key := d.Format("2006-01-02")
		if rec, ok := byDate[key]; ok {
			if rec.Day == "" {
				rec.Day = d.Weekday().String()
			}
			out = append(out, rec)
			continue
		}
		row := backend.AttendanceRecord{
			ID:   backend.FlexID("fill-" + key),
			Date: key,
			Day:  d.Weekday().String(),
		}
		week := (day-1)/7 + 1
		weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		if weekend && (week == 2 || week == 4) {
			row.Note = weekendHolidayNote
		}
		out = append(out, row)
	}
	return out
}

func SortByDate(records []backend.AttendanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return dateKey(records[i].Date) < dateKey(records[j].Date)
	})
}

// ParseMonth reads "YYYY-MM". A blank value means the month containing now.
func ParseMonth(value string, now time.Time) (int, time.Month, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return 0, 0, fmt.Errorf("month must look like 2025-04: %w", err)
	}
	return t.Year(), t.Month(), nil
}

// Row is a record prepared for the attendance table.
type Row struct {
	Record  backend.AttendanceRecord
	Date    string
	Day     string
	Login   string
	Logout  string
	Hours   string
	Status  Status
	HasEOD  bool
	IsToday bool
}

func BuildRows(records []backend.AttendanceRecord, now time.Time) []Row {
	todayKey := now.Format("2006-01-02")
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		day := rec.Day
		if day == "" {
			day = Weekday(rec.Date)
		}
		rows = append(rows, Row{
			Record:  rec,
			Date:    FormatDate(rec.Date),
			Day:     day,
			Login:   FormatClock(rec.LoginTime),
			Logout:  FormatClock(rec.LogoutTime),
			Hours:   HoursWorked(rec.LoginTime, rec.LogoutTime),
			Status:  DeriveStatus(rec),
			HasEOD:  strings.TrimSpace(rec.EOD) != "",
			IsToday: dateKey(rec.Date) == todayKey,
		})
	}
	return rows
}
