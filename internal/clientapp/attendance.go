package clientapp

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ritikrathore0011/Employee-Management/internal/attendance"
	"github.com/ritikrathore0011/Employee-Management/internal/backend"
)

func (s *server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rec := s.current(r)
	data := s.basePage(r, "Dashboard", "dashboard")
	if rec.IsAdmin() {
		summary, err := s.api.DashboardSummary(r.Context(), rec.AccessToken)
		if err != nil {
			s.loadFailed(w, r, err, "dashboard")
			return
		}
		data.AdminSummary = &summary
	} else {
		summary, err := s.api.UserDashboard(r.Context(), rec.AccessToken)
		if err != nil {
			s.loadFailed(w, r, err, "dashboard")
			return
		}
		data.UserSummary = &summary
	}
	s.render(w, "dashboard", data)
}

func (s *server) attendancePage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rec := s.current(r)
	now := s.now()
	year, month, err := attendance.ParseMonth(r.URL.Query().Get("month"), now)
	if err != nil {
		redirectWith(w, r, "/attendance", "error", "Pick a valid month")
		return
	}

	status, err := s.api.CheckStatus(r.Context(), rec.AccessToken)
	if err != nil {
		s.loadFailed(w, r, err, "attendance status")
		return
	}
	records, err := s.api.Records(r.Context(), rec.AccessToken, year, int(month))
	if err != nil {
		s.loadFailed(w, r, err, "attendance records")
		return
	}
	attendance.SortByDate(records.Records)

	data := s.basePage(r, "Attendance", "attendance")
	data.Panel = attendance.PanelState(status).String()
	data.OnLeave = attendance.OnLeaveToday(status.Record)
	if status.Record != nil {
		data.TodayNote = status.Record.Note
	}
	data.LogID = status.LogID.String()
	data.Month = fmt.Sprintf("%04d-%02d", year, int(month))
	data.Rows = attendance.BuildRows(records.Records, now)
	data.Summary = records.Summary.Original
	s.render(w, "attendance", data)
}

func (s *server) checkIn(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	rec := s.current(r)
	resp, err := s.api.CheckIn(r.Context(), rec.AccessToken)
	if err != nil {
		s.actionFailed(w, r, err, "/attendance")
		return
	}
	redirectWith(w, r, "/attendance", "msg", messageOr(resp.Message, "Checked in"))
}

func (s *server) checkOut(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	rec := s.current(r)
	logID := strings.TrimSpace(r.FormValue("log_id"))
	if logID == "" {
		redirectWith(w, r, "/attendance", "error", "No open check-in to close")
		return
	}
	note := strings.TrimSpace(r.FormValue("note"))
	eod := strings.TrimSpace(r.FormValue("eod"))
	if err := s.api.CheckOut(r.Context(), rec.AccessToken, backend.FlexID(logID), note, eod); err != nil {
		s.actionFailed(w, r, err, "/attendance")
		return
	}
	redirectWith(w, r, "/attendance", "msg", "Checked out")
}

func (s *server) exportOwnAttendance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rec := s.current(r)
	year, month, err := attendance.ParseMonth(r.URL.Query().Get("month"), s.now())
	if err != nil {
		redirectWith(w, r, "/attendance", "error", "Pick a valid month")
		return
	}
	records, err := s.api.Records(r.Context(), rec.AccessToken, year, int(month))
	if err != nil {
		s.loadFailed(w, r, err, "attendance records")
		return
	}
	attendance.SortByDate(records.Records)
	writeWorkbook(w, rec.Name, year, month, records.Records)
}

// employeeRoutes serves /employees/{id}/attendance, its export, and
// /employees/{id}/summary.
func (s *server) employeeRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/employees/"), "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := backend.FlexID(parts[0])
	if id.Int64() <= 0 {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "attendance":
		s.employeeAttendance(w, r, id, false)
	case len(parts) == 3 && parts[1] == "attendance" && parts[2] == "export":
		s.employeeAttendance(w, r, id, true)
	case len(parts) == 2 && parts[1] == "summary":
		s.employeeSummary(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (s *server) findEmployee(r *http.Request, id backend.FlexID) (backend.Employee, bool, error) {
	list, err := s.api.Employees(r.Context(), s.current(r).AccessToken)
	if err != nil {
		return backend.Employee{}, false, err
	}
	for _, e := range list {
		if e.ID == id {
			return e, true, nil
		}
	}
	return backend.Employee{}, false, nil
}

func (s *server) employeeAttendance(w http.ResponseWriter, r *http.Request, id backend.FlexID, export bool) {
	rec := s.current(r)
	now := s.now()
	back := "/employees/" + id.String() + "/attendance"
	year, month, err := attendance.ParseMonth(r.URL.Query().Get("month"), now)
	if err != nil {
		redirectWith(w, r, back, "error", "Pick a valid month")
		return
	}
	emp, ok, err := s.findEmployee(r, id)
	if err != nil {
		s.loadFailed(w, r, err, "employee")
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	sheet, err := s.api.DetailedSheet(r.Context(), rec.AccessToken, id.Int64(), year, int(month))
	if err != nil {
		s.loadFailed(w, r, err, "attendance sheet")
		return
	}
	filled := attendance.FillMonth(sheet.Records, year, month)
	if export {
		writeWorkbook(w, emp.Name, year, month, filled)
		return
	}

	data := s.basePage(r, emp.Name+" attendance", "employees")
	data.Subject = emp.Name
	data.SubjectID = id.String()
	data.Month = fmt.Sprintf("%04d-%02d", year, int(month))
	data.Rows = attendance.BuildRows(filled, now)
	data.Summary = sheet.Summary.Original
	s.render(w, "employee_attendance", data)
}

func (s *server) employeeSummary(w http.ResponseWriter, r *http.Request, id backend.FlexID) {
	rec := s.current(r)
	back := "/employees/" + id.String() + "/summary"
	year, month, err := attendance.ParseMonth(r.URL.Query().Get("month"), s.now())
	if err != nil {
		redirectWith(w, r, back, "error", "Pick a valid month")
		return
	}
	emp, ok, err := s.findEmployee(r, id)
	if err != nil {
		s.loadFailed(w, r, err, "employee")
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	summary, err := s.api.MonthSummary(r.Context(), rec.AccessToken, id.Int64(), year, int(month))
	if err != nil {
		s.loadFailed(w, r, err, "summary")
		return
	}

	data := s.basePage(r, emp.Name+" summary", "employees")
	data.Subject = emp.Name
	data.SubjectID = id.String()
	data.Month = fmt.Sprintf("%04d-%02d", year, int(month))
	data.Summary = summary
	s.render(w, "employee_summary", data)
}

func writeWorkbook(w http.ResponseWriter, name string, year int, month time.Month, records []backend.AttendanceRecord) {
	var buf bytes.Buffer
	if err := attendance.ExportXLSX(&buf, attendance.SheetName(name, year, month), records); err != nil {
		log.Printf("build attendance workbook: %v", err)
		http.Error(w, "unable to build workbook", http.StatusInternalServerError)
		return
	}
	filename := fmt.Sprintf("attendance-%04d-%02d.xlsx", year, int(month))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(buf.Bytes())
}
