package clientapp

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
	"github.com/ritikrathore0011/Employee-Management/internal/holidays"
)

const leavesPath = "/leave-holidays"

// leaveTypes are offered as suggestions; any non-empty type is accepted.
var leaveTypes = []string{"Casual", "Sick", "Earned", "Unpaid"}

func (s *server) leaveHolidaysPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rec := s.current(r)
	leaves, err := s.api.LeaveRecords(r.Context(), rec.AccessToken)
	if err != nil {
		s.loadFailed(w, r, err, "leave requests")
		return
	}
	list, err := s.api.Holidays(r.Context(), rec.AccessToken)
	if err != nil {
		s.loadFailed(w, r, err, "holidays")
		return
	}
	data := s.basePage(r, "Leave & Holidays", "leave-holidays")
	data.Leaves = leaves
	data.Holidays = list
	s.render(w, "leave_holidays", data)
}

func (s *server) applyLeave(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	req := backend.LeaveApplication{
		Type:      strings.TrimSpace(r.FormValue("type")),
		StartDate: strings.TrimSpace(r.FormValue("start_date")),
		EndDate:   strings.TrimSpace(r.FormValue("end_date")),
		Reason:    strings.TrimSpace(r.FormValue("reason")),
	}
	if problem := validateLeave(req); problem != "" {
		redirectWith(w, r, leavesPath, "error", problem)
		return
	}
	if err := s.api.ApplyLeave(r.Context(), s.current(r).AccessToken, req); err != nil {
		s.actionFailed(w, r, err, leavesPath)
		return
	}
	redirectWith(w, r, leavesPath, "msg", "Leave request submitted")
}

// validateLeave returns the first problem with req, or "".
func validateLeave(req backend.LeaveApplication) string {
	if req.Type == "" {
		return "Enter a leave type"
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return "Start date is required"
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return "End date is required"
	}
	if end.Before(start) {
		return "End date cannot be before the start date"
	}
	if req.Reason == "" {
		return "Reason is required"
	}
	return ""
}

func (s *server) decideLeave(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	id := strings.TrimSpace(r.FormValue("leave_id"))
	action := r.FormValue("action")
	if id == "" || (action != "approve" && action != "reject") {
		redirectWith(w, r, leavesPath, "error", "Invalid leave decision")
		return
	}
	if err := s.api.DecideLeave(r.Context(), s.current(r).AccessToken, id, action == "approve"); err != nil {
		s.actionFailed(w, r, err, leavesPath)
		return
	}
	msg := "Leave approved"
	if action == "reject" {
		msg = "Leave rejected"
	}
	redirectWith(w, r, leavesPath, "msg", msg)
}

func (s *server) addHoliday(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	date, ok := holidays.NormalizeDate(r.FormValue("date"))
	if name == "" || !ok {
		redirectWith(w, r, leavesPath, "error", "Holiday name and date are required")
		return
	}
	if err := s.api.AddHoliday(r.Context(), s.current(r).AccessToken, name, date); err != nil {
		s.actionFailed(w, r, err, leavesPath)
		return
	}
	redirectWith(w, r, leavesPath, "msg", "Holiday added")
}

func (s *server) importHolidays(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	file, header, err := r.FormFile("sheet")
	if err != nil {
		redirectWith(w, r, leavesPath, "error", "Choose a spreadsheet to import")
		return
	}
	defer file.Close()

	res, err := holidays.ParseSheet(file, header.Filename)
	if err != nil {
		redirectWith(w, r, leavesPath, "error", capitalize(err.Error()))
		return
	}
	if len(res.Entries) == 0 {
		redirectWith(w, r, leavesPath, "error", "No holidays found in the spreadsheet")
		return
	}

	token := s.current(r).AccessToken
	added, failed := 0, len(res.Skipped)
	for _, entry := range res.Entries {
		if err := s.api.AddHoliday(r.Context(), token, entry.Name, entry.Date); err != nil {
			if s.dropOnUnauthorized(w, r, err) {
				return
			}
			log.Printf("import holiday %q on %s: %v", entry.Name, entry.Date, err)
			failed++
			continue
		}
		added++
	}
	msg := fmt.Sprintf("Imported %d holidays", added)
	if failed > 0 {
		msg += fmt.Sprintf(", %d rows failed", failed)
	}
	redirectWith(w, r, leavesPath, "msg", msg)
}
