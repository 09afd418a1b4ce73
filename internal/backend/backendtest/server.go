// Package backendtest runs an in-memory stand-in for the employee REST API.
package backendtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
)

const (
	AdminToken    = "admin-token"
	EmployeeToken = "employee-token"

	AdminPassword    = "admin-pass"
	EmployeePassword = "employee-pass"

	OTP        = "123456"
	ResetToken = "reset-link-token"
	GoogleID   = "google-id-token"
)

type Call struct {
	Method string
	Path   string
	Token  string
	Body   map[string]any
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]account
	tokens   map[string]backend.User
	calls    []Call
	nextID   int

	Today        map[string]*backend.TodayRecord
	Records      []backend.AttendanceRecord
	Summary      backend.MonthSummary
	HolidayList  []backend.Holiday
	Leaves       []backend.LeaveRequest
	Employees    []backend.Employee
	TaskStaff    []backend.TaskEmployee
	Tasks        []backend.Task
	Dashboard    backend.DashboardSummary
	UserDash     backend.UserDashboard
	ProfileData  backend.Profile
	KnownEmails  map[string]bool
	ProfileError map[string][]string

	LastProfileFields map[string]string
	LastProfileFiles  map[string][]byte
}

type account struct {
	password string
	user     backend.User
}

// New starts a fake backend with one admin and one employee account.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	admin := backend.User{ID: "1", Name: "Asha Patel", Email: "asha@example.com", Role: "Admin", AccessToken: AdminToken, EmployeeID: "EMP001", Initials: "AP"}
	employee := backend.User{ID: "2", Name: "Ravi Kumar", Email: "ravi@example.com", Role: "Employee", AccessToken: EmployeeToken, EmployeeID: "EMP002"}

	s := &Server{
		accounts: map[string]account{
			"asha": {password: AdminPassword, user: admin},
			"ravi": {password: EmployeePassword, user: employee},
		},
		tokens:      map[string]backend.User{AdminToken: admin, EmployeeToken: employee},
		nextID:      100,
		Today:       map[string]*backend.TodayRecord{},
		KnownEmails: map[string]bool{"ravi@example.com": true, "asha@example.com": true},
		Employees: []backend.Employee{
			{ID: "1", Name: admin.Name, Email: admin.Email, EmployeeID: admin.EmployeeID, Role: admin.Role},
			{ID: "2", Name: employee.Name, Email: employee.Email, EmployeeID: employee.EmployeeID, Role: employee.Role},
		},
		TaskStaff: []backend.TaskEmployee{{ID: "2", Name: employee.Name, EmployeeID: employee.EmployeeID}},
		ProfileData: backend.Profile{
			ID: "2", Name: employee.Name, Email: employee.Email, EmployeeID: employee.EmployeeID, Role: employee.Role,
			Employee: &backend.EmploymentDetails{Department: "Engineering", Designation: "Developer"},
		},
	}

	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root to hand to backend.New.
func (s *Server) BaseURL() string { return s.URL + "/api" }

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// LastCall returns the most recent call to path.
func (s *Server) LastCall(path string) (Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.calls) - 1; i >= 0; i-- {
		if s.calls[i].Path == path {
			return s.calls[i], true
		}
	}
	return Call{}, false
}

// Lock and Unlock guard the exported fixtures while a test edits them.
func (s *Server) Lock()   { s.mu.Lock() }
func (s *Server) Unlock() { s.mu.Unlock() }

func (s *Server) router() http.Handler {
	r := gin.New()
	api := r.Group("/api", s.record)

	api.POST("/login", s.login)
	api.POST("/auth/google-login", s.googleLogin)
	api.POST("/send-otp", s.sendOTP)
	api.POST("/reset-password", s.resetPassword)

	authed := api.Group("", s.requireToken)
	authed.GET("/checkStatus", s.checkStatus)
	authed.GET("/check-in", s.checkIn)
	authed.POST("/check-out", s.checkOut)
	authed.POST("/records", s.records)
	authed.POST("/detailed-sheet", s.records)
	authed.GET("/holidays", s.holidays)
	authed.POST("/add-holiday", s.addHoliday)
	authed.POST("/leaves", s.applyLeave)
	authed.POST("/leaves-status", s.leaveStatus)
	authed.POST("/approve-leave", s.approveLeave)
	authed.GET("/pending-count", s.pendingCount)
	authed.GET("/assign-detail", s.assignDetail)
	authed.POST("/assign-task", s.assignTask)
	authed.POST("/delete-task", s.deleteTask)
	authed.POST("/update-status", s.updateStatus)
	authed.POST("/profile", s.profile)
	authed.POST("/profile-save", s.profileSave)
	authed.GET("/employees", s.employees)
	authed.POST("/delete", s.deleteEmployee)
	authed.POST("/summary", s.summary)
	authed.GET("/dashboard-summary", s.dashboardSummary)
	authed.GET("/dashboard-summary-user", s.userDashboard)
	return r
}

func (s *Server) record(c *gin.Context) {
	call := Call{
		Method: c.Request.Method,
		Path:   strings.TrimPrefix(c.Request.URL.Path, "/api"),
		Token:  strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "),
	}
	if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
		raw, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		_ = json.Unmarshal(raw, &call.Body)
	}
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
	c.Next()
}

func (s *Server) requireToken(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	s.mu.Lock()
	user, ok := s.tokens[token]
	s.mu.Unlock()
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
		return
	}
	c.Set("user", user)
	c.Set("token", token)
	c.Next()
}

func (s *Server) newID() backend.FlexID {
	s.nextID++
	return backend.FlexID(fmt.Sprint(s.nextID))
}

func today() string { return time.Now().Format("2006-01-02") }

func (s *Server) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	_ = c.ShouldBindJSON(&body)
	s.mu.Lock()
	acct, ok := s.accounts[body.Username]
	s.mu.Unlock()
	if !ok || acct.password != body.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Login successful", "user": acct.user})
}

func (s *Server) googleLogin(c *gin.Context) {
	var body struct {
		Token string `json:"token"`
	}
	_ = c.ShouldBindJSON(&body)
	if body.Token != GoogleID {
		c.JSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Invalid Google token"})
		return
	}
	s.mu.Lock()
	user := s.tokens[EmployeeToken]
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": true, "user": user})
}

func (s *Server) sendOTP(c *gin.Context) {
	var body struct {
		Email string `json:"email"`
	}
	_ = c.ShouldBindJSON(&body)
	s.mu.Lock()
	known := s.KnownEmails[body.Email]
	s.mu.Unlock()
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Email not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "OTP sent to your email"})
}

func (s *Server) resetPassword(c *gin.Context) {
	var body backend.ResetPasswordRequest
	_ = c.ShouldBindJSON(&body)
	if body.Password == "" || body.Password != body.PasswordConfirmation {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The given data was invalid.", "errors": gin.H{"password": []string{"The password confirmation does not match."}}})
		return
	}
	if body.Token != ResetToken && body.OTP != OTP {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid or expired OTP"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully", "redirect": "/login"})
}

func (s *Server) checkStatus(c *gin.Context) {
	token := c.GetString("token")
	s.mu.Lock()
	rec := s.Today[token]
	s.mu.Unlock()
	if rec == nil {
		c.JSON(http.StatusOK, gin.H{"status": false, "message": "No attendance recorded today"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Record found", "record": rec, "log_id": 41})
}

func (s *Server) checkIn(c *gin.Context) {
	token := c.GetString("token")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Today[token] != nil {
		c.JSON(http.StatusOK, gin.H{"status": false, "message": "Already checked in"})
		return
	}
	s.Today[token] = &backend.TodayRecord{LoginTime: time.Now().Format("2006-01-02 15:04:05")}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Checked in", "log_id": 41})
}

func (s *Server) checkOut(c *gin.Context) {
	var body struct {
		LogID string `json:"log_id"`
		Note  string `json:"note"`
		EOD   string `json:"eod"`
	}
	_ = c.ShouldBindJSON(&body)
	token := c.GetString("token")
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.Today[token]
	if rec == nil || body.LogID == "" {
		c.JSON(http.StatusOK, gin.H{"status": false, "message": "No open attendance"})
		return
	}
	rec.LogoutTime = time.Now().Format("2006-01-02 15:04:05")
	rec.Note = body.Note
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Checked out"})
}

func (s *Server) records(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": true, "records": s.Records, "summary": gin.H{"original": s.Summary}})
}

func (s *Server) holidays(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": true, "holidays": s.HolidayList})
}

func (s *Server) addHoliday(c *gin.Context) {
	var body struct {
		Name string `json:"name"`
		Date string `json:"date"`
	}
	_ = c.ShouldBindJSON(&body)
	if body.Name == "" || body.Date == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The given data was invalid.", "errors": gin.H{"name": []string{"The name field is required."}}})
		return
	}
	s.mu.Lock()
	s.HolidayList = append(s.HolidayList, backend.Holiday{ID: s.newID(), Title: body.Name, Date: body.Date})
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Holiday added"})
}

func (s *Server) applyLeave(c *gin.Context) {
	var body backend.LeaveApplication
	_ = c.ShouldBindJSON(&body)
	user := c.MustGet("user").(backend.User)
	s.mu.Lock()
	s.Leaves = append(s.Leaves, backend.LeaveRequest{
		ID: "enc-" + s.newID().String(), Type: body.Type, StartDate: body.StartDate, EndDate: body.EndDate,
		Reason: body.Reason, Status: "pending", UserName: user.Name, EmployeeID: user.EmployeeID,
	})
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Leave applied"})
}

func (s *Server) leaveStatus(c *gin.Context) {
	user := c.MustGet("user").(backend.User)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []backend.LeaveRequest{}
	for _, l := range s.Leaves {
		if user.Role == "Admin" || l.EmployeeID == user.EmployeeID {
			out = append(out, l)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) approveLeave(c *gin.Context) {
	var body struct {
		LeaveID string `json:"leaveId"`
		Action  int    `json:"action"`
	}
	_ = c.ShouldBindJSON(&body)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Leaves {
		if s.Leaves[i].ID == body.LeaveID {
			if body.Action == 1 {
				s.Leaves[i].Status = "approved"
			} else {
				s.Leaves[i].Status = "rejected"
			}
			c.JSON(http.StatusOK, gin.H{"status": true, "message": "Leave updated"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Leave not found"})
}

func (s *Server) pendingCount(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, l := range s.Leaves {
		if l.Status == "pending" {
			count++
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) assignDetail(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := c.MustGet("user").(backend.User)
	tasks := []backend.Task{}
	for _, t := range s.Tasks {
		if user.Role == "Admin" || t.AssignedTo == user.ID {
			tasks = append(tasks, t)
		}
	}
	c.JSON(http.StatusOK, gin.H{"employees": s.TaskStaff, "assigned_tasks": tasks})
}

func (s *Server) assignTask(c *gin.Context) {
	var body struct {
		AssignedTo string   `json:"assigned_to"`
		Tasks      []string `json:"tasks"`
	}
	_ = c.ShouldBindJSON(&body)
	if body.AssignedTo == "" || len(body.Tasks) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The given data was invalid.", "errors": gin.H{"tasks": []string{"At least one task is required."}}})
		return
	}
	user := c.MustGet("user").(backend.User)
	s.mu.Lock()
	for _, name := range body.Tasks {
		s.Tasks = append(s.Tasks, backend.Task{
			ID: s.newID(), TaskName: name, Status: "pending", AssignedTo: backend.FlexID(body.AssignedTo),
			Assigner: user.Name, Date: today(),
		})
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Tasks assigned"})
}

func (s *Server) deleteTask(c *gin.Context) {
	var body struct {
		ID string `json:"id"`
	}
	_ = c.ShouldBindJSON(&body)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.Tasks {
		if t.ID.String() == body.ID {
			s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": true, "message": "Task deleted"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": false, "message": "Task not found"})
}

func (s *Server) updateStatus(c *gin.Context) {
	var body struct {
		ID string `json:"id"`
	}
	_ = c.ShouldBindJSON(&body)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.Tasks {
		if s.Tasks[i].ID.String() != body.ID {
			continue
		}
		switch s.Tasks[i].Status {
		case "pending":
			s.Tasks[i].Status = "started"
		case "started":
			s.Tasks[i].Status = "completed"
			s.Tasks[i].CompletedAt = today()
		}
		c.JSON(http.StatusOK, gin.H{"status": true, "message": "Task updated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": false, "message": "Task not found"})
}

func (s *Server) profile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": true, "data": s.ProfileData})
}

func (s *Server) profileSave(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "multipart form required"})
		return
	}
	fields := map[string]string{}
	for key, values := range form.Value {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}
	files := map[string][]byte{}
	for key, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			continue
		}
		raw, _ := io.ReadAll(f)
		f.Close()
		files[key] = raw
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastProfileFields = fields
	s.LastProfileFiles = files
	if s.ProfileError != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The given data was invalid.", "errors": s.ProfileError})
		return
	}
	if fields["id"] == "" && c.MustGet("user").(backend.User).Role == "Admin" {
		s.Employees = append(s.Employees, backend.Employee{ID: s.newID(), Name: fields["name"], Email: fields["email"], EmployeeID: fields["employee_id"], Role: fields["role"]})
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Profile saved"})
}

func (s *Server) employees(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": true, "users": s.Employees})
}

func (s *Server) deleteEmployee(c *gin.Context) {
	var body struct {
		ID string `json:"id"`
	}
	_ = c.ShouldBindJSON(&body)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.Employees {
		if e.ID.String() == body.ID {
			s.Employees = append(s.Employees[:i], s.Employees[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"status": true, "message": "Employee deleted"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": false, "message": "Employee not found"})
}

func (s *Server) summary(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"status":        true,
		"total_days":    s.Summary.TotalDays,
		"present":       s.Summary.Present,
		"leaves":        s.Summary.Leaves,
		"late_logins":   s.Summary.LateLogins,
		"early_logouts": s.Summary.EarlyLogouts,
	})
}

func (s *Server) dashboardSummary(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.Dashboard
	c.JSON(http.StatusOK, gin.H{
		"status":           true,
		"totalEmployees":   d.TotalEmployees,
		"presentEmployees": d.PresentEmployees,
		"leaveEmployees":   d.LeaveEmployees,
		"pendingTasks":     d.PendingTasks,
		"workingTasks":     d.WorkingTasks,
		"completedToday":   d.CompletedToday,
	})
}

func (s *Server) userDashboard(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": true, "data": s.UserDash})
}
