// Package clientapp serves the employee console: server-rendered pages over
// the REST backend, gated by the session guard.
package clientapp

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ritikrathore0011/Employee-Management/internal/attendance"
	"github.com/ritikrathore0011/Employee-Management/internal/backend"
	"github.com/ritikrathore0011/Employee-Management/internal/guard"
	"github.com/ritikrathore0011/Employee-Management/internal/middleware"
	"github.com/ritikrathore0011/Employee-Management/internal/security"
	"github.com/ritikrathore0011/Employee-Management/internal/session"
	"github.com/ritikrathore0011/Employee-Management/internal/tasks"
)

//go:embed templates/*.html assets/app.css
var templatesFS embed.FS

var pageNames = []string{
	"login", "forgot_password", "reset_password",
	"dashboard", "attendance", "employee_attendance", "employees", "employee_summary",
	"leave_holidays", "tasks", "my_tasks", "profile",
	"events", "payroll", "unauthorized",
}

type server struct {
	cfg      Config
	api      *backend.Client
	sessions *session.Manager
	guard    *guard.Guard
	google   *googleSignIn
	pages    map[string]*template.Template
	now      func() time.Time
}

type pageData struct {
	Title         string
	Active        string
	Session       *session.Record
	CSRF          string
	PendingLeaves int
	Error         string
	Message       string
	GoogleEnabled bool

	Step  string
	Email string
	Token string

	AdminSummary *backend.DashboardSummary
	UserSummary  *backend.UserDashboard

	Panel     string
	OnLeave   bool
	TodayNote string
	LogID     string
	Month     string
	Rows      []attendance.Row
	Summary   backend.MonthSummary
	Subject   string
	SubjectID string

	Employees   []backend.Employee
	Editing     *backend.Employee
	FieldErrors []string

	Leaves   []backend.LeaveRequest
	Holidays []backend.Holiday

	Date         string
	ByDate       bool
	Query        string
	StatusFilter string
	Boards       []tasks.Board
	TaskStaff    []backend.TaskEmployee
	Mine         tasks.Buckets

	Profile *backend.Profile
}

var templateFuncs = template.FuncMap{
	"nextAction": tasks.NextAction,
	"leaveTypes": func() []string { return leaveTypes },
	"fmtDate":    attendance.FormatDate,
	"isAdmin": func(rec *session.Record) bool {
		return rec != nil && rec.IsAdmin()
	},
	"employment": func(p *backend.Profile) backend.EmploymentDetails {
		if p == nil || p.Employee == nil {
			return backend.EmploymentDetails{}
		}
		return *p.Employee
	},
	"employeeDetails": func(e *backend.Employee) backend.EmploymentDetails {
		if e == nil || e.Employee == nil {
			return backend.EmploymentDetails{}
		}
		return *e.Employee
	},
	"taskList": func(page pageData, list []backend.Task) taskListView {
		return taskListView{CSRF: page.CSRF, Date: page.Date, Tasks: list}
	},
}

// taskListView is the dot of the my_task_list partial.
type taskListView struct {
	CSRF  string
	Date  string
	Tasks []backend.Task
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

func newServer(cfg Config, store session.Store, api *backend.Client) (*server, error) {
	codec, err := session.NewCookieCodec(cfg.SessionSecret)
	if err != nil {
		return nil, err
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(store, codec, cfg.SessionTTL, cfg.CookieSecure)
	return &server{
		cfg:      cfg,
		api:      api,
		sessions: sessions,
		guard:    guard.New(sessions),
		google:   newGoogleSignIn(cfg),
		pages:    pages,
		now:      time.Now,
	}, nil
}

func (s *server) routes() http.Handler {
	public := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(h, s.guard.Middleware(guard.Public()))
	}
	private := func(h http.HandlerFunc, rule guard.Rule) http.Handler {
		return middleware.Chain(h, s.guard.Middleware(rule), s.csrfProtect)
	}
	anyRole := guard.Private()
	admin := guard.RequiredRole(session.RoleAdmin)
	employee := guard.RequiredRole(session.RoleEmployee)

	mux := http.NewServeMux()
	mux.Handle("/", http.HandlerFunc(s.fallbackRoute))
	mux.Handle("/login", public(s.loginRoute))
	mux.Handle("/forgot-password", public(s.forgotPasswordRoute))
	mux.Handle("/reset-password", public(s.resetPasswordRoute))
	mux.Handle("/auth/google", public(s.googleStart))
	mux.Handle("/auth/google/callback", public(s.googleCallback))
	mux.Handle("/logout", private(s.logout, anyRole))

	mux.Handle("/dashboard", private(s.dashboardPage, anyRole))
	mux.Handle("/attendance", private(s.attendancePage, employee))
	mux.Handle("/attendance/check-in", private(s.checkIn, employee))
	mux.Handle("/attendance/check-out", private(s.checkOut, employee))
	mux.Handle("/attendance/export", private(s.exportOwnAttendance, employee))

	mux.Handle("/employees", private(s.employeesPage, admin))
	mux.Handle("/employees/save", private(s.saveEmployee, admin))
	mux.Handle("/employees/delete", private(s.deleteEmployee, admin))
	mux.Handle("/employees/", private(s.employeeRoutes, admin))

	mux.Handle("/leave-holidays", private(s.leaveHolidaysPage, anyRole))
	mux.Handle("/leave-holidays/apply", private(s.applyLeave, anyRole))
	mux.Handle("/leave-holidays/decide", private(s.decideLeave, admin))
	mux.Handle("/leave-holidays/holiday", private(s.addHoliday, admin))
	mux.Handle("/leave-holidays/import", private(s.importHolidays, admin))

	mux.Handle("/tasks", private(s.tasksPage, admin))
	mux.Handle("/tasks/assign", private(s.assignTasks, admin))
	mux.Handle("/tasks/delete", private(s.deleteTask, admin))
	mux.Handle("/tasks/mine", private(s.myTasksPage, anyRole))
	mux.Handle("/tasks/advance", private(s.advanceTask, anyRole))

	mux.Handle("/profile", private(s.profileRoute, anyRole))
	mux.Handle("/events", private(s.staticPage("events", "Events"), anyRole))
	mux.Handle("/payroll", private(s.staticPage("payroll", "Payroll"), anyRole))
	mux.Handle("/unauthorized", private(s.staticPage("unauthorized", "Unauthorized"), anyRole))
	mux.Handle("/assets/app.css", http.HandlerFunc(s.appCSSFile))

	csp := strings.Join([]string{
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"script-src 'self' 'unsafe-inline'",
		"form-action 'self' https://accounts.google.com",
		"frame-ancestors 'none'",
	}, "; ")

	mws := []func(http.Handler) http.Handler{middleware.Recover}
	if s.cfg.LogRequests {
		mws = append(mws, middleware.RequestLog(nil))
	}
	mws = append(mws, middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: csp}))
	return middleware.Chain(mux, mws...)
}

// Run serves the console until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	store, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	s, err := newServer(cfg, store, backend.New(cfg.APIBaseURL, nil))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	go s.sweepSessions(ctx, 10*time.Minute)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("console listening on http://localhost%s (api %s)", cfg.Addr, cfg.APIBaseURL)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func openSessionStore(ctx context.Context, cfg Config) (session.Store, error) {
	if cfg.SessionDSN != "" {
		store, err := session.OpenPostgresStore(cfg.SessionDSN)
		if err != nil {
			return nil, err
		}
		log.Printf("sessions stored in postgres")
		return store, nil
	}
	if cfg.SessionDBPath != "" {
		if dir := filepath.Dir(cfg.SessionDBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create session db dir: %w", err)
			}
		}
		store, err := session.OpenSQLiteStore(ctx, cfg.SessionDBPath)
		if err == nil {
			log.Printf("sessions stored in %s", cfg.SessionDBPath)
			return store, nil
		}
		log.Printf("sqlite session store unavailable, falling back to memory: %v", err)
	}
	return session.NewMemoryStore(), nil
}

func (s *server) sweepSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.sessions.Sweep(ctx); err != nil {
				log.Printf("session sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("swept %d expired sessions", n)
			}
		}
	}
}

// fallbackRoute catches every path without its own handler.
func (s *server) fallbackRoute(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, guard.LoginPath, http.StatusFound)
}

func (s *server) csrfProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		_, browserID, ok := guard.FromContext(r.Context())
		if !ok {
			http.Redirect(w, r, guard.LoginPath, http.StatusFound)
			return
		}
		if !security.VerifyCSRF(s.cfg.SessionSecret, browserID, r.FormValue("csrf_token")) {
			http.Error(w, "csrf validation failed", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) current(r *http.Request) session.Record {
	rec, _, _ := guard.FromContext(r.Context())
	return rec
}

// basePage fills the fields every page's layout reads.
func (s *server) basePage(r *http.Request, title, active string) pageData {
	data := pageData{
		Title:         title,
		Active:        active,
		Error:         r.URL.Query().Get("error"),
		Message:       r.URL.Query().Get("msg"),
		GoogleEnabled: s.google != nil,
	}
	rec, browserID, ok := guard.FromContext(r.Context())
	if !ok {
		return data
	}
	data.Session = &rec
	data.CSRF = security.CSRFToken(s.cfg.SessionSecret, browserID)
	if rec.IsAdmin() {
		if count, err := s.api.PendingLeaveCount(r.Context(), rec.AccessToken); err == nil {
			data.PendingLeaves = count
		}
	}
	return data
}

func (s *server) render(w http.ResponseWriter, name string, data pageData) {
	s.renderStatus(w, http.StatusOK, name, data)
}

func (s *server) renderStatus(w http.ResponseWriter, status int, name string, data pageData) {
	tmpl, ok := s.pages[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if err := renderHTMLTemplate(w, status, tmpl, data); err != nil {
		http.Error(w, "template render failed", http.StatusInternalServerError)
		log.Printf("%s template render failed: %v", name, err)
	}
}

func renderHTMLTemplate(w http.ResponseWriter, status int, tmpl *template.Template, data pageData) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

func (s *server) staticPage(name, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.render(w, name, s.basePage(r, title, name))
	}
}

func (s *server) appCSSFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := templatesFS.ReadFile("assets/app.css")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "private, max-age=300")
	_, _ = w.Write(data)
}

// redirectWith sends the browser to path carrying a flash message.
func redirectWith(w http.ResponseWriter, r *http.Request, path, key, message string) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	http.Redirect(w, r, path+sep+url.Values{key: {message}}.Encode(), http.StatusFound)
}

// actionFailed handles a backend error after a form post.
func (s *server) actionFailed(w http.ResponseWriter, r *http.Request, err error, back string) {
	if s.dropOnUnauthorized(w, r, err) {
		return
	}
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	redirectWith(w, r, back, "error", backend.UserMessage(err))
}

// loadFailed handles a backend error while building a page.
func (s *server) loadFailed(w http.ResponseWriter, r *http.Request, err error, what string) {
	if s.dropOnUnauthorized(w, r, err) {
		return
	}
	log.Printf("load %s failed: %v", what, err)
	http.Error(w, "unable to load "+what, http.StatusBadGateway)
}

func (s *server) dropOnUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !backend.IsUnauthorized(err) {
		return false
	}
	if endErr := s.sessions.End(w, r); endErr != nil {
		log.Printf("end session: %v", endErr)
	}
	redirectWith(w, r, guard.LoginPath, "error", "Session expired, please sign in again")
	return true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}
