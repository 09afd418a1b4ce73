package clientapp

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
	"github.com/ritikrathore0011/Employee-Management/internal/tasks"
)

// taskDate reads the date filter, defaulting to today.
func (s *server) taskDate(r *http.Request) string {
	raw := strings.TrimSpace(r.URL.Query().Get("date"))
	if raw == "" {
		raw = strings.TrimSpace(r.FormValue("date"))
	}
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return s.now().Format("2006-01-02")
	}
	return raw
}

func (s *server) tasksPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	detail, err := s.api.AssignDetail(r.Context(), s.current(r).AccessToken)
	if err != nil {
		s.loadFailed(w, r, err, "tasks")
		return
	}

	q := r.URL.Query()
	data := s.basePage(r, "Tasks", "tasks")
	data.Date = s.taskDate(r)
	data.ByDate = q.Get("by_date") == "1"
	data.Query = strings.TrimSpace(q.Get("q"))
	data.StatusFilter = strings.TrimSpace(q.Get("status"))
	if data.StatusFilter == "" {
		data.StatusFilter = tasks.FilterAll
	}
	data.TaskStaff = detail.Employees
	data.Boards = tasks.BuildBoard(detail.Employees, detail.Tasks, data.Query, data.StatusFilter, data.Date, data.ByDate)
	s.render(w, "tasks", data)
}

// tasksBack rebuilds the board URL from the filters echoed in the form.
func tasksBack(r *http.Request) string {
	v := url.Values{}
	for _, key := range []string{"date", "by_date", "q", "status"} {
		if value := strings.TrimSpace(r.FormValue(key)); value != "" {
			v.Set(key, value)
		}
	}
	if len(v) == 0 {
		return "/tasks"
	}
	return "/tasks?" + v.Encode()
}

func (s *server) assignTasks(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	back := tasksBack(r)
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, back, "error", "Invalid form submission")
		return
	}
	employee := strings.TrimSpace(r.FormValue("employee_id"))
	names := tasks.NonEmptyNames(r.Form["task"])
	if employee == "" {
		redirectWith(w, r, back, "error", "Choose an employee")
		return
	}
	if len(names) == 0 {
		redirectWith(w, r, back, "error", "Add at least one task")
		return
	}
	if err := s.api.AssignTasks(r.Context(), s.current(r).AccessToken, backend.FlexID(employee), names); err != nil {
		s.actionFailed(w, r, err, back)
		return
	}
	redirectWith(w, r, back, "msg", "Tasks assigned")
}

func (s *server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	back := tasksBack(r)
	id := strings.TrimSpace(r.FormValue("task_id"))
	if id == "" {
		redirectWith(w, r, back, "error", "Missing task id")
		return
	}
	token := s.current(r).AccessToken
	detail, err := s.api.AssignDetail(r.Context(), token)
	if err != nil {
		s.actionFailed(w, r, err, back)
		return
	}
	task, ok := findTask(detail.Tasks, backend.FlexID(id))
	switch {
	case !ok:
		redirectWith(w, r, back, "error", "Task not found")
		return
	case task.Status != tasks.StatusPending:
		redirectWith(w, r, back, "error", "Only pending tasks can be deleted")
		return
	}
	if err := s.api.DeleteTask(r.Context(), token, task.ID); err != nil {
		s.actionFailed(w, r, err, back)
		return
	}
	redirectWith(w, r, back, "msg", "Task deleted")
}

func findTask(list []backend.Task, id backend.FlexID) (backend.Task, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return backend.Task{}, false
}

func (s *server) myTasksPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rec := s.current(r)
	detail, err := s.api.AssignDetail(r.Context(), rec.AccessToken)
	if err != nil {
		s.loadFailed(w, r, err, "tasks")
		return
	}

	data := s.basePage(r, "My tasks", "my-tasks")
	data.Date = s.taskDate(r)
	me := backend.FlexID(strconv.FormatInt(rec.UserID, 10))
	data.Mine = tasks.Group(tasks.FilterForEmployee(detail.Tasks, me, data.Date, false), data.Date)
	s.render(w, "my_tasks", data)
}

func (s *server) advanceTask(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	back := "/tasks/mine"
	if date := strings.TrimSpace(r.FormValue("date")); date != "" {
		back += "?" + url.Values{"date": {date}}.Encode()
	}
	id := strings.TrimSpace(r.FormValue("task_id"))
	if id == "" {
		redirectWith(w, r, back, "error", "Missing task id")
		return
	}
	if err := s.api.AdvanceTask(r.Context(), s.current(r).AccessToken, backend.FlexID(id)); err != nil {
		s.actionFailed(w, r, err, back)
		return
	}
	redirectWith(w, r, back, "msg", "Task updated")
}
