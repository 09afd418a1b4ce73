// Package tasks aggregates task lists into per-employee views.
package tasks

import (
	"strings"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
)

const (
	StatusPending   = "pending"
	StatusStarted   = "started"
	StatusCompleted = "completed"
)

// Employee work states shown as tags on the task board.
const (
	Idle    = "idle"
	Working = "working"
	Partial = "partial"
)

const FilterAll = "all"

func day(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 10 {
		return value[:10]
	}
	return value
}

// FilterForEmployee returns empID's tasks, limited to those dated date when
// byDate is set.
func FilterForEmployee(all []backend.Task, empID backend.FlexID, date string, byDate bool) []backend.Task {
	var out []backend.Task
	for _, t := range all {
		if t.AssignedTo != empID {
			continue
		}
		if byDate && day(t.Date) != day(date) {
			continue
		}
		out = append(out, t)
	}
	return out
}

type Counts struct {
	Started   int
	Pending   int
	Completed int
	Total     int
}

// CountFor tallies empID's tasks. Without a date filter, completed still
// counts only tasks completed on date.
func CountFor(all []backend.Task, empID backend.FlexID, date string, byDate bool) Counts {
	var c Counts
	for _, t := range FilterForEmployee(all, empID, date, byDate) {
		c.Total++
		switch t.Status {
		case StatusStarted:
			c.Started++
		case StatusPending:
			c.Pending++
		case StatusCompleted:
			if byDate || day(t.CompletedAt) == day(date) {
				c.Completed++
			}
		}
	}
	return c
}

func EmployeeStatus(all []backend.Task, empID backend.FlexID, date string, byDate bool) string {
	list := FilterForEmployee(all, empID, date, byDate)
	if len(list) == 0 {
		return Idle
	}
	allDone := true
	for _, t := range list {
		if t.Status == StatusStarted {
			return Working
		}
		if t.Status != StatusCompleted {
			allDone = false
		}
	}
	if allDone {
		return Idle
	}
	return Partial
}

type Buckets struct {
	Started   []backend.Task
	Pending   []backend.Task
	Completed []backend.Task
}

// Group splits tasks by status; the completed bucket holds only tasks
// completed on date.
func Group(list []backend.Task, date string) Buckets {
	var b Buckets
	for _, t := range list {
		switch t.Status {
		case StatusStarted:
			b.Started = append(b.Started, t)
		case StatusPending:
			b.Pending = append(b.Pending, t)
		case StatusCompleted:
			if day(t.CompletedAt) == day(date) {
				b.Completed = append(b.Completed, t)
			}
		}
	}
	return b
}

func FilterEmployees(employees []backend.TaskEmployee, all []backend.Task, query, status, date string, byDate bool) []backend.TaskEmployee {
	query = strings.ToLower(strings.TrimSpace(query))
	status = strings.TrimSpace(status)
	if status == "" {
		status = FilterAll
	}
	var out []backend.TaskEmployee
	for _, e := range employees {
		if query != "" && !strings.Contains(strings.ToLower(e.Name), query) {
			continue
		}
		if status != FilterAll && EmployeeStatus(all, e.ID, date, byDate) != status {
			continue
		}
		out = append(out, e)
	}
	return out
}

// NextAction is the button label that advances a task, or "" when done.
func NextAction(status string) string {
	switch status {
	case StatusPending:
		return "Start"
	case StatusStarted:
		return "Complete"
	default:
		return ""
	}
}

func NonEmptyNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Board is the admin task page model for one employee.
type Board struct {
	Employee backend.TaskEmployee
	Status   string
	Counts   Counts
	Buckets  Buckets
}

func BuildBoard(employees []backend.TaskEmployee, all []backend.Task, query, status, date string, byDate bool) []Board {
	filtered := FilterEmployees(employees, all, query, status, date, byDate)
	out := make([]Board, 0, len(filtered))
	for _, e := range filtered {
		out = append(out, Board{
			Employee: e,
			Status:   EmployeeStatus(all, e.ID, date, byDate),
			Counts:   CountFor(all, e.ID, date, byDate),
			Buckets:  Group(FilterForEmployee(all, e.ID, date, byDate), date),
		})
	}
	return out
}
