// Package session keeps the signed-in user for each browser.
//
// A browser owns at most one Record. The record's ID is always the sentinel
// "user"; the browser itself is identified by a random id carried in a
// signed cookie (see CookieCodec).
package session

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SentinelID is the fixed id of the singleton record for a browser.
const SentinelID = "user"

const (
	RoleAdmin    = "Admin"
	RoleEmployee = "Employee"
)

// ErrNotFound is returned when a browser has no live session.
var ErrNotFound = errors.New("session not found")

type Record struct {
	ID          string    `json:"id"`
	UserID      int64     `json:"user_id"`
	AccessToken string    `json:"access_token"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	EmployeeID  string    `json:"employee_id"`
	Initials    string    `json:"initials"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (r Record) IsAdmin() bool {
	return r.Role == RoleAdmin
}

// Expired reports whether the record is past its expiry. A zero ExpiresAt
// never expires.
func (r Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && !now.Before(r.ExpiresAt)
}

// Store persists one Record per browser id.
type Store interface {
	Put(ctx context.Context, browserID string, rec Record) error
	Get(ctx context.Context, browserID string) (Record, error)
	Delete(ctx context.Context, browserID string) error
}

// Sweeper is implemented by stores that can purge expired records in bulk.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// NewBrowserID returns a fresh random browser id.
func NewBrowserID() string {
	return uuid.NewString()
}

// Initials returns the first letter of name and the first letter after its
// first space, uppercased.
func Initials(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	first, _ := utf8.DecodeRuneInString(name)
	out := []rune{unicode.ToUpper(first)}
	if idx := strings.Index(name, " "); idx >= 0 {
		rest := strings.TrimLeft(name[idx+1:], " ")
		if rest != "" {
			second, _ := utf8.DecodeRuneInString(rest)
			out = append(out, unicode.ToUpper(second))
		}
	}
	return string(out)
}

// prepare applies the invariants every store enforces on write.
func prepare(rec Record) Record {
	rec.ID = SentinelID
	if strings.TrimSpace(rec.Initials) == "" {
		rec.Initials = Initials(rec.Name)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return rec
}
