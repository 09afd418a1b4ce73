// Package guard decides which pages a browser may reach from its session.
package guard

import (
	"context"
	"log"
	"net/http"
	"slices"

	"github.com/ritikrathore0011/Employee-Management/internal/session"
)

const (
	LoginPath        = "/login"
	DashboardPath    = "/dashboard"
	AttendancePath   = "/attendance"
	UnauthorizedPath = "/unauthorized"
)

// Rule describes who may reach a route. The zero Rule is a private route open
// to any signed-in role.
type Rule struct {
	Public       bool
	RequiredRole string
	AllowedRoles []string
}

func Public() Rule                      { return Rule{Public: true} }
func Private() Rule                     { return Rule{} }
func RequiredRole(role string) Rule     { return Rule{RequiredRole: role} }
func AllowedRoles(roles ...string) Rule { return Rule{AllowedRoles: roles} }

func (r Rule) permits(role string) bool {
	if r.RequiredRole != "" && role != r.RequiredRole {
		return false
	}
	if len(r.AllowedRoles) > 0 && !slices.Contains(r.AllowedRoles, role) {
		return false
	}
	return true
}

type Outcome int

const (
	Allow Outcome = iota
	Redirect
)

type Decision struct {
	Outcome  Outcome
	Location string
}

// Decide applies rule to the current session. rec is nil when signed out.
func Decide(rec *session.Record, rule Rule) Decision {
	if rule.Public {
		if rec != nil {
			return Decision{Outcome: Redirect, Location: DashboardPath}
		}
		return Decision{Outcome: Allow}
	}
	if rec == nil {
		return Decision{Outcome: Redirect, Location: LoginPath}
	}
	if !rule.permits(rec.Role) {
		return Decision{Outcome: Redirect, Location: UnauthorizedPath}
	}
	return Decision{Outcome: Allow}
}

// LandingPath is where a role goes right after signing in.
func LandingPath(role string) string {
	if role == session.RoleEmployee {
		return AttendancePath
	}
	return DashboardPath
}

type contextKey struct{}

type current struct {
	record    session.Record
	browserID string
}

func FromContext(ctx context.Context) (session.Record, string, bool) {
	cur, ok := ctx.Value(contextKey{}).(current)
	if !ok {
		return session.Record{}, "", false
	}
	return cur.record, cur.browserID, true
}

func WithSession(ctx context.Context, rec session.Record, browserID string) context.Context {
	return context.WithValue(ctx, contextKey{}, current{record: rec, browserID: browserID})
}

type Guard struct {
	sessions *session.Manager
}

func New(sessions *session.Manager) *Guard {
	return &Guard{sessions: sessions}
}

// Wrap loads the session, applies rule, and hands allowed requests to next
// with the session in the context.
func (g *Guard) Wrap(rule Rule, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, browserID, err := g.sessions.Load(r)
		var active *session.Record
		switch {
		case err == nil:
			active = &rec
		case session.IsMissing(err):
			if _, cookieErr := r.Cookie(session.CookieName); cookieErr == nil {
				g.sessions.ClearCookie(w)
			}
		default:
			log.Printf("session lookup failed: %v", err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}

		decision := Decide(active, rule)
		if decision.Outcome == Redirect {
			http.Redirect(w, r, decision.Location, http.StatusFound)
			return
		}
		if active != nil {
			r = r.WithContext(WithSession(r.Context(), *active, browserID))
		}
		next.ServeHTTP(w, r)
	})
}

// Middleware adapts Wrap to the middleware.Chain signature.
func (g *Guard) Middleware(rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return g.Wrap(rule, next)
	}
}
