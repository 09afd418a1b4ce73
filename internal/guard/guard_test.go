package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritikrathore0011/Employee-Management/internal/session"
)

func TestDecide(t *testing.T) {
	admin := &session.Record{Role: session.RoleAdmin}
	employee := &session.Record{Role: session.RoleEmployee}

	cases := []struct {
		name string
		rec  *session.Record
		rule Rule
		want Decision
	}{
		{"public signed out", nil, Public(), Decision{Outcome: Allow}},
		{"public signed in", employee, Public(), Decision{Outcome: Redirect, Location: DashboardPath}},
		{"private signed out", nil, Private(), Decision{Outcome: Redirect, Location: LoginPath}},
		{"private any role", employee, Private(), Decision{Outcome: Allow}},
		{"required role match", admin, RequiredRole(session.RoleAdmin), Decision{Outcome: Allow}},
		{"required role mismatch", employee, RequiredRole(session.RoleAdmin), Decision{Outcome: Redirect, Location: UnauthorizedPath}},
		{"allowed roles match", employee, AllowedRoles(session.RoleAdmin, session.RoleEmployee), Decision{Outcome: Allow}},
		{"allowed roles mismatch", &session.Record{Role: "Contractor"}, AllowedRoles(session.RoleAdmin, session.RoleEmployee), Decision{Outcome: Redirect, Location: UnauthorizedPath}},
		{"role gate signed out", nil, RequiredRole(session.RoleAdmin), Decision{Outcome: Redirect, Location: LoginPath}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.rec, tc.rule))
		})
	}
}

func TestLandingPath(t *testing.T) {
	assert.Equal(t, AttendancePath, LandingPath(session.RoleEmployee))
	assert.Equal(t, DashboardPath, LandingPath(session.RoleAdmin))
	assert.Equal(t, DashboardPath, LandingPath("Manager"))
}

type failingStore struct{ session.Store }

func (failingStore) Get(context.Context, string) (session.Record, error) {
	return session.Record{}, assert.AnError
}

func newManager(t *testing.T, store session.Store) *session.Manager {
	t.Helper()
	codec, err := session.NewCookieCodec("guard-test-secret-value")
	require.NoError(t, err)
	return session.NewManager(store, codec, time.Hour, false)
}

func signIn(t *testing.T, mgr *session.Manager, role string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	_, _, err := mgr.Start(rec, httptest.NewRequest(http.MethodPost, "/login", nil), session.Record{AccessToken: "tok", Name: "Test User", Role: role})
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestWrapPutsSessionInContext(t *testing.T) {
	mgr := newManager(t, session.NewMemoryStore())
	g := New(mgr)
	cookie := signIn(t, mgr, session.RoleAdmin)

	var seen session.Record
	handler := g.Wrap(RequiredRole(session.RoleAdmin), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, browserID, ok := FromContext(r.Context())
		require.True(t, ok)
		assert.NotEmpty(t, browserID)
		seen = rec
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "TU", seen.Initials)
}

func TestWrapRedirects(t *testing.T) {
	mgr := newManager(t, session.NewMemoryStore())
	g := New(mgr)
	employee := signIn(t, mgr, session.RoleEmployee)
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	rr := httptest.NewRecorder()
	g.Wrap(Private(), ok).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, LoginPath, rr.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/employees", nil)
	req.AddCookie(employee)
	rr = httptest.NewRecorder()
	g.Wrap(RequiredRole(session.RoleAdmin), ok).ServeHTTP(rr, req)
	assert.Equal(t, UnauthorizedPath, rr.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(employee)
	rr = httptest.NewRecorder()
	g.Wrap(Public(), ok).ServeHTTP(rr, req)
	assert.Equal(t, DashboardPath, rr.Header().Get("Location"))
}

func TestWrapClearsStaleCookie(t *testing.T) {
	mgr := newManager(t, session.NewMemoryStore())
	g := New(mgr)
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "not-a-token"})
	rr := httptest.NewRecorder()
	g.Wrap(Public(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := FromContext(r.Context())
		assert.False(t, ok)
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Set-Cookie"), session.CookieName+"=;")
}

func TestWrapStoreFailure(t *testing.T) {
	memory := session.NewMemoryStore()
	mgr := newManager(t, memory)
	cookie := signIn(t, mgr, session.RoleAdmin)

	broken := New(newManager(t, failingStore{Store: memory}))
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	broken.Wrap(Private(), http.NotFoundHandler()).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
