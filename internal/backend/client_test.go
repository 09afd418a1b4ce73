package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
	"github.com/ritikrathore0011/Employee-Management/internal/backend/backendtest"
)

func newClient(t *testing.T) (*backend.Client, *backendtest.Server) {
	t.Helper()
	fake := backendtest.New(t)
	return backend.New(fake.BaseURL(), fake.Client()), fake
}

func TestLogin(t *testing.T) {
	client, fake := newClient(t)
	ctx := context.Background()

	user, err := client.Login(ctx, "ravi", backendtest.EmployeePassword)
	require.NoError(t, err)
	assert.Equal(t, backendtest.EmployeeToken, user.AccessToken)
	assert.Equal(t, "Employee", user.Role)
	assert.Equal(t, int64(2), user.ID.Int64())

	call, ok := fake.LastCall("/login")
	require.True(t, ok)
	assert.Equal(t, "ravi", call.Body["username"])

	_, err = client.Login(ctx, "ravi", "wrong")
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.False(t, errors.Is(err, backend.ErrUnauthorized))
}

func TestBearerTokenAndUnauthorized(t *testing.T) {
	client, fake := newClient(t)
	ctx := context.Background()

	_, err := client.Holidays(ctx, backendtest.AdminToken)
	require.NoError(t, err)
	call, _ := fake.LastCall("/holidays")
	assert.Equal(t, backendtest.AdminToken, call.Token)

	_, err = client.Holidays(ctx, "stale")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	assert.True(t, backend.IsUnauthorized(err))
}

func TestCheckInOutFlow(t *testing.T) {
	client, fake := newClient(t)
	ctx := context.Background()
	token := backendtest.EmployeeToken

	status, err := client.CheckStatus(ctx, token)
	require.NoError(t, err)
	assert.False(t, status.Status)
	assert.Nil(t, status.Record)

	in, err := client.CheckIn(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, backend.FlexID("41"), in.LogID)

	_, err = client.CheckIn(ctx, token)
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Already checked in", apiErr.Message)

	require.NoError(t, client.CheckOut(ctx, token, in.LogID, "wrapped up", "shipped the report"))
	call, _ := fake.LastCall("/check-out")
	assert.Equal(t, "41", call.Body["log_id"])
	assert.Equal(t, "shipped the report", call.Body["eod"])

	status, err = client.CheckStatus(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, status.Record)
	assert.NotEmpty(t, status.Record.LogoutTime)
}

func TestRecordsSendsMonthOnlyWhenSet(t *testing.T) {
	client, fake := newClient(t)
	ctx := context.Background()
	fake.Lock()
	fake.Records = []backend.AttendanceRecord{{ID: "7", Date: "2025-04-01", LoginTime: "2025-04-01 09:00:00"}}
	fake.Summary = backend.MonthSummary{TotalDays: 22, Present: 20}
	fake.Unlock()

	resp, err := client.Records(ctx, backendtest.EmployeeToken, 0, 0)
	require.NoError(t, err)
	require.Len(t, resp.Records, 1)
	assert.Equal(t, backend.FlexInt(22), resp.Summary.Original.TotalDays)
	call, _ := fake.LastCall("/records")
	assert.NotContains(t, call.Body, "year")

	_, err = client.DetailedSheet(ctx, backendtest.AdminToken, 2, 2025, 4)
	require.NoError(t, err)
	call, _ = fake.LastCall("/detailed-sheet")
	assert.Equal(t, float64(2), call.Body["id"])
	assert.Equal(t, float64(2025), call.Body["year"])
	assert.Equal(t, float64(4), call.Body["month"])
}

func TestLeaveLifecycle(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	require.NoError(t, client.ApplyLeave(ctx, backendtest.EmployeeToken, backend.LeaveApplication{Type: "Sick", StartDate: "2025-04-10", EndDate: "2025-04-11", Reason: "flu"}))
	count, err := client.PendingLeaveCount(ctx, backendtest.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	leaves, err := client.LeaveRecords(ctx, backendtest.AdminToken)
	require.NoError(t, err)
	require.Len(t, leaves, 1)
	require.NoError(t, client.DecideLeave(ctx, backendtest.AdminToken, leaves[0].ID, true))

	leaves, err = client.LeaveRecords(ctx, backendtest.EmployeeToken)
	require.NoError(t, err)
	assert.Equal(t, "approved", leaves[0].Status)
}

func TestTasks(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	require.NoError(t, client.AssignTasks(ctx, backendtest.AdminToken, "2", []string{"write docs", "fix login"}))
	detail, err := client.AssignDetail(ctx, backendtest.AdminToken)
	require.NoError(t, err)
	require.Len(t, detail.Tasks, 2)
	assert.Equal(t, "pending", detail.Tasks[0].Status)

	require.NoError(t, client.AdvanceTask(ctx, backendtest.EmployeeToken, detail.Tasks[0].ID))
	require.NoError(t, client.DeleteTask(ctx, backendtest.AdminToken, detail.Tasks[1].ID))

	mine, err := client.AssignDetail(ctx, backendtest.EmployeeToken)
	require.NoError(t, err)
	require.Len(t, mine.Tasks, 1)
	assert.Equal(t, "started", mine.Tasks[0].Status)
}

func TestSaveProfileMultipartAndValidation(t *testing.T) {
	client, fake := newClient(t)
	ctx := context.Background()

	_, err := client.SaveProfile(ctx, backendtest.EmployeeToken, map[string]string{"name": "Ravi K"}, []backend.Upload{{Field: "resume", Filename: "cv.pdf", ContentType: "application/pdf", Content: []byte("%PDF")}})
	require.NoError(t, err)
	fake.Lock()
	assert.Equal(t, "Ravi K", fake.LastProfileFields["name"])
	assert.Equal(t, []byte("%PDF"), fake.LastProfileFiles["resume"])
	fake.ProfileError = map[string][]string{"email": {"The email has already been taken."}}
	fake.Unlock()

	_, err = client.SaveProfile(ctx, backendtest.EmployeeToken, map[string]string{"email": "dup@example.com"}, nil)
	var verr *backend.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "The email has already been taken.", verr.First("email"))
	assert.Equal(t, "The email has already been taken.", backend.UserMessage(err))
}

func TestPasswordReset(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	_, err := client.SendOTP(ctx, "nobody@example.com")
	assert.EqualError(t, err, "Email not found")

	msg, err := client.SendOTP(ctx, "ravi@example.com")
	require.NoError(t, err)
	assert.True(t, msg.Success)

	_, err = client.ResetPassword(ctx, backend.ResetPasswordRequest{Email: "ravi@example.com", OTP: "000000", Password: "new-password", PasswordConfirmation: "new-password"})
	assert.EqualError(t, err, "Invalid or expired OTP")

	msg, err = client.ResetPassword(ctx, backend.ResetPasswordRequest{Token: backendtest.ResetToken, Password: "new-password", PasswordConfirmation: "new-password"})
	require.NoError(t, err)
	assert.Equal(t, "/login", msg.Redirect)
}

func TestDashboards(t *testing.T) {
	client, fake := newClient(t)
	ctx := context.Background()
	fake.Lock()
	fake.Dashboard = backend.DashboardSummary{TotalEmployees: 12, PresentEmployees: 9}
	fake.UserDash.MonthSummary.Present = 4
	fake.UserDash.Holidays.Holidays = []backend.Holiday{{ID: "1", Name: "Diwali", Date: "2025-10-20"}}
	fake.Unlock()

	admin, err := client.DashboardSummary(ctx, backendtest.AdminToken)
	require.NoError(t, err)
	assert.Equal(t, backend.FlexInt(12), admin.TotalEmployees)

	user, err := client.UserDashboard(ctx, backendtest.EmployeeToken)
	require.NoError(t, err)
	assert.Equal(t, backend.FlexInt(4), user.MonthSummary.Present)
	require.Len(t, user.Holidays.Holidays, 1)
	assert.Equal(t, "Diwali", user.Holidays.Holidays[0].Label())
}

func TestStrictEnvelopeRejectsStatusFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":false,"message":"Already added"}`))
	}))
	t.Cleanup(srv.Close)

	err := backend.New(srv.URL, srv.Client()).AddHoliday(context.Background(), "tok", "Holi", "2025-03-14")
	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Already added", apiErr.Message)
}

func TestFlexIDAndFlexInt(t *testing.T) {
	var v struct {
		A backend.FlexID  `json:"a"`
		B backend.FlexID  `json:"b"`
		C backend.FlexID  `json:"c"`
		N backend.FlexInt `json:"n"`
		S backend.FlexInt `json:"s"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":12,"b":"leave-7","c":null,"n":3,"s":"5"}`), &v))
	assert.Equal(t, backend.FlexID("12"), v.A)
	assert.Equal(t, "leave-7", v.B.String())
	assert.Equal(t, backend.FlexID(""), v.C)
	assert.Equal(t, backend.FlexInt(3), v.N)
	assert.Equal(t, backend.FlexInt(5), v.S)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", backend.UserMessage(nil))
	assert.Equal(t, "Service unavailable, please try again", backend.UserMessage(errors.New("dial tcp")))
	assert.Equal(t, "Session expired, please sign in again", backend.UserMessage(backend.ErrUnauthorized))
	assert.Equal(t, "nope", backend.UserMessage(&backend.APIError{StatusCode: 400, Message: "nope"}))
}
