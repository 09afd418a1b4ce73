package backend

import (
	"context"
	"errors"
	"net/http"
	"strconv"
)

func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	var resp LoginResponse
	err := c.call(ctx, http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &resp, true)
	if errors.Is(err, ErrUnauthorized) {
		return User{}, &APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	if err != nil {
		return User{}, err
	}
	if resp.User.AccessToken == "" {
		return User{}, &APIError{StatusCode: http.StatusOK, Message: "Login response did not include a token"}
	}
	return resp.User, nil
}

// GoogleLogin trades a Google ID token for a backend session.
func (c *Client) GoogleLogin(ctx context.Context, idToken string) (User, error) {
	var resp LoginResponse
	err := c.call(ctx, http.MethodPost, "/auth/google-login", "", map[string]string{"token": idToken}, &resp, true)
	if errors.Is(err, ErrUnauthorized) {
		return User{}, &APIError{StatusCode: http.StatusUnauthorized, Message: "Google account is not registered"}
	}
	if err != nil {
		return User{}, err
	}
	if resp.User.AccessToken == "" {
		return User{}, &APIError{StatusCode: http.StatusOK, Message: "Login response did not include a token"}
	}
	return resp.User, nil
}

func (c *Client) SendOTP(ctx context.Context, email string) (MessageResponse, error) {
	var resp MessageResponse
	err := c.call(ctx, http.MethodPost, "/send-otp", "", map[string]string{"email": email}, &resp, true)
	return resp, err
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (MessageResponse, error) {
	var resp MessageResponse
	err := c.call(ctx, http.MethodPost, "/reset-password", "", req, &resp, true)
	return resp, err
}

// CheckStatus reports today's attendance. A false status only means there is
// no record yet, so it is not treated as a failure.
func (c *Client) CheckStatus(ctx context.Context, token string) (CheckStatus, error) {
	var resp CheckStatus
	err := c.call(ctx, http.MethodGet, "/checkStatus", token, nil, &resp, false)
	return resp, err
}

func (c *Client) CheckIn(ctx context.Context, token string) (CheckInResponse, error) {
	var resp CheckInResponse
	err := c.call(ctx, http.MethodGet, "/check-in", token, nil, &resp, true)
	return resp, err
}

func (c *Client) CheckOut(ctx context.Context, token string, logID FlexID, note, eod string) error {
	return c.call(ctx, http.MethodPost, "/check-out", token, map[string]string{
		"log_id": logID.String(),
		"note":   note,
		"eod":    eod,
	}, nil, true)
}

func monthBody(year, month int) map[string]any {
	body := map[string]any{}
	if year > 0 && month > 0 {
		body["year"] = year
		body["month"] = month
	}
	return body
}

func (c *Client) Records(ctx context.Context, token string, year, month int) (RecordsResponse, error) {
	var resp RecordsResponse
	err := c.call(ctx, http.MethodPost, "/records", token, monthBody(year, month), &resp, true)
	return resp, err
}

func (c *Client) DetailedSheet(ctx context.Context, token string, userID int64, year, month int) (RecordsResponse, error) {
	body := monthBody(year, month)
	body["id"] = userID
	var resp RecordsResponse
	err := c.call(ctx, http.MethodPost, "/detailed-sheet", token, body, &resp, true)
	return resp, err
}

func (c *Client) Holidays(ctx context.Context, token string) ([]Holiday, error) {
	var resp struct {
		Holidays []Holiday `json:"holidays"`
	}
	err := c.call(ctx, http.MethodGet, "/holidays", token, nil, &resp, true)
	return resp.Holidays, err
}

func (c *Client) AddHoliday(ctx context.Context, token, name, date string) error {
	return c.call(ctx, http.MethodPost, "/add-holiday", token, map[string]string{"name": name, "date": date}, nil, true)
}

func (c *Client) ApplyLeave(ctx context.Context, token string, req LeaveApplication) error {
	return c.call(ctx, http.MethodPost, "/leaves", token, req, nil, true)
}

func (c *Client) LeaveRecords(ctx context.Context, token string) ([]LeaveRequest, error) {
	var resp []LeaveRequest
	err := c.call(ctx, http.MethodPost, "/leaves-status", token, map[string]string{}, &resp, true)
	return resp, err
}

func (c *Client) DecideLeave(ctx context.Context, token, leaveID string, approve bool) error {
	action := 0
	if approve {
		action = 1
	}
	return c.call(ctx, http.MethodPost, "/approve-leave", token, map[string]any{"leaveId": leaveID, "action": action}, nil, true)
}

func (c *Client) PendingLeaveCount(ctx context.Context, token string) (int, error) {
	var resp struct {
		Count FlexInt `json:"count"`
	}
	err := c.call(ctx, http.MethodGet, "/pending-count", token, nil, &resp, true)
	return int(resp.Count), err
}

func (c *Client) AssignDetail(ctx context.Context, token string) (AssignDetail, error) {
	var resp AssignDetail
	err := c.call(ctx, http.MethodGet, "/assign-detail", token, nil, &resp, true)
	return resp, err
}

func (c *Client) AssignTasks(ctx context.Context, token string, employeeID FlexID, names []string) error {
	return c.call(ctx, http.MethodPost, "/assign-task", token, map[string]any{
		"assigned_to": employeeID.String(),
		"tasks":       names,
	}, nil, true)
}

func (c *Client) DeleteTask(ctx context.Context, token string, taskID FlexID) error {
	return c.call(ctx, http.MethodPost, "/delete-task", token, map[string]string{"id": taskID.String()}, nil, true)
}

// AdvanceTask moves a task one step: pending to started, started to completed.
func (c *Client) AdvanceTask(ctx context.Context, token string, taskID FlexID) error {
	return c.call(ctx, http.MethodPost, "/update-status", token, map[string]string{"id": taskID.String()}, nil, true)
}

func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	var resp struct {
		Data Profile `json:"data"`
	}
	err := c.call(ctx, http.MethodPost, "/profile", token, map[string]string{}, &resp, true)
	return resp.Data, err
}

// SaveProfile creates or updates a profile. Admins pass an id field to edit
// another employee; an empty id creates one.
func (c *Client) SaveProfile(ctx context.Context, token string, fields map[string]string, files []Upload) (MessageResponse, error) {
	body, err := newMultipartBody(fields, files)
	if err != nil {
		return MessageResponse{}, err
	}
	var resp MessageResponse
	err = c.call(ctx, http.MethodPost, "/profile-save", token, body, &resp, true)
	return resp, err
}

func (c *Client) Employees(ctx context.Context, token string) ([]Employee, error) {
	var resp struct {
		Users []Employee `json:"users"`
	}
	err := c.call(ctx, http.MethodGet, "/employees", token, nil, &resp, true)
	return resp.Users, err
}

func (c *Client) DeleteEmployee(ctx context.Context, token string, id FlexID) error {
	return c.call(ctx, http.MethodPost, "/delete", token, map[string]string{"id": id.String()}, nil, true)
}

func (c *Client) MonthSummary(ctx context.Context, token string, userID int64, year, month int) (MonthSummary, error) {
	var resp MonthSummary
	err := c.call(ctx, http.MethodPost, "/summary", token, map[string]string{
		"id":    strconv.FormatInt(userID, 10),
		"year":  strconv.Itoa(year),
		"month": strconv.Itoa(month),
	}, &resp, true)
	return resp, err
}

func (c *Client) DashboardSummary(ctx context.Context, token string) (DashboardSummary, error) {
	var resp DashboardSummary
	err := c.call(ctx, http.MethodGet, "/dashboard-summary", token, nil, &resp, true)
	return resp, err
}

func (c *Client) UserDashboard(ctx context.Context, token string) (UserDashboard, error) {
	var resp struct {
		Data UserDashboard `json:"data"`
	}
	err := c.call(ctx, http.MethodGet, "/dashboard-summary-user", token, nil, &resp, true)
	return resp.Data, err
}
