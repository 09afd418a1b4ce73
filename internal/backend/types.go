package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexID accepts ids the backend sends either as numbers or strings.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

func (f FlexID) Int64() int64 {
	n, _ := strconv.ParseInt(string(f), 10, 64)
	return n
}

// FlexInt accepts counts sent as numbers or numeric strings.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

type User struct {
	ID          FlexID `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessToken string `json:"access_token"`
	EmployeeID  string `json:"employee_id"`
	Initials    string `json:"initials"`
}

type LoginResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	User    User   `json:"user"`
}

type MessageResponse struct {
	Success  bool   `json:"success"`
	Status   bool   `json:"status"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

type ResetPasswordRequest struct {
	Email                string `json:"email,omitempty"`
	OTP                  string `json:"otp,omitempty"`
	Token                string `json:"token,omitempty"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type AttendanceRecord struct {
	ID         FlexID `json:"id"`
	Date       string `json:"date"`
	Day        string `json:"day"`
	LoginTime  string `json:"login_time"`
	LogoutTime string `json:"logout_time"`
	Note       string `json:"note"`
	EOD        string `json:"eod"`
}

type TodayRecord struct {
	LoginTime  string `json:"login_time"`
	LogoutTime string `json:"logout_time"`
	Note       string `json:"note"`
}

type CheckStatus struct {
	Status  bool         `json:"status"`
	Message string       `json:"message"`
	Record  *TodayRecord `json:"record"`
	LogID   FlexID       `json:"log_id"`
}

type CheckInResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	LogID   FlexID `json:"log_id"`
}

type MonthSummary struct {
	TotalDays    FlexInt `json:"total_days"`
	Present      FlexInt `json:"present"`
	Leaves       FlexInt `json:"leaves"`
	LateLogins   FlexInt `json:"late_logins"`
	EarlyLogouts FlexInt `json:"early_logouts"`
}

type RecordsResponse struct {
	Status  bool               `json:"status"`
	Records []AttendanceRecord `json:"records"`
	Summary struct {
		Original MonthSummary `json:"original"`
	} `json:"summary"`
}

type Holiday struct {
	ID    FlexID `json:"id"`
	Title string `json:"title"`
	Name  string `json:"name"`
	Date  string `json:"date"`
}

// Label is the holiday's display name; the backend uses either field.
func (h Holiday) Label() string {
	if h.Title != "" {
		return h.Title
	}
	return h.Name
}

type LeaveApplication struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

type LeaveRequest struct {
	ID         string `json:"leave_id_encrypted"`
	Type       string `json:"type"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Reason     string `json:"reason"`
	Status     string `json:"status"`
	UserName   string `json:"user_name"`
	EmployeeID string `json:"employee_id"`
}

type Task struct {
	ID          FlexID `json:"id"`
	TaskName    string `json:"task_name"`
	Status      string `json:"status"`
	AssignedTo  FlexID `json:"assigned_to"`
	Assigner    string `json:"assigner"`
	Date        string `json:"date"`
	CompletedAt string `json:"completed_at"`
}

type TaskEmployee struct {
	ID         FlexID `json:"id"`
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id"`
}

type AssignDetail struct {
	Employees []TaskEmployee `json:"employees"`
	Tasks     []Task         `json:"assigned_tasks"`
}

type EmploymentDetails struct {
	Department            string `json:"department"`
	Designation           string `json:"designation"`
	DateOfJoining         string `json:"date_of_joining"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	AccountNumber         string `json:"account_number"`
	BankName              string `json:"bank_name"`
	IFSCCode              string `json:"ifsc_code"`
	ResumePath            string `json:"resume_path"`
	IDProofPath           string `json:"id_proof_path"`
	ContractPath          string `json:"contract_path"`
}

type Profile struct {
	ID          FlexID             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	PhoneNumber string             `json:"phone_number"`
	Address     string             `json:"address"`
	DateOfBirth string             `json:"date_of_birth"`
	EmployeeID  string             `json:"employee_id"`
	Role        string             `json:"role"`
	Employee    *EmploymentDetails `json:"employee"`
}

type Employee struct {
	ID          FlexID             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	EmployeeID  string             `json:"employee_id"`
	Role        string             `json:"role"`
	PhoneNumber string             `json:"phone_number"`
	Address     string             `json:"address"`
	DateOfBirth string             `json:"date_of_birth"`
	Employee    *EmploymentDetails `json:"employee"`
}

type DashboardSummary struct {
	TotalEmployees   FlexInt `json:"totalEmployees"`
	PresentEmployees FlexInt `json:"presentEmployees"`
	LeaveEmployees   FlexInt `json:"leaveEmployees"`
	PendingTasks     FlexInt `json:"pendingTasks"`
	WorkingTasks     FlexInt `json:"workingTasks"`
	CompletedToday   FlexInt `json:"completedToday"`
}

type UserDashboard struct {
	MonthSummary MonthSummary `json:"monthSummary"`
	Holidays     struct {
		Holidays []Holiday `json:"holidays"`
	} `json:"holidays"`
	LatestLeave *LeaveRequest `json:"latestLeave"`
}

// Upload is one file part of a multipart profile save.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}
