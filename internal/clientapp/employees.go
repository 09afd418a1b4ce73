package clientapp

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
)

func (s *server) employeesPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := s.employeesData(r)
	if err != nil {
		s.loadFailed(w, r, err, "employees")
		return
	}
	s.render(w, "employees", data)
}

func (s *server) employeesData(r *http.Request) (pageData, error) {
	list, err := s.api.Employees(r.Context(), s.current(r).AccessToken)
	if err != nil {
		return pageData{}, err
	}
	data := s.basePage(r, "Employees", "employees")
	data.Employees = list
	if edit := strings.TrimSpace(r.URL.Query().Get("edit")); edit != "" {
		for i := range list {
			if list[i].ID.String() == edit {
				data.Editing = &list[i]
				break
			}
		}
	}
	return data, nil
}

func (s *server) saveEmployee(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	rec := s.current(r)
	fields, files, err := readProfileForm(r, true)
	if err != nil {
		redirectWith(w, r, "/employees", "error", capitalize(err.Error()))
		return
	}
	if fields["name"] == "" || fields["email"] == "" {
		redirectWith(w, r, "/employees", "error", "Name and email are required")
		return
	}

	resp, err := s.api.SaveProfile(r.Context(), rec.AccessToken, fields, files)
	var verr *backend.ValidationError
	switch {
	case errors.As(err, &verr):
		data, loadErr := s.employeesData(r)
		if loadErr != nil {
			s.loadFailed(w, r, loadErr, "employees")
			return
		}
		data.Editing = employeeFromFields(fields)
		data.FieldErrors = verr.Flatten()
		s.renderStatus(w, http.StatusUnprocessableEntity, "employees", data)
		return
	case err != nil:
		s.actionFailed(w, r, err, "/employees")
		return
	}
	msg := "Employee added"
	if fields["id"] != "" {
		msg = "Employee updated"
	}
	redirectWith(w, r, "/employees", "msg", messageOr(resp.Message, msg))
}

// employeeFromFields refills the edit form after a rejected save.
func employeeFromFields(fields map[string]string) *backend.Employee {
	return &backend.Employee{
		ID:          backend.FlexID(fields["id"]),
		Name:        fields["name"],
		Email:       fields["email"],
		EmployeeID:  fields["employee_id"],
		Role:        fields["role"],
		PhoneNumber: fields["phone_number"],
		Address:     fields["address"],
		DateOfBirth: fields["date_of_birth"],
		Employee: &backend.EmploymentDetails{
			Department:            fields["department"],
			Designation:           fields["designation"],
			DateOfJoining:         fields["date_of_joining"],
			EmergencyContactPhone: fields["emergency_contact_phone"],
			AccountNumber:         fields["account_number"],
			BankName:              fields["bank_name"],
			IFSCCode:              fields["ifsc_code"],
		},
	}
}

func (s *server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	rec := s.current(r)
	id := strings.TrimSpace(r.FormValue("id"))
	if id == "" {
		redirectWith(w, r, "/employees", "error", "Missing employee id")
		return
	}
	if backend.FlexID(id).Int64() == rec.UserID {
		redirectWith(w, r, "/employees", "error", "You cannot delete your own account")
		return
	}
	if err := s.api.DeleteEmployee(r.Context(), rec.AccessToken, backend.FlexID(id)); err != nil {
		s.actionFailed(w, r, err, "/employees")
		return
	}
	redirectWith(w, r, "/employees", "msg", "Employee deleted")
}
