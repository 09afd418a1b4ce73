package clientapp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ritikrathore0011/Employee-Management/internal/avatar"
	"github.com/ritikrathore0011/Employee-Management/internal/backend"
)

const maxFormBytes = 32 << 20

var profileFields = []string{
	"name", "email", "phone_number", "address", "date_of_birth",
	"employee_id", "role",
	"department", "designation", "date_of_joining", "emergency_contact_phone",
	"account_number", "bank_name", "ifsc_code",
}

// Only admins may change these through the form.
var adminOnlyFields = map[string]bool{"name": true, "email": true, "employee_id": true, "role": true}

var documentFields = []string{"resume", "id_proof", "contract"}

func (s *server) profileRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rec := s.current(r)
		profile, err := s.api.Profile(r.Context(), rec.AccessToken)
		if err != nil {
			s.loadFailed(w, r, err, "profile")
			return
		}
		data := s.basePage(r, "Profile", "profile")
		data.Profile = &profile
		s.render(w, "profile", data)
	case http.MethodPost:
		s.saveProfile(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) saveProfile(w http.ResponseWriter, r *http.Request) {
	rec := s.current(r)
	fields, files, err := readProfileForm(r, rec.IsAdmin())
	if err != nil {
		redirectWith(w, r, "/profile", "error", capitalize(err.Error()))
		return
	}
	resp, err := s.api.SaveProfile(r.Context(), rec.AccessToken, fields, files)
	if err != nil {
		s.actionFailed(w, r, err, "/profile")
		return
	}
	redirectWith(w, r, "/profile", "msg", messageOr(resp.Message, "Profile saved"))
}

// readProfileForm collects the profile-save fields and uploads from a
// multipart post. Identity fields are dropped unless admin is set.
func readProfileForm(r *http.Request, admin bool) (map[string]string, []backend.Upload, error) {
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, fmt.Errorf("invalid form: %w", err)
	}

	fields := map[string]string{}
	if id := strings.TrimSpace(r.FormValue("id")); id != "" {
		fields["id"] = id
	}
	for _, name := range profileFields {
		if adminOnlyFields[name] && !admin {
			continue
		}
		if v, ok := r.Form[name]; ok && len(v) > 0 {
			fields[name] = strings.TrimSpace(v[0])
		}
	}

	var files []backend.Upload
	for _, name := range documentFields {
		up, ok, err := formUpload(r, name)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			files = append(files, up)
		}
	}

	photo, ok, err := formUpload(r, "profile")
	if err != nil {
		return nil, nil, err
	}
	if ok {
		normalized, err := avatar.Normalize(photo.Content)
		if err != nil {
			return nil, nil, fmt.Errorf("profile photo: %w", err)
		}
		base := strings.TrimSuffix(photo.Filename, filepath.Ext(photo.Filename))
		files = append(files, backend.Upload{
			Field:       "profile",
			Filename:    base + ".png",
			ContentType: "image/png",
			Content:     normalized,
		})
	}
	return fields, files, nil
}

func formUpload(r *http.Request, field string) (backend.Upload, bool, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return backend.Upload{}, false, nil
	}
	if err != nil {
		return backend.Upload{}, false, fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return backend.Upload{}, false, fmt.Errorf("read %s: %w", field, err)
	}
	if len(content) == 0 {
		return backend.Upload{}, false, nil
	}
	return backend.Upload{
		Field:       field,
		Filename:    filepath.Base(header.Filename),
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, true, nil
}
