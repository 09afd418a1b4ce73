package clientapp

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ritikrathore0011/Employee-Management/internal/backend"
	"github.com/ritikrathore0011/Employee-Management/internal/guard"
	"github.com/ritikrathore0011/Employee-Management/internal/security"
	"github.com/ritikrathore0011/Employee-Management/internal/session"
)

const oauthStateCookie = "emconsole_oauth_state"

func (s *server) loginRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "login", s.basePage(r, "Sign in", "login"))
	case http.MethodPost:
		s.login(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, guard.LoginPath, "error", "Invalid form submission")
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		redirectWith(w, r, guard.LoginPath, "error", "Username and password are required")
		return
	}

	user, err := s.api.Login(r.Context(), username, password)
	if err != nil {
		log.Printf("login for %q failed: %v", username, err)
		redirectWith(w, r, guard.LoginPath, "error", backend.UserMessage(err))
		return
	}
	s.startSession(w, r, user)
}

// startSession stores the backend user as this browser's session and sends
// the browser to its role's landing page.
func (s *server) startSession(w http.ResponseWriter, r *http.Request, user backend.User) {
	rec, _, err := s.sessions.Start(w, r, session.Record{
		UserID:      user.ID.Int64(),
		AccessToken: user.AccessToken,
		Name:        user.Name,
		Role:        user.Role,
		EmployeeID:  user.EmployeeID,
		Initials:    user.Initials,
	})
	if err != nil {
		log.Printf("start session: %v", err)
		redirectWith(w, r, guard.LoginPath, "error", "Unable to start session")
		return
	}
	http.Redirect(w, r, guard.LandingPath(rec.Role), http.StatusFound)
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if err := s.sessions.End(w, r); err != nil {
		log.Printf("end session: %v", err)
	}
	redirectWith(w, r, guard.LoginPath, "msg", "Signed out")
}

func (s *server) forgotPasswordRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data := s.basePage(r, "Forgot password", "forgot-password")
		data.Step = "email"
		data.Email = strings.TrimSpace(r.URL.Query().Get("email"))
		if data.Email != "" && r.URL.Query().Get("step") == "otp" {
			data.Step = "otp"
		}
		s.render(w, "forgot_password", data)
	case http.MethodPost:
		s.forgotPasswordSubmit(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) forgotPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" || !strings.Contains(email, "@") {
		redirectWith(w, r, "/forgot-password", "error", "Enter a valid email address")
		return
	}
	otpStep := "/forgot-password?step=otp&email=" + url.QueryEscape(email)

	switch r.FormValue("action") {
	case "send-otp":
		resp, err := s.api.SendOTP(r.Context(), email)
		if err != nil {
			redirectWith(w, r, "/forgot-password", "error", backend.UserMessage(err))
			return
		}
		redirectWith(w, r, otpStep, "msg", messageOr(resp.Message, "OTP sent to your email"))
	case "reset":
		otp := strings.TrimSpace(r.FormValue("otp"))
		if err := security.ValidateOTP(otp); err != nil {
			redirectWith(w, r, otpStep, "error", "Enter the 6 digit code from your email")
			return
		}
		password := r.FormValue("password")
		confirmation := r.FormValue("password_confirmation")
		if err := security.ValidateNewPassword(password, confirmation); err != nil {
			redirectWith(w, r, otpStep, "error", capitalize(err.Error()))
			return
		}
		resp, err := s.api.ResetPassword(r.Context(), backend.ResetPasswordRequest{
			Email: email, OTP: otp, Password: password, PasswordConfirmation: confirmation,
		})
		if err != nil {
			redirectWith(w, r, otpStep, "error", backend.UserMessage(err))
			return
		}
		redirectWith(w, r, guard.LoginPath, "msg", messageOr(resp.Message, "Password reset, please sign in"))
	default:
		redirectWith(w, r, "/forgot-password", "error", "Unknown action")
	}
}

func (s *server) resetPasswordRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data := s.basePage(r, "Reset password", "reset-password")
		data.Token = strings.TrimSpace(r.URL.Query().Get("token"))
		if data.Token == "" {
			redirectWith(w, r, "/forgot-password", "error", "Reset link is missing its token")
			return
		}
		s.render(w, "reset_password", data)
	case http.MethodPost:
		token := strings.TrimSpace(r.FormValue("token"))
		back := "/reset-password?token=" + url.QueryEscape(token)
		if token == "" {
			redirectWith(w, r, "/forgot-password", "error", "Reset link is missing its token")
			return
		}
		password := r.FormValue("password")
		confirmation := r.FormValue("password_confirmation")
		if err := security.ValidateNewPassword(password, confirmation); err != nil {
			redirectWith(w, r, back, "error", capitalize(err.Error()))
			return
		}
		resp, err := s.api.ResetPassword(r.Context(), backend.ResetPasswordRequest{
			Token: token, Password: password, PasswordConfirmation: confirmation,
		})
		if err != nil {
			redirectWith(w, r, back, "error", backend.UserMessage(err))
			return
		}
		redirectWith(w, r, guard.LoginPath, "msg", messageOr(resp.Message, "Password reset, please sign in"))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type googleSignIn struct {
	config *oauth2.Config
}

func newGoogleSignIn(cfg Config) *googleSignIn {
	if cfg.GoogleClientID == "" {
		return nil
	}
	endpoint := google.Endpoint
	if cfg.GoogleAuthURL != "" {
		endpoint.AuthURL = cfg.GoogleAuthURL
	}
	if cfg.GoogleTokenURL != "" {
		endpoint.TokenURL = cfg.GoogleTokenURL
	}
	return &googleSignIn{config: &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
		Endpoint:     endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}}
}

func (s *server) googleStart(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		http.NotFound(w, r)
		return
	}
	state, err := security.RandomToken(24)
	if err != nil {
		redirectWith(w, r, guard.LoginPath, "error", "Unable to start Google sign-in")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/google",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	http.Redirect(w, r, s.google.config.AuthCodeURL(state), http.StatusFound)
}

func (s *server) googleCallback(w http.ResponseWriter, r *http.Request) {
	if s.google == nil {
		http.NotFound(w, r)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/auth/google", MaxAge: -1})

	if msg := r.URL.Query().Get("error"); msg != "" {
		redirectWith(w, r, guard.LoginPath, "error", "Google sign-in was cancelled")
		return
	}
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || !security.SameToken(cookie.Value, r.URL.Query().Get("state")) {
		redirectWith(w, r, guard.LoginPath, "error", "Google sign-in expired, try again")
		return
	}

	tok, err := s.google.config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Printf("google exchange failed: %v", err)
		redirectWith(w, r, guard.LoginPath, "error", "Google sign-in failed")
		return
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		redirectWith(w, r, guard.LoginPath, "error", "Google did not return an identity token")
		return
	}

	user, err := s.api.GoogleLogin(r.Context(), idToken)
	if err != nil {
		var apiErr *backend.APIError
		if !errors.As(err, &apiErr) {
			log.Printf("google login failed: %v", err)
		}
		redirectWith(w, r, guard.LoginPath, "error", backend.UserMessage(err))
		return
	}
	s.startSession(w, r, user)
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}

func capitalize(msg string) string {
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
