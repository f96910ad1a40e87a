package handler

import (
	"errors"
	"net/http"
	"strings"

	"reviewdesk/internal/auth"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/models"
	"reviewdesk/internal/service"
)

// RegisterHandler - registration form
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) error {
	if auth.CurrentIdentity(r.Context()).Authenticated() {
		http.Redirect(w, r, "/submit-review", http.StatusFound)
		return nil
	}

	data := models.PageData{Title: "Register", CurrentPage: "register"}
	if r.Method != http.MethodPost {
		return h.render(w, r, data)
	}

	in := service.RegisterInput{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	data.Form = models.FormData{Username: in.Username, Email: in.Email}

	if in.Password != r.FormValue("confirm_password") {
		data.Flashes = append(data.Flashes, models.Flash{Category: models.FlashWarning, Message: "Passwords do not match."})
		return h.render(w, r, data)
	}

	_, err := h.accounts.Register(r.Context(), in)
	switch {
	case err == nil:
		h.flash(w, r, models.FlashSuccess, "Registration successful! Please login with your credentials.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return nil
	case errors.Is(err, domain.ErrDuplicateUsername):
		data.Flashes = append(data.Flashes, models.Flash{Category: models.FlashWarning, Message: "Username already exists. Please choose a different one."})
		return h.render(w, r, data)
	case errors.Is(err, domain.ErrDuplicateEmail):
		return redirectTo("/login", models.FlashWarning, "Email already exists. Please login instead.", err)
	case errors.Is(err, domain.ErrInvalidForm):
		msg := strings.TrimPrefix(err.Error(), domain.ErrInvalidForm.Error()+": ")
		data.Flashes = append(data.Flashes, models.Flash{Category: models.FlashWarning, Message: capitalize(msg) + "."})
		return h.render(w, r, data)
	default:
		return err
	}
}

// LoginHandler - login form
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) error {
	if id := auth.CurrentIdentity(r.Context()); id.Authenticated() {
		http.Redirect(w, r, landingPage(id), http.StatusFound)
		return nil
	}

	data := models.PageData{Title: "Login", CurrentPage: "login"}
	if r.Method != http.MethodPost {
		return h.render(w, r, data)
	}

	in := service.LoginInput{Email: r.FormValue("email"), Password: r.FormValue("password")}
	data.Form = models.FormData{Email: in.Email}

	user, err := h.accounts.Authenticate(r.Context(), in)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		data.Flashes = append(data.Flashes, models.Flash{Category: models.FlashDanger, Message: "Invalid email or password. Please try again."})
		return h.render(w, r, data)
	}
	if err != nil {
		return err
	}

	token, err := h.tokens.Generate(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(w, token, h.tokens.TTL(), h.secure)

	h.flash(w, r, models.FlashSuccess, "Login successful! You can now submit feedback.")
	http.Redirect(w, r, landingPage(auth.UserIdentity(user)), http.StatusFound)
	return nil
}

// LogoutHandler - clears the session cookie
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) error {
	auth.ClearSessionCookie(w)
	h.flash(w, r, models.FlashSuccess, "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusFound)
	return nil
}

func landingPage(id auth.Identity) string {
	if id.IsAdmin {
		return "/admin/"
	}
	return "/submit-review"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
