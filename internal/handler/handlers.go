package handler

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"reviewdesk/internal/auth"
	"reviewdesk/internal/logger"
	"reviewdesk/internal/models"
	"reviewdesk/internal/service"

	"github.com/gorilla/sessions"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Pinger reports database health; nil when running without a database.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Reviews      *service.Reviews
	Accounts     *service.Accounts
	Tokens       *auth.Tokens
	FlashKey     string
	SecureCookie bool
	DB           Pinger
}

// Handler holds the request handlers and their dependencies.
type Handler struct {
	reviews  *service.Reviews
	accounts *service.Accounts
	tokens   *auth.Tokens
	flashes  sessions.Store
	secure   bool
	db       Pinger
	Tmpl     *template.Template
}

func NewHandler(deps Deps) (*Handler, error) {
	funcMap := template.FuncMap{
		"stars": func(rating int) string {
			if rating < 0 {
				rating = 0
			}
			if rating > 5 {
				rating = 5
			}
			return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
		},
		"formatRating": func(avg float64) string {
			return fmt.Sprintf("%.2f", avg)
		},
		"formatDate": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	logger.Debugf("templates loaded: %d", len(tmpl.Templates()))

	store := sessions.NewCookieStore([]byte(deps.FlashKey))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   deps.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}

	return &Handler{
		reviews:  deps.Reviews,
		accounts: deps.Accounts,
		tokens:   deps.Tokens,
		flashes:  store,
		secure:   deps.SecureCookie,
		db:       deps.DB,
		Tmpl:     tmpl,
	}, nil
}

func (h *Handler) setEncoding(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// render executes the layout into a buffer first so a template error never
// leaves a half-written page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, data models.PageData) error {
	id := auth.CurrentIdentity(r.Context())
	data.LoggedIn = id.Authenticated()
	data.IsAdmin = id.IsAdmin
	data.Username = id.Username
	data.Flashes = append(h.popFlashes(w, r), data.Flashes...)

	var buf bytes.Buffer
	if err := h.Tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return fmt.Errorf("render %s: %w", data.CurrentPage, err)
	}
	h.setEncoding(w)
	_, err := buf.WriteTo(w)
	return err
}

// Health reports liveness and, when a database is configured, its reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			logger.Errorf("health check: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `{"status":"unavailable"}`)
			return
		}
	}
	fmt.Fprint(w, `{"status":"ok"}`)
}
