package handler

import (
	"net/http"

	"reviewdesk/internal/auth"

	"github.com/gorilla/mux"
)

// Router builds the route table. Access rules live in the guards attached
// to each group, never in the handlers themselves.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(h.logRequests, h.recoverPanics, h.identify)

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	r.Handle("/", h.wrap(h.HomeHandler)).Methods(http.MethodGet)
	r.Handle("/register", h.wrap(h.RegisterHandler)).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/login", h.wrap(h.LoginHandler)).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/admin", http.RedirectHandler("/admin/", http.StatusFound)).Methods(http.MethodGet)

	member := r.NewRoute().Subrouter()
	member.Use(h.require(auth.RoleMember))
	member.Handle("/logout", h.wrap(h.LogoutHandler)).Methods(http.MethodGet)
	member.Handle("/submit-review", h.wrap(h.SubmitReviewHandler)).Methods(http.MethodGet, http.MethodPost)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(h.require(auth.RoleAdmin))
	admin.Handle("/", h.wrap(h.AdminDashboardHandler)).Methods(http.MethodGet)
	admin.Handle("/reviews", h.wrap(h.AdminReviewsHandler)).Methods(http.MethodGet)
	admin.Handle("/delete_review/{id:[0-9]+}", h.wrap(h.AdminDeleteReviewHandler)).Methods(http.MethodPost)
	admin.Handle("/edit_review/{id:[0-9]+}", h.wrap(h.AdminEditReviewHandler)).Methods(http.MethodGet, http.MethodPost)
	admin.Handle("/approve_review/{id:[0-9]+}", h.wrap(h.AdminApproveReviewHandler)).Methods(http.MethodPost)

	return r
}
