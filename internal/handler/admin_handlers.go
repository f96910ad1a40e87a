package handler

import (
	"net/http"
	"strconv"

	"reviewdesk/internal/auth"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/models"

	"github.com/gorilla/mux"
)

// AdminDashboardHandler - pending and approved reviews with stats
func (h *Handler) AdminDashboardHandler(w http.ResponseWriter, r *http.Request) error {
	dash, err := h.reviews.Dashboard(r.Context(), auth.CurrentIdentity(r.Context()))
	if err != nil {
		return err
	}

	return h.render(w, r, models.PageData{
		Title:       "Admin dashboard",
		CurrentPage: "admin_dashboard",
		Pending:     dash.Pending,
		Approved:    dash.Approved,
		TotalUsers:  dash.TotalUsers,
		AvgRating:   dash.Average,
	})
}

// AdminReviewsHandler - every review
func (h *Handler) AdminReviewsHandler(w http.ResponseWriter, r *http.Request) error {
	overview, err := h.reviews.AllReviews(r.Context(), auth.CurrentIdentity(r.Context()))
	if err != nil {
		return err
	}

	return h.render(w, r, models.PageData{
		Title:       "All reviews",
		CurrentPage: "admin_reviews",
		Reviews:     overview.Reviews,
		TotalUsers:  overview.TotalUsers,
		AvgRating:   overview.Average,
	})
}

// AdminApproveReviewHandler - Pending -> Approved
func (h *Handler) AdminApproveReviewHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := reviewID(r)
	if err != nil {
		return err
	}
	if err := h.reviews.Approve(r.Context(), auth.CurrentIdentity(r.Context()), id); err != nil {
		return err
	}

	h.flash(w, r, models.FlashSuccess, "Review approved successfully.")
	http.Redirect(w, r, "/admin/", http.StatusFound)
	return nil
}

// AdminEditReviewHandler - edit form and update
func (h *Handler) AdminEditReviewHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := reviewID(r)
	if err != nil {
		return err
	}
	actor := auth.CurrentIdentity(r.Context())

	if r.Method != http.MethodPost {
		review, err := h.reviews.Get(r.Context(), actor, id)
		if err != nil {
			return err
		}
		return h.render(w, r, models.PageData{
			Title:       "Edit review",
			CurrentPage: "edit_review",
			Review:      &review,
			Form: models.FormData{
				Rating:  strconv.Itoa(review.Rating),
				Comment: review.Comment,
			},
		})
	}

	rating, err := parseRating(r.FormValue("rating"))
	if err != nil {
		return err
	}
	if err := h.reviews.Edit(r.Context(), actor, id, rating, r.FormValue("comment")); err != nil {
		return err
	}

	h.flash(w, r, models.FlashSuccess, "Review updated successfully.")
	http.Redirect(w, r, "/admin/", http.StatusFound)
	return nil
}

// AdminDeleteReviewHandler - hard delete
func (h *Handler) AdminDeleteReviewHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := reviewID(r)
	if err != nil {
		return err
	}
	if err := h.reviews.Delete(r.Context(), auth.CurrentIdentity(r.Context()), id); err != nil {
		return err
	}

	h.flash(w, r, models.FlashSuccess, "Review deleted successfully.")
	http.Redirect(w, r, "/admin/", http.StatusFound)
	return nil
}

func reviewID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, domain.ErrNotFound
	}
	return id, nil
}
