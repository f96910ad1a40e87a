package handler

import (
	"net/http"
	"strconv"
	"strings"

	"reviewdesk/internal/auth"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/models"
)

// HomeHandler - approved reviews and their average
func (h *Handler) HomeHandler(w http.ResponseWriter, r *http.Request) error {
	if auth.CurrentIdentity(r.Context()).IsAdmin {
		http.Redirect(w, r, "/admin/", http.StatusFound)
		return nil
	}

	listing, err := h.reviews.PublicListing(r.Context())
	if err != nil {
		return err
	}

	return h.render(w, r, models.PageData{
		Title:       "Reviews",
		CurrentPage: "home",
		Reviews:     listing.Reviews,
		AvgRating:   listing.Average,
	})
}

// SubmitReviewHandler - review form for members
func (h *Handler) SubmitReviewHandler(w http.ResponseWriter, r *http.Request) error {
	id := auth.CurrentIdentity(r.Context())
	if id.IsAdmin {
		http.Redirect(w, r, "/admin/", http.StatusFound)
		return nil
	}

	if r.Method != http.MethodPost {
		return h.render(w, r, models.PageData{Title: "Submit a review", CurrentPage: "submit_review"})
	}

	rating, err := parseRating(r.FormValue("rating"))
	if err != nil {
		return err
	}
	if _, err := h.reviews.Submit(r.Context(), id, rating, r.FormValue("comment")); err != nil {
		return err
	}

	h.flash(w, r, models.FlashSuccess, "Thank you for your review! It will be visible after approval.")
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

// parseRating accepts only whole numbers; range checks happen in the domain.
func parseRating(raw string) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.ErrInvalidRating
	}
	return rating, nil
}
