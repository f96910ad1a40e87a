package models

import "reviewdesk/internal/domain"

// Flash categories understood by the layout.
const (
	FlashSuccess = "success"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

var FlashCategories = []string{FlashSuccess, FlashWarning, FlashDanger}

type Flash struct {
	Category string
	Message  string
}

// FormData echoes submitted form values back into a re-rendered form.
// Passwords are never echoed.
type FormData struct {
	Username string
	Email    string
	Rating   string
	Comment  string
}

// PageData is passed to the HTML templates.
type PageData struct {
	Title       string
	CurrentPage string
	LoggedIn    bool
	IsAdmin     bool
	Username    string
	Flashes     []Flash

	Reviews    []domain.Feedback
	Pending    []domain.Feedback
	Approved   []domain.Feedback
	Review     *domain.Feedback
	AvgRating  float64
	TotalUsers int

	Form FormData
}
