package domain

import (
	"math"
	"time"
	"unicode/utf8"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000
)

// Status is the moderation state of a feedback record. Deleted records are
// removed from the store, so only Pending and Approved are ever observed.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Filter selects which feedback rows a listing or aggregate considers.
type Filter int

const (
	FilterAll Filter = iota
	FilterApproved
	FilterPending
)

func (f Filter) Match(fb Feedback) bool {
	switch f {
	case FilterApproved:
		return fb.IsApproved
	case FilterPending:
		return !fb.IsApproved
	default:
		return true
	}
}

type Feedback struct {
	ID          int       `json:"id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	UserID      int       `json:"user_id"`
	Username    string    `json:"username,omitempty"`
	IsApproved  bool      `json:"is_approved"`
	CreatedDate time.Time `json:"created_date"`
}

// NewFeedback builds a pending review owned by userID.
func NewFeedback(userID, rating int, comment string) (Feedback, error) {
	if err := ValidateReview(rating, comment); err != nil {
		return Feedback{}, err
	}
	return Feedback{
		Rating:      rating,
		Comment:     comment,
		UserID:      userID,
		IsApproved:  false,
		CreatedDate: time.Now().UTC(),
	}, nil
}

func (f Feedback) Status() Status {
	if f.IsApproved {
		return StatusApproved
	}
	return StatusPending
}

// Approve moves the review to Approved. Approving twice is a no-op.
func (f *Feedback) Approve() {
	f.IsApproved = true
}

// Edit replaces rating and comment and keeps the approval flag as is.
func (f *Feedback) Edit(rating int, comment string) error {
	if err := ValidateReview(rating, comment); err != nil {
		return err
	}
	f.Rating = rating
	f.Comment = comment
	return nil
}

func ValidateReview(rating int, comment string) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return ErrInvalidComment
	}
	return nil
}

// Average is the mean rating of feedbacks, 0 for an empty slice.
func Average(feedbacks []Feedback) float64 {
	if len(feedbacks) == 0 {
		return 0
	}
	sum := 0
	for _, f := range feedbacks {
		sum += f.Rating
	}
	return float64(sum) / float64(len(feedbacks))
}

// RoundRating rounds an average to two decimals for display.
func RoundRating(avg float64) float64 {
	return math.Round(avg*100) / 100
}
