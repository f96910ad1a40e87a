package service

import (
	"context"
	"fmt"

	"reviewdesk/internal/auth"
	"reviewdesk/internal/domain"
	"reviewdesk/internal/logger"
)

// Listing is what the public home page shows.
type Listing struct {
	Reviews []domain.Feedback
	Average float64
}

type Dashboard struct {
	Pending    []domain.Feedback
	Approved   []domain.Feedback
	TotalUsers int
	Average    float64
}

type Overview struct {
	Reviews    []domain.Feedback
	TotalUsers int
	Average    float64
}

// Reviews is the moderation workflow: members submit, admins approve, edit
// and delete. Concurrent moderation of the same review is last-write-wins.
type Reviews struct {
	feedback FeedbackStore
	users    UserStore
}

func NewReviews(feedback FeedbackStore, users UserStore) *Reviews {
	return &Reviews{feedback: feedback, users: users}
}

func (s *Reviews) Submit(ctx context.Context, actor auth.Identity, rating int, comment string) (domain.Feedback, error) {
	if err := auth.Authorize(actor, auth.RoleMember); err != nil {
		return domain.Feedback{}, err
	}
	if actor.IsAdmin {
		return domain.Feedback{}, domain.ErrAccessDenied
	}

	f, err := domain.NewFeedback(actor.UserID, rating, comment)
	if err != nil {
		return domain.Feedback{}, err
	}
	if err := s.feedback.Create(ctx, &f); err != nil {
		return domain.Feedback{}, err
	}
	logger.Infof("review %d submitted by user %d", f.ID, actor.UserID)
	return f, nil
}

func (s *Reviews) Approve(ctx context.Context, actor auth.Identity, id int) error {
	if err := auth.Authorize(actor, auth.RoleAdmin); err != nil {
		return err
	}
	err := s.feedback.Update(ctx, id, func(f *domain.Feedback) error {
		f.Approve()
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infof("review %d approved by %s", id, actor.Username)
	return nil
}

func (s *Reviews) Edit(ctx context.Context, actor auth.Identity, id, rating int, comment string) error {
	if err := auth.Authorize(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if err := domain.ValidateReview(rating, comment); err != nil {
		return err
	}
	err := s.feedback.Update(ctx, id, func(f *domain.Feedback) error {
		return f.Edit(rating, comment)
	})
	if err != nil {
		return err
	}
	logger.Infof("review %d edited by %s", id, actor.Username)
	return nil
}

func (s *Reviews) Delete(ctx context.Context, actor auth.Identity, id int) error {
	if err := auth.Authorize(actor, auth.RoleAdmin); err != nil {
		return err
	}
	if err := s.feedback.Delete(ctx, id); err != nil {
		return err
	}
	logger.Infof("review %d deleted by %s", id, actor.Username)
	return nil
}

func (s *Reviews) Get(ctx context.Context, actor auth.Identity, id int) (domain.Feedback, error) {
	if err := auth.Authorize(actor, auth.RoleAdmin); err != nil {
		return domain.Feedback{}, err
	}
	return s.feedback.Get(ctx, id)
}

// PublicListing returns approved reviews and their average only.
func (s *Reviews) PublicListing(ctx context.Context) (Listing, error) {
	reviews, err := s.feedback.List(ctx, domain.FilterApproved)
	if err != nil {
		return Listing{}, err
	}
	avg, err := s.feedback.AverageRating(ctx, domain.FilterApproved)
	if err != nil {
		return Listing{}, err
	}
	return Listing{Reviews: reviews, Average: domain.RoundRating(avg)}, nil
}

func (s *Reviews) Dashboard(ctx context.Context, actor auth.Identity) (Dashboard, error) {
	if err := auth.Authorize(actor, auth.RoleAdmin); err != nil {
		return Dashboard{}, err
	}
	pending, err := s.feedback.List(ctx, domain.FilterPending)
	if err != nil {
		return Dashboard{}, err
	}
	approved, err := s.feedback.List(ctx, domain.FilterApproved)
	if err != nil {
		return Dashboard{}, err
	}
	total, err := s.users.CountMembers(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	avg, err := s.feedback.AverageRating(ctx, domain.FilterApproved)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Pending:    pending,
		Approved:   approved,
		TotalUsers: total,
		Average:    domain.RoundRating(avg),
	}, nil
}

// AllReviews lists every review. Its average covers pending rows too, since
// the page is admin-only.
func (s *Reviews) AllReviews(ctx context.Context, actor auth.Identity) (Overview, error) {
	if err := auth.Authorize(actor, auth.RoleAdmin); err != nil {
		return Overview{}, err
	}
	reviews, err := s.feedback.List(ctx, domain.FilterAll)
	if err != nil {
		return Overview{}, err
	}
	total, err := s.users.CountMembers(ctx)
	if err != nil {
		return Overview{}, err
	}
	avg, err := s.feedback.AverageRating(ctx, domain.FilterAll)
	if err != nil {
		return Overview{}, fmt.Errorf("all reviews: %w", err)
	}
	return Overview{Reviews: reviews, TotalUsers: total, Average: domain.RoundRating(avg)}, nil
}
