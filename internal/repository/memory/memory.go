// Package memory keeps users and feedback in process memory. It backs the
// test suites and the --in-memory development mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"reviewdesk/internal/domain"
)

// DB is the shared state behind UserStore and FeedbackStore. A single mutex
// stands in for the per-call transaction of the relational backend.
type DB struct {
	mu       sync.Mutex
	users    map[int]domain.User
	feedback map[int]domain.Feedback
	nextUser int
	nextFb   int
}

func New() *DB {
	return &DB{
		users:    make(map[int]domain.User),
		feedback: make(map[int]domain.Feedback),
	}
}

type UserStore struct{ db *DB }

func NewUserStore(db *DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) Create(_ context.Context, u *domain.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users {
		if existing.Username == u.Username {
			return fmt.Errorf("create user: %w", domain.ErrDuplicateUsername)
		}
	}
	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", domain.ErrDuplicateEmail)
		}
	}
	s.insertUser(u)
	return nil
}

func (s *UserStore) EnsureAdmin(_ context.Context, u *domain.User) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users {
		if existing.Email == u.Email {
			return false, nil
		}
	}
	for _, existing := range s.db.users {
		if existing.Username == u.Username {
			return false, fmt.Errorf("ensure admin: %w", domain.ErrDuplicateUsername)
		}
	}
	u.IsAdmin = true
	s.insertUser(u)
	return true, nil
}

func (s *UserStore) insertUser(u *domain.User) {
	s.db.nextUser++
	u.ID = s.db.nextUser
	u.CreatedAt = time.Now().UTC()
	s.db.users[u.ID] = *u
}

func (s *UserStore) GetByID(_ context.Context, id int) (domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("get user: %w", domain.ErrNotFound)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, u := range s.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("get user: %w", domain.ErrNotFound)
}

func (s *UserStore) CountMembers(_ context.Context) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	n := 0
	for _, u := range s.db.users {
		if !u.IsAdmin {
			n++
		}
	}
	return n, nil
}

// Len reports the number of users; tests use it to assert nothing was inserted.
func (s *UserStore) Len() int {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return len(s.db.users)
}

type FeedbackStore struct{ db *DB }

func NewFeedbackStore(db *DB) *FeedbackStore { return &FeedbackStore{db: db} }

func (s *FeedbackStore) Create(_ context.Context, f *domain.Feedback) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[f.UserID]; !ok {
		return fmt.Errorf("create feedback: owner %d: %w", f.UserID, domain.ErrNotFound)
	}
	s.db.nextFb++
	f.ID = s.db.nextFb
	if f.CreatedDate.IsZero() {
		f.CreatedDate = time.Now().UTC()
	}
	stored := *f
	stored.Username = ""
	s.db.feedback[f.ID] = stored
	return nil
}

func (s *FeedbackStore) Get(_ context.Context, id int) (domain.Feedback, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	f, ok := s.db.feedback[id]
	if !ok {
		return domain.Feedback{}, fmt.Errorf("get feedback %d: %w", id, domain.ErrNotFound)
	}
	return s.withUsername(f), nil
}

func (s *FeedbackStore) List(_ context.Context, filter domain.Filter) ([]domain.Feedback, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.list(filter), nil
}

func (s *FeedbackStore) Update(_ context.Context, id int, upd func(f *domain.Feedback) error) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	f, ok := s.db.feedback[id]
	if !ok {
		return fmt.Errorf("update feedback %d: %w", id, domain.ErrNotFound)
	}
	f = s.withUsername(f)
	if err := upd(&f); err != nil {
		return fmt.Errorf("update feedback %d: %w", id, err)
	}
	stored := s.db.feedback[id]
	stored.Rating = f.Rating
	stored.Comment = f.Comment
	stored.IsApproved = f.IsApproved
	s.db.feedback[id] = stored
	return nil
}

func (s *FeedbackStore) Delete(_ context.Context, id int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.feedback[id]; !ok {
		return fmt.Errorf("delete feedback %d: %w", id, domain.ErrNotFound)
	}
	delete(s.db.feedback, id)
	return nil
}

func (s *FeedbackStore) AverageRating(_ context.Context, filter domain.Filter) (float64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return domain.Average(s.list(filter)), nil
}

func (s *FeedbackStore) list(filter domain.Filter) []domain.Feedback {
	var out []domain.Feedback
	for _, f := range s.db.feedback {
		if filter.Match(f) {
			out = append(out, s.withUsername(f))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedDate.Equal(out[j].CreatedDate) {
			return out[i].CreatedDate.After(out[j].CreatedDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *FeedbackStore) withUsername(f domain.Feedback) domain.Feedback {
	f.Username = s.db.users[f.UserID].Username
	return f
}
