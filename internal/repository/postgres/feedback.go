package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"reviewdesk/internal/domain"
	"reviewdesk/pkg/database"
)

const feedbackColumns = `f.id, f.rating, f.comment, f.user_id, u.username, f.is_approved, f.created_date`

type FeedbackStore struct {
	db *database.DB
}

func NewFeedbackStore(db *database.DB) *FeedbackStore {
	return &FeedbackStore{db: db}
}

// Create inserts f and fills its ID.
func (s *FeedbackStore) Create(ctx context.Context, f *domain.Feedback) error {
	err := s.db.Pipe(ctx, nil, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO feedback (rating, comment, user_id, is_approved, created_date)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			f.Rating, f.Comment, f.UserID, f.IsApproved, f.CreatedDate,
		).Scan(&f.ID)
	})
	if err != nil {
		return fmt.Errorf("create feedback: %w", translate(err))
	}
	return nil
}

func (s *FeedbackStore) Get(ctx context.Context, id int) (domain.Feedback, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+feedbackColumns+`
		 FROM feedback f JOIN users u ON u.id = f.user_id
		 WHERE f.id = $1`, id)
	f, err := scanFeedback(row)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("get feedback %d: %w", id, translate(err))
	}
	return f, nil
}

// List returns the rows selected by filter, newest first.
func (s *FeedbackStore) List(ctx context.Context, filter domain.Filter) ([]domain.Feedback, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+feedbackColumns+`
		 FROM feedback f JOIN users u ON u.id = f.user_id
		 `+whereClause(filter)+`
		 ORDER BY f.created_date DESC, f.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.Feedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return out, nil
}

// Update locks the row, lets upd mutate it and writes the mutable fields
// back, all in one transaction.
func (s *FeedbackStore) Update(ctx context.Context, id int, upd func(f *domain.Feedback) error) error {
	err := s.db.Pipe(ctx, nil, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+feedbackColumns+`
			 FROM feedback f JOIN users u ON u.id = f.user_id
			 WHERE f.id = $1
			 FOR UPDATE OF f`, id)
		f, err := scanFeedback(row)
		if err != nil {
			return err
		}
		if err = upd(&f); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE feedback SET rating = $1, comment = $2, is_approved = $3 WHERE id = $4`,
			f.Rating, f.Comment, f.IsApproved, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("update feedback %d: %w", id, translate(err))
	}
	return nil
}

func (s *FeedbackStore) Delete(ctx context.Context, id int) error {
	err := s.db.Pipe(ctx, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM feedback WHERE id = $1`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete feedback %d: %w", id, translate(err))
	}
	return nil
}

// AverageRating is the mean rating over the filtered rows, 0 when there are none.
func (s *FeedbackStore) AverageRating(ctx context.Context, filter domain.Filter) (float64, error) {
	var avg float64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(f.rating), 0)::float8 FROM feedback f `+whereClause(filter),
	).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average rating: %w", err)
	}
	return avg, nil
}

func whereClause(filter domain.Filter) string {
	switch filter {
	case domain.FilterApproved:
		return `WHERE f.is_approved = TRUE`
	case domain.FilterPending:
		return `WHERE f.is_approved = FALSE`
	default:
		return ``
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeedback(row scanner) (domain.Feedback, error) {
	var f domain.Feedback
	err := row.Scan(&f.ID, &f.Rating, &f.Comment, &f.UserID, &f.Username, &f.IsApproved, &f.CreatedDate)
	return f, err
}
