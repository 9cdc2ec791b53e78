// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"storefront/internal/models"
)

// ErrPendingLimit is returned by CreatePending when the category already
// holds the maximum number of pending questions.
var ErrPendingLimit = errors.New("pending question limit reached")

// questionLockClass namespaces the per-category advisory locks taken while
// counting pending questions.
const questionLockClass = 0x5175

// QuestionStore handles customer question persistence.
type QuestionStore struct {
	db *sql.DB
}

// NewQuestionStore creates a new QuestionStore with the given database connection.
func NewQuestionStore(db *sql.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

const questionColumns = `id, text, category_id, status, user_id, answer_urls,
	reject_comment, created_at, updated_at`

func scanQuestion(m *pgtype.Map, scanner rowScanner) (*models.Question, error) {
	var q models.Question
	err := scanner.Scan(
		&q.ID, &q.Text, &q.CategoryID, &q.Status, &q.UserID,
		m.SQLScanner(&q.AnswerURLs),
		&q.RejectComment, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if q.AnswerURLs == nil {
		q.AnswerURLs = []string{}
	}
	return &q, nil
}

// CreatePending inserts q as a pending question unless its category
// already has limit pending questions, in which case ErrPendingLimit is
// returned. Concurrent calls for the same category are serialized.
func (s *QuestionStore) CreatePending(ctx context.Context, q *models.Question, limit int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock($1, hashtext($2))`,
		questionLockClass, q.CategoryID.String(),
	); err != nil {
		return fmt.Errorf("lock category questions: %w", err)
	}

	var pending int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE category_id = $1 AND status = 'pending'`,
		q.CategoryID,
	).Scan(&pending); err != nil {
		return fmt.Errorf("count pending questions: %w", err)
	}
	if pending >= limit {
		return ErrPendingLimit
	}

	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	q.Status = models.QuestionPending
	q.AnswerURLs = []string{}
	q.RejectComment = ""

	err = tx.QueryRowContext(ctx, `
		INSERT INTO questions (id, text, category_id, status, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, q.ID, q.Text, q.CategoryID, q.Status, q.UserID).Scan(&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create question: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// CountPending returns the number of pending questions in a category.
func (s *QuestionStore) CountPending(ctx context.Context, categoryID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE category_id = $1 AND status = 'pending'`,
		categoryID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending questions: %w", err)
	}
	return n, nil
}

// FindByID retrieves a question by its UUID. Returns nil if not found.
func (s *QuestionStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id)
	q, err := scanQuestion(pgtype.NewMap(), row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find question by id: %w", err)
	}
	return q, nil
}

// List returns the questions matching f, oldest first.
func (s *QuestionStore) List(ctx context.Context, f models.QuestionFilter) ([]models.Question, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.CategoryID != nil {
		where = append(where, "category_id = "+arg(*f.CategoryID))
	}
	if f.UserID != nil {
		where = append(where, "user_id = "+arg(*f.UserID))
	}

	query := `SELECT ` + questionColumns + ` FROM questions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	m := pgtype.NewMap()
	var items []models.Question
	for rows.Next() {
		q, err := scanQuestion(m, rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		items = append(items, *q)
	}
	return items, rows.Err()
}

// Update saves the moderation fields of q: status, answers and reject
// comment.
func (s *QuestionStore) Update(ctx context.Context, q *models.Question) error {
	err := s.db.QueryRowContext(ctx, `
		UPDATE questions SET status = $2, answer_urls = $3, reject_comment = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, q.ID, q.Status, q.AnswerURLs, q.RejectComment).Scan(&q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	return nil
}

// Delete removes a question by ID.
func (s *QuestionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}
