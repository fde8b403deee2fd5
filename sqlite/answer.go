package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/searchqa"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ searchqa.AnswerStore = (*AnswerService)(nil)

// AnswerService implements searchqa.AnswerStore using SQLite.
type AnswerService struct {
	db  *DB
	now func() time.Time
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(db *DB) *AnswerService {
	return &AnswerService{db: db, now: time.Now}
}

// AnswerFilter selects stored answers for a student.
type AnswerFilter struct {
	StudentID string
	Limit     int
	Offset    int
}

// FindAnswer returns the stored answer for the question. An answer stored
// for different question text is treated as missing so that edited input
// files are re-answered.
func (s *AnswerService) FindAnswer(ctx context.Context, studentID string, q *searchqa.Question) (*searchqa.Answer, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var a searchqa.Answer
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT question_id, question_hash, text, used_search, evidence_count, attempts
		FROM answers
		WHERE student_id = ? AND question_id = ?
	`, studentID, q.ID).Scan(&a.QuestionID, &hash, &a.Text, &a.UsedSearch, &a.EvidenceCount, &a.Attempts)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, searchqa.Errorf(searchqa.ENOTFOUND, "no answer for question %d", q.ID)
	}
	if err != nil {
		return nil, err
	}
	if hash != hashQuestion(q.Text) {
		return nil, searchqa.Errorf(searchqa.ENOTFOUND, "question %d changed since it was answered", q.ID)
	}

	return &a, nil
}

// SaveAnswer stores the answer, replacing any previous answer to the same question.
func (s *AnswerService) SaveAnswer(ctx context.Context, studentID string, q *searchqa.Question, a *searchqa.Answer) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if a == nil {
		return searchqa.Errorf(searchqa.EINVALID, "answer required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO answers (id, student_id, question_id, question_hash, text, used_search, evidence_count, attempts, answered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, question_id) DO UPDATE SET
			question_hash = excluded.question_hash,
			text = excluded.text,
			used_search = excluded.used_search,
			evidence_count = excluded.evidence_count,
			attempts = excluded.attempts,
			answered_at = excluded.answered_at
	`, uuid.New().String(), studentID, q.ID, hashQuestion(q.Text), a.Text, a.UsedSearch,
		a.EvidenceCount, a.Attempts, s.now().UTC().Format(time.RFC3339))

	return err
}

// FindAnswers returns the student's stored answers ordered by question id.
func (s *AnswerService) FindAnswers(ctx context.Context, filter AnswerFilter) ([]*searchqa.Answer, error) {
	if filter.StudentID == "" {
		return nil, searchqa.Errorf(searchqa.EINVALID, "student ID required")
	}

	var query strings.Builder
	args := []any{filter.StudentID}
	query.WriteString(`SELECT question_id, text, used_search, evidence_count, attempts
		FROM answers WHERE student_id = ? ORDER BY question_id ASC`)
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var answers []*searchqa.Answer
	for rows.Next() {
		var a searchqa.Answer
		if err := rows.Scan(&a.QuestionID, &a.Text, &a.UsedSearch, &a.EvidenceCount, &a.Attempts); err != nil {
			return nil, err
		}
		answers = append(answers, &a)
	}

	return answers, rows.Err()
}

// DeleteAnswers removes every stored answer for the student and returns how many were removed.
func (s *AnswerService) DeleteAnswers(ctx context.Context, studentID string) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM answers WHERE student_id = ?", studentID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
