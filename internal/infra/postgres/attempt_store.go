package postgres

import (
	"context"
	"fmt"

	"quizmaster/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AttemptStore archives completed quiz attempts in Postgres.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

// SaveAttempt inserts one completed attempt. Archiving is best effort from
// the session's point of view; a failure here never corrupts the attempt.
func (s *AttemptStore) SaveAttempt(ctx context.Context, rec domain.AttemptRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO attempts (id, quiz_title, topic, final_score, max_streak,
			answered_count, correct_count, question_count, elapsed_secs, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.QuizTitle, rec.Topic, rec.FinalScore, rec.MaxStreak,
		rec.AnsweredCount, rec.CorrectCount, rec.QuestionCount, rec.ElapsedSecs, rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

// RecentAttempts lists the most recent attempts, newest first.
func (s *AttemptStore) RecentAttempts(ctx context.Context, limit int) ([]domain.AttemptRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, quiz_title, topic, final_score, max_streak,
			answered_count, correct_count, question_count, elapsed_secs, completed_at
		FROM attempts ORDER BY completed_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.AttemptRecord
	for rows.Next() {
		var rec domain.AttemptRecord
		if err := rows.Scan(&rec.ID, &rec.QuizTitle, &rec.Topic, &rec.FinalScore, &rec.MaxStreak,
			&rec.AnsweredCount, &rec.CorrectCount, &rec.QuestionCount, &rec.ElapsedSecs, &rec.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
