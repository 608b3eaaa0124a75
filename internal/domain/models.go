package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Marks is a decimal score value. The quiz API transmits numeric fields
// inconsistently (sometimes `"4.0"`, sometimes `4.0`), so it accepts both.
type Marks float64

func (m *Marks) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 1 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*m = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse marks %q: %w", s, err)
		}
		*m = Marks(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Marks(v)
	return nil
}

// Option represents a possible answer for a question. IDs are unique within
// their question only.
type Option struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	IsCorrect   bool   `json:"is_correct"`
}

// Question models an MCQ question with exactly one correct option. The
// document is trusted on that invariant once it passes Validate.
type Question struct {
	ID               int             `json:"id"`
	Description      string          `json:"description"`
	Options          []Option        `json:"options"`
	DetailedSolution string          `json:"detailed_solution,omitempty"`
	ReadingMaterial  json.RawMessage `json:"reading_material,omitempty"` // opaque to the core
}

// Option returns the option with the given ID, if present.
func (q Question) Option(optionID int) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// CorrectOption returns the first option flagged correct.
func (q Question) CorrectOption() (Option, bool) {
	for _, opt := range q.Options {
		if opt.IsCorrect {
			return opt, true
		}
	}
	return Option{}, false
}

// QuizDocument is the quiz definition as fetched from the API. It is
// immutable after load; the session and all renderers share one copy.
type QuizDocument struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Topic              string     `json:"topic"`
	DurationMinutes    int        `json:"duration"`
	CorrectAnswerMarks Marks      `json:"correct_answer_marks"`
	NegativeMarks      Marks      `json:"negative_marks"`
	MaxMistakeCount    int        `json:"max_mistake_count"`
	Questions          []Question `json:"questions"`
}

// Question returns the question at index i.
func (d QuizDocument) Question(i int) Question {
	return d.Questions[i]
}

// Validate rejects documents the session cannot safely score. A failure here
// is a load failure; scoring never sees an invalid document.
func (d QuizDocument) Validate() error {
	if d.Title == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidDocument)
	}
	if d.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidDocument, d.DurationMinutes)
	}
	if d.CorrectAnswerMarks < 0 || d.NegativeMarks < 0 {
		return fmt.Errorf("%w: marks must not be negative", ErrInvalidDocument)
	}
	if len(d.Questions) == 0 {
		return fmt.Errorf("%w: need at least one question", ErrInvalidDocument)
	}
	for i, q := range d.Questions {
		if q.Description == "" {
			return fmt.Errorf("%w: question %d has no description", ErrInvalidDocument, i)
		}
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: question %d needs at least two options", ErrInvalidDocument, i)
		}
		if _, ok := q.CorrectOption(); !ok {
			return fmt.Errorf("%w: question %d has no correct option", ErrInvalidDocument, i)
		}
		seen := make(map[int]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if _, dup := seen[opt.ID]; dup {
				return fmt.Errorf("%w: question %d has duplicate option id %d", ErrInvalidDocument, i, opt.ID)
			}
			seen[opt.ID] = struct{}{}
		}
	}
	return nil
}

// ParseQuizDocument decodes and validates a quiz document payload.
func ParseQuizDocument(data []byte) (QuizDocument, error) {
	var doc QuizDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return QuizDocument{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return QuizDocument{}, err
	}
	return doc, nil
}

// AttemptRecord is the archived outcome of one completed quiz attempt.
type AttemptRecord struct {
	ID            string    `json:"id"`
	QuizTitle     string    `json:"quizTitle"`
	Topic         string    `json:"topic"`
	FinalScore    float64   `json:"finalScore"`
	MaxStreak     int       `json:"maxStreak"`
	AnsweredCount int       `json:"answeredCount"`
	CorrectCount  int       `json:"correctCount"`
	QuestionCount int       `json:"questionCount"`
	ElapsedSecs   int       `json:"elapsedSecs"`
	CompletedAt   time.Time `json:"completedAt"`
}
