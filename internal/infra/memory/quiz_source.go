package memory

import (
	"context"

	"quizmaster/internal/domain"
)

// StaticQuizSource serves a fixed quiz document (useful for tests and for
// the offline demo mode of the CLI).
type StaticQuizSource struct {
	doc domain.QuizDocument
}

func NewStaticQuizSource(doc domain.QuizDocument) *StaticQuizSource {
	return &StaticQuizSource{doc: doc}
}

func (s *StaticQuizSource) FetchQuiz(_ context.Context) (domain.QuizDocument, error) {
	if err := s.doc.Validate(); err != nil {
		return domain.QuizDocument{}, err
	}
	return s.doc, nil
}
