package memory

import "quizmaster/internal/domain"

func sampleDocument() domain.QuizDocument {
	return domain.QuizDocument{
		Title:              "Sample",
		DurationMinutes:    10,
		CorrectAnswerMarks: 4,
		NegativeMarks:      1,
		Questions: []domain.Question{
			{
				ID:          1,
				Description: "What is 2 + 2?",
				Options: []domain.Option{
					{ID: 1, Description: "3"},
					{ID: 2, Description: "4", IsCorrect: true},
				},
			},
		},
	}
}
