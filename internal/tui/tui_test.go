package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"quizmaster/internal/badge"
	"quizmaster/internal/domain"
	"quizmaster/internal/infra/memory"
	"quizmaster/internal/session"
	"github.com/fatih/color"
)

func testDocument() *domain.QuizDocument {
	return &domain.QuizDocument{
		Title:              "Terminal Quiz",
		Description:        "Two quick questions",
		Topic:              "Testing",
		DurationMinutes:    10,
		CorrectAnswerMarks: 4,
		NegativeMarks:      1,
		Questions: []domain.Question{
			{
				ID:          1,
				Description: "Pick the **right** one",
				Options: []domain.Option{
					{ID: 11, Description: "wrong"},
					{ID: 12, Description: "right", IsCorrect: true},
				},
				DetailedSolution: "The second option is right.",
			},
			{
				ID:          2,
				Description: "And again",
				Options: []domain.Option{
					{ID: 21, Description: "wrong"},
					{ID: 22, Description: "right", IsCorrect: true},
				},
			},
		},
	}
}

func runScripted(t *testing.T, input string) (string, *session.Session, *badge.Ledger) {
	t.Helper()
	color.NoColor = true

	sess := session.New(testDocument())
	ledger := badge.NewLedger(memory.NewKVStore())
	out := &bytes.Buffer{}

	ui := New(strings.NewReader(input), out, badge.DefaultTiers(), badge.DefaultCatalog())
	if err := ui.Run(context.Background(), sess, ledger, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String(), sess, ledger
}

func TestRunPlaysFullAttempt(t *testing.T) {
	// Enter to start, answer both correctly, skip review, quit.
	output, sess, _ := runScripted(t, "\n2\n2\n\nx\n")

	if sess.Phase() != session.PhaseCompleted {
		t.Fatalf("expected completed session, got %s", sess.Phase())
	}
	if got := sess.Snapshot().FinalScore; got != 8 {
		t.Fatalf("expected final score 8, got %v", got)
	}
	for _, want := range []string{"Terminal Quiz", "Question 1 of 2", "Correct! +4 points", "Quiz Completed!", "Final score: 8"} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
}

func TestRunShowsReviewWithSolutions(t *testing.T) {
	// Answer one wrong, finish early, review.
	output, _, _ := runScripted(t, "\n1\nf\nv\nx\n")

	for _, want := range []string{"your answer: wrong", "correct:     right", "The second option is right.", "unanswered"} {
		if !strings.Contains(output, want) {
			t.Fatalf("output missing %q:\n%s", want, output)
		}
	}
	// Markdown markers are stripped from prompts.
	if strings.Contains(output, "**right**") {
		t.Fatalf("markdown markers leaked into output:\n%s", output)
	}
}

func TestRunRejectsOutOfRangeChoice(t *testing.T) {
	output, _, _ := runScripted(t, "\n9\n2\n2\n\nx\n")
	if !strings.Contains(output, "Pick an option between 1 and 2.") {
		t.Fatalf("expected range hint, got:\n%s", output)
	}
}

func TestRetakeRunsFreshAttempt(t *testing.T) {
	// First attempt both wrong, retake, both right, quit.
	output, sess, _ := runScripted(t, "\n1\n1\n\nr\n\n2\n2\n\nx\n")

	if got := sess.Snapshot().FinalScore; got != 8 {
		t.Fatalf("expected fresh attempt score 8, got %v", got)
	}
	if !strings.Contains(output, "Final score: -2") {
		t.Fatalf("expected first attempt score -2 in output:\n%s", output)
	}
}

func TestBadgesViewBeforeStart(t *testing.T) {
	output, _, _ := runScripted(t, "b\nq\n")
	if !strings.Contains(output, "No badges earned yet.") {
		t.Fatalf("expected empty badge view, got:\n%s", output)
	}
}

func TestPlainTextStripsMarkdownLite(t *testing.T) {
	got := plainText("**Bold** and _underscored_ `code`")
	if got != "Bold and underscored code" {
		t.Fatalf("unexpected plain text: %q", got)
	}
}
