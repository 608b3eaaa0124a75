package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quizmaster/internal/badge"
	"quizmaster/internal/domain"
	"quizmaster/internal/session"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Archiver stores completed attempts. Nil disables archiving.
type Archiver interface {
	SaveAttempt(ctx context.Context, rec domain.AttemptRecord) error
}

// UI walks a user through a quiz attempt on a terminal. It only reads
// session snapshots and issues commands; all quiz rules live in the session.
type UI struct {
	in      *bufio.Scanner
	out     io.Writer
	tiers   badge.TierTable
	catalog badge.Catalog

	title  *color.Color
	prompt *color.Color
	good   *color.Color
	bad    *color.Color
	dim    *color.Color
}

func New(in io.Reader, out io.Writer, tiers badge.TierTable, catalog badge.Catalog) *UI {
	return &UI{
		in:      bufio.NewScanner(in),
		out:     out,
		tiers:   tiers,
		catalog: catalog,
		title:   color.New(color.FgHiCyan, color.Bold),
		prompt:  color.New(color.FgYellow),
		good:    color.New(color.FgGreen, color.Bold),
		bad:     color.New(color.FgRed, color.Bold),
		dim:     color.New(color.Faint),
	}
}

// Run drives quiz attempts until the user quits. Each attempt gets its own
// timer goroutine, cancelled the moment the attempt ends.
func (u *UI) Run(ctx context.Context, sess *session.Session, ledger *badge.Ledger, archive Archiver) error {
	doc := sess.Document()
	if doc == nil {
		return domain.ErrDocumentNotReady
	}

	for {
		u.printHeader(doc)
		u.prompt.Fprintln(u.out, "Press Enter to start, b for badges, q to quit.")
		switch u.readLine() {
		case "q":
			return nil
		case "b":
			u.printBadges(ledger)
			continue
		}

		if err := u.runAttempt(ctx, sess, ledger, archive); err != nil {
			return err
		}

		u.prompt.Fprintln(u.out, "Press r to retake, anything else to quit.")
		if u.readLine() != "r" {
			return nil
		}
		sess.Retake()
	}
}

func (u *UI) runAttempt(ctx context.Context, sess *session.Session, ledger *badge.Ledger, archive Archiver) error {
	if err := sess.Start(); err != nil {
		return err
	}

	timerCtx, stopTimer := context.WithCancel(ctx)
	timer := session.NewTimer(sess)
	go timer.Run(timerCtx)
	defer stopTimer()

	doc := sess.Document()
	for sess.Phase() == session.PhaseInProgress {
		snap := sess.Snapshot()
		question := doc.Question(snap.CurrentQuestionIndex)
		u.printQuestion(snap, question)

		input := u.readLine()
		switch input {
		case "q", "f":
			if err := sess.Finish(); err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
				return err
			}
			continue
		}

		choice, err := strconv.Atoi(input)
		if err != nil || choice < 1 || choice > len(question.Options) {
			u.bad.Fprintf(u.out, "Pick an option between 1 and %d.\n", len(question.Options))
			continue
		}

		result, err := sess.SubmitAnswer(question.ID, question.Options[choice-1].ID)
		switch {
		case errors.Is(err, domain.ErrInvalidTransition):
			// Countdown expired while we waited on input.
			continue
		case err != nil:
			u.bad.Fprintf(u.out, "Answer rejected: %v\n", err)
			continue
		}

		if result.Correct {
			u.good.Fprintf(u.out, "Correct! +%s points\n", trimFloat(result.Awarded))
		} else {
			u.bad.Fprintf(u.out, "Incorrect. %s points\n", trimFloat(result.Awarded))
		}
		u.claimMilestones(ctx, sess.Snapshot().Streak, ledger)
	}

	u.printSummary(sess, timer)
	u.archiveAttempt(ctx, sess, archive)
	return nil
}

// claimMilestones surfaces newly qualified milestones one at a time,
// re-evaluating after each claim so a streak that jumps across several
// thresholds claims all of them in order.
func (u *UI) claimMilestones(ctx context.Context, streak int, ledger *badge.Ledger) {
	for {
		milestone, ok := u.catalog.MilestoneForStreak(streak, ledger.IsClaimed)
		if !ok {
			return
		}
		u.good.Fprintf(u.out, "%s  New badge unlocked: %s (streak %d)\n", milestone.Icon, milestone.Title, streak)
		if err := ledger.Claim(ctx, milestone, streak); err != nil {
			// The claim is held in memory; only the write failed.
			u.bad.Fprintf(u.out, "Could not persist badge: %v\n", err)
			return
		}
	}
}

func (u *UI) printHeader(doc *domain.QuizDocument) {
	fmt.Fprintln(u.out)
	u.title.Fprintln(u.out, doc.Title)
	if doc.Description != "" {
		fmt.Fprintln(u.out, doc.Description)
	}
	u.dim.Fprintf(u.out, "Topic: %s\n", strings.TrimSpace(doc.Topic))
	u.dim.Fprintf(u.out, "Duration: %d minutes, %d questions\n", doc.DurationMinutes, len(doc.Questions))
	u.dim.Fprintf(u.out, "Correct: +%s  Incorrect: -%s  Max mistakes: %d\n",
		trimFloat(float64(doc.CorrectAnswerMarks)), trimFloat(float64(doc.NegativeMarks)), doc.MaxMistakeCount)
}

func (u *UI) printQuestion(snap session.Snapshot, question domain.Question) {
	fmt.Fprintln(u.out)
	u.dim.Fprintf(u.out, "Question %d of %d    %s remaining\n",
		snap.CurrentQuestionIndex+1, snap.QuestionCount, clock(snap.TimeRemainingSeconds))
	u.dim.Fprintf(u.out, "Score: %s  Streak: %d\n", trimFloat(snap.Score), snap.Streak)
	fmt.Fprintln(u.out, plainText(question.Description))
	for i, opt := range question.Options {
		fmt.Fprintf(u.out, "  %d) %s\n", i+1, plainText(opt.Description))
	}
	u.prompt.Fprint(u.out, "Answer (number), f to finish early: ")
}

func (u *UI) printSummary(sess *session.Session, timer *session.Timer) {
	snap := sess.Snapshot()
	doc := sess.Document()

	fmt.Fprintln(u.out)
	u.title.Fprintln(u.out, "Quiz Completed!")
	fmt.Fprintf(u.out, "Final score: %s  Max streak: %d\n", trimFloat(snap.FinalScore), snap.FinalMaxStreak)

	percentage := 0.0
	if snap.QuestionCount > 0 {
		percentage = float64(snap.CorrectCount) / float64(snap.QuestionCount) * 100
	}
	fmt.Fprintf(u.out, "%d/%d correct (%.0f%%), %d answered, time taken %s\n",
		snap.CorrectCount, snap.QuestionCount, percentage, snap.AnsweredCount, clock(timer.Elapsed()))

	tier := u.tiers.TierForScore(snap.FinalScore)
	u.good.Fprintf(u.out, "Tier: %s\n", tier.Name)
	if percentage >= 70 {
		u.good.Fprintln(u.out, "Congratulations! You did great!")
	} else {
		u.prompt.Fprintln(u.out, "Good effort! Keep practicing!")
	}

	u.prompt.Fprintln(u.out, "Press v to review answers, anything else to continue.")
	if u.readLine() == "v" {
		u.printReview(doc, snap)
	}
}

func (u *UI) printReview(doc *domain.QuizDocument, snap session.Snapshot) {
	for i, question := range doc.Questions {
		fmt.Fprintf(u.out, "\n%d. %s\n", i+1, plainText(question.Description))

		chosenID, answered := snap.Answers[question.ID]
		correct, _ := question.CorrectOption()
		switch {
		case !answered:
			u.dim.Fprintln(u.out, "   unanswered")
		case chosenID == correct.ID:
			u.good.Fprintf(u.out, "   your answer: %s ✓\n", plainText(correct.Description))
		default:
			chosen, _ := question.Option(chosenID)
			u.bad.Fprintf(u.out, "   your answer: %s ✗\n", plainText(chosen.Description))
			u.good.Fprintf(u.out, "   correct:     %s\n", plainText(correct.Description))
		}
		if question.DetailedSolution != "" {
			u.dim.Fprintf(u.out, "   %s\n", plainText(question.DetailedSolution))
		}
	}
}

func (u *UI) printBadges(ledger *badge.Ledger) {
	history := ledger.History()
	if len(history) == 0 {
		u.dim.Fprintln(u.out, "No badges earned yet.")
		return
	}
	u.title.Fprintln(u.out, "Your Badges")
	for _, rec := range history {
		icon := ""
		if m, ok := u.catalog.ByID(rec.MilestoneID); ok {
			icon = m.Icon + " "
		}
		fmt.Fprintf(u.out, "  %s%s — earned at %d streak (%s)\n",
			icon, rec.Title, rec.Streak, rec.ClaimedAt.Format("2006-01-02"))
	}
}

func (u *UI) archiveAttempt(ctx context.Context, sess *session.Session, archive Archiver) {
	if archive == nil {
		return
	}
	rec, err := sess.AttemptRecord(uuid.NewString())
	if err != nil {
		return
	}
	if err := archive.SaveAttempt(ctx, rec); err != nil {
		u.bad.Fprintf(u.out, "Could not archive attempt: %v\n", err)
	}
}

func (u *UI) readLine() string {
	if !u.in.Scan() {
		return "q"
	}
	return strings.ToLower(strings.TrimSpace(u.in.Text()))
}

func clock(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// plainText strips the markdown-lite markers the quiz API embeds in
// descriptions and solutions.
var markdownReplacer = strings.NewReplacer("**", "", "*", "", "__", "", "_", "", "`", "", "# ", "", "## ", "", "### ", "")

func plainText(s string) string {
	return strings.TrimSpace(markdownReplacer.Replace(s))
}
