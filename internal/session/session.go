package session

import (
	"sync"
	"time"

	"quizmaster/internal/domain"
)

// Phase is the coarse lifecycle stage of one quiz attempt.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// Snapshot is a read-only view of the session for renderers and the live
// feed. Final values are only meaningful once Phase is completed.
type Snapshot struct {
	Phase                Phase       `json:"phase"`
	CurrentQuestionIndex int         `json:"currentQuestionIndex"`
	QuestionCount        int         `json:"questionCount"`
	Score                float64     `json:"score"`
	Streak               int         `json:"streak"`
	MaxStreak            int         `json:"maxStreak"`
	TimeRemainingSeconds int         `json:"timeRemainingSeconds"`
	ElapsedSeconds       int         `json:"elapsedSeconds"`
	Answers              map[int]int `json:"answers"`
	AnsweredCount        int         `json:"answeredCount"`
	CorrectCount         int         `json:"correctCount"`
	FinalScore           float64     `json:"finalScore"`
	FinalMaxStreak       int         `json:"finalMaxStreak"`
}

// Result summarizes the outcome of one answer submission.
type Result struct {
	QuestionID int     `json:"questionId"`
	OptionID   int     `json:"optionId"`
	Correct    bool    `json:"correct"`
	Awarded    float64 `json:"awarded"` // signed: negative marking yields a negative award
	Completed  bool    `json:"completed"`
}

// Session owns the state of a single quiz attempt. It is the only mutable
// state in the core; all mutation goes through the command methods below,
// serialized by the internal mutex. The quiz document is shared read-only.
type Session struct {
	doc *domain.QuizDocument
	now func() time.Time

	mu             sync.RWMutex
	phase          Phase
	index          int
	answers        map[int]int
	score          float64
	streak         int
	maxStreak      int
	correctCount   int
	remaining      int
	elapsed        int
	finalScore     float64
	finalMaxStreak int
	subscribers    map[chan Snapshot]struct{}
}

// New creates a fresh session over doc. A nil doc is allowed so the UI can
// exist while the fetch is in flight; Start refuses to run until it is set.
func New(doc *domain.QuizDocument) *Session {
	return NewWithClock(doc, time.Now)
}

// NewWithClock allows deterministic timestamps in tests.
func NewWithClock(doc *domain.QuizDocument, now func() time.Time) *Session {
	return &Session{
		doc:         doc,
		now:         now,
		phase:       PhaseNotStarted,
		answers:     make(map[int]int),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Document returns the shared quiz document, or nil before load.
func (s *Session) Document() *domain.QuizDocument {
	return s.doc
}

// AttachDocument sets the quiz document on a session created before the
// fetch completed. Only valid while not started.
func (s *Session) AttachDocument(doc *domain.QuizDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseNotStarted {
		return domain.ErrInvalidTransition
	}
	s.doc = doc
	return nil
}

// Start transitions NotStarted -> InProgress and arms the countdown.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return domain.ErrDocumentNotReady
	}
	if s.phase != PhaseNotStarted {
		return domain.ErrInvalidTransition
	}

	s.phase = PhaseInProgress
	s.remaining = s.doc.DurationMinutes * 60
	s.broadcastLocked()
	return nil
}

// SubmitAnswer scores the chosen option for the current question, records it
// and advances. Answering the last question completes the attempt and
// freezes the final score and max streak. Rejections leave state untouched.
func (s *Session) SubmitAnswer(questionID, optionID int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return Result{}, domain.ErrInvalidTransition
	}

	question := s.doc.Question(s.index)
	if question.ID != questionID {
		return Result{}, domain.ErrUnknownQuestion
	}
	option, ok := question.Option(optionID)
	if !ok {
		return Result{}, domain.ErrUnknownOption
	}

	res := Result{QuestionID: questionID, OptionID: optionID, Correct: option.IsCorrect}
	if option.IsCorrect {
		res.Awarded = float64(s.doc.CorrectAnswerMarks)
		s.score += res.Awarded
		s.streak++
		if s.streak > s.maxStreak {
			s.maxStreak = s.streak
		}
		s.correctCount++
	} else {
		res.Awarded = -float64(s.doc.NegativeMarks)
		s.score += res.Awarded
		s.streak = 0
	}
	// Overwrite any prior answer for this question.
	s.answers[questionID] = optionID

	if s.index == len(s.doc.Questions)-1 {
		s.completeLocked()
		res.Completed = true
	} else {
		s.index++
	}
	s.broadcastLocked()
	return res, nil
}

// Finish forces an immediate transition to Completed, freezing the current
// score and max streak as final. Used for manual early termination and for
// countdown expiry. Questions left unanswered stay unanswered.
func (s *Session) Finish() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return domain.ErrInvalidTransition
	}
	s.completeLocked()
	s.broadcastLocked()
	return nil
}

// Retake discards the attempt and resets to a fresh NotStarted session over
// the same document. Valid from any phase. The badge ledger is not touched;
// it lives outside the session on purpose.
func (s *Session) Retake() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseNotStarted
	s.index = 0
	s.answers = make(map[int]int)
	s.score = 0
	s.streak = 0
	s.maxStreak = 0
	s.correctCount = 0
	s.remaining = 0
	s.elapsed = 0
	s.finalScore = 0
	s.finalMaxStreak = 0
	s.broadcastLocked()
}

// Tick advances time bookkeeping by one second: the countdown floors at
// zero, the per-question stopwatch counts up. The session does not finish
// itself on expiry; the timer driving the ticks owns that call.
func (s *Session) Tick() (remaining int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInProgress {
		return 0, domain.ErrInvalidTransition
	}
	if s.remaining > 0 {
		s.remaining--
	}
	s.elapsed++
	s.broadcastLocked()
	return s.remaining, nil
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// ElapsedSeconds returns the stopwatch value.
func (s *Session) ElapsedSeconds() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elapsed
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel receiving a snapshot after every mutation,
// starting with the current state. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// AttemptRecord builds the archive record for a completed attempt.
func (s *Session) AttemptRecord(id string) (domain.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.phase != PhaseCompleted {
		return domain.AttemptRecord{}, domain.ErrInvalidTransition
	}
	return domain.AttemptRecord{
		ID:            id,
		QuizTitle:     s.doc.Title,
		Topic:         s.doc.Topic,
		FinalScore:    s.finalScore,
		MaxStreak:     s.finalMaxStreak,
		AnsweredCount: len(s.answers),
		CorrectCount:  s.correctCount,
		QuestionCount: len(s.doc.Questions),
		ElapsedSecs:   s.elapsed,
		CompletedAt:   s.now(),
	}, nil
}

func (s *Session) completeLocked() {
	s.phase = PhaseCompleted
	s.finalScore = s.score
	s.finalMaxStreak = s.maxStreak
}

func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest pending snapshot so slow consumers never
			// block a session mutation.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() Snapshot {
	answers := make(map[int]int, len(s.answers))
	for q, o := range s.answers {
		answers[q] = o
	}
	count := 0
	if s.doc != nil {
		count = len(s.doc.Questions)
	}
	return Snapshot{
		Phase:                s.phase,
		CurrentQuestionIndex: s.index,
		QuestionCount:        count,
		Score:                s.score,
		Streak:               s.streak,
		MaxStreak:            s.maxStreak,
		TimeRemainingSeconds: s.remaining,
		ElapsedSeconds:       s.elapsed,
		Answers:              answers,
		AnsweredCount:        len(s.answers),
		CorrectCount:         s.correctCount,
		FinalScore:           s.finalScore,
		FinalMaxStreak:       s.finalMaxStreak,
	}
}
