// Package quiz runs a single student's attempt at a quiz: starting it,
// answering, the optional countdown, submission and scoring, review, and
// retakes. A Session owns its countdown and is safe for concurrent use by
// request handlers and its own timer goroutine.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"classroom-backend/internal/models"
)

// OptionCount is the fixed number of options per question.
const OptionCount = 4

// Unanswered marks an answer slot the student has not filled.
const Unanswered = -1

type State int

const (
	NotStarted State = iota
	InProgress
	Submitted
	Abandoned
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Submitted:
		return "submitted"
	case Abandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type Trigger string

const (
	TriggerManual  Trigger = models.TriggerManual
	TriggerTimeout Trigger = models.TriggerTimeout
)

var (
	ErrNotPublished   = errors.New("quiz is not published")
	ErrNotEnrolled    = errors.New("student is not enrolled in this course")
	ErrPastDue        = errors.New("quiz is past its due date")
	ErrAlreadyStarted = errors.New("attempt has already started")
	ErrNotInProgress  = errors.New("attempt is not in progress")
	ErrNotSubmitted   = errors.New("attempt has not been submitted")
	// ErrNotPersisted is returned by Submit when scoring succeeded but the
	// record could not be written. The returned Result is still valid.
	ErrNotPersisted = errors.New("attempt result could not be saved")
)

// AnswerError rejects an out-of-range selection. The session is unchanged.
type AnswerError struct {
	Field   string
	Message string
}

func (e *AnswerError) Error() string { return e.Field + ": " + e.Message }

// Student identifies who is taking the quiz.
type Student struct {
	ID   uuid.UUID
	Name string
}

// Recorder persists submitted attempts.
type Recorder interface {
	SaveAttempt(ctx context.Context, rec *models.AttemptRecord) error
}

// SubmitFunc is called once per submission, after the save was attempted.
type SubmitFunc func(ctx context.Context, s *Session, res Result)

// Result is the outcome of one submission.
type Result struct {
	AttemptID   uuid.UUID `json:"attempt_id"`
	Score       int       `json:"score"`
	Correct     int       `json:"correct"`
	Total       int       `json:"total"`
	Answers     []int     `json:"answers"`
	Trigger     Trigger   `json:"trigger"`
	StartedAt   time.Time `json:"started_at"`
	SubmittedAt time.Time `json:"submitted_at"`
	Persisted   bool      `json:"persisted"`
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID        uuid.UUID `json:"id"`
	QuizID    uuid.UUID `json:"quiz_id"`
	State     string    `json:"state"`
	Answers   []int     `json:"answers"`
	Timed     bool      `json:"timed"`
	Remaining int       `json:"remaining_seconds"`
	StartedAt time.Time `json:"started_at"`
	Attempts  int       `json:"attempts"`
	Result    *Result   `json:"result,omitempty"`
}

type Option func(*Session)

// WithLateStart lets a student start after the due date has passed.
func WithLateStart(allow bool) Option {
	return func(s *Session) { s.allowLate = allow }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithTickInterval sets the wall-clock length of one countdown tick.
func WithTickInterval(d time.Duration) Option {
	return func(s *Session) { s.interval = d }
}

// WithManualTicks disables the countdown goroutine; the caller drives Tick.
func WithManualTicks() Option {
	return func(s *Session) { s.manualTicks = true }
}

// OnSubmit registers a callback for every submission, manual or timed out.
func OnSubmit(fn SubmitFunc) Option {
	return func(s *Session) { s.onSubmit = fn }
}

type Session struct {
	id       uuid.UUID
	quiz     *models.Quiz
	student  Student
	recorder Recorder

	allowLate   bool
	now         func() time.Time
	interval    time.Duration
	manualTicks bool
	onSubmit    SubmitFunc

	mu        sync.Mutex
	ctx       context.Context
	state     State
	answers   []int
	timed     bool
	remaining int
	startedAt time.Time
	attempts  int
	result    *Result
	timer     *countdown
}

// NewSession prepares an attempt in the NotStarted state.
func NewSession(q *models.Quiz, student Student, recorder Recorder, opts ...Option) *Session {
	s := &Session{
		id:       uuid.New(),
		quiz:     q,
		student:  student,
		recorder: recorder,
		now:      time.Now,
		interval: time.Second,
		state:    NotStarted,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Quiz() *models.Quiz { return s.quiz }

func (s *Session) Student() Student { return s.student }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start moves the session to InProgress. ctx bounds the countdown goroutine
// and is used for the save when the countdown runs out.
func (s *Session) Start(ctx context.Context, enrolled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != NotStarted {
		return ErrAlreadyStarted
	}
	if !s.quiz.Published {
		return ErrNotPublished
	}
	if !enrolled {
		return ErrNotEnrolled
	}
	if s.quiz.DueDate != nil && s.now().After(*s.quiz.DueDate) && !s.allowLate {
		return ErrPastDue
	}

	s.ctx = ctx
	s.beginLocked()
	return nil
}

func (s *Session) beginLocked() {
	s.answers = make([]int, len(s.quiz.Questions))
	for i := range s.answers {
		s.answers[i] = Unanswered
	}
	s.startedAt = s.now()
	s.timed = s.quiz.TimeLimit > 0
	s.remaining = s.quiz.TimeLimit * 60
	s.result = nil
	s.state = InProgress

	if s.timed && !s.manualTicks {
		s.timer = startCountdown(s.ctx, s.interval, func(ctx context.Context) bool {
			return s.tick(ctx, true).running
		})
	}
}

// SelectAnswer records optionIndex for questionIndex, replacing any earlier
// choice.
func (s *Session) SelectAnswer(questionIndex, optionIndex int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InProgress {
		return ErrNotInProgress
	}
	if questionIndex < 0 || questionIndex >= len(s.answers) {
		return &AnswerError{Field: "question_index", Message: fmt.Sprintf("must be between 0 and %d", len(s.answers)-1)}
	}
	if optionIndex < 0 || optionIndex >= OptionCount {
		return &AnswerError{Field: "option_index", Message: fmt.Sprintf("must be between 0 and %d", OptionCount-1)}
	}

	s.answers[questionIndex] = optionIndex
	return nil
}

type tickOutcome struct {
	remaining int
	running   bool
	submitted bool
	result    Result
	err       error
}

// Tick advances the countdown by one second and submits the attempt when it
// reaches zero. It reports the seconds left and whether this tick submitted.
// Untimed or finished sessions are left alone.
func (s *Session) Tick(ctx context.Context) (remaining int, submitted bool) {
	out := s.tick(ctx, false)
	return out.remaining, out.submitted
}

func (s *Session) tick(ctx context.Context, fromTimer bool) tickOutcome {
	s.mu.Lock()
	if s.state != InProgress || !s.timed {
		remaining := s.remaining
		s.mu.Unlock()
		return tickOutcome{remaining: remaining}
	}

	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining > 0 {
		remaining := s.remaining
		s.mu.Unlock()
		return tickOutcome{remaining: remaining, running: true}
	}

	res := s.finishLocked(TriggerTimeout)
	timer := s.timer
	s.timer = nil
	s.mu.Unlock()

	// The timer goroutine is returning anyway; waiting on it from inside
	// itself would deadlock.
	if fromTimer {
		timer.cancel()
	} else {
		timer.stop()
	}

	res, err := s.persist(ctx, res)
	if err != nil {
		log.Warn().Err(err).Str("session_id", s.id.String()).Msg("auto-submitted attempt was not saved")
	}
	return tickOutcome{submitted: true, result: res, err: err}
}

// Submit scores the attempt and writes the record. Unanswered questions count
// as wrong. If the write fails the returned error wraps ErrNotPersisted and
// the Result still carries the score.
func (s *Session) Submit(ctx context.Context) (Result, error) {
	s.mu.Lock()
	if s.state != InProgress {
		s.mu.Unlock()
		return Result{}, ErrNotInProgress
	}
	res := s.finishLocked(TriggerManual)
	timer := s.timer
	s.timer = nil
	s.mu.Unlock()

	timer.stop()
	return s.persist(ctx, res)
}

func (s *Session) finishLocked(trigger Trigger) Result {
	score, correct := Score(s.quiz.Questions, s.answers)
	res := Result{
		AttemptID:   uuid.New(),
		Score:       score,
		Correct:     correct,
		Total:       len(s.quiz.Questions),
		Answers:     append([]int(nil), s.answers...),
		Trigger:     trigger,
		StartedAt:   s.startedAt,
		SubmittedAt: s.now(),
	}
	s.state = Submitted
	s.attempts++
	s.result = &res
	return res
}

func (s *Session) persist(ctx context.Context, res Result) (Result, error) {
	var err error
	if s.recorder != nil {
		err = s.recorder.SaveAttempt(ctx, s.record(res))
	}
	res.Persisted = err == nil

	s.mu.Lock()
	if s.result != nil && s.result.AttemptID == res.AttemptID {
		s.result.Persisted = res.Persisted
	}
	s.mu.Unlock()

	if s.onSubmit != nil {
		s.onSubmit(ctx, s, res)
	}

	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return res, nil
}

func (s *Session) record(res Result) *models.AttemptRecord {
	return &models.AttemptRecord{
		ID:            res.AttemptID,
		SessionID:     s.id,
		QuizID:        s.quiz.ID,
		UserID:        s.student.ID,
		StudentName:   s.student.Name,
		CourseID:      s.quiz.CourseID,
		Answers:       res.Answers,
		Score:         res.Score,
		CorrectCount:  res.Correct,
		QuestionCount: res.Total,
		Status:        models.AttemptSubmitted,
		Trigger:       string(res.Trigger),
		StartedAt:     res.StartedAt,
		SubmittedAt:   res.SubmittedAt,
	}
}

// Review walks the submitted attempt. Each call returns a fresh cursor.
func (s *Session) Review() (*Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Submitted || s.result == nil {
		return nil, ErrNotSubmitted
	}
	return newReview(s.quiz.Questions, s.result.Answers), nil
}

// Reset starts a retake: answers cleared, countdown restarted. Records of
// earlier submissions are left in place.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Submitted {
		return ErrNotSubmitted
	}
	s.beginLocked()
	return nil
}

// Cancel stops the countdown and waits for it to exit. An attempt still in
// progress is abandoned without being saved. Cancel is idempotent.
func (s *Session) Cancel() {
	s.mu.Lock()
	timer := s.timer
	s.timer = nil
	if s.state == InProgress || s.state == NotStarted {
		s.state = Abandoned
	}
	s.mu.Unlock()

	timer.stop()
}

// Result returns the latest submission, if any.
func (s *Session) Result() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return Result{}, false
	}
	res := *s.result
	res.Answers = append([]int(nil), s.result.Answers...)
	return res, true
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		QuizID:    s.quiz.ID,
		State:     s.state.String(),
		Answers:   append([]int(nil), s.answers...),
		Timed:     s.timed,
		Remaining: s.remaining,
		StartedAt: s.startedAt,
		Attempts:  s.attempts,
	}
	if s.result != nil {
		res := *s.result
		res.Answers = append([]int(nil), s.result.Answers...)
		snap.Result = &res
	}
	return snap
}
