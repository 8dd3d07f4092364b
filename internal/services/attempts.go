package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/quiz"
	"classroom-backend/internal/repository"
)

const (
	EventQuizCompleted        = "quiz_completed"
	EventAttemptAutoSubmitted = "attempt_auto_submitted"
)

const (
	// SubmittedSessionTTL is how long a finished session stays open for
	// review and retakes after its last use.
	SubmittedSessionTTL = 30 * time.Minute
	// IdleSessionTTL abandons an attempt nobody has touched for this long,
	// on top of the quiz's own time limit.
	IdleSessionTTL = 2 * time.Hour

	sessionSweepInterval = time.Minute
)

// QuestionView is a question as shown while the attempt is running: no
// correct answer, no explanation.
type QuestionView struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type AttemptView struct {
	quiz.Snapshot
	Title     string         `json:"title"`
	TimeLimit int            `json:"time_limit"`
	Questions []QuestionView `json:"questions"`
}

type ReviewView struct {
	Position int               `json:"position"`
	Total    int               `json:"total"`
	Score    int               `json:"score"`
	Current  *quiz.ReviewItem  `json:"current,omitempty"`
	Items    []quiz.ReviewItem `json:"items"`
}

// AttemptService keeps the live quiz sessions of this process. Sessions are
// keyed by their own id; each request checks the caller owns the session.
//
// Two concurrent Start calls for the same student and quiz both succeed and
// may both be submitted. The catalog shows the latest.
type AttemptService struct {
	quizzes     *repository.QuizRepo
	enrollments *repository.EnrollmentRepo
	recorder    quiz.Recorder
	publisher   Publisher
	allowLate   bool
	sessionOpts []quiz.Option

	// Sessions outlive the request that started them; their countdowns run
	// under baseCtx.
	baseCtx context.Context

	submittedTTL time.Duration
	idleTTL      time.Duration
	now          func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*liveSession

	stopSweep chan struct{}
	stopOnce  sync.Once
}

type liveSession struct {
	sess     *quiz.Session
	lastSeen time.Time
}

func NewAttemptService(
	baseCtx context.Context,
	quizzes *repository.QuizRepo,
	enrollments *repository.EnrollmentRepo,
	recorder quiz.Recorder,
	publisher Publisher,
	allowLate bool,
	sessionOpts ...quiz.Option,
) *AttemptService {
	s := &AttemptService{
		quizzes:      quizzes,
		enrollments:  enrollments,
		recorder:     recorder,
		publisher:    publisher,
		allowLate:    allowLate,
		sessionOpts:  sessionOpts,
		baseCtx:      baseCtx,
		submittedTTL: SubmittedSessionTTL,
		idleTTL:      IdleSessionTTL,
		now:          time.Now,
		sessions:     make(map[uuid.UUID]*liveSession),
		stopSweep:    make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *AttemptService) Start(ctx context.Context, p middleware.Principal, quizID uuid.UUID) (*AttemptView, error) {
	q, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, notFound(err, "Quiz not found")
	}
	if !q.Published {
		// Drafts are invisible to students.
		return nil, &NotFoundError{Message: "Quiz not found"}
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, p.UserID, q.CourseID)
	if err != nil {
		return nil, err
	}

	opts := append([]quiz.Option{
		quiz.WithLateStart(s.allowLate),
		quiz.OnSubmit(s.onSubmit),
	}, s.sessionOpts...)
	sess := quiz.NewSession(q, quiz.Student{ID: p.UserID, Name: p.Name}, s.recorder, opts...)

	if err := sess.Start(s.baseCtx, enrolled); err != nil {
		return nil, attemptError(err)
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = &liveSession{sess: sess, lastSeen: s.now()}
	s.mu.Unlock()

	log.Info().
		Str("session_id", sess.ID().String()).
		Str("quiz_id", q.ID.String()).
		Str("user_id", p.UserID.String()).
		Msg("attempt started")

	return view(sess), nil
}

func (s *AttemptService) session(p middleware.Principal, id uuid.UUID) (*quiz.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	live, ok := s.sessions[id]
	if !ok || live.sess.Student().ID != p.UserID {
		return nil, &NotFoundError{Message: "Attempt not found"}
	}
	live.lastSeen = s.now()
	return live.sess, nil
}

func (s *AttemptService) Get(ctx context.Context, p middleware.Principal, id uuid.UUID) (*AttemptView, error) {
	sess, err := s.session(p, id)
	if err != nil {
		return nil, err
	}
	return view(sess), nil
}

func (s *AttemptService) SelectAnswer(ctx context.Context, p middleware.Principal, id uuid.UUID, questionIndex, optionIndex int) (*quiz.Snapshot, error) {
	sess, err := s.session(p, id)
	if err != nil {
		return nil, err
	}
	if err := sess.SelectAnswer(questionIndex, optionIndex); err != nil {
		return nil, attemptError(err)
	}
	snap := sess.Snapshot()
	return &snap, nil
}

// Submit scores the attempt. When the record could not be saved the result
// is still returned with Persisted=false and err wraps quiz.ErrNotPersisted.
func (s *AttemptService) Submit(ctx context.Context, p middleware.Principal, id uuid.UUID) (*quiz.Result, error) {
	sess, err := s.session(p, id)
	if err != nil {
		return nil, err
	}

	res, err := sess.Submit(ctx)
	if err != nil {
		if errors.Is(err, quiz.ErrNotPersisted) {
			return &res, err
		}
		return nil, attemptError(err)
	}
	return &res, nil
}

// Review returns the whole review and, when index is given, the item at
// that position.
func (s *AttemptService) Review(ctx context.Context, p middleware.Principal, id uuid.UUID, index *int) (*ReviewView, error) {
	sess, err := s.session(p, id)
	if err != nil {
		return nil, err
	}

	rev, err := sess.Review()
	if err != nil {
		return nil, attemptError(err)
	}
	if index != nil && !rev.Seek(*index) {
		return nil, &ValidationError{Fields: map[string]string{"index": "Index is out of range"}}
	}

	out := &ReviewView{
		Position: rev.Position(),
		Total:    rev.Len(),
		Items:    make([]quiz.ReviewItem, 0, rev.Len()),
	}
	if res, ok := sess.Result(); ok {
		out.Score = res.Score
	}
	if item, ok := rev.Current(); ok {
		out.Current = &item
	}
	for item := range rev.All() {
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func (s *AttemptService) Reset(ctx context.Context, p middleware.Principal, id uuid.UUID) (*AttemptView, error) {
	sess, err := s.session(p, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Reset(); err != nil {
		return nil, attemptError(err)
	}
	return view(sess), nil
}

// Cancel abandons the attempt and forgets the session.
func (s *AttemptService) Cancel(ctx context.Context, p middleware.Principal, id uuid.UUID) (*quiz.Snapshot, error) {
	sess, err := s.session(p, id)
	if err != nil {
		return nil, err
	}
	sess.Cancel()

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()

	snap := sess.Snapshot()
	return &snap, nil
}

// Shutdown stops the sweeper and every countdown. Attempts still in
// progress are abandoned.
func (s *AttemptService) Shutdown() {
	s.stopOnce.Do(func() { close(s.stopSweep) })

	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[uuid.UUID]*liveSession)
	s.mu.Unlock()

	for _, live := range sessions {
		live.sess.Cancel()
	}
	log.Info().Int("sessions", len(sessions)).Msg("attempt sessions stopped")
}

func (s *AttemptService) sweepLoop() {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.baseCtx.Done():
			return
		case <-s.stopSweep:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep forgets finished sessions past SubmittedSessionTTL and abandons idle
// ones. Countdowns are cancelled outside s.mu: a countdown that is
// auto-submitting calls onSubmit, which takes s.mu.
func (s *AttemptService) sweep() int {
	now := s.now()

	s.mu.Lock()
	var expired []*quiz.Session
	for id, live := range s.sessions {
		idle := now.Sub(live.lastSeen)
		switch live.sess.State() {
		case quiz.InProgress:
			limit := time.Duration(live.sess.Quiz().TimeLimit) * time.Minute
			if idle <= s.idleTTL+limit {
				continue
			}
		default:
			if idle <= s.submittedTTL {
				continue
			}
		}
		delete(s.sessions, id)
		expired = append(expired, live.sess)
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Cancel()
	}
	if len(expired) > 0 {
		log.Info().Int("sessions", len(expired)).Msg("expired attempt sessions released")
	}
	return len(expired)
}

func (s *AttemptService) onSubmit(ctx context.Context, sess *quiz.Session, res quiz.Result) {
	// Auto-submits count as activity so the result stays reviewable.
	s.mu.Lock()
	if live, ok := s.sessions[sess.ID()]; ok {
		live.lastSeen = s.now()
	}
	s.mu.Unlock()

	if !res.Persisted {
		log.Error().
			Str("session_id", sess.ID().String()).
			Str("attempt_id", res.AttemptID.String()).
			Msg("attempt submitted but not saved")
	}
	if s.publisher == nil {
		return
	}

	event := models.QuizCompletedEvent{
		QuizID:    sess.Quiz().ID,
		SessionID: sess.ID(),
		AttemptID: res.AttemptID,
		Score:     res.Score,
		Trigger:   string(res.Trigger),
		Persisted: res.Persisted,
	}
	userID := sess.Student().ID

	if res.Trigger == quiz.TriggerTimeout {
		s.publisher.PublishUpdate(ctx, userID, models.WSMessage{Type: EventAttemptAutoSubmitted, Payload: event})
	}
	s.publisher.PublishUpdate(ctx, userID, models.WSMessage{Type: EventQuizCompleted, Payload: event})
}

func view(sess *quiz.Session) *AttemptView {
	q := sess.Quiz()
	questions := make([]QuestionView, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = QuestionView{
			Question: question.Question,
			Options:  append([]string(nil), question.Options...),
		}
	}
	return &AttemptView{
		Snapshot:  sess.Snapshot(),
		Title:     q.Title,
		TimeLimit: q.TimeLimit,
		Questions: questions,
	}
}

// attemptError maps session errors onto the service taxonomy.
func attemptError(err error) error {
	var answerErr *quiz.AnswerError
	switch {
	case errors.As(err, &answerErr):
		return &ValidationError{Fields: map[string]string{answerErr.Field: answerErr.Message}}
	case errors.Is(err, quiz.ErrNotPublished):
		return &NotFoundError{Message: "Quiz not found"}
	case errors.Is(err, quiz.ErrNotEnrolled):
		return &ForbiddenError{Message: "You are not enrolled in this course"}
	case errors.Is(err, quiz.ErrPastDue):
		return &ForbiddenError{Message: "This quiz is past its due date"}
	case errors.Is(err, quiz.ErrAlreadyStarted),
		errors.Is(err, quiz.ErrNotInProgress):
		return &ConflictError{Message: "This attempt is not in progress"}
	case errors.Is(err, quiz.ErrNotSubmitted):
		return &ConflictError{Message: "This attempt has not been submitted"}
	default:
		return err
	}
}
