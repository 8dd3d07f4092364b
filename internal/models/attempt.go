package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AttemptInProgress = "in_progress"
	AttemptSubmitted  = "submitted"

	TriggerManual  = "manual"
	TriggerTimeout = "timeout"
)

// AttemptRecord is the immutable document written when an attempt is
// submitted. Trigger tells a timeout apart from a manual submission.
type AttemptRecord struct {
	ID            uuid.UUID `json:"id"`
	SessionID     uuid.UUID `json:"session_id"`
	QuizID        uuid.UUID `json:"quiz_id"`
	UserID        uuid.UUID `json:"user_id"`
	StudentName   string    `json:"student_name"`
	CourseID      uuid.UUID `json:"course_id"`
	Answers       []int     `json:"answers"`
	Score         int       `json:"score"`
	CorrectCount  int       `json:"correct_count"`
	QuestionCount int       `json:"question_count"`
	Status        string    `json:"status"`
	Trigger       string    `json:"trigger"`
	StartedAt     time.Time `json:"started_at"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

type SelectAnswerRequest struct {
	QuestionIndex *int `json:"question_index" validate:"required"`
	OptionIndex   *int `json:"option_index" validate:"required"`
}

// QuizCompletedEvent is pushed to the student when an attempt is submitted so
// catalog views can flip to completed without reloading.
type QuizCompletedEvent struct {
	QuizID    uuid.UUID `json:"quiz_id"`
	SessionID uuid.UUID `json:"session_id"`
	AttemptID uuid.UUID `json:"attempt_id"`
	Score     int       `json:"score"`
	Trigger   string    `json:"trigger"`
	Persisted bool      `json:"persisted"`
}
