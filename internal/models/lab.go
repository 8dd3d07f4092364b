package models

import (
	"time"

	"github.com/google/uuid"
)

type CodingProblem struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Instructions string     `json:"instructions"`
	Difficulty   string     `json:"difficulty"`
	Language     string     `json:"language"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	StartCode    string     `json:"start_code"`
	CourseID     uuid.UUID  `json:"course_id"`
	CourseName   string     `json:"course_name"`
	TeacherID    uuid.UUID  `json:"teacher_id"`
	Points       int        `json:"points"`
	CreatedAt    time.Time  `json:"created_at"`
}

type LabSubmission struct {
	ID           uuid.UUID  `json:"id"`
	ProblemID    uuid.UUID  `json:"problem_id"`
	UserID       uuid.UUID  `json:"user_id"`
	StudentName  string     `json:"student_name"`
	Content      string     `json:"content"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	TeacherID    uuid.UUID  `json:"teacher_id"`
	ProblemTitle string     `json:"problem_title"`
	CourseID     uuid.UUID  `json:"course_id"`
	CourseName   string     `json:"course_name"`
	Points       int        `json:"points"`
	Grade        *int       `json:"grade"`
	Feedback     *string    `json:"feedback"`
	GradedAt     *time.Time `json:"graded_at,omitempty"`
}

type StudentProblem struct {
	CodingProblem
	Submitted  bool           `json:"submitted"`
	Submission *LabSubmission `json:"submission,omitempty"`
}

type CreateProblemRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Description  string     `json:"description" validate:"max=10000"`
	Instructions string     `json:"instructions" validate:"max=10000"`
	Difficulty   string     `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Language     string     `json:"language" validate:"required,max=40"`
	DueDate      *time.Time `json:"due_date"`
	StartCode    string     `json:"start_code"`
	CourseID     uuid.UUID  `json:"course_id" validate:"required"`
	Points       int        `json:"points" validate:"min=0,max=1000"`
}

type SubmitSolutionRequest struct {
	Content string `json:"content" validate:"required"`
}

type GenerateProblemRequest struct {
	CourseID   uuid.UUID `json:"course_id" validate:"required"`
	Topic      string    `json:"topic" validate:"required,max=200"`
	Language   string    `json:"language" validate:"required,max=40"`
	Difficulty string    `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Points     int       `json:"points" validate:"min=0,max=1000"`
}
