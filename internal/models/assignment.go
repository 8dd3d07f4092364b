package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultAssignmentPoints = 10

type Assignment struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	CourseID           uuid.UUID  `json:"course_id"`
	CourseName         string     `json:"course_name"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	Points             int        `json:"points"`
	TeacherID          uuid.UUID  `json:"teacher_id"`
	AssignmentType     string     `json:"assignment_type"` // "text" | "file"
	TextContent        string     `json:"text_content,omitempty"`
	FileURL            string     `json:"file_url,omitempty"`
	AIGeneratedContent string     `json:"ai_generated_content,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type Submission struct {
	ID              uuid.UUID  `json:"id"`
	AssignmentID    uuid.UUID  `json:"assignment_id"`
	UserID          uuid.UUID  `json:"user_id"`
	StudentName     string     `json:"student_name"`
	Content         string     `json:"content,omitempty"`
	FileURL         string     `json:"file_url,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	CourseID        uuid.UUID  `json:"course_id"`
	CourseName      string     `json:"course_name"`
	TeacherID       uuid.UUID  `json:"teacher_id"`
	AssignmentTitle string     `json:"assignment_title"`
	Points          int        `json:"points"`
	Grade           *int       `json:"grade"`
	Feedback        *string    `json:"feedback"`
	GradedAt        *time.Time `json:"graded_at,omitempty"`
	GradedBy        *uuid.UUID `json:"graded_by,omitempty"`
}

// StudentAssignment is an assignment joined with the caller's own submission.
type StudentAssignment struct {
	ID             uuid.UUID   `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	CourseID       uuid.UUID   `json:"course_id"`
	CourseName     string      `json:"course_name"`
	DueDate        *time.Time  `json:"due_date,omitempty"`
	Points         int         `json:"points"`
	AssignmentType string      `json:"assignment_type"`
	TextContent    string      `json:"text_content,omitempty"`
	FileURL        string      `json:"file_url,omitempty"`
	Submitted      bool        `json:"submitted"`
	Submission     *Submission `json:"submission,omitempty"`
}

type CreateAssignmentRequest struct {
	Title              string     `json:"title" validate:"required,max=200"`
	Description        string     `json:"description" validate:"max=10000"`
	CourseID           uuid.UUID  `json:"course_id" validate:"required"`
	DueDate            *time.Time `json:"due_date"`
	Points             int        `json:"points" validate:"min=0,max=1000"`
	AssignmentType     string     `json:"assignment_type" validate:"omitempty,oneof=text file"`
	TextContent        string     `json:"text_content"`
	FileURL            string     `json:"file_url" validate:"omitempty,url"`
	AIGeneratedContent string     `json:"ai_generated_content"`
}

type SubmitAssignmentRequest struct {
	Content string `json:"content" validate:"required_without=FileURL"`
	FileURL string `json:"file_url" validate:"omitempty,url"`
}

type GradeRequest struct {
	Grade    *int   `json:"grade" validate:"required"`
	Feedback string `json:"feedback" validate:"max=10000"`
}

type GenerateAssignmentRequest struct {
	CourseID        uuid.UUID `json:"course_id" validate:"required"`
	Subject         string    `json:"subject" validate:"required,max=200"`
	Topic           string    `json:"topic" validate:"required,max=200"`
	DifficultyLevel string    `json:"difficulty_level" validate:"required,oneof=easy medium hard"`
	Grade           string    `json:"grade" validate:"max=50"`
	Points          int       `json:"points" validate:"min=0,max=1000"`
}

// FeedbackSuggestion is an AI-drafted grade and comment. The teacher still
// grades through the normal grading call.
type FeedbackSuggestion struct {
	SubmissionID   uuid.UUID `json:"submission_id"`
	Feedback       string    `json:"feedback"`
	SuggestedGrade *int      `json:"suggested_grade"`
	Points         int       `json:"points"`
}
