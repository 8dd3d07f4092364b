package models

import (
	"time"

	"github.com/google/uuid"
)

// Question is one multiple-choice item. Options always holds four entries and
// CorrectAnswer is a zero-based index into them.
type Question struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"len=4,dive,required"`
	CorrectAnswer int      `json:"correct_answer" validate:"min=0,max=3"`
	Explanation   string   `json:"explanation,omitempty"`
}

type Quiz struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	TimeLimit   int        `json:"time_limit"` // minutes, 0 = unlimited
	DueDate     *time.Time `json:"due_date,omitempty"`
	Published   bool       `json:"published"`
	CourseID    uuid.UUID  `json:"course_id"`
	CourseName  string     `json:"course_name,omitempty"`
	TeacherID   uuid.UUID  `json:"teacher_id"`
	Topic       string     `json:"topic,omitempty"`
	Difficulty  string     `json:"difficulty,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type CreateQuizRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	CourseID    uuid.UUID  `json:"course_id" validate:"required"`
	TimeLimit   int        `json:"time_limit" validate:"min=0,max=600"`
	DueDate     *time.Time `json:"due_date"`
	Published   bool       `json:"published"`
	Questions   []Question `json:"questions" validate:"required,min=1,dive"`
}

type GenerateQuizRequest struct {
	CourseID     uuid.UUID `json:"course_id" validate:"required"`
	Topic        string    `json:"topic" validate:"required,max=200"`
	Difficulty   string    `json:"difficulty" validate:"required,oneof=easy medium hard"`
	NumQuestions int       `json:"num_questions" validate:"required,min=1,max=30"`
	TimeLimit    int       `json:"time_limit" validate:"min=0,max=600"`
}

// CatalogEntry is a quiz as a student sees it in their catalog.
type CatalogEntry struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	CourseID      uuid.UUID  `json:"course_id"`
	CourseName    string     `json:"course_name,omitempty"`
	TimeLimit     int        `json:"time_limit"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	QuestionCount int        `json:"question_count"`
	Completed     bool       `json:"completed"`
	Score         *int       `json:"score,omitempty"`
}
