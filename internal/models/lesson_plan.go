package models

import (
	"time"

	"github.com/google/uuid"
)

type Subtopic struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Activities  []string `json:"activities"`
	Resources   []string `json:"resources"`
}

type LessonPlan struct {
	ID                 uuid.UUID  `json:"id,omitempty"`
	TeacherID          uuid.UUID  `json:"teacher_id,omitempty"`
	CourseID           *uuid.UUID `json:"course_id,omitempty"`
	MainTopic          string     `json:"mainTopic" validate:"required"`
	Subtopics          []Subtopic `json:"subtopics"`
	LearningObjectives []string   `json:"learningObjectives"`
	SuggestedTimeframe string     `json:"suggestedTimeframe"`
	AssessmentIdeas    []string   `json:"assessmentIdeas"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
}

type LessonPlanRequest struct {
	Subject    string `json:"subject" validate:"max=200"`
	Topic      string `json:"topic" validate:"required,max=200"`
	GradeLevel string `json:"gradeLevel" validate:"max=50"`
	Duration   string `json:"duration" validate:"max=50"`
}

type PlagiarismRequest struct {
	Text         string     `json:"text" validate:"required_without=SubmissionID"`
	SubmissionID *uuid.UUID `json:"submission_id"`
}

type PlagiarismReport struct {
	PlagiarismScore int      `json:"plagiarismScore"`
	Analysis        []string `json:"analysis"`
	MatchedSources  []string `json:"matchedSources"`
}
