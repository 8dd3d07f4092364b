package generation

import (
	"context"
	"fmt"
	"strings"
)

// Service runs prompt → generate → parse for each kind of content.
type Service struct {
	gen    Generator
	format QuizFormat
}

func NewService(gen Generator, format QuizFormat) *Service {
	if format == nil {
		format = LineFormat{}
	}
	return &Service{gen: gen, format: format}
}

// Quiz returns the parsed quiz or an error; it never returns a partial quiz.
func (s *Service) Quiz(ctx context.Context, req QuizRequest) (*ParsedQuiz, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, ErrEmptyPrompt
	}
	text, err := s.gen.Generate(ctx, s.format.Prompt(req))
	if err != nil {
		return nil, err
	}
	parsed, err := s.format.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse generated quiz: %w", err)
	}
	if parsed.Title == "" {
		parsed.Title = fmt.Sprintf("%s Quiz", strings.TrimSpace(req.Topic))
	}
	return parsed, nil
}

// Assignment returns a title and the full generated assignment text.
func (s *Service) Assignment(ctx context.Context, req AssignmentRequest) (title, body string, err error) {
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Topic) == "" {
		return "", "", ErrEmptyPrompt
	}
	text, err := s.gen.Generate(ctx, AssignmentPrompt(req))
	if err != nil {
		return "", "", err
	}
	return ExtractTitle(text), strings.TrimSpace(text), nil
}

func (s *Service) Problem(ctx context.Context, req ProblemRequest) (GeneratedProblem, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return GeneratedProblem{}, ErrEmptyPrompt
	}
	text, err := s.gen.Generate(ctx, ProblemPrompt(req))
	if err != nil {
		return GeneratedProblem{}, err
	}
	return ParseProblem(text, req.Language), nil
}

// Feedback drafts a comment on a submission and, when the model wrote one
// inside the allowed range, a grade.
func (s *Service) Feedback(ctx context.Context, assignmentTitle, submission string, points int) (string, *int, error) {
	if strings.TrimSpace(submission) == "" {
		return "", nil, ErrEmptyPrompt
	}
	text, err := s.gen.Generate(ctx, FeedbackPrompt(assignmentTitle, submission, points))
	if err != nil {
		return "", nil, err
	}
	text = strings.TrimSpace(text)
	if grade, ok := SuggestedGrade(text, points); ok {
		return text, &grade, nil
	}
	return text, nil, nil
}
