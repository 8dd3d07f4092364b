package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
)

// LabService handles coding problems and their submissions.
type LabService struct {
	lab         *repository.LabRepo
	enrollments *repository.EnrollmentRepo
	courses     *CourseService
}

func NewLabService(lab *repository.LabRepo, enrollments *repository.EnrollmentRepo, courses *CourseService) *LabService {
	return &LabService{lab: lab, enrollments: enrollments, courses: courses}
}

func (s *LabService) CreateProblem(ctx context.Context, p middleware.Principal, req models.CreateProblemRequest) (*models.CodingProblem, error) {
	course, err := s.courses.Owned(ctx, p, req.CourseID)
	if err != nil {
		return nil, err
	}

	problem := &models.CodingProblem{
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Instructions: req.Instructions,
		Difficulty:   req.Difficulty,
		Language:     strings.ToLower(req.Language),
		DueDate:      req.DueDate,
		StartCode:    req.StartCode,
		CourseID:     course.ID,
		CourseName:   course.Title,
		TeacherID:    p.UserID,
		Points:       req.Points,
	}
	if err := s.SaveProblem(ctx, problem); err != nil {
		return nil, err
	}
	return problem, nil
}

// SaveProblem fills defaults and stores the problem.
func (s *LabService) SaveProblem(ctx context.Context, problem *models.CodingProblem) error {
	if problem.Points == 0 {
		problem.Points = models.DefaultAssignmentPoints
	}
	if problem.Difficulty == "" {
		problem.Difficulty = "medium"
	}
	return s.lab.CreateProblem(ctx, problem)
}

// ListProblems returns a teacher's own problems, or for a student the
// problems in enrolled courses with submission status.
func (s *LabService) ListProblems(ctx context.Context, p middleware.Principal) ([]models.StudentProblem, error) {
	if p.Role == models.RoleTeacher {
		problems, err := s.lab.ListProblemsByTeacher(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		out := make([]models.StudentProblem, 0, len(problems))
		for _, problem := range problems {
			out = append(out, models.StudentProblem{CodingProblem: problem})
		}
		return out, nil
	}

	courseIDs, err := s.enrollments.CourseIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	problems, err := s.lab.ListProblems(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.lab.ListSubmissionsByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	byProblem := make(map[uuid.UUID]models.LabSubmission, len(subs))
	for _, sub := range subs {
		byProblem[sub.ProblemID] = sub
	}

	out := make([]models.StudentProblem, 0, len(problems))
	for _, problem := range problems {
		if !courseIDs[problem.CourseID] {
			continue
		}
		sp := models.StudentProblem{CodingProblem: problem}
		if sub, ok := byProblem[problem.ID]; ok {
			sp.Submitted = true
			sp.Submission = &sub
		}
		out = append(out, sp)
	}
	return out, nil
}

func (s *LabService) Submit(ctx context.Context, p middleware.Principal, problemID uuid.UUID, req models.SubmitSolutionRequest) (*models.LabSubmission, error) {
	problem, err := s.lab.GetProblem(ctx, problemID)
	if err != nil {
		return nil, notFound(err, "Problem not found")
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, p.UserID, problem.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, &ForbiddenError{Message: "You are not enrolled in this course"}
	}

	sub := &models.LabSubmission{
		ProblemID:    problem.ID,
		UserID:       p.UserID,
		StudentName:  p.Name,
		Content:      req.Content,
		TeacherID:    problem.TeacherID,
		ProblemTitle: problem.Title,
		CourseID:     problem.CourseID,
		CourseName:   problem.CourseName,
		Points:       problem.Points,
	}
	if err := s.lab.CreateSubmission(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *LabService) ListSubmissions(ctx context.Context, p middleware.Principal, problemID uuid.UUID) ([]models.LabSubmission, error) {
	problem, err := s.lab.GetProblem(ctx, problemID)
	if err != nil {
		return nil, notFound(err, "Problem not found")
	}
	if problem.TeacherID != p.UserID {
		return nil, &ForbiddenError{Message: "You do not own this problem"}
	}
	return s.lab.ListSubmissionsByProblem(ctx, problemID)
}

func (s *LabService) Grade(ctx context.Context, p middleware.Principal, id uuid.UUID, req models.GradeRequest) (*models.LabSubmission, error) {
	sub, err := s.lab.GetSubmission(ctx, id)
	if err != nil {
		return nil, notFound(err, "Submission not found")
	}
	if sub.TeacherID != p.UserID {
		return nil, &ForbiddenError{Message: "You do not grade this submission"}
	}
	if err := checkGrade(*req.Grade, sub.Points); err != nil {
		return nil, err
	}

	if err := s.lab.GradeSubmission(ctx, id, *req.Grade, req.Feedback); err != nil {
		return nil, notFound(err, "Submission not found")
	}
	return s.lab.GetSubmission(ctx, id)
}
