package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"classroom-backend/internal/generation"
	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
)

// FileResolver maps an uploaded file's URL to a path on disk.
type FileResolver interface {
	LocalPath(url string) (string, error)
}

// CourseworkService handles assignments, student submissions and grading.
type CourseworkService struct {
	assignments *repository.AssignmentRepo
	submissions *repository.SubmissionRepo
	enrollments *repository.EnrollmentRepo
	courses     *CourseService
	generator   *generation.Service
	files       FileResolver
	extract     *FileExtractService
}

func NewCourseworkService(
	assignments *repository.AssignmentRepo,
	submissions *repository.SubmissionRepo,
	enrollments *repository.EnrollmentRepo,
	courses *CourseService,
	generator *generation.Service,
	files FileResolver,
	extract *FileExtractService,
) *CourseworkService {
	return &CourseworkService{
		assignments: assignments,
		submissions: submissions,
		enrollments: enrollments,
		courses:     courses,
		generator:   generator,
		files:       files,
		extract:     extract,
	}
}

func (s *CourseworkService) CreateAssignment(ctx context.Context, p middleware.Principal, req models.CreateAssignmentRequest) (*models.Assignment, error) {
	course, err := s.courses.Owned(ctx, p, req.CourseID)
	if err != nil {
		return nil, err
	}

	a := &models.Assignment{
		Title:              strings.TrimSpace(req.Title),
		Description:        req.Description,
		CourseID:           course.ID,
		CourseName:         course.Title,
		DueDate:            req.DueDate,
		Points:             req.Points,
		TeacherID:          p.UserID,
		AssignmentType:     req.AssignmentType,
		TextContent:        req.TextContent,
		FileURL:            req.FileURL,
		AIGeneratedContent: req.AIGeneratedContent,
	}
	if a.Points == 0 {
		a.Points = models.DefaultAssignmentPoints
	}
	if a.AssignmentType == "" {
		a.AssignmentType = "text"
	}

	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CourseworkService) ListForTeacher(ctx context.Context, p middleware.Principal) ([]models.Assignment, error) {
	return s.assignments.ListByTeacher(ctx, p.UserID)
}

// ListForStudent returns assignments from enrolled courses, earliest due
// date first (undated last), each with the student's submission if any.
func (s *CourseworkService) ListForStudent(ctx context.Context, p middleware.Principal) ([]models.StudentAssignment, error) {
	courseIDs, err := s.enrollments.CourseIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	if len(courseIDs) == 0 {
		return []models.StudentAssignment{}, nil
	}

	all, err := s.assignments.List(ctx)
	if err != nil {
		return nil, err
	}
	submissions, err := s.submissions.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	byAssignment := make(map[uuid.UUID]models.Submission, len(submissions))
	for _, sub := range submissions {
		byAssignment[sub.AssignmentID] = sub
	}

	out := make([]models.StudentAssignment, 0, len(all))
	for i := range all {
		a := &all[i]
		if !courseIDs[a.CourseID] {
			continue
		}
		var sa models.StudentAssignment
		if err := copier.Copy(&sa, a); err != nil {
			return nil, fmt.Errorf("map assignment %s: %w", a.ID, err)
		}
		if sub, ok := byAssignment[a.ID]; ok {
			sa.Submitted = true
			sa.Submission = &sub
		}
		out = append(out, sa)
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].DueDate, out[j].DueDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
	return out, nil
}

// Get lets the owning teacher or an enrolled student read an assignment.
func (s *CourseworkService) Get(ctx context.Context, p middleware.Principal, id uuid.UUID) (*models.Assignment, error) {
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Assignment not found")
	}
	if a.TeacherID == p.UserID {
		return a, nil
	}
	enrolled, err := s.enrollments.IsEnrolled(ctx, p.UserID, a.CourseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, &ForbiddenError{Message: "You are not enrolled in this course"}
	}
	return a, nil
}

func (s *CourseworkService) Submit(ctx context.Context, p middleware.Principal, assignmentID uuid.UUID, req models.SubmitAssignmentRequest) (*models.Submission, error) {
	a, err := s.Get(ctx, p, assignmentID)
	if err != nil {
		return nil, err
	}

	existing, err := s.submissions.ListByUser(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	for _, sub := range existing {
		if sub.AssignmentID == assignmentID {
			return nil, &ConflictError{Message: "You have already submitted this assignment"}
		}
	}

	sub := &models.Submission{
		AssignmentID:    a.ID,
		UserID:          p.UserID,
		StudentName:     p.Name,
		Content:         req.Content,
		FileURL:         req.FileURL,
		CourseID:        a.CourseID,
		CourseName:      a.CourseName,
		TeacherID:       a.TeacherID,
		AssignmentTitle: a.Title,
		Points:          a.Points,
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *CourseworkService) ListSubmissions(ctx context.Context, p middleware.Principal, assignmentID uuid.UUID) ([]models.Submission, error) {
	a, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, notFound(err, "Assignment not found")
	}
	if a.TeacherID != p.UserID {
		return nil, &ForbiddenError{Message: "You do not own this assignment"}
	}
	return s.submissions.ListByAssignment(ctx, assignmentID)
}

func (s *CourseworkService) gradable(ctx context.Context, p middleware.Principal, id uuid.UUID) (*models.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Submission not found")
	}
	if sub.TeacherID != p.UserID {
		return nil, &ForbiddenError{Message: "You do not grade this submission"}
	}
	return sub, nil
}

func (s *CourseworkService) Grade(ctx context.Context, p middleware.Principal, id uuid.UUID, req models.GradeRequest) (*models.Submission, error) {
	sub, err := s.gradable(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := checkGrade(*req.Grade, sub.Points); err != nil {
		return nil, err
	}

	if err := s.submissions.Grade(ctx, id, *req.Grade, req.Feedback, p.UserID); err != nil {
		return nil, notFound(err, "Submission not found")
	}
	return s.submissions.GetByID(ctx, id)
}

// SuggestFeedback drafts a comment and grade for a submission. Nothing is
// stored; the teacher grades through Grade.
func (s *CourseworkService) SuggestFeedback(ctx context.Context, p middleware.Principal, id uuid.UUID) (*models.FeedbackSuggestion, error) {
	sub, err := s.gradable(ctx, p, id)
	if err != nil {
		return nil, err
	}

	text := s.submissionText(sub)
	feedback, grade, err := s.generator.Feedback(ctx, sub.AssignmentTitle, text, sub.Points)
	if err != nil {
		return nil, generationError(err)
	}

	return &models.FeedbackSuggestion{
		SubmissionID:   sub.ID,
		Feedback:       feedback,
		SuggestedGrade: grade,
		Points:         sub.Points,
	}, nil
}

// submissionText joins the typed answer with the text of an uploaded file.
// Files that cannot be read are skipped.
func (s *CourseworkService) submissionText(sub *models.Submission) string {
	parts := []string{}
	if c := strings.TrimSpace(sub.Content); c != "" {
		parts = append(parts, c)
	}
	if sub.FileURL != "" && s.files != nil && s.extract != nil {
		path, err := s.files.LocalPath(sub.FileURL)
		if err == nil {
			var text string
			text, err = s.extract.ExtractTextFromPath(path)
			if err == nil {
				parts = append(parts, text)
			}
		}
		if err != nil {
			log.Warn().Err(err).Str("submission_id", sub.ID.String()).Msg("could not read submitted file")
		}
	}
	return strings.Join(parts, "\n\n")
}

// Text returns the readable text of a submission the caller may see.
func (s *CourseworkService) Text(ctx context.Context, p middleware.Principal, id uuid.UUID) (string, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return "", notFound(err, "Submission not found")
	}
	if sub.TeacherID != p.UserID && sub.UserID != p.UserID {
		return "", &ForbiddenError{Message: "You cannot read this submission"}
	}
	return s.submissionText(sub), nil
}

// SaveGeneratedAssignment stores generated text as a new assignment.
func (s *CourseworkService) SaveGeneratedAssignment(ctx context.Context, a *models.Assignment) error {
	if a.Points == 0 {
		a.Points = models.DefaultAssignmentPoints
	}
	if a.AssignmentType == "" {
		a.AssignmentType = "text"
	}
	return s.assignments.Create(ctx, a)
}

func checkGrade(grade, points int) error {
	if grade < 0 || grade > points {
		return &ValidationError{Fields: map[string]string{
			"grade": fmt.Sprintf("Grade must be between 0 and %d", points),
		}}
	}
	return nil
}
