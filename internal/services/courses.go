package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"classroom-backend/internal/middleware"
	"classroom-backend/internal/models"
	"classroom-backend/internal/repository"
)

type CourseService struct {
	courses     *repository.CourseRepo
	enrollments *repository.EnrollmentRepo
}

func NewCourseService(courses *repository.CourseRepo, enrollments *repository.EnrollmentRepo) *CourseService {
	return &CourseService{courses: courses, enrollments: enrollments}
}

func (s *CourseService) Create(ctx context.Context, p middleware.Principal, req models.CreateCourseRequest) (*models.Course, error) {
	c := &models.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		TeacherID:   p.UserID,
		TeacherName: p.Name,
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns a teacher's own courses, or every course for a student to
// browse.
func (s *CourseService) List(ctx context.Context, p middleware.Principal) ([]models.Course, error) {
	if p.Role == models.RoleTeacher {
		return s.courses.ListByTeacher(ctx, p.UserID)
	}
	return s.courses.List(ctx)
}

func (s *CourseService) Get(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	c, err := s.courses.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Course not found")
	}
	return c, nil
}

// Owned returns the course if p teaches it.
func (s *CourseService) Owned(ctx context.Context, p middleware.Principal, id uuid.UUID) (*models.Course, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.TeacherID != p.UserID {
		return nil, &ForbiddenError{Message: "You do not teach this course"}
	}
	return c, nil
}

func (s *CourseService) Enroll(ctx context.Context, p middleware.Principal, courseID uuid.UUID) (*models.Enrollment, error) {
	if _, err := s.Get(ctx, courseID); err != nil {
		return nil, err
	}

	enrolled, err := s.enrollments.IsEnrolled(ctx, p.UserID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, &ConflictError{Message: "Already enrolled in this course"}
	}

	e := &models.Enrollment{UserID: p.UserID, CourseID: courseID}
	if err := s.enrollments.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Enrolled lists the courses the student is enrolled in. Enrollments that
// point at deleted courses are skipped.
func (s *CourseService) Enrolled(ctx context.Context, p middleware.Principal) ([]models.Course, error) {
	ids, err := s.enrollments.CourseIDs(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	all, err := s.courses.List(ctx)
	if err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(ids))
	for _, c := range all {
		if ids[c.ID] {
			courses = append(courses, c)
		}
	}
	return courses, nil
}
