package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/docstore"
	"classroom-backend/internal/models"
)

type CourseRepo struct {
	store docstore.Store
}

func NewCourseRepo(store docstore.Store) *CourseRepo {
	return &CourseRepo{store: store}
}

func (r *CourseRepo) Create(ctx context.Context, c *models.Course) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
	return docstore.Put(ctx, r.store, CollCourses, c.ID.String(), c)
}

func (r *CourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return docstore.GetAs[models.Course](ctx, r.store, CollCourses, id.String())
}

func (r *CourseRepo) List(ctx context.Context) ([]models.Course, error) {
	courses, err := docstore.ListAs[models.Course](ctx, r.store, CollCourses)
	if err != nil {
		return nil, err
	}
	return deref(courses), nil
}

func (r *CourseRepo) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]models.Course, error) {
	courses, err := docstore.QueryAs[models.Course](ctx, r.store, CollCourses, "teacher_id", teacherID)
	if err != nil {
		return nil, err
	}
	return deref(courses), nil
}

type EnrollmentRepo struct {
	store docstore.Store
}

func NewEnrollmentRepo(store docstore.Store) *EnrollmentRepo {
	return &EnrollmentRepo{store: store}
}

func (r *EnrollmentRepo) Create(ctx context.Context, e *models.Enrollment) error {
	e.ID = uuid.New()
	e.EnrolledAt = time.Now().UTC()
	return docstore.Put(ctx, r.store, CollEnrollments, e.ID.String(), e)
}

func (r *EnrollmentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Enrollment, error) {
	enrollments, err := docstore.QueryAs[models.Enrollment](ctx, r.store, CollEnrollments, "user_id", userID)
	if err != nil {
		return nil, err
	}
	return deref(enrollments), nil
}

// CourseIDs returns the set of courses userID is enrolled in.
func (r *EnrollmentRepo) CourseIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	enrollments, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[uuid.UUID]bool, len(enrollments))
	for _, e := range enrollments {
		ids[e.CourseID] = true
	}
	return ids, nil
}

func (r *EnrollmentRepo) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	ids, err := r.CourseIDs(ctx, userID)
	if err != nil {
		return false, err
	}
	return ids[courseID], nil
}
