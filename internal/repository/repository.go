// Package repository maps domain models onto document-store collections.
// Every repo works against docstore.Store, so the same code runs on the
// Postgres JSONB table in production and the in-memory store in tests.
package repository

const (
	CollUsers          = "users"
	CollCourses        = "courses"
	CollEnrollments    = "enrollments"
	CollQuizzes        = "quizzes"
	CollAttempts       = "quiz_attempts"
	CollAssignments    = "assignments"
	CollSubmissions    = "submissions"
	CollProblems       = "coding_problems"
	CollLabSubmissions = "lab_submissions"
	CollLessonPlans    = "lesson_plans"
	CollJobs           = "jobs"
)

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, *it)
	}
	return out
}
