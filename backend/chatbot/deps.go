package chatbot

import (
	"context"
	"edulearn/backend/models"
)

// Store is the subset of the persistence layer the chatbot reads and writes.
type Store interface {
	CountPublishedCourses(ctx context.Context) (int64, error)
	PublishedCourses(ctx context.Context) ([]models.Course, error)
	PublishedCoursesWithEnrollments(ctx context.Context) ([]models.Course, error)
	CoursesByPricing(ctx context.Context, paid bool, limit int) ([]models.Course, error)
	LatestCourses(ctx context.Context, limit int) ([]models.Course, error)
	LessonsByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error)
	AllLessons(ctx context.Context) ([]models.Lesson, error)
	QuizzesByLessons(ctx context.Context, lessonIDs []uint) ([]models.Quiz, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateCourse(ctx context.Context, course *models.Course) error
	SaveCourse(ctx context.Context, course *models.Course) error
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	SaveLesson(ctx context.Context, lesson *models.Lesson) error
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
}

// TextGenerator produces one completion for a system+user prompt pair.
// An empty model means the generator's default.
type TextGenerator interface {
	Complete(ctx context.Context, system, user, model string) (string, error)
}

// Compensator undoes a course generation that failed part way.
type Compensator interface {
	Compensate(ctx context.Context, course *models.Course, lessons []models.Lesson, cause error) error
}

// Guard hands out idempotency tokens for course generation. Acquire reports
// false when the key is already held.
type Guard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
