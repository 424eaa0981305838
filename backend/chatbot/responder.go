package chatbot

import (
	"context"
	"edulearn/backend/models"
	"fmt"
	"sort"
	"strings"
)

const shortListSize = 3

// Responder answers catalog questions straight from the store.
type Responder struct {
	store Store
}

func NewResponder(store Store) *Responder {
	return &Responder{store: store}
}

func (r *Responder) TotalCourses(ctx context.Context) (string, error) {
	n, err := r.store.CountPublishedCourses(ctx)
	if err != nil {
		return "", fmt.Errorf("count published courses: %w", err)
	}
	return fmt.Sprintf("There are %d published courses available on EduLearn.", n), nil
}

// LessonsOrQuizzes answers a lesson or quiz question about a course or lesson
// named in the message. handled is false when nothing in the message matches
// a known title.
func (r *Responder) LessonsOrQuizzes(ctx context.Context, m Message) (reply string, handled bool, err error) {
	courses, err := r.store.PublishedCourses(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load published courses: %w", err)
	}

	if course := firstTitleMatch(m.Lower, courses, func(c models.Course) string { return c.Title }); course != nil {
		lessons, err := r.store.LessonsByCourse(ctx, course.ID)
		if err != nil {
			return "", false, fmt.Errorf("load lessons of course %d: %w", course.ID, err)
		}
		if m.AsksLessons() {
			if len(lessons) == 0 {
				return fmt.Sprintf("No lessons found in course \"%s\".", course.Title), true, nil
			}
			return fmt.Sprintf("Lessons in course \"%s\":\n\n%s", course.Title, enumerate(lessons, func(l models.Lesson) string { return l.Title })), true, nil
		}

		ids := make([]uint, 0, len(lessons))
		for _, l := range lessons {
			ids = append(ids, l.ID)
		}
		quizzes, err := r.store.QuizzesByLessons(ctx, ids)
		if err != nil {
			return "", false, fmt.Errorf("load quizzes of course %d: %w", course.ID, err)
		}
		if len(quizzes) == 0 {
			return fmt.Sprintf("No quizzes found in course \"%s\".", course.Title), true, nil
		}
		return fmt.Sprintf("Quizzes in course \"%s\":\n\n%s", course.Title, enumerate(quizzes, quizQuestion)), true, nil
	}

	lessons, err := r.store.AllLessons(ctx)
	if err != nil {
		return "", false, fmt.Errorf("load lessons: %w", err)
	}
	lesson := firstTitleMatch(m.Lower, lessons, func(l models.Lesson) string { return l.Title })
	if lesson == nil || !m.AsksQuizzes() {
		return "", false, nil
	}

	quizzes, err := r.store.QuizzesByLessons(ctx, []uint{lesson.ID})
	if err != nil {
		return "", false, fmt.Errorf("load quizzes of lesson %d: %w", lesson.ID, err)
	}
	if len(quizzes) == 0 {
		return fmt.Sprintf("No quizzes found for lesson \"%s\".", lesson.Title), true, nil
	}
	return fmt.Sprintf("Quizzes in lesson \"%s\":\n\n%s", lesson.Title, enumerate(quizzes, quizQuestion)), true, nil
}

func (r *Responder) MostPopular(ctx context.Context) (string, error) {
	courses, err := r.store.PublishedCoursesWithEnrollments(ctx)
	if err != nil {
		return "", fmt.Errorf("load enrollments: %w", err)
	}

	enrolled := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		if len(c.EnrolledStudents) > 0 {
			enrolled = append(enrolled, c)
		}
	}
	if len(enrolled) == 0 {
		return "Currently, no courses have any enrolled students yet. Check back later for trending courses!", nil
	}

	sort.SliceStable(enrolled, func(i, j int) bool {
		return len(enrolled[i].EnrolledStudents) > len(enrolled[j].EnrolledStudents)
	})
	if len(enrolled) > shortListSize {
		enrolled = enrolled[:shortListSize]
	}

	list := enumerate(enrolled, func(c models.Course) string {
		return fmt.Sprintf("%s — %d students", c.Title, len(c.EnrolledStudents))
	})
	return "Here are the 3 most popular courses:\n\n" + list, nil
}

func (r *Responder) ByPricing(ctx context.Context, paid bool) (string, error) {
	label := "free"
	if paid {
		label = "paid"
	}
	courses, err := r.store.CoursesByPricing(ctx, paid, shortListSize)
	if err != nil {
		return "", fmt.Errorf("load %s courses: %w", label, err)
	}
	if len(courses) == 0 {
		return fmt.Sprintf("There are no %s courses available right now.", label), nil
	}
	return fmt.Sprintf("Here are the latest %s courses:\n\n%s", label, enumerate(courses, courseTitle)), nil
}

func (r *Responder) Latest(ctx context.Context) (string, error) {
	courses, err := r.store.LatestCourses(ctx, shortListSize)
	if err != nil {
		return "", fmt.Errorf("load latest courses: %w", err)
	}
	if len(courses) == 0 {
		return "No recent courses found.", nil
	}
	return "Here are the 3 latest courses:\n\n" + enumerate(courses, courseTitle), nil
}

func courseTitle(c models.Course) string { return c.Title }
func quizQuestion(q models.Quiz) string  { return q.Question }

// firstTitleMatch returns the first item whose non-blank title occurs in text.
func firstTitleMatch[T any](text string, items []T, title func(T) string) *T {
	for i := range items {
		t := strings.ToLower(strings.TrimSpace(title(items[i])))
		if t != "" && strings.Contains(text, t) {
			return &items[i]
		}
	}
	return nil
}

func enumerate[T any](items []T, line func(T) string) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, line(item))
	}
	return b.String()
}
