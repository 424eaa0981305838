// Package store is the persistence layer for users, courses, lessons and
// quizzes. Every method takes the request context so a dropped client stops
// further queries.
package store

import (
	"context"
	"edulearn/backend/models"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Store) CountPublishedCourses(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Course{}).Where("is_published = ?", true).Count(&n).Error
	return n, err
}

// PublishedCourses returns published courses in insertion order.
func (s *Store) PublishedCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).Where("is_published = ?", true).Order("id ASC").Find(&courses).Error
	return courses, err
}

func (s *Store) PublishedCoursesWithEnrollments(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).
		Preload("EnrolledStudents").
		Where("is_published = ?", true).
		Order("id ASC").
		Find(&courses).Error
	return courses, err
}

// CoursesByPricing returns up to limit published courses with the given
// pricing, newest first.
func (s *Store) CoursesByPricing(ctx context.Context, paid bool, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).
		Where("is_published = ? AND is_paid = ?", true, paid).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

func (s *Store) LatestCourses(ctx context.Context, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

func (s *Store) LessonsByCourse(ctx context.Context, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("sequence_order ASC").Order("id ASC").
		Find(&lessons).Error
	return lessons, err
}

// AllLessons returns every lesson regardless of the owning course's state.
func (s *Store) AllLessons(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := s.db.WithContext(ctx).Order("id ASC").Find(&lessons).Error
	return lessons, err
}

func (s *Store) QuizzesByLessons(ctx context.Context, lessonIDs []uint) ([]models.Quiz, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	var quizzes []models.Quiz
	err := s.db.WithContext(ctx).Where("lesson_id IN ?", lessonIDs).Order("id ASC").Find(&quizzes).Error
	return quizzes, err
}

func (s *Store) CreateCourse(ctx context.Context, course *models.Course) error {
	return s.db.WithContext(ctx).Omit("Lessons", "EnrolledStudents", "Teacher").Create(course).Error
}

// SaveCourse persists the course row. Lesson membership lives on the lesson
// rows and is written by CreateLesson.
func (s *Store) SaveCourse(ctx context.Context, course *models.Course) error {
	return s.db.WithContext(ctx).Omit("Lessons", "EnrolledStudents", "Teacher").Save(course).Error
}

func (s *Store) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return s.db.WithContext(ctx).Omit("Quizzes").Create(lesson).Error
}

func (s *Store) SaveLesson(ctx context.Context, lesson *models.Lesson) error {
	return s.db.WithContext(ctx).Omit("Quizzes").Save(lesson).Error
}

func (s *Store) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return s.db.WithContext(ctx).Create(quiz).Error
}

func (s *Store) Enroll(ctx context.Context, courseID, userID uint) error {
	course := models.Course{}
	course.ID = courseID
	user := models.User{}
	user.ID = userID
	return s.db.WithContext(ctx).Model(&course).Association("EnrolledStudents").Append(&user)
}

// Compensate hard-deletes a partially generated course together with its
// lessons and quizzes.
func (s *Store) Compensate(ctx context.Context, course *models.Course, lessons []models.Lesson, cause error) error {
	if course == nil || course.ID == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(lessons))
		for _, l := range lessons {
			ids = append(ids, l.ID)
		}
		var stray []uint
		if err := tx.Model(&models.Lesson{}).Where("course_id = ?", course.ID).Pluck("id", &stray).Error; err != nil {
			return err
		}
		ids = append(ids, stray...)
		if len(ids) > 0 {
			if err := tx.Unscoped().Where("lesson_id IN ?", ids).Delete(&models.Quiz{}).Error; err != nil {
				return fmt.Errorf("delete quizzes: %w", err)
			}
			if err := tx.Unscoped().Where("id IN ?", ids).Delete(&models.Lesson{}).Error; err != nil {
				return fmt.Errorf("delete lessons: %w", err)
			}
		}
		if err := tx.Unscoped().Delete(&models.Course{}, course.ID).Error; err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		return nil
	})
}

// --- catalog ---

const CoursesPerPage = 8

type CourseFilter struct {
	Search    string
	Published *bool
	Paid      *bool
	SortField string // createdAt, updatedAt, title, category
	Desc      bool
	Page      int
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"category":  "category",
}

func (s *Store) filtered(ctx context.Context, f CourseFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Course{})
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if f.Published != nil {
		q = q.Where("is_published = ?", *f.Published)
	}
	if f.Paid != nil {
		q = q.Where("is_paid = ?", *f.Paid)
	}
	return q
}

// ListCourses returns one page of courses matching f and the total match count.
func (s *Store) ListCourses(ctx context.Context, f CourseFilter) ([]models.Course, int64, error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[f.SortField]
	if !ok {
		column = "created_at"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}
	page := f.Page
	if page < 1 {
		page = 1
	}

	var courses []models.Course
	err := s.filtered(ctx, f).
		Preload("Teacher").
		Order(column + " " + dir).Order("id " + dir).
		Offset((page - 1) * CoursesPerPage).
		Limit(CoursesPerPage).
		Find(&courses).Error
	return courses, total, err
}

func (s *Store) SuggestTitles(ctx context.Context, f CourseFilter) ([]string, error) {
	var titles []string
	err := s.filtered(ctx, f).Order("id ASC").Limit(5).Pluck("title", &titles).Error
	return titles, err
}

func (s *Store) CourseDetails(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order ASC").Order("id ASC")
		}).
		Preload("Lessons.Quizzes", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Teacher").
		First(&course, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *Store) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UpdateLastVisited records the last course (and optionally lesson) a user
// opened.
func (s *Store) UpdateLastVisited(ctx context.Context, userID, courseID uint, lessonID *uint) (*models.User, error) {
	user, err := s.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"last_visited_course_id": courseID}
	if lessonID != nil {
		updates["last_visited_lesson_id"] = *lessonID
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.UserByID(ctx, userID)
}
