// Package storetest opens throwaway sqlite databases for tests.
package storetest

import (
	"edulearn/backend/models"
	"edulearn/backend/utils"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a migrated in-memory database private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := utils.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedUser inserts a user with the given role.
func SeedUser(t testing.TB, db *gorm.DB, email, role string) models.User {
	t.Helper()
	user := models.User{Name: email, Email: email, Role: role, Provider: models.ProviderEmail}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedCourse inserts a course whose creation time is offset by age into the past.
func SeedCourse(t testing.TB, db *gorm.DB, title string, published, paid bool, age time.Duration) models.Course {
	t.Helper()
	course := models.Course{
		Title:       title,
		Category:    "General",
		Description: title + " description",
		IsPublished: published,
		IsPaid:      paid,
	}
	course.CreatedAt = time.Now().Add(-age)
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

// SeedLesson appends a lesson with the given quiz questions to a course.
func SeedLesson(t testing.TB, db *gorm.DB, courseID uint, order int, title string, questions ...string) models.Lesson {
	t.Helper()
	lesson := models.Lesson{CourseID: courseID, Title: title, SequenceOrder: order}
	if err := db.Create(&lesson).Error; err != nil {
		t.Fatalf("seed lesson: %v", err)
	}
	for _, q := range questions {
		quiz := models.Quiz{LessonID: lesson.ID, Question: q, Options: []string{"a", "b"}, CorrectAnswer: "a"}
		if err := db.Create(&quiz).Error; err != nil {
			t.Fatalf("seed quiz: %v", err)
		}
	}
	return lesson
}
