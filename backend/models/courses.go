package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Course struct {
	gorm.Model
	Title            string `gorm:"not null"`
	Category         string
	Description      string
	Image            string
	TeacherID        *uint
	Teacher          *User    `gorm:"foreignKey:TeacherID"`
	IsPublished      bool     `gorm:"default:false;index"`
	IsPaid           bool     `gorm:"default:false"`
	Lessons          []Lesson `gorm:"constraint:OnDelete:CASCADE;"`
	EnrolledStudents []User   `gorm:"many2many:course_enrollments;"`
}

type Lesson struct {
	gorm.Model
	CourseID      uint `gorm:"not null;index"`
	Title         string
	Content       string
	SequenceOrder int
	Quizzes       []Quiz `gorm:"constraint:OnDelete:CASCADE;"`
}

type Quiz struct {
	gorm.Model
	LessonID      uint   `gorm:"not null;index"`
	Question      string `gorm:"not null"`
	Options       datatypes.JSONSlice[string]
	CorrectAnswer string
	IsAIGenerated bool `gorm:"column:is_ai_generated;default:false"`
}
