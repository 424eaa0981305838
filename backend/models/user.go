package models

import "gorm.io/gorm"

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"

	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

type User struct {
	gorm.Model
	Name                string
	Email               string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash        string `json:"-"`
	Role                string `gorm:"default:teacher"` // teacher, student
	Provider            string `gorm:"default:email"`   // email, google
	Image               string
	LastVisitedCourseID *uint
	LastVisitedLessonID *uint
}

func (u *User) IsTeacher() bool {
	return u != nil && u.Role == RoleTeacher
}

func ValidRole(role string) bool {
	return role == RoleTeacher || role == RoleStudent
}
