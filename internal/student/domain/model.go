package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Student is a read-only collaborator record. The finance core never
// mutates students; it only resolves them for statements and reminders.
type Student struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	FirstName      string       `json:"first_name" gorm:"type:text;not null"`
	LastName       string       `json:"last_name" gorm:"type:text;not null"`
	EnrollmentCode string       `json:"enrollment_code" gorm:"type:text"`
	Active         bool         `json:"active" gorm:"not null;default:true"`
	CreatedAt      time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Student) TableName() string { return "students" }

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// GuardianContact is a responsible party on file for a student.
type GuardianContact struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	StudentID snowflake.ID `json:"student_id" gorm:"not null;index"`
	FullName  string       `json:"full_name" gorm:"type:text;not null"`
	Email     string       `json:"email" gorm:"type:text"`
	Phone     string       `json:"phone" gorm:"type:text"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (GuardianContact) TableName() string { return "guardian_contacts" }

// Reachable reports whether the contact has at least one usable address.
func (c GuardianContact) Reachable() bool {
	return strings.TrimSpace(c.Email) != "" || strings.TrimSpace(c.Phone) != ""
}

type Repository interface {
	FindStudent(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Student, error)
	ListActiveStudents(ctx context.Context, db *gorm.DB) ([]Student, error)
	ListContacts(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]GuardianContact, error)
}

var (
	ErrStudentNotFound = errors.New("student_not_found")
)
