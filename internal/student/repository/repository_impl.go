package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/escolaris/finance/internal/student/domain"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindStudent(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Student, error) {
	var item domain.Student
	err := db.WithContext(ctx).Raw(
		`SELECT id, first_name, last_name, enrollment_code, active, created_at
		 FROM students
		 WHERE id = ?
		 LIMIT 1`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListActiveStudents(ctx context.Context, db *gorm.DB) ([]domain.Student, error) {
	var items []domain.Student
	err := db.WithContext(ctx).Raw(
		`SELECT id, first_name, last_name, enrollment_code, active, created_at
		 FROM students
		 WHERE active
		 ORDER BY id`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListContacts(ctx context.Context, db *gorm.DB, studentID snowflake.ID) ([]domain.GuardianContact, error) {
	var items []domain.GuardianContact
	err := db.WithContext(ctx).Raw(
		`SELECT id, student_id, full_name, email, phone, created_at
		 FROM guardian_contacts
		 WHERE student_id = ?
		 ORDER BY id`,
		studentID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
