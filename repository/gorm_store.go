package repository

import (
	"context"
	"errors"

	"citycompass/apperror"
	"citycompass/models"

	"gorm.io/gorm"
)

// GormStore is the relational backend (sqlite or postgres).
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the issues, departments and issue_updates tables.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&models.Issue{}, &models.Department{}, &models.IssueUpdate{})
}

func (s *GormStore) Issues() IssueRepository {
	return &issueRepository{db: s.db}
}

func (s *GormStore) Departments() DepartmentRepository {
	return &departmentRepository{db: s.db}
}

func (s *GormStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &GormStore{db: tx})
	})
	if err != nil && apperror.KindOf(err) == apperror.KindUnhandled {
		return apperror.Storage("transaction", err)
	}
	return err
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func storageErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperror.Storage(op+": interrupted", err)
	}
	return apperror.Storage(op, err)
}
