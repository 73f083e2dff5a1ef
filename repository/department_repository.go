package repository

import (
	"context"
	"errors"

	"citycompass/apperror"
	"citycompass/models"

	"gorm.io/gorm"
)

type departmentRepository struct {
	db *gorm.DB
}

func (r *departmentRepository) Create(ctx context.Context, dept *models.Department) error {
	db := r.db.WithContext(ctx)

	var count int64
	err := db.Model(&models.Department{}).
		Where("department_id = ? OR email = ?", dept.Code, dept.Email).
		Count(&count).Error
	if err != nil {
		return storageErr("check existing department", err)
	}
	if count > 0 {
		return apperror.Validation("department with this code or email already exists")
	}

	if err := db.Create(dept).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Validation("department with this code or email already exists")
		}
		return storageErr("insert department", err)
	}
	return nil
}

func (r *departmentRepository) find(ctx context.Context, query string, args ...any) (*models.Department, error) {
	var dept models.Department
	err := r.db.WithContext(ctx).Where(query, args...).First(&dept).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("department")
	}
	if err != nil {
		return nil, storageErr("select department", err)
	}
	return &dept, nil
}

func (r *departmentRepository) FindByCode(ctx context.Context, code string) (*models.Department, error) {
	return r.find(ctx, "department_id = ?", code)
}

func (r *departmentRepository) FindVerifiedByCode(ctx context.Context, code string) (*models.Department, error) {
	return r.find(ctx, "department_id = ? AND is_verified = ?", code, true)
}

func (r *departmentRepository) SetVerified(ctx context.Context, code string, verified bool) error {
	res := r.db.WithContext(ctx).Model(&models.Department{}).
		Where("department_id = ?", code).
		Update("is_verified", verified)
	if res.Error != nil {
		return storageErr("update department verification", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("department")
	}
	return nil
}

func (r *departmentRepository) List(ctx context.Context) ([]models.Department, error) {
	depts := []models.Department{}
	if err := r.db.WithContext(ctx).Order("department_id").Find(&depts).Error; err != nil {
		return nil, storageErr("list departments", err)
	}
	return depts, nil
}
