package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"citycompass/apperror"
	"citycompass/models"
	"citycompass/repository"

	"golang.org/x/crypto/bcrypt"
)

// CredentialStore verifies department logins and owns registration.
type CredentialStore struct {
	depts repository.DepartmentRepository
}

func NewCredentialStore(depts repository.DepartmentRepository) *CredentialStore {
	return &CredentialStore{depts: depts}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// burnCompare spends the same bcrypt work as a real comparison so that a
// missing or unverified department answers in about the same time as a
// wrong password.
func burnCompare(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("citycompass-timing-equaliser"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Verify returns the verified department with this code and password. No
// such department, an unverified one and a wrong password all produce the
// same InvalidCredentials error.
func (s *CredentialStore) Verify(ctx context.Context, code, password string) (*models.Department, error) {
	code = strings.TrimSpace(code)
	if code == "" || password == "" {
		return nil, apperror.Validation("Department ID and password are required")
	}

	dept, err := s.depts.FindVerifiedByCode(ctx, code)
	if errors.Is(err, apperror.ErrNotFound) {
		burnCompare(password)
		return nil, apperror.InvalidCredentials()
	}
	if err != nil {
		return nil, err
	}

	if !dept.ComparePassword(password) {
		return nil, apperror.InvalidCredentials()
	}
	return dept, nil
}

// Registration is the input of Register.
type Registration struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"department_id" validate:"required,max=20"`
	Password string `json:"password" validate:"required,min=8"`
	Category string `json:"category" validate:"required,max=100"`
	Address  string `json:"address" validate:"required,max=300"`
	Phone    string `json:"phone" validate:"required,max=30"`
	// Verified is only set by bootstrap seeding.
	Verified bool `json:"-"`
}

// bcrypt refuses passwords longer than this.
const maxPasswordBytes = 72

// Register creates a department account. New accounts are unverified
// unless reg.Verified is set and cannot log in until an operator verifies
// them.
func (s *CredentialStore) Register(ctx context.Context, reg Registration) (*models.Department, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	reg.Code = strings.TrimSpace(reg.Code)
	reg.Category = strings.TrimSpace(reg.Category)
	reg.Address = strings.TrimSpace(reg.Address)
	reg.Phone = strings.TrimSpace(reg.Phone)
	if err := validateStruct(reg); err != nil {
		return nil, err
	}
	if len(reg.Password) > maxPasswordBytes {
		return nil, apperror.Validation("password must be at most %d bytes", maxPasswordBytes)
	}

	dept := &models.Department{
		Name:       reg.Name,
		Email:      reg.Email,
		Password:   reg.Password,
		Code:       reg.Code,
		Category:   reg.Category,
		Address:    reg.Address,
		Phone:      reg.Phone,
		IsVerified: reg.Verified,
	}
	if err := dept.HashPassword(); err != nil {
		return nil, apperror.Storage("hash password", err)
	}
	if err := s.depts.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// SetVerified flips the verification flag of the department with code.
// This is the out-of-band approval step; it is not reachable over HTTP.
func (s *CredentialStore) SetVerified(ctx context.Context, code string, verified bool) error {
	return s.depts.SetVerified(ctx, strings.TrimSpace(code), verified)
}

func (s *CredentialStore) List(ctx context.Context) ([]models.Department, error) {
	return s.depts.List(ctx)
}
