// Package repository persists issues, departments and the status audit
// trail. It is a dumb persistence layer: it checks neither credentials nor
// transition policy, which live in the services package.
package repository

import (
	"context"
	"time"

	"citycompass/models"
)

// RecentIssuesCount is how many issues the dashboard stats include.
const RecentIssuesCount = 5

// IssueRepository stores issues and their audit rows.
type IssueRepository interface {
	// Create assigns ID and persists issue.
	Create(ctx context.Context, issue *models.Issue) error
	// FindByID returns apperror NotFound when no issue has id.
	FindByID(ctx context.Context, id uint) (*models.Issue, error)
	// FindByIDForUpdate is FindByID that also locks the issue until the
	// surrounding transaction ends. Outside WithTx it is a plain read.
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Issue, error)
	// List returns issues newest-created first. Ties break on id, descending.
	List(ctx context.Context, filter models.IssueFilter) ([]models.Issue, error)
	// Count reports how many issues match filter, ignoring paging.
	Count(ctx context.Context, filter models.IssueFilter) (int64, error)
	// UpdateStatus sets status and updated_at. It does not check the
	// transition; NotFound if the issue is absent.
	UpdateStatus(ctx context.Context, id uint, status models.IssueStatus, at time.Time) (*models.Issue, error)
	Stats(ctx context.Context) (*models.Stats, error)

	// AppendUpdate assigns ID and appends an audit row.
	AppendUpdate(ctx context.Context, update *models.IssueUpdate) error
	// ListUpdates returns the audit rows of an issue, oldest first.
	ListUpdates(ctx context.Context, issueID uint) ([]models.IssueUpdate, error)
}

// DepartmentRepository stores department accounts.
type DepartmentRepository interface {
	// Create fails with a Validation error on duplicate code or email.
	Create(ctx context.Context, dept *models.Department) error
	FindByCode(ctx context.Context, code string) (*models.Department, error)
	// FindVerifiedByCode treats an unverified department as absent.
	FindVerifiedByCode(ctx context.Context, code string) (*models.Department, error)
	SetVerified(ctx context.Context, code string, verified bool) error
	List(ctx context.Context) ([]models.Department, error)
}

// Store groups the repositories over one backend.
type Store interface {
	Issues() IssueRepository
	Departments() DepartmentRepository
	// WithTx runs fn in a transaction. The Store and context handed to fn
	// are bound to it; returning an error rolls everything back.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Close() error
}
