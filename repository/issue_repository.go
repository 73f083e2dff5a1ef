package repository

import (
	"context"
	"errors"
	"time"

	"citycompass/apperror"
	"citycompass/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type issueRepository struct {
	db *gorm.DB
}

func (r *issueRepository) Create(ctx context.Context, issue *models.Issue) error {
	if err := r.db.WithContext(ctx).Create(issue).Error; err != nil {
		return storageErr("insert issue", err)
	}
	return nil
}

func (r *issueRepository) FindByID(ctx context.Context, id uint) (*models.Issue, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate takes a row lock (SELECT ... FOR UPDATE) on postgres.
// The sqlite dialect drops the clause; sqlite transactions there begin
// IMMEDIATE and so already hold the database write lock.
func (r *issueRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Issue, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *issueRepository) findByID(db *gorm.DB, id uint) (*models.Issue, error) {
	var issue models.Issue
	err := db.First(&issue, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("issue")
	}
	if err != nil {
		return nil, storageErr("select issue", err)
	}
	return &issue, nil
}

func filtered(db *gorm.DB, f models.IssueFilter) *gorm.DB {
	q := db.Model(&models.Issue{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func (r *issueRepository) List(ctx context.Context, f models.IssueFilter) ([]models.Issue, error) {
	q := filtered(r.db.WithContext(ctx), f).Order("created_at DESC").Order("id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	issues := []models.Issue{}
	if err := q.Find(&issues).Error; err != nil {
		return nil, storageErr("list issues", err)
	}
	return issues, nil
}

func (r *issueRepository) Count(ctx context.Context, f models.IssueFilter) (int64, error) {
	var n int64
	if err := filtered(r.db.WithContext(ctx), f).Count(&n).Error; err != nil {
		return 0, storageErr("count issues", err)
	}
	return n, nil
}

func (r *issueRepository) UpdateStatus(ctx context.Context, id uint, status models.IssueStatus, at time.Time) (*models.Issue, error) {
	res := r.db.WithContext(ctx).Model(&models.Issue{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": at})
	if res.Error != nil {
		return nil, storageErr("update issue status", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperror.NotFound("issue")
	}
	return r.FindByID(ctx, id)
}

type groupCount struct {
	Grp   string
	Total int64
}

func (r *issueRepository) countBy(ctx context.Context, column string) ([]models.CountEntry, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).Model(&models.Issue{}).
		Select(column + " AS grp, COUNT(*) AS total").
		Group(column).
		Order(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.CountEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.CountEntry{Key: row.Grp, Count: row.Total})
	}
	return out, nil
}

func (r *issueRepository) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	var err error

	if err = r.db.WithContext(ctx).Model(&models.Issue{}).Count(&stats.TotalIssues).Error; err != nil {
		return nil, storageErr("count issues", err)
	}
	byStatus, err := r.countBy(ctx, "status")
	if err != nil {
		return nil, storageErr("count issues by status", err)
	}
	byCategory, err := r.countBy(ctx, "category")
	if err != nil {
		return nil, storageErr("count issues by category", err)
	}
	stats.ByStatus = models.StatusCounts(byStatus)
	stats.ByCategory = models.CategoryCounts(byCategory)
	if stats.RecentIssues, err = r.List(ctx, models.IssueFilter{Limit: RecentIssuesCount}); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *issueRepository) AppendUpdate(ctx context.Context, update *models.IssueUpdate) error {
	if err := r.db.WithContext(ctx).Create(update).Error; err != nil {
		return storageErr("insert issue update", err)
	}
	return nil
}

func (r *issueRepository) ListUpdates(ctx context.Context, issueID uint) ([]models.IssueUpdate, error) {
	updates := []models.IssueUpdate{}
	err := r.db.WithContext(ctx).
		Where("issue_id = ?", issueID).
		Order("created_at ASC").Order("id ASC").
		Find(&updates).Error
	if err != nil {
		return nil, storageErr("list issue updates", err)
	}
	return updates, nil
}
