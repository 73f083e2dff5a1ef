package mongostore

import (
	"context"
	"time"

	"citycompass/apperror"
	"citycompass/models"
	"citycompass/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type issueRepository struct {
	store   *Store
	coll    *mongo.Collection
	updates *mongo.Collection
}

func (r *issueRepository) Create(ctx context.Context, issue *models.Issue) error {
	id, err := r.store.nextID(ctx, issuesCollection)
	if err != nil {
		return err
	}
	issue.ID = id
	if _, err := r.coll.InsertOne(ctx, issue); err != nil {
		return apperror.Storage("insert issue", err)
	}
	return nil
}

func (r *issueRepository) FindByID(ctx context.Context, id uint) (*models.Issue, error) {
	var issue models.Issue
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue); err != nil {
		return nil, notFoundOr(err, "issue", "select issue")
	}
	return &issue, nil
}

// FindByIDForUpdate needs no explicit lock: a transaction that writes an
// issue changed by another committed transaction aborts with a transient
// write conflict and WithTransaction runs it again on fresh data.
func (r *issueRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Issue, error) {
	return r.FindByID(ctx, id)
}

func issueFilter(f models.IssueFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func (r *issueRepository) List(ctx context.Context, f models.IssueFilter) ([]models.Issue, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		findOptions.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		findOptions.SetSkip(int64(f.Offset))
	}

	cursor, err := r.coll.Find(ctx, issueFilter(f), findOptions)
	if err != nil {
		return nil, apperror.Storage("list issues", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, apperror.Storage("decode issues", err)
	}
	return issues, nil
}

func (r *issueRepository) Count(ctx context.Context, f models.IssueFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, issueFilter(f))
	if err != nil {
		return 0, apperror.Storage("count issues", err)
	}
	return n, nil
}

func (r *issueRepository) UpdateStatus(ctx context.Context, id uint, status models.IssueStatus, at time.Time) (*models.Issue, error) {
	var issue models.Issue
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&issue)
	if err != nil {
		return nil, notFoundOr(err, "issue", "update issue status")
	}
	return &issue, nil
}

func (r *issueRepository) countBy(ctx context.Context, field string) ([]models.CountEntry, error) {
	pipeline := []bson.M{
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"_id": 1}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]models.CountEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.CountEntry{Key: row.Key, Count: row.Count})
	}
	return out, nil
}

func (r *issueRepository) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	var err error

	if stats.TotalIssues, err = r.coll.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, apperror.Storage("count issues", err)
	}
	byStatus, err := r.countBy(ctx, "status")
	if err != nil {
		return nil, apperror.Storage("count issues by status", err)
	}
	byCategory, err := r.countBy(ctx, "category")
	if err != nil {
		return nil, apperror.Storage("count issues by category", err)
	}
	stats.ByStatus = models.StatusCounts(byStatus)
	stats.ByCategory = models.CategoryCounts(byCategory)
	if stats.RecentIssues, err = r.List(ctx, models.IssueFilter{Limit: repository.RecentIssuesCount}); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *issueRepository) AppendUpdate(ctx context.Context, update *models.IssueUpdate) error {
	id, err := r.store.nextID(ctx, updatesCollection)
	if err != nil {
		return err
	}
	update.ID = id
	if _, err := r.updates.InsertOne(ctx, update); err != nil {
		return apperror.Storage("insert issue update", err)
	}
	return nil
}

func (r *issueRepository) ListUpdates(ctx context.Context, issueID uint) ([]models.IssueUpdate, error) {
	cursor, err := r.updates.Find(ctx,
		bson.M{"issue_id": issueID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, apperror.Storage("list issue updates", err)
	}
	defer cursor.Close(ctx)

	updates := []models.IssueUpdate{}
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, apperror.Storage("decode issue updates", err)
	}
	return updates, nil
}
