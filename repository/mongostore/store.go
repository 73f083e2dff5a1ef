// Package mongostore is the MongoDB backend of repository.Store. Issue and
// department ids are numeric, drawn from a counters collection, so clients
// see the same identifiers whichever backend is configured. Transactions
// need a replica set (a single-node one is enough).
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"citycompass/apperror"
	"citycompass/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	issuesCollection      = "issues"
	departmentsCollection = "departments"
	updatesCollection     = "issue_updates"
	countersCollection    = "counters"
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ repository.Store = (*Store)(nil)

// Connect dials uri, pings it and makes sure the indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	s := New(client, database)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// EnsureIndexes creates the unique login indexes and the listing indexes.
// Collections are created as a side effect, which multi-document
// transactions on older servers require.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		departmentsCollection: {
			{Keys: bson.D{{Key: "department_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		issuesCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		updatesCollection: {
			{Keys: bson.D{{Key: "issue_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Issues() repository.IssueRepository {
	return &issueRepository{store: s, coll: s.db.Collection(issuesCollection), updates: s.db.Collection(updatesCollection)}
}

func (s *Store) Departments() repository.DepartmentRepository {
	return &departmentRepository{store: s, coll: s.db.Collection(departmentsCollection)}
}

// WithTx runs fn inside a multi-document transaction. The driver may retry
// fn on transient transaction errors; every attempt starts from a clean
// rollback.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return apperror.Storage("start session", err)
	}
	defer sess.EndSession(context.Background())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	if err != nil && apperror.KindOf(err) == apperror.KindUnhandled {
		return apperror.Storage("transaction", err)
	}
	return err
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// nextID atomically increments the named sequence.
func (s *Store) nextID(ctx context.Context, name string) (uint, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, apperror.Storage("next "+name+" id", err)
	}
	return uint(counter.Seq), nil
}

func notFoundOr(err error, what, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperror.NotFound(what)
	}
	return apperror.Storage(op, err)
}
