package mongostore

import (
	"context"

	"citycompass/apperror"
	"citycompass/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type departmentRepository struct {
	store *Store
	coll  *mongo.Collection
}

func (r *departmentRepository) Create(ctx context.Context, dept *models.Department) error {
	count, err := r.coll.CountDocuments(ctx, bson.M{"$or": []bson.M{
		{"department_id": dept.Code},
		{"email": dept.Email},
	}})
	if err != nil {
		return apperror.Storage("check existing department", err)
	}
	if count > 0 {
		return apperror.Validation("department with this code or email already exists")
	}

	id, err := r.store.nextID(ctx, departmentsCollection)
	if err != nil {
		return err
	}
	dept.ID = id
	if _, err := r.coll.InsertOne(ctx, dept); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.Validation("department with this code or email already exists")
		}
		return apperror.Storage("insert department", err)
	}
	return nil
}

func (r *departmentRepository) findOne(ctx context.Context, filter bson.M) (*models.Department, error) {
	var dept models.Department
	if err := r.coll.FindOne(ctx, filter).Decode(&dept); err != nil {
		return nil, notFoundOr(err, "department", "select department")
	}
	return &dept, nil
}

func (r *departmentRepository) FindByCode(ctx context.Context, code string) (*models.Department, error) {
	return r.findOne(ctx, bson.M{"department_id": code})
}

func (r *departmentRepository) FindVerifiedByCode(ctx context.Context, code string) (*models.Department, error) {
	return r.findOne(ctx, bson.M{"department_id": code, "is_verified": true})
}

func (r *departmentRepository) SetVerified(ctx context.Context, code string, verified bool) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"department_id": code},
		bson.M{"$set": bson.M{"is_verified": verified}},
	)
	if err != nil {
		return apperror.Storage("update department verification", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NotFound("department")
	}
	return nil
}

func (r *departmentRepository) List(ctx context.Context) ([]models.Department, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "department_id", Value: 1}}))
	if err != nil {
		return nil, apperror.Storage("list departments", err)
	}
	defer cursor.Close(ctx)

	depts := []models.Department{}
	if err := cursor.All(ctx, &depts); err != nil {
		return nil, apperror.Storage("decode departments", err)
	}
	return depts, nil
}
