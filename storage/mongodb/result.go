package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
)

var resultSortFields = map[string]string{
	"student_name": "student.name",
	"status":       "status",
	"average":      "average",
	"position":     "position",
	"created_at":   "createdAt",
	"updated_at":   "updatedAt",
}

type resultRepository struct {
	coll *mongo.Collection
}

var _ result.Repository = (*resultRepository)(nil)

func NewResultRepository(db *mongo.Database) result.Repository {
	return &resultRepository{coll: db.Collection(resultCollection)}
}

func resultKey(filter result.GetFilter) bson.M {
	key := bson.M{"_id": filter.ID}
	if filter.SchoolID != "" {
		key["schoolId"] = filter.SchoolID
	}
	if filter.TeacherID != "" {
		key["teacherId"] = filter.TeacherID
	}
	return key
}

func (repo *resultRepository) CreateResult(ctx context.Context, r result.Result) (result.Result, error) {
	if _, err := repo.coll.InsertOne(ctx, r); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return result.Result{}, result.ErrDuplicate
		}
		return result.Result{}, errors.Wrap(err, "inserting result")
	}
	return r, nil
}

func (repo *resultRepository) GetResult(ctx context.Context, filter result.GetFilter) (result.Result, error) {
	var r result.Result
	if err := repo.coll.FindOne(ctx, resultKey(filter)).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return result.Result{}, result.ErrNotFound
		}
		return result.Result{}, errors.Wrap(err, "finding result")
	}
	return r, nil
}

func (repo *resultRepository) QueryResults(ctx context.Context, filter result.QueryFilter, orderings ...core.DBOrdering) ([]result.Result, error) {
	query := bson.M{}
	for field, value := range map[string]string{
		"schoolId":  filter.SchoolID,
		"teacherId": filter.TeacherID,
		"classId":   filter.ClassID,
		"studentId": filter.StudentID,
		"term":      filter.Term,
		"session":   filter.Session,
	} {
		if value != "" {
			query[field] = value
		}
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}

	sort := sortBy(orderings, resultSortFields, bson.E{Key: "createdAt", Value: 1}, bson.E{Key: "_id", Value: 1})
	results, err := findAll[result.Result](ctx, repo.coll, query, sort)
	if err != nil {
		return nil, errors.Wrap(err, "finding results")
	}
	return results, nil
}

func (repo *resultRepository) UpdateResult(ctx context.Context, r result.Result) (result.Result, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": r.ID, "schoolId": r.SchoolID}, r)
	if err != nil {
		return result.Result{}, errors.Wrap(err, "updating result")
	}
	if res.MatchedCount == 0 {
		return result.Result{}, result.ErrNotFound
	}
	return r, nil
}

func (repo *resultRepository) DeleteResult(ctx context.Context, filter result.GetFilter) error {
	res, err := repo.coll.DeleteOne(ctx, resultKey(filter))
	if err != nil {
		return errors.Wrap(err, "deleting result")
	}
	if res.DeletedCount == 0 {
		return result.ErrNotFound
	}
	return nil
}
