package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/GausMx/Scoolynk-app-sub000/core/school"
)

type schoolRepository struct {
	coll *mongo.Collection
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *mongo.Database) school.Repository {
	return &schoolRepository{coll: db.Collection(schoolCollection)}
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	if _, err := repo.coll.InsertOne(ctx, sch); err != nil {
		return school.School{}, errors.Wrap(err, "inserting school")
	}
	return sch, nil
}

func (repo *schoolRepository) GetSchool(ctx context.Context, id string) (school.School, error) {
	var sch school.School
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&sch); err != nil {
		if err == mongo.ErrNoDocuments {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, errors.Wrap(err, "finding school")
	}
	return sch, nil
}

func (repo *schoolRepository) QuerySchools(ctx context.Context) ([]school.School, error) {
	schools, err := findAll[school.School](ctx, repo.coll, bson.M{}, bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	if err != nil {
		return nil, errors.Wrap(err, "finding schools")
	}
	return schools, nil
}
