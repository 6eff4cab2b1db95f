package mongorepos

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
)

var templateSortFields = map[string]string{
	"name":       "name",
	"term":       "term",
	"session":    "session",
	"created_at": "createdAt",
	"updated_at": "updatedAt",
}

type templateRepository struct {
	coll *mongo.Collection
}

var _ template.Repository = (*templateRepository)(nil)

func NewTemplateRepository(db *mongo.Database) template.Repository {
	return &templateRepository{coll: db.Collection(templateCollection)}
}

func templateKey(filter template.GetFilter) bson.M {
	return bson.M{"_id": filter.ID, "schoolId": filter.SchoolID}
}

func (repo *templateRepository) CreateTemplate(ctx context.Context, tmpl template.Template) (template.Template, error) {
	if _, err := repo.coll.InsertOne(ctx, tmpl); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return template.Template{}, template.ErrDuplicate
		}
		return template.Template{}, errors.Wrap(err, "inserting template")
	}
	return tmpl, nil
}

func (repo *templateRepository) GetTemplate(ctx context.Context, filter template.GetFilter) (template.Template, error) {
	var tmpl template.Template
	if err := repo.coll.FindOne(ctx, templateKey(filter)).Decode(&tmpl); err != nil {
		if err == mongo.ErrNoDocuments {
			return template.Template{}, template.ErrNotFound
		}
		return template.Template{}, errors.Wrap(err, "finding template")
	}
	return tmpl, nil
}

func (repo *templateRepository) QueryTemplates(ctx context.Context, filter template.QueryFilter, orderings ...core.DBOrdering) ([]template.Template, error) {
	query := bson.M{}
	if filter.SchoolID != "" {
		query["schoolId"] = filter.SchoolID
	}
	if filter.Term != "" {
		query["term"] = filter.Term
	}
	if filter.Session != "" {
		query["session"] = filter.Session
	}
	if filter.IsActive != nil {
		query["isActive"] = *filter.IsActive
	}

	sort := sortBy(orderings, templateSortFields, bson.E{Key: "createdAt", Value: -1}, bson.E{Key: "_id", Value: 1})
	tmpls, err := findAll[template.Template](ctx, repo.coll, query, sort)
	if err != nil {
		return nil, errors.Wrap(err, "finding templates")
	}
	return tmpls, nil
}

func (repo *templateRepository) UpdateTemplate(ctx context.Context, tmpl template.Template) (template.Template, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": tmpl.ID, "schoolId": tmpl.SchoolID}, tmpl)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return template.Template{}, template.ErrDuplicate
		}
		return template.Template{}, errors.Wrap(err, "updating template")
	}
	if res.MatchedCount == 0 {
		return template.Template{}, template.ErrNotFound
	}
	return tmpl, nil
}

func (repo *templateRepository) DeleteTemplate(ctx context.Context, filter template.GetFilter) error {
	res, err := repo.coll.DeleteOne(ctx, templateKey(filter))
	if err != nil {
		return errors.Wrap(err, "deleting template")
	}
	if res.DeletedCount == 0 {
		return template.ErrNotFound
	}
	return nil
}
