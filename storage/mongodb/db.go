// Package mongorepos implements the repositories on MongoDB.
package mongorepos

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

// Collections
const (
	schoolCollection   = "schools"
	userCollection     = "users"
	templateCollection = "templates"
	resultCollection   = "results"
)

const connectTimeout = 10 * time.Second

// Open connects to the MongoDB server of conf and returns the app database.
func Open(ctx context.Context, conf *core.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return client.Database(conf.Database.Name), nil
}

// EnsureIndexes creates the indexes enforcing the uniqueness rules of the stores.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		userCollection: {
			{
				Keys: bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetName("username_unique").SetUnique(true).
					SetPartialFilterExpression(bson.M{"username": bson.M{"$gt": ""}}),
			},
			{
				Keys: bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true).
					SetPartialFilterExpression(bson.M{"email": bson.M{"$gt": ""}}),
			},
			{Keys: bson.D{{Key: "schoolId", Value: 1}}},
		},
		templateCollection: {
			{
				Keys:    bson.D{{Key: "schoolId", Value: 1}, {Key: "term", Value: 1}, {Key: "session", Value: 1}},
				Options: options.Index().SetName("active_unique").SetUnique(true).SetPartialFilterExpression(bson.M{"isActive": true}),
			},
		},
		resultCollection: {
			{
				Keys:    bson.D{{Key: "schoolId", Value: 1}, {Key: "studentId", Value: 1}, {Key: "term", Value: 1}, {Key: "session", Value: 1}},
				Options: options.Index().SetName("student_term_unique").SetUnique(true),
			},
			{Keys: bson.D{{Key: "schoolId", Value: 1}, {Key: "classId", Value: 1}, {Key: "term", Value: 1}, {Key: "session", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

// Close disconnects the client of db.
func Close(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}

// sortBy maps orderings on known fields to a sort document, ending with fallback.
func sortBy(orderings []core.DBOrdering, fields map[string]string, fallback ...bson.E) bson.D {
	sort := make(bson.D, 0, len(orderings)+len(fallback))
	for _, ord := range orderings {
		if field, ok := fields[ord.Field]; ok {
			dir := -1
			if ord.Ascending {
				dir = 1
			}
			sort = append(sort, bson.E{Key: field, Value: dir})
		}
	}
	return append(sort, fallback...)
}

// containsRegex matches s anywhere, case-insensitively.
func containsRegex(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D) ([]T, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	docs := make([]T, 0)
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
