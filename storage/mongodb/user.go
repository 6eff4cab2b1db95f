package mongorepos

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/user"
)

var userSortFields = map[string]string{
	"name":       "name",
	"username":   "username",
	"email":      "email",
	"created_at": "createdAt",
	"last_login": "lastLogin",
}

type userRepository struct {
	coll *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *mongo.Database) user.Repository {
	return &userRepository{coll: db.Collection(userCollection)}
}

// trapDuplicate maps a unique index violation to the matching user error.
func trapDuplicate(err error, msg string) error {
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), "email_unique") {
			return user.ErrEmailExists
		}
		return user.ErrUsernameExists
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	ids := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}
	or := bson.A{}
	if username != "" {
		or = append(or, bson.M{"username": username})
	}
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if len(or) == 0 {
		return nil
	}

	users, err := findAll[user.User](ctx, repo.coll, bson.M{"$or": or, "_id": bson.M{"$nin": ids}}, nil)
	if err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, usr := range users {
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
	}
	if len(users) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if _, err := repo.coll.InsertOne(ctx, usr); err != nil {
		return user.User{}, trapDuplicate(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) findOne(ctx context.Context, filter bson.M) (user.User, error) {
	var usr user.User
	if err := repo.coll.FindOne(ctx, filter).Decode(&usr); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.findOne(ctx, bson.M{"_id": id})
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string) (user.User, error) {
	if username == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.findOne(ctx, bson.M{"$or": bson.A{bson.M{"username": username}, bson.M{"email": username}}})
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	query := bson.M{}
	if filter.SchoolID != "" {
		query["schoolId"] = filter.SchoolID
	}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"name": containsRegex(filter.Search)},
			bson.M{"username": containsRegex(filter.Search)},
			bson.M{"email": containsRegex(filter.Search)},
		}
	}
	// users with any role that starts with any of the provided roles
	if len(filter.Roles) > 0 {
		prefixes := make(bson.A, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			prefixes = append(prefixes, primitive.Regex{Pattern: "^" + regexp.QuoteMeta(role)})
		}
		query["roles"] = bson.M{"$in": prefixes}
	}
	if filter.IsActive != nil {
		query["isActive"] = *filter.IsActive
	}

	users, err := findAll[user.User](ctx, repo.coll, query, sortBy(orderings, userSortFields, bson.E{Key: "_id", Value: 1}))
	if err != nil {
		return nil, errors.Wrap(err, "finding users")
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.coll.ReplaceOne(ctx, bson.M{"_id": usr.ID}, usr)
	if err != nil {
		return user.User{}, trapDuplicate(err, "updating user")
	}
	if res.MatchedCount == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, schoolID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.coll.DeleteMany(ctx, bson.M{"schoolId": schoolID, "_id": bson.M{"$in": ids}}); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
