package mongorepos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/GausMx/Scoolynk-app-sub000/core"
)

func Test_sortBy(t *testing.T) {
	got := sortBy(
		[]core.DBOrdering{{Field: "student_name", Ascending: true}, {Field: "lol"}, {Field: "average"}},
		resultSortFields,
		bson.E{Key: "_id", Value: 1},
	)
	want := bson.D{{Key: "student.name", Value: 1}, {Key: "average", Value: -1}, {Key: "_id", Value: 1}}
	assert.Equal(t, want, got)

	assert.Empty(t, sortBy(nil, userSortFields))
}

func Test_containsRegex(t *testing.T) {
	assert.Equal(t, bson.M{"$regex": `a\.b\+`, "$options": "i"}, containsRegex("a.b+"))
}
