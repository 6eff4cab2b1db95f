package mongorepos

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	testutil "github.com/GausMx/Scoolynk-app-sub000/tests"
)

// Runs against the server of TEST_DATABASE_URI, e.g. mongodb://localhost:27017
func TestRepositories(t *testing.T) {
	uri := os.Getenv("TEST_DATABASE_URI")
	if uri == "" {
		t.Skip("TEST_DATABASE_URI not set")
	}
	ctx := context.Background()
	conf := testutil.NewConfig()
	conf.Database.URI = uri

	db, err := Open(ctx, conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(ctx, db) })
	require.NoError(t, EnsureIndexes(ctx, db))

	testutil.RunRepositoryTests(t, testutil.Repositories{
		Users:     NewUserRepository(db),
		Schools:   NewSchoolRepository(db),
		Templates: NewTemplateRepository(db),
		Results:   NewResultRepository(db),
	})
}
