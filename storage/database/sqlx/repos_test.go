package sqlxrepos_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GausMx/Scoolynk-app-sub000/storage/database"
	sqlxrepos "github.com/GausMx/Scoolynk-app-sub000/storage/database/sqlx"
	testutil "github.com/GausMx/Scoolynk-app-sub000/tests"
)

// Runs against the postgres server of the test config, e.g.
// ENV=test TEST_DATABASE_HOST=localhost TEST_DATABASE_PASSWORD=... go test ./storage/...
func TestRepositories(t *testing.T) {
	if os.Getenv("TEST_DATABASE_HOST") == "" {
		t.Skip("TEST_DATABASE_HOST not set")
	}
	conf := testutil.NewConfig()
	require.NoError(t, database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db.DB))

	testutil.RunRepositoryTests(t, testutil.Repositories{
		Users:     sqlxrepos.NewUserRepository(db),
		Schools:   sqlxrepos.NewSchoolRepository(db),
		Templates: sqlxrepos.NewTemplateRepository(db),
		Results:   sqlxrepos.NewResultRepository(db),
	})
}
