// Package storage opens the repositories of the configured database engine.
package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
	"github.com/GausMx/Scoolynk-app-sub000/core/school"
	"github.com/GausMx/Scoolynk-app-sub000/core/template"
	"github.com/GausMx/Scoolynk-app-sub000/core/user"
	"github.com/GausMx/Scoolynk-app-sub000/storage/database"
	inmemdb "github.com/GausMx/Scoolynk-app-sub000/storage/database/inmem"
	sqlxrepos "github.com/GausMx/Scoolynk-app-sub000/storage/database/sqlx"
	mongorepos "github.com/GausMx/Scoolynk-app-sub000/storage/mongodb"
)

// Engines
const (
	Postgres = "postgres"
	MongoDB  = "mongodb"
	InMemory = "inmem"
)

// Stores holds the repositories of one database engine.
type Stores struct {
	Users     user.Repository
	Schools   school.Repository
	Templates template.Repository
	Results   result.Repository

	// SQL is the postgres handle used for migrations; nil on other engines.
	SQL *sql.DB

	close func(ctx context.Context) error
}

// Open connects to the engine of conf.Database and makes it ready for use:
// the postgres database is created and migrated, the mongodb indexes are ensured.
func Open(ctx context.Context, conf *core.Config) (*Stores, error) {
	switch conf.Database.Engine {
	case Postgres, "":
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Stores{
			Users:     sqlxrepos.NewUserRepository(db),
			Schools:   sqlxrepos.NewSchoolRepository(db),
			Templates: sqlxrepos.NewTemplateRepository(db),
			Results:   sqlxrepos.NewResultRepository(db),
			SQL:       db.DB,
			close:     func(context.Context) error { return db.Close() },
		}, nil

	case MongoDB:
		db, err := mongorepos.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = mongorepos.EnsureIndexes(ctx, db); err != nil {
			_ = mongorepos.Close(ctx, db)
			return nil, err
		}
		return &Stores{
			Users:     mongorepos.NewUserRepository(db),
			Schools:   mongorepos.NewSchoolRepository(db),
			Templates: mongorepos.NewTemplateRepository(db),
			Results:   mongorepos.NewResultRepository(db),
			close:     func(ctx context.Context) error { return mongorepos.Close(ctx, db) },
		}, nil

	case InMemory:
		return NewInMemory(), nil
	}
	return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}

// NewInMemory returns stores kept in process memory.
func NewInMemory() *Stores {
	db := inmemdb.Open()
	return &Stores{
		Users:     inmemdb.NewUserRepository(db),
		Schools:   inmemdb.NewSchoolRepository(db),
		Templates: inmemdb.NewTemplateRepository(db),
		Results:   inmemdb.NewResultRepository(db),
		close:     func(context.Context) error { return nil },
	}
}

func (s *Stores) Close(ctx context.Context) error {
	return s.close(ctx)
}
