package register

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// RegisterModels registers the many-to-many join model with bun.
// Must run before any query that loads user roles.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*UserRole)(nil))
}

// OpenSQLite opens a sqlite backed bun.DB with models registered. Handy
// for embedded deployments and tests; production setups typically hand
// NewRepositoryManager their own *bun.DB.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	RegisterModels(db)

	return db, nil
}

// CreateSchema creates the tables this library owns. Meant for tests and
// embedded use; long lived deployments should manage schema through
// migrations instead.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Role)(nil),
		(*UserRole)(nil),
		(*ActivationToken)(nil),
	}

	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			WithForeignKeys().
			Exec(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}
