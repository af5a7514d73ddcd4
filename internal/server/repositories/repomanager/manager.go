package repomanager

import (
	"context"
	"database/sql"

	"github.com/opencal/authcore/internal/dbx"
	"github.com/opencal/authcore/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
