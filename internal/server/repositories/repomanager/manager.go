package repomanager

import (
	"context"
	"database/sql"

	"github.com/pradeep-dev/papertrail/internal/dbx"
	"github.com/pradeep-dev/papertrail/internal/server/repositories/notes"
	"github.com/pradeep-dev/papertrail/internal/server/repositories/permissions"
	"github.com/pradeep-dev/papertrail/internal/server/repositories/refreshtokens"
	"github.com/pradeep-dev/papertrail/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Notes(db dbx.DBTX) notes.Repository
	Permissions(db dbx.DBTX) permissions.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
