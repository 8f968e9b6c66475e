package dbtx

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

// Conn returns a session bound to ctx. When tx is set, statements run on it
// instead of the pool so repository calls join the caller's transaction.
func Conn(ctx context.Context, db *gorm.DB, tx *sql.Tx) *gorm.DB {
	session := db.WithContext(ctx)
	if tx != nil {
		session.Statement.ConnPool = tx
	}
	return session
}

// ErrStaleVersion is returned by compare-and-swap updates that matched no row
// at the expected version.
var ErrStaleVersion = errors.New("stale version")
