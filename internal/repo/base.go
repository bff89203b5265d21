// Package repo holds the persistence plumbing shared by the customer and
// audit repositories.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base binds a gorm connection and threads request contexts into queries.
// WithTx on a domain repository swaps the connection for a transaction handle.
type Base struct {
	conn *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB returns the connection scoped to ctx. A nil ctx yields the bare
// connection.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if b.conn == nil || ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}
