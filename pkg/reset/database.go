package reset

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Connector hands out a database handle, connecting on demand.
type Connector interface {
	DB(ctx context.Context) (*gorm.DB, error)
}

// Database resets the tables of the database behind a Connector.
type Database struct {
	conn Connector
}

// NewDatabase returns a Database using conn.
func NewDatabase(conn Connector) *Database {
	return &Database{conn: conn}
}

// ResetDatabase connects and empties every base table.
func (d *Database) ResetDatabase(ctx context.Context) error {
	db, err := d.conn.DB(ctx)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	return NewTables(db).Reset(ctx)
}
