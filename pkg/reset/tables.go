package reset

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// DefaultSchema is the postgres schema whose tables are reset.
const DefaultSchema = "public"

// Tables enumerates and empties the base tables of a database.
type Tables struct {
	db     *gorm.DB
	schema string
}

// NewTables returns Tables operating on the public schema of db.
func NewTables(db *gorm.DB) *Tables {
	return &Tables{db: db, schema: DefaultSchema}
}

// List returns the names of all base tables. Views are excluded.
// Order is unspecified.
func (t *Tables) List(ctx context.Context) ([]string, error) {
	names := []string{}
	db := t.db.WithContext(ctx)

	var err error
	switch db.Dialector.Name() {
	case "sqlite":
		err = db.Raw("SELECT name FROM sqlite_master WHERE type = ? AND substr(name, 1, 7) <> ?", "table", "sqlite_").
			Scan(&names).Error
	default:
		err = db.Table("information_schema.tables").
			Where("table_schema = ? AND table_type = ?", t.schema, "BASE TABLE").
			Pluck("table_name", &names).Error
	}
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

// Truncate deletes every row of the named tables, cascading to rows that
// reference them. All statements run in one transaction.
func (t *Tables) Truncate(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			if err := tx.Exec(t.truncateStatement(name)).Error; err != nil {
				return fmt.Errorf("truncate %s: %w", name, err)
			}
		}
		return nil
	})
}

// truncateStatement renders the delete-all statement for one table. The
// statement carries no bind variables, so a ? in the name stays literal.
func (t *Tables) truncateStatement(name string) string {
	if t.db.Dialector.Name() == "sqlite" {
		return "DELETE FROM " + quoteIdent(name)
	}
	return "TRUNCATE TABLE " + quoteIdent(t.schema) + "." + quoteIdent(name) + " CASCADE"
}

// quoteIdent quotes name as a single SQL identifier. Dots are kept as part
// of the name and embedded quotes are doubled.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Reset lists the base tables and truncates them.
func (t *Tables) Reset(ctx context.Context) error {
	names, err := t.List(ctx)
	if err != nil {
		return err
	}
	return t.Truncate(ctx, names)
}
