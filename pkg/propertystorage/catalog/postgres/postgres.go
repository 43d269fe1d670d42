package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/property-storage/pkg/propertystorage"
)

// DBTX is an interface that allows us to use either a database connection or
// a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// defaultTable is the provider's internal object catalog table.
const defaultTable = "storage.objects"

// Catalog implements propertystorage.ObjectCatalog against the provider's
// internal catalog table in PostgreSQL.
type Catalog struct {
	db    DBTX
	table string
}

// New creates a catalog over a connection or transaction.
func New(db DBTX) *Catalog {
	return &Catalog{db: db, table: defaultTable}
}

// NewWithPool creates a catalog over a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Catalog {
	return New(pool)
}

// NewWithTable creates a catalog over a custom table name.
func NewWithTable(db DBTX, table string) *Catalog {
	return &Catalog{db: db, table: table}
}

var _ propertystorage.ObjectCatalog = (*Catalog)(nil)

// LookupObjectID resolves a (bucket, objectKey) pair to the catalog's
// internal object id.
func (c *Catalog) LookupObjectID(ctx context.Context, bucket, objectKey string) (uuid.UUID, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE bucket_id = $1 AND name = $2`, c.table)

	var id uuid.UUID
	err := c.db.QueryRow(ctx, query, bucket, objectKey).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, propertystorage.ErrObjectNotFound
		}
		return uuid.Nil, handlePostgresError("lookup object id", err)
	}
	return id, nil
}

// SetObjectOwner reassigns the catalog owner field for an object. Requires a
// privileged database role.
func (c *Catalog) SetObjectOwner(ctx context.Context, objectID, ownerID uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET owner_id = $2 WHERE id = $1`, c.table)

	tag, err := c.db.Exec(ctx, query, objectID, ownerID)
	if err != nil {
		return handlePostgresError("set object owner", err)
	}
	if tag.RowsAffected() == 0 {
		return propertystorage.ErrObjectNotFound
	}
	return nil
}

// handlePostgresError maps driver errors to readable messages.
func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("catalog table does not exist - database migration required")
		case "42501": // insufficient_privilege
			return fmt.Errorf("catalog update requires a privileged role: %s", pgErr.Message)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}
