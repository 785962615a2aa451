// internal/common/database/warehouse.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"billing-intelligence/internal/common/config"

	_ "github.com/lib/pq"
	_ "github.com/snowflakedb/gosnowflake"
)

// identifierPattern accepts bare or dot-qualified (db.schema.table) names.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*(\.[A-Za-z_][A-Za-z0-9_$]*){0,2}$`)

// WarehouseClient wraps the SQL connection to the data warehouse together
// with the dialect details the query layer needs.
type WarehouseClient struct {
	DB          *sql.DB
	Driver      string
	BillingView string
}

// NewWarehouse opens a connection pool for the configured driver. The pool
// is lazy; call Ping to verify connectivity.
func NewWarehouse(cfg config.WarehouseConfig) (*WarehouseClient, error) {
	if err := ValidateIdentifier(cfg.BillingView); err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s warehouse: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &WarehouseClient{DB: db, Driver: cfg.Driver, BillingView: cfg.BillingView}, nil
}

// NewWarehouseFromDB wraps an existing handle, e.g. a sqlmock connection.
func NewWarehouseFromDB(db *sql.DB, driver, billingView string) *WarehouseClient {
	return &WarehouseClient{DB: db, Driver: driver, BillingView: billingView}
}

// ValidateIdentifier rejects view names that are not plain SQL identifiers.
// The view name is the only value spliced into query text.
func ValidateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid warehouse identifier %q", name)
	}
	return nil
}

// Ping tests the warehouse connection
func (c *WarehouseClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the warehouse connection pool
func (c *WarehouseClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// Rebind rewrites '?' placeholders into the driver's bind syntax.
func (c *WarehouseClient) Rebind(query string) string {
	if c.Driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Query executes a query that returns rows
func (c *WarehouseClient) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.DB.QueryContext(ctx, c.Rebind(query), args...)
}

// QueryRow executes a query that returns at most one row
func (c *WarehouseClient) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return c.DB.QueryRowContext(ctx, c.Rebind(query), args...)
}
