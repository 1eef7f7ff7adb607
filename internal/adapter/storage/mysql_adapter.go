package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rl1809/merchant/internal/core/domain"
)

// Dialect selects the DDL flavour. Queries are shared by both.
type Dialect int

const (
	DialectMySQL Dialect = iota
	DialectSQLite
)

// seq is assigned by the database so concurrent appends never compete for
// the same value. id is not unique: the unix id format repeats within a
// second and such orders are still recorded.
var createOrdersTable = map[Dialect]string{
	DialectMySQL: `
CREATE TABLE IF NOT EXISTS orders (
	seq        BIGINT      NOT NULL AUTO_INCREMENT PRIMARY KEY,
	id         VARCHAR(64) NOT NULL,
	items      TEXT        NOT NULL,
	total      VARCHAR(64) NOT NULL,
	currency   VARCHAR(8)  NOT NULL,
	created_at VARCHAR(40) NOT NULL,
	INDEX idx_orders_id (id)
)`,
	DialectSQLite: `
CREATE TABLE IF NOT EXISTS orders (
	seq        INTEGER     PRIMARY KEY AUTOINCREMENT,
	id         VARCHAR(64) NOT NULL,
	items      TEXT        NOT NULL,
	total      VARCHAR(64) NOT NULL,
	currency   VARCHAR(8)  NOT NULL,
	created_at VARCHAR(40) NOT NULL
)`,
}

// MySQLAdapter stores the order log in an orders table. Append order is kept
// in the seq column.
type MySQLAdapter struct {
	db      *sql.DB
	dialect Dialect
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db, dialect: DialectMySQL}
}

func (m *MySQLAdapter) WithDialect(d Dialect) *MySQLAdapter {
	m.dialect = d
	return m
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	ddl, ok := createOrdersTable[m.dialect]
	if !ok {
		return fmt.Errorf("unknown sql dialect %d", m.dialect)
	}
	if _, err := m.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) AppendOrder(ctx context.Context, order domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	_, err = m.db.ExecContext(ctx, `
		INSERT INTO orders (id, items, total, currency, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.ID, string(items), order.Total.String(), order.Currency,
		order.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}

	return nil
}

func (m *MySQLAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, items, total, currency, created_at
		FROM orders ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var (
			order     domain.Order
			items     string
			total     string
			createdAt string
		)
		if err := rows.Scan(&order.ID, &items, &total, &order.Currency, &createdAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		if err := json.Unmarshal([]byte(items), &order.Items); err != nil {
			return nil, fmt.Errorf("decode items of %s: %w", order.ID, err)
		}
		if order.Total, err = domain.ParseAmount(total); err != nil {
			return nil, fmt.Errorf("decode total of %s: %w", order.ID, err)
		}
		if order.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("decode created_at of %s: %w", order.ID, err)
		}

		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}
