// internal/adapters/out/db/order_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	customerdom "barcart/internal/domain/customer"
	orderdom "barcart/internal/domain/order"
)

// PostgreSQL implementation of order.Repository
//
// Schema:
//
//	CREATE TABLE orders (
//	  reference           TEXT PRIMARY KEY,
//	  session_id          TEXT NOT NULL,
//	  method              TEXT NOT NULL,
//	  gateway_session_id  TEXT,
//	  customer            JSONB,
//	  lines               JSONB NOT NULL,
//	  item_count          INT NOT NULL,
//	  subtotal            NUMERIC(12,2) NOT NULL,
//	  created_at          TIMESTAMPTZ NOT NULL
//	);
type OrderRepositoryPG struct {
	DB *sql.DB
}

func NewOrderRepositoryPG(db *sql.DB) *OrderRepositoryPG {
	return &OrderRepositoryPG{DB: db}
}

func (r *OrderRepositoryPG) Create(ctx context.Context, o orderdom.Order) error {
	if r == nil || r.DB == nil {
		return errors.New("order_repository_pg: db is nil")
	}

	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return err
	}

	var customerJSON []byte
	if o.Customer != nil {
		customerJSON, err = json.Marshal(o.Customer)
		if err != nil {
			return err
		}
	}

	const q = `
INSERT INTO orders
  (reference, session_id, method, gateway_session_id, customer, lines, item_count, subtotal, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = r.DB.ExecContext(ctx, q,
		o.Reference,
		o.SessionID,
		string(o.Method),
		nullableString(o.GatewaySessionID),
		nullableBytes(customerJSON),
		linesJSON,
		o.ItemCount,
		o.Subtotal,
		o.CreatedAt,
	)
	return err
}

func (r *OrderRepositoryPG) GetByReference(ctx context.Context, reference string) (orderdom.Order, error) {
	if r == nil || r.DB == nil {
		return orderdom.Order{}, errors.New("order_repository_pg: db is nil")
	}

	ref := strings.TrimSpace(reference)
	if ref == "" {
		return orderdom.Order{}, errors.New("order_repository_pg: reference is empty")
	}

	const q = `
SELECT reference, session_id, method, gateway_session_id, customer, lines, item_count, subtotal, created_at
FROM orders
WHERE reference = $1`

	row := r.DB.QueryRowContext(ctx, q, ref)

	var (
		o            orderdom.Order
		method       string
		gatewayID    sql.NullString
		customerJSON []byte
		linesJSON    []byte
	)
	err := row.Scan(
		&o.Reference,
		&o.SessionID,
		&method,
		&gatewayID,
		&customerJSON,
		&linesJSON,
		&o.ItemCount,
		&o.Subtotal,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orderdom.Order{}, orderdom.ErrNotFound
		}
		return orderdom.Order{}, err
	}

	o.Method = orderdom.Method(method)
	if gatewayID.Valid {
		v := gatewayID.String
		o.GatewaySessionID = &v
	}
	if len(customerJSON) > 0 {
		var info customerdom.Info
		if err := json.Unmarshal(customerJSON, &info); err != nil {
			return orderdom.Order{}, err
		}
		o.Customer = &info
	}
	if err := json.Unmarshal(linesJSON, &o.Lines); err != nil {
		return orderdom.Order{}, err
	}

	return o, nil
}

func nullableString(p *string) any {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	return *p
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
