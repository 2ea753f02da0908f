package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL esquema del ledger. Idempotente (IF NOT EXISTS / OR REPLACE).
// stock_movements es de solo inserción: un trigger rechaza UPDATE y DELETE
// para que el historial de auditoría no pueda reescribirse ni desde SQL.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    username      TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS categories (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS products (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    sku            TEXT UNIQUE NOT NULL,
    category_id    TEXT REFERENCES categories(id),
    purchase_price NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (purchase_price >= 0),
    selling_price  NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (selling_price >= 0),
    quantity       BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    min_quantity   BIGINT NOT NULL DEFAULT 0 CHECK (min_quantity >= 0),
    barcode        TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS suppliers (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    phone      TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL DEFAULT '',
    address    TEXT NOT NULL DEFAULT '',
    company    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS customers (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    phone      TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL DEFAULT '',
    address    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS purchases (
    id           TEXT PRIMARY KEY,
    supplier_id  TEXT REFERENCES suppliers(id),
    date         TIMESTAMPTZ NOT NULL,
    total_amount NUMERIC(14,2) NOT NULL CHECK (total_amount >= 0)
);

CREATE TABLE IF NOT EXISTS purchase_lines (
    id          TEXT PRIMARY KEY,
    purchase_id TEXT NOT NULL REFERENCES purchases(id),
    line_no     INT NOT NULL,
    product_id  TEXT NOT NULL REFERENCES products(id),
    quantity    BIGINT NOT NULL CHECK (quantity > 0),
    unit_price  NUMERIC(14,2) NOT NULL CHECK (unit_price >= 0),
    UNIQUE (purchase_id, line_no)
);

CREATE TABLE IF NOT EXISTS sales (
    id             TEXT PRIMARY KEY,
    customer_id    TEXT REFERENCES customers(id),
    date           TIMESTAMPTZ NOT NULL,
    total_amount   NUMERIC(14,2) NOT NULL CHECK (total_amount >= 0),
    payment_method TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sale_lines (
    id         TEXT PRIMARY KEY,
    sale_id    TEXT NOT NULL REFERENCES sales(id),
    line_no    INT NOT NULL,
    product_id TEXT NOT NULL REFERENCES products(id),
    quantity   BIGINT NOT NULL CHECK (quantity > 0),
    unit_price NUMERIC(14,2) NOT NULL CHECK (unit_price >= 0),
    unit_cost  NUMERIC(14,2) NOT NULL CHECK (unit_cost >= 0),
    UNIQUE (sale_id, line_no)
);

CREATE TABLE IF NOT EXISTS stock_movements (
    id                 TEXT PRIMARY KEY,
    seq                BIGSERIAL UNIQUE,
    product_id         TEXT NOT NULL REFERENCES products(id),
    type               TEXT NOT NULL CHECK (type IN ('IN','OUT','ADJUST')),
    quantity_delta     BIGINT NOT NULL CHECK (quantity_delta <> 0),
    reference_id       TEXT,
    reason             TEXT NOT NULL DEFAULT '',
    resulting_quantity BIGINT NOT NULL CHECK (resulting_quantity >= 0),
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_purchase_lines_purchase ON purchase_lines (purchase_id);
CREATE INDEX IF NOT EXISTS idx_purchase_lines_product  ON purchase_lines (product_id);
CREATE INDEX IF NOT EXISTS idx_sale_lines_sale         ON sale_lines (sale_id);
CREATE INDEX IF NOT EXISTS idx_sale_lines_product      ON sale_lines (product_id);
CREATE INDEX IF NOT EXISTS idx_sales_date              ON sales (date);
CREATE INDEX IF NOT EXISTS idx_purchases_date          ON purchases (date);
CREATE INDEX IF NOT EXISTS idx_movements_product_seq   ON stock_movements (product_id, seq);

CREATE OR REPLACE FUNCTION forbid_movement_rewrite() RETURNS trigger AS $$
BEGIN
    RAISE EXCEPTION 'stock_movements es de solo inserción';
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS stock_movements_append_only ON stock_movements;
CREATE TRIGGER stock_movements_append_only
    BEFORE UPDATE OR DELETE ON stock_movements
    FOR EACH ROW EXECUTE FUNCTION forbid_movement_rewrite();
`

// Migrate aplica el esquema sobre el pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
