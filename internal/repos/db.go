package repos

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// OpenDB opens the store for driver ("sqlite" or "postgres") and applies the
// schema. The same DDL and queries run on both drivers.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	if driver == "" {
		driver = "sqlite"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == "sqlite" {
		// one connection: required for :memory: and avoids SQLITE_BUSY on files
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(time.Hour)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	if driver == "sqlite" {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return nil, err
		}
	}
	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := seedOfferTypes(db); err != nil {
		return nil, fmt.Errorf("seed offer types: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Deals (merchant and bank owners share one table)
CREATE TABLE IF NOT EXISTS deals(
  id TEXT PRIMARY KEY,
  owner_kind TEXT NOT NULL CHECK (owner_kind IN ('MERCHANT','BANK')),
  owner_id TEXT NOT NULL,
  title TEXT NOT NULL,
  subtitle TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  terms TEXT NOT NULL DEFAULT '',
  images_json TEXT NOT NULL DEFAULT '[]',
  price TEXT NOT NULL,
  deduction_type TEXT NOT NULL CHECK (deduction_type IN ('PERCENTAGE','AMOUNT')),
  deduction_amount TEXT,
  deduction_percentage TEXT,
  valid_from TEXT NOT NULL,
  expired_on TEXT NOT NULL,
  approval_status TEXT NOT NULL DEFAULT 'PENDING' CHECK (approval_status IN ('PENDING','APPROVED','REJECTED')),
  comment TEXT NOT NULL DEFAULT '',
  is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
  deal_code TEXT NOT NULL UNIQUE,
  offer_type_id TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deals_owner  ON deals(owner_kind, owner_id);
CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(approval_status, is_deleted);

CREATE TABLE IF NOT EXISTS deal_categories(
  deal_id TEXT NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
  category_id TEXT NOT NULL,
  PRIMARY KEY (deal_id, category_id)
);
CREATE TABLE IF NOT EXISTS deal_brands(
  deal_id TEXT NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
  brand_id TEXT NOT NULL,
  PRIMARY KEY (deal_id, brand_id)
);

-- Categories, brands, offer types
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL CHECK (type IN ('NORMAL','SEASONAL')),
  expiry_date TEXT,
  is_popular BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- both directions are stored so either side finds the edge
CREATE TABLE IF NOT EXISTS category_relations(
  category_id TEXT NOT NULL,
  related_id TEXT NOT NULL,
  PRIMARY KEY (category_id, related_id),
  CHECK (category_id <> related_id)
);
CREATE INDEX IF NOT EXISTS idx_category_relations_related ON category_relations(related_id);

CREATE TABLE IF NOT EXISTS brands(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  image TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_brands_name_nocase ON brands(LOWER(name));

CREATE TABLE IF NOT EXISTS offer_types(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_offer_types_name_nocase ON offer_types(LOWER(name));

-- CategoryBrandMerchant
CREATE TABLE IF NOT EXISTS category_brand_merchants(
  id TEXT PRIMARY KEY,
  merchant_id TEXT NOT NULL UNIQUE,
  owner_kind TEXT NOT NULL CHECK (owner_kind IN ('MERCHANT','BANK')),
  merchant_active BOOLEAN NOT NULL DEFAULT TRUE,
  merchant_approval_status TEXT NOT NULL DEFAULT '',
  created_by TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cbm_categories(
  cbm_id TEXT NOT NULL REFERENCES category_brand_merchants(id) ON DELETE CASCADE,
  category_id TEXT NOT NULL,
  PRIMARY KEY (cbm_id, category_id)
);
CREATE INDEX IF NOT EXISTS idx_cbm_categories_category ON cbm_categories(category_id);
CREATE TABLE IF NOT EXISTS cbm_brands(
  cbm_id TEXT NOT NULL REFERENCES category_brand_merchants(id) ON DELETE CASCADE,
  brand_id TEXT NOT NULL,
  PRIMARY KEY (cbm_id, brand_id)
);
CREATE INDEX IF NOT EXISTS idx_cbm_brands_brand ON cbm_brands(brand_id);

-- Requests
CREATE TABLE IF NOT EXISTS credit_card_requests(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  bank_id TEXT NOT NULL,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL DEFAULT '',
  mobile_no TEXT NOT NULL DEFAULT '',
  monthly_income TEXT NOT NULL,
  employment_type TEXT NOT NULL DEFAULT '',
  card_type TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_credit_card_requests_bank ON credit_card_requests(bank_id);

CREATE TABLE IF NOT EXISTS request_a_deals(
  id TEXT PRIMARY KEY,
  requester_id TEXT NOT NULL,
  category_id TEXT NOT NULL,
  brand_id TEXT NOT NULL DEFAULT '',
  offer_type_id TEXT NOT NULL DEFAULT '',
  target_user_type TEXT NOT NULL CHECK (target_user_type IN ('MERCHANT','BANK')),
  target_owner_id TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

-- Deal codes: atomic per-day counter plus one history row per issued code
CREATE TABLE IF NOT EXISTS deal_code_counters(
  deal_date TEXT NOT NULL,
  deal_type TEXT NOT NULL,
  last_number INTEGER NOT NULL,
  PRIMARY KEY (deal_date, deal_type)
);
CREATE TABLE IF NOT EXISTS deal_codes(
  code TEXT PRIMARY KEY,
  deal_date TEXT NOT NULL,
  deal_number_for_the_day INTEGER NOT NULL,
  deal_type TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS deals_of_the_day(
  id TEXT PRIMARY KEY,
  deal_id TEXT NOT NULL,
  owner_kind TEXT NOT NULL,
  deal_date TEXT NOT NULL,
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deals_of_the_day_active ON deals_of_the_day(is_active, owner_kind);

-- Search indexes. Every table carries owner_id + owner display columns so the
-- reconciliation job can patch them with one statement shape.
CREATE TABLE IF NOT EXISTS deal_search_index(
  id TEXT PRIMARY KEY,
  owner_kind TEXT NOT NULL,
  owner_id TEXT NOT NULL,
  owner_name TEXT NOT NULL DEFAULT '',
  owner_image TEXT NOT NULL DEFAULT '',
  owner_approval_status TEXT NOT NULL DEFAULT '',
  owner_active BOOLEAN NOT NULL DEFAULT TRUE,
  title TEXT NOT NULL,
  subtitle TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  deduction_type TEXT NOT NULL,
  deduction_amount TEXT,
  deduction_percentage TEXT,
  valid_from TEXT NOT NULL,
  expired_on TEXT NOT NULL,
  approval_status TEXT NOT NULL,
  comment TEXT NOT NULL DEFAULT '',
  deal_code TEXT NOT NULL,
  category_ids TEXT NOT NULL DEFAULT ',',
  category_names TEXT NOT NULL DEFAULT '',
  brand_ids TEXT NOT NULL DEFAULT ',',
  brand_names TEXT NOT NULL DEFAULT '',
  is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_deal_search_index_owner ON deal_search_index(owner_id);

CREATE TABLE IF NOT EXISTS deal_of_the_day_search_index(
  id TEXT PRIMARY KEY,
  deal_id TEXT NOT NULL,
  deal_date TEXT NOT NULL,
  owner_kind TEXT NOT NULL,
  owner_id TEXT NOT NULL,
  owner_name TEXT NOT NULL DEFAULT '',
  owner_image TEXT NOT NULL DEFAULT '',
  owner_approval_status TEXT NOT NULL DEFAULT '',
  owner_active BOOLEAN NOT NULL DEFAULT TRUE,
  title TEXT NOT NULL,
  subtitle TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  deduction_type TEXT NOT NULL,
  deduction_amount TEXT,
  deduction_percentage TEXT,
  expired_on TEXT NOT NULL,
  deal_code TEXT NOT NULL,
  category_ids TEXT NOT NULL DEFAULT ',',
  category_names TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dotd_index_deal ON deal_of_the_day_search_index(deal_id);

CREATE TABLE IF NOT EXISTS category_brand_merchant_index(
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL UNIQUE,
  owner_kind TEXT NOT NULL,
  owner_name TEXT NOT NULL DEFAULT '',
  owner_image TEXT NOT NULL DEFAULT '',
  owner_approval_status TEXT NOT NULL DEFAULT '',
  owner_active BOOLEAN NOT NULL DEFAULT TRUE,
  category_ids TEXT NOT NULL DEFAULT ',',
  category_names TEXT NOT NULL DEFAULT '',
  brand_ids TEXT NOT NULL DEFAULT ',',
  brand_names TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bank_merchant_search_index(
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  owner_name TEXT NOT NULL DEFAULT '',
  owner_image TEXT NOT NULL DEFAULT '',
  owner_approval_status TEXT NOT NULL DEFAULT '',
  owner_active BOOLEAN NOT NULL DEFAULT TRUE,
  deal_count INTEGER NOT NULL DEFAULT 0,
  category_ids TEXT NOT NULL DEFAULT ',',
  category_names TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS request_a_deal_search_index(
  id TEXT PRIMARY KEY,
  requester_id TEXT NOT NULL,
  requester_name TEXT NOT NULL DEFAULT '',
  category_id TEXT NOT NULL,
  category_name TEXT NOT NULL DEFAULT '',
  brand_id TEXT NOT NULL DEFAULT '',
  brand_name TEXT NOT NULL DEFAULT '',
  offer_type_id TEXT NOT NULL DEFAULT '',
  offer_type_name TEXT NOT NULL DEFAULT '',
  target_user_type TEXT NOT NULL,
  owner_id TEXT NOT NULL,
  owner_name TEXT NOT NULL DEFAULT '',
  owner_image TEXT NOT NULL DEFAULT '',
  owner_approval_status TEXT NOT NULL DEFAULT '',
  owner_active BOOLEAN NOT NULL DEFAULT TRUE,
  description TEXT NOT NULL DEFAULT '',
  is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_request_index_owner ON request_a_deal_search_index(owner_id);
`
	// lib/pq does not accept multiple statements with comments reliably; run one at a time.
	for _, stmt := range strings.Split(schema, ";\n") {
		stmt = strings.TrimSpace(stripComments(stmt))
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%w in %q", err, firstLine(stmt))
		}
	}
	return nil
}

func stripComments(stmt string) string {
	lines := strings.Split(stmt, "\n")
	out := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "--") {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// seedOfferTypes inserts the baseline offer types (idempotent).
func seedOfferTypes(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM offer_types`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Println("[seed] inserting baseline offer types")
	now := time.Now().UTC().Format("2006-01-02T15:04:05Z")
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, ot := range [][2]string{
		{"OT-DISCOUNT", "Discount"},
		{"OT-BOGO", "Buy One Get One"},
		{"OT-CASHBACK", "Cashback"},
		{"OT-EMI", "Zero Interest EMI"},
	} {
		if _, err := tx.Exec(tx.Rebind(`INSERT INTO offer_types(id, name, created_at) VALUES(?,?,?)`), ot[0], ot[1], now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Store owns the connection and runs multi-table writes in one transaction.
type Store struct{ DB *sqlx.DB }

func NewStore(db *sqlx.DB) *Store { return &Store{DB: db} }

// InTx runs fn in a transaction, committing on nil error.
func (s *Store) InTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func get(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
}

func sel(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

func exec(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, q.Rebind(query), args...)
}

// inQuery expands IN (?) for a slice argument and rebinds for the driver.
func inQuery(q sqlx.ExtContext, query string, args ...any) (string, []any, error) {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return "", nil, err
	}
	return q.Rebind(query), args, nil
}
