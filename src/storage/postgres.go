package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"ticker-desk/src/helpers"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"

	"github.com/lib/pq"
)

const pgUniqueViolation = "23505"

var schemaNameRe = regexp.MustCompile(`[^a-z0-9_]+`)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresDB derives the schema from the application name.
func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	schema := schemaNameRe.ReplaceAllString(strings.ToLower(cfg.Name), "_")
	if schema == "" || schema == "_" {
		schema = "public"
	}

	return &PostgresDB{
		Config: cfg,
		Schema: schema,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize(ctx context.Context) error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return helpers.NewDatabaseError("open postgres", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping postgres", err)
	}

	d.DB = db

	if _, err := d.DB.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, pq.QuoteIdentifier(d.Schema))); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			ticker VARCHAR(12) NOT NULL UNIQUE,
			name VARCHAR(255),
			exchange VARCHAR(32)
		);
	`, d.table())
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

func (d *PostgresDB) table() string {
	return pq.QuoteIdentifier(d.Schema) + "." + pq.QuoteIdentifier("stock")
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) ListStocks(ctx context.Context) ([]models.MStock, error) {
	rows, err := d.DB.QueryContext(ctx, fmt.Sprintf(`SELECT id, ticker, name, exchange FROM %s ORDER BY id`, d.table()))
	if err != nil {
		return nil, helpers.NewDatabaseError("list stocks", err)
	}
	return scanStocks(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) GetStock(ctx context.Context, id int64) (models.MStock, error) {
	row := d.DB.QueryRowContext(ctx, fmt.Sprintf(`SELECT id, ticker, name, exchange FROM %s WHERE id = $1`, d.table()), id)
	s, err := scanStock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrStockNotFound
	}
	if err != nil {
		return s, helpers.NewDatabaseError("get stock", err)
	}
	return s, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CreateStock(ctx context.Context, in models.MStockCreate) (models.MStock, error) {
	in, err := normalizeCreate(in)
	if err != nil {
		return models.MStock{}, err
	}

	var id int64
	err = d.DB.QueryRowContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (ticker, name, exchange) VALUES ($1, $2, $3) RETURNING id`, d.table()),
		in.Ticker, nullable(in.Name), nullable(in.Exchange)).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return models.MStock{}, ErrTickerExists
		}
		return models.MStock{}, helpers.NewDatabaseError("insert stock", err)
	}

	return models.MStock{ID: id, Ticker: in.Ticker, Name: in.Name, Exchange: in.Exchange}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) UpdateMetadata(ctx context.Context, id int64, name, exchange *string) (models.MStock, error) {
	if err := checkLen("name", name, models.MaxNameLength); err != nil {
		return models.MStock{}, err
	}
	if err := checkLen("exchange", exchange, models.MaxExchangeLength); err != nil {
		return models.MStock{}, err
	}

	row := d.DB.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE %s SET name = $1, exchange = $2 WHERE id = $3 RETURNING id, ticker, name, exchange`, d.table()),
		nullable(name), nullable(exchange), id)
	s, err := scanStock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrStockNotFound
	}
	if err != nil {
		return s, helpers.NewDatabaseError("update stock", err)
	}
	return s, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
