package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ticker-desk/src/helpers"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize(ctx context.Context) error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewDatabaseError("open sqlite", err)
	}

	// every connection to ":memory:" is a separate database
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return helpers.NewDatabaseError("ping sqlite", err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables(ctx)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS stock (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker TEXT NOT NULL UNIQUE,
			name TEXT,
			exchange TEXT
		);
	`
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) ListStocks(ctx context.Context) ([]models.MStock, error) {
	rows, err := d.DB.QueryContext(ctx, `SELECT id, ticker, name, exchange FROM stock ORDER BY id`)
	if err != nil {
		return nil, helpers.NewDatabaseError("list stocks", err)
	}
	return scanStocks(rows)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) GetStock(ctx context.Context, id int64) (models.MStock, error) {
	row := d.DB.QueryRowContext(ctx, `SELECT id, ticker, name, exchange FROM stock WHERE id = ?`, id)
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

func (d *AsyncSQLiteDB) CreateStock(ctx context.Context, in models.MStockCreate) (models.MStock, error) {
	in, err := normalizeCreate(in)
	if err != nil {
		return models.MStock{}, err
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.MStock{}, helpers.NewDatabaseError("begin", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM stock WHERE ticker = ?`, in.Ticker).Scan(&exists)
	if err == nil {
		return models.MStock{}, ErrTickerExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.MStock{}, helpers.NewDatabaseError("check ticker", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO stock (ticker, name, exchange) VALUES (?, ?, ?)`,
		in.Ticker, nullable(in.Name), nullable(in.Exchange))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.MStock{}, ErrTickerExists
		}
		return models.MStock{}, helpers.NewDatabaseError("insert stock", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.MStock{}, helpers.NewDatabaseError("insert id", err)
	}

	if err := tx.Commit(); err != nil {
		return models.MStock{}, helpers.NewDatabaseError("commit", err)
	}

	return models.MStock{ID: id, Ticker: in.Ticker, Name: in.Name, Exchange: in.Exchange}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) UpdateMetadata(ctx context.Context, id int64, name, exchange *string) (models.MStock, error) {
	if err := checkLen("name", name, models.MaxNameLength); err != nil {
		return models.MStock{}, err
	}
	if err := checkLen("exchange", exchange, models.MaxExchangeLength); err != nil {
		return models.MStock{}, err
	}

	res, err := d.DB.ExecContext(ctx,
		`UPDATE stock SET name = ?, exchange = ? WHERE id = ?`,
		nullable(name), nullable(exchange), id)
	if err != nil {
		return models.MStock{}, helpers.NewDatabaseError("update stock", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.MStock{}, ErrStockNotFound
	}

	return d.GetStock(ctx, id)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
