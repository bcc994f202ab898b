package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ticker-desk/src/helpers"
	"ticker-desk/src/interfaces"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"
)

var (
	ErrTickerExists  = errors.New("Ticker exists")
	ErrStockNotFound = errors.New("Stock not found")
)

// -----------------------------------------------------------------------------

// NewStockStore picks the backend named by cfg.Storage.DBType.
func NewStockStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IStockStore, error) {
	switch cfg.Storage.DBType {
	case "postgres":
		return NewPostgresDB(cfg, log)
	case "sqlite", "":
		return NewAsyncSQLiteDB(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Storage.DBType)
	}
}

// -----------------------------------------------------------------------------

// normalizeCreate validates in and returns it with the ticker canonicalized.
func normalizeCreate(in models.MStockCreate) (models.MStockCreate, error) {
	in.Ticker = strings.ToUpper(strings.TrimSpace(in.Ticker))
	if in.Ticker == "" {
		return in, helpers.NewValidationError("ticker is required")
	}
	if len(in.Ticker) > models.MaxTickerLength {
		return in, helpers.NewValidationError("ticker must be at most %d characters", models.MaxTickerLength)
	}
	if err := checkLen("name", in.Name, models.MaxNameLength); err != nil {
		return in, err
	}
	if err := checkLen("exchange", in.Exchange, models.MaxExchangeLength); err != nil {
		return in, err
	}
	return in, nil
}

func checkLen(field string, v *string, limit int) error {
	if v != nil && len(*v) > limit {
		return helpers.NewValidationError("%s must be at most %d characters", field, limit)
	}
	return nil
}

// -----------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStock(row rowScanner) (models.MStock, error) {
	var (
		s        models.MStock
		name     sql.NullString
		exchange sql.NullString
	)
	if err := row.Scan(&s.ID, &s.Ticker, &name, &exchange); err != nil {
		return s, err
	}
	if name.Valid {
		s.Name = &name.String
	}
	if exchange.Valid {
		s.Exchange = &exchange.String
	}
	return s, nil
}

func scanStocks(rows *sql.Rows) ([]models.MStock, error) {
	defer rows.Close()

	stocks := make([]models.MStock, 0)
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stocks, nil
}

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
