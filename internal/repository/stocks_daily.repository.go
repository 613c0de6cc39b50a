package repository

import (
	"database/sql"
	"fmt"
	"time"

	"quantlab/internal/db/models/postgres/public/model"
	. "quantlab/internal/db/models/postgres/public/table"

	. "github.com/go-jet/jet/v2/postgres"
)

type StocksDailyRepository interface {
	Add(rows []model.StocksDailyInfo) error
	ListTradingDays(start, end time.Time) ([]time.Time, error)
}

type stocksDailyRepositoryHandler struct {
	Db *sql.DB
}

func NewStocksDailyRepository(db *sql.DB) StocksDailyRepository {
	return stocksDailyRepositoryHandler{db}
}

func (h stocksDailyRepositoryHandler) Add(rows []model.StocksDailyInfo) error {
	if len(rows) == 0 {
		return nil
	}

	query := StocksDailyInfo.
		INSERT(
			StocksDailyInfo.EventDate,
			StocksDailyInfo.Ticker,
			StocksDailyInfo.CompanyName,
			StocksDailyInfo.Market,
			StocksDailyInfo.MarketCap,
			StocksDailyInfo.OpenPrice,
			StocksDailyInfo.HighPrice,
			StocksDailyInfo.LowPrice,
			StocksDailyInfo.ClosePrice,
			StocksDailyInfo.Volume,
			StocksDailyInfo.PctChange,
			StocksDailyInfo.Rsi14,
			StocksDailyInfo.Ma20d,
			StocksDailyInfo.Momentum3m,
			StocksDailyInfo.Momentum12m,
			StocksDailyInfo.Volatility20d,
		).
		MODELS(rows).
		ON_CONFLICT(
			StocksDailyInfo.EventDate, StocksDailyInfo.Ticker,
		).DO_UPDATE(
		SET(
			StocksDailyInfo.CompanyName.SET(StocksDailyInfo.EXCLUDED.CompanyName),
			StocksDailyInfo.Market.SET(StocksDailyInfo.EXCLUDED.Market),
			StocksDailyInfo.MarketCap.SET(StocksDailyInfo.EXCLUDED.MarketCap),
			StocksDailyInfo.OpenPrice.SET(StocksDailyInfo.EXCLUDED.OpenPrice),
			StocksDailyInfo.HighPrice.SET(StocksDailyInfo.EXCLUDED.HighPrice),
			StocksDailyInfo.LowPrice.SET(StocksDailyInfo.EXCLUDED.LowPrice),
			StocksDailyInfo.ClosePrice.SET(StocksDailyInfo.EXCLUDED.ClosePrice),
			StocksDailyInfo.Volume.SET(StocksDailyInfo.EXCLUDED.Volume),
			StocksDailyInfo.PctChange.SET(StocksDailyInfo.EXCLUDED.PctChange),
			StocksDailyInfo.Rsi14.SET(StocksDailyInfo.EXCLUDED.Rsi14),
			StocksDailyInfo.Ma20d.SET(StocksDailyInfo.EXCLUDED.Ma20d),
			StocksDailyInfo.Momentum3m.SET(StocksDailyInfo.EXCLUDED.Momentum3m),
			StocksDailyInfo.Momentum12m.SET(StocksDailyInfo.EXCLUDED.Momentum12m),
			StocksDailyInfo.Volatility20d.SET(StocksDailyInfo.EXCLUDED.Volatility20d),
		),
	)

	_, err := query.Exec(h.Db)
	if err != nil {
		return fmt.Errorf("failed to add daily stock rows: %w", err)
	}

	return nil
}

// ListTradingDays returns the dates inside the range that look like real
// trading days, i.e. carry more than a handful of listings.
func (h stocksDailyRepositoryHandler) ListTradingDays(start, end time.Time) ([]time.Time, error) {
	query := StocksDailyInfo.
		SELECT(StocksDailyInfo.EventDate).
		WHERE(
			StocksDailyInfo.EventDate.BETWEEN(DateT(start), DateT(end)),
		).
		GROUP_BY(StocksDailyInfo.EventDate).
		HAVING(COUNT(String("*")).GT(Int(10))).
		ORDER_BY(StocksDailyInfo.EventDate.ASC())

	q, args := query.Sql()

	rows, err := h.Db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list trading days: %w", err)
	}
	defer rows.Close()

	out := []time.Time{}
	for rows.Next() {
		var d time.Time
		err := rows.Scan(&d)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, d)
	}

	return out, nil
}
