package repository

import (
	"database/sql"
	"fmt"
	"time"

	"quantlab/internal/db/models/postgres/public/model"
	. "quantlab/internal/db/models/postgres/public/table"

	. "github.com/go-jet/jet/v2/postgres"
)

type FinancialsRepository interface {
	Add(rows []model.FinancialsQuarterly) error
	ListItems(ticker string) ([]model.FinancialsQuarterly, error)
	ListAsOf(items []string, asOf time.Time) ([]model.FinancialsQuarterly, error)
}

type financialsRepositoryHandler struct {
	Db *sql.DB
}

func NewFinancialsRepository(db *sql.DB) FinancialsRepository {
	return financialsRepositoryHandler{db}
}

func (h financialsRepositoryHandler) Add(rows []model.FinancialsQuarterly) error {
	if len(rows) == 0 {
		return nil
	}

	query := FinancialsQuarterly.
		INSERT(
			FinancialsQuarterly.Ticker,
			FinancialsQuarterly.PeriodEnd,
			FinancialsQuarterly.ItemName,
			FinancialsQuarterly.Value,
		).
		MODELS(rows).
		ON_CONFLICT(
			FinancialsQuarterly.Ticker, FinancialsQuarterly.PeriodEnd, FinancialsQuarterly.ItemName,
		).DO_UPDATE(
		SET(
			FinancialsQuarterly.Value.SET(FinancialsQuarterly.EXCLUDED.Value),
		),
	)

	_, err := query.Exec(h.Db)
	if err != nil {
		return fmt.Errorf("failed to add quarterly financials: %w", err)
	}

	return nil
}

// ListAsOf returns every observation of the named items with a period ending
// on or before asOf, ordered so later periods overwrite earlier ones when the
// caller folds them into a latest-value map.
func (h financialsRepositoryHandler) ListAsOf(items []string, asOf time.Time) ([]model.FinancialsQuarterly, error) {
	itemExprs := make([]Expression, 0, len(items))
	for _, item := range items {
		itemExprs = append(itemExprs, String(item))
	}

	query := FinancialsQuarterly.
		SELECT(FinancialsQuarterly.AllColumns).
		WHERE(
			AND(
				FinancialsQuarterly.ItemName.IN(itemExprs...),
				FinancialsQuarterly.PeriodEnd.LT_EQ(DateT(asOf)),
			),
		).
		ORDER_BY(FinancialsQuarterly.Ticker.ASC(), FinancialsQuarterly.PeriodEnd.ASC())

	out := []model.FinancialsQuarterly{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list financials as of %s: %w", asOf.Format(time.DateOnly), err)
	}

	return out, nil
}

func (h financialsRepositoryHandler) ListItems(ticker string) ([]model.FinancialsQuarterly, error) {
	query := FinancialsQuarterly.
		SELECT(FinancialsQuarterly.AllColumns).
		WHERE(FinancialsQuarterly.Ticker.EQ(String(ticker))).
		ORDER_BY(FinancialsQuarterly.PeriodEnd.ASC(), FinancialsQuarterly.ItemName.ASC())

	out := []model.FinancialsQuarterly{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list financials for %s: %w", ticker, err)
	}

	return out, nil
}
