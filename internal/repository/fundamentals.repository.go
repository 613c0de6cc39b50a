package repository

import (
	"database/sql"
	"fmt"

	"quantlab/internal/db/models/postgres/public/model"
	. "quantlab/internal/db/models/postgres/public/table"

	. "github.com/go-jet/jet/v2/postgres"
)

type FundamentalsRepository interface {
	Add(rows []model.FundamentalsDaily) error
}

type fundamentalsRepositoryHandler struct {
	Db *sql.DB
}

func NewFundamentalsRepository(db *sql.DB) FundamentalsRepository {
	return fundamentalsRepositoryHandler{db}
}

func (h fundamentalsRepositoryHandler) Add(rows []model.FundamentalsDaily) error {
	if len(rows) == 0 {
		return nil
	}

	query := FundamentalsDaily.
		INSERT(
			FundamentalsDaily.EventDate,
			FundamentalsDaily.Ticker,
			FundamentalsDaily.Per,
			FundamentalsDaily.Pbr,
			FundamentalsDaily.Eps,
			FundamentalsDaily.Bps,
			FundamentalsDaily.DividendYield,
		).
		MODELS(rows).
		ON_CONFLICT(
			FundamentalsDaily.EventDate, FundamentalsDaily.Ticker,
		).DO_UPDATE(
		SET(
			FundamentalsDaily.Per.SET(FundamentalsDaily.EXCLUDED.Per),
			FundamentalsDaily.Pbr.SET(FundamentalsDaily.EXCLUDED.Pbr),
			FundamentalsDaily.Eps.SET(FundamentalsDaily.EXCLUDED.Eps),
			FundamentalsDaily.Bps.SET(FundamentalsDaily.EXCLUDED.Bps),
			FundamentalsDaily.DividendYield.SET(FundamentalsDaily.EXCLUDED.DividendYield),
		),
	)

	_, err := query.Exec(h.Db)
	if err != nil {
		return fmt.Errorf("failed to add daily fundamentals: %w", err)
	}

	return nil
}
