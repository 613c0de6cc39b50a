package repository

import (
	"database/sql"
	"fmt"

	"quantlab/internal/db/models/postgres/public/model"
	. "quantlab/internal/db/models/postgres/public/table"

	. "github.com/go-jet/jet/v2/postgres"
)

type SecurityRepository interface {
	Add(rows []model.Security) error
	List(market *string) ([]model.Security, error)
}

type securityRepositoryHandler struct {
	Db *sql.DB
}

func NewSecurityRepository(db *sql.DB) SecurityRepository {
	return securityRepositoryHandler{db}
}

func (h securityRepositoryHandler) Add(rows []model.Security) error {
	if len(rows) == 0 {
		return nil
	}

	query := Security.
		INSERT(
			Security.Ticker,
			Security.CompanyName,
			Security.Market,
			Security.ListedShares,
		).
		MODELS(rows).
		ON_CONFLICT(
			Security.Ticker,
		).DO_UPDATE(
		SET(
			Security.CompanyName.SET(Security.EXCLUDED.CompanyName),
			Security.Market.SET(Security.EXCLUDED.Market),
			Security.ListedShares.SET(Security.EXCLUDED.ListedShares),
		),
	)

	_, err := query.Exec(h.Db)
	if err != nil {
		return fmt.Errorf("failed to add securities: %w", err)
	}

	return nil
}

func (h securityRepositoryHandler) List(market *string) ([]model.Security, error) {
	query := Security.SELECT(Security.AllColumns).
		ORDER_BY(Security.Ticker.ASC())
	if market != nil {
		query = query.WHERE(Security.Market.EQ(String(*market)))
	}

	out := []model.Security{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list securities: %w", err)
	}

	return out, nil
}
