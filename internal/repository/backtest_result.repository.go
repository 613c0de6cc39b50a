package repository

import (
	"database/sql"
	"fmt"
	"time"

	"quantlab/internal/db/models/postgres/public/model"
	"quantlab/internal/db/models/postgres/public/table"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/google/uuid"
)

type BacktestResultRepository interface {
	Add(m model.BacktestResult) (*model.BacktestResult, error)
	Get(id uuid.UUID) (*model.BacktestResult, error)
	List(limit int64) ([]model.BacktestResult, error)
}

type backtestResultRepositoryHandler struct {
	Db *sql.DB
}

func NewBacktestResultRepository(db *sql.DB) BacktestResultRepository {
	return backtestResultRepositoryHandler{db}
}

func (h backtestResultRepositoryHandler) Add(m model.BacktestResult) (*model.BacktestResult, error) {
	m.CreatedAt = time.Now().UTC()

	query := table.BacktestResult.
		INSERT(table.BacktestResult.MutableColumns).
		MODEL(m).
		RETURNING(table.BacktestResult.AllColumns)

	out := model.BacktestResult{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to insert backtest result: %w", err)
	}

	return &out, nil
}

func (h backtestResultRepositoryHandler) Get(id uuid.UUID) (*model.BacktestResult, error) {
	query := table.BacktestResult.SELECT(table.BacktestResult.AllColumns).
		WHERE(table.BacktestResult.BacktestResultID.EQ(postgres.UUID(id)))

	out := model.BacktestResult{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to get backtest result %s: %w", id, err)
	}

	return &out, nil
}

func (h backtestResultRepositoryHandler) List(limit int64) ([]model.BacktestResult, error) {
	query := table.BacktestResult.SELECT(table.BacktestResult.AllColumns).
		ORDER_BY(table.BacktestResult.CreatedAt.DESC()).
		LIMIT(limit)

	out := []model.BacktestResult{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list backtest results: %w", err)
	}

	return out, nil
}
