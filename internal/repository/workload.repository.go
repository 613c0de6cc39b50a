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

type WorkloadRepository interface {
	Add(m model.Workload) (*model.Workload, error)
	Get(id uuid.UUID) (*model.Workload, error)
	List() ([]model.Workload, error)
}

type workloadRepositoryHandler struct {
	Db *sql.DB
}

func NewWorkloadRepository(db *sql.DB) WorkloadRepository {
	return workloadRepositoryHandler{db}
}

func (h workloadRepositoryHandler) Add(m model.Workload) (*model.Workload, error) {
	m.CreatedAt = time.Now().UTC()

	query := table.Workload.
		INSERT(table.Workload.MutableColumns).
		MODEL(m).
		RETURNING(table.Workload.AllColumns)

	out := model.Workload{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to insert workload: %w", err)
	}

	return &out, nil
}

func (h workloadRepositoryHandler) Get(id uuid.UUID) (*model.Workload, error) {
	query := table.Workload.SELECT(table.Workload.AllColumns).
		WHERE(table.Workload.WorkloadID.EQ(postgres.UUID(id)))

	out := model.Workload{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to get workload %s: %w", id, err)
	}

	return &out, nil
}

func (h workloadRepositoryHandler) List() ([]model.Workload, error) {
	query := table.Workload.SELECT(table.Workload.AllColumns).
		ORDER_BY(table.Workload.CreatedAt.DESC())

	out := []model.Workload{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list workloads: %w", err)
	}

	return out, nil
}
