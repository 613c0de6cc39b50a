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

type MlModelRepository interface {
	Add(m model.MlModel) (*model.MlModel, error)
	Get(id uuid.UUID) (*model.MlModel, error)
	List() ([]model.MlModel, error)
}

type mlModelRepositoryHandler struct {
	Db *sql.DB
}

func NewMlModelRepository(db *sql.DB) MlModelRepository {
	return mlModelRepositoryHandler{db}
}

func (h mlModelRepositoryHandler) Add(m model.MlModel) (*model.MlModel, error) {
	m.CreatedAt = time.Now().UTC()

	query := table.MlModel.
		INSERT(table.MlModel.MutableColumns).
		MODEL(m).
		RETURNING(table.MlModel.AllColumns)

	out := model.MlModel{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ml model: %w", err)
	}

	return &out, nil
}

func (h mlModelRepositoryHandler) Get(id uuid.UUID) (*model.MlModel, error) {
	query := table.MlModel.SELECT(table.MlModel.AllColumns).
		WHERE(table.MlModel.MlModelID.EQ(postgres.UUID(id)))

	out := model.MlModel{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to get ml model %s: %w", id, err)
	}

	return &out, nil
}

func (h mlModelRepositoryHandler) List() ([]model.MlModel, error) {
	query := table.MlModel.SELECT(table.MlModel.AllColumns).
		ORDER_BY(table.MlModel.CreatedAt.DESC())

	out := []model.MlModel{}
	err := query.Query(h.Db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to list ml models: %w", err)
	}

	return out, nil
}
