package cmd

import (
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"quantlab/api"
	"quantlab/internal/calculator"
	"quantlab/internal/logger"
	"quantlab/internal/repository"
	"quantlab/internal/service"
	"quantlab/internal/util"
	"quantlab/pkg/inference"
	"quantlab/pkg/marketdata"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func CloseDependencies(handler *api.ApiHandler) {
	if err := handler.Db.Close(); err != nil {
		logger.Fatal(fmt.Errorf("failed to close db: %w", err))
	}
}

func InitializeDependencies() (*api.ApiHandler, error) {
	_ = godotenv.Load()

	secrets, err := util.LoadSecrets()
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	dbConn, err := sql.Open("postgres", secrets.Db.ToConnectionStr())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	universeRepository := repository.NewUniverseRepository(dbConn)
	mlModelRepository := repository.NewMlModelRepository(dbConn)
	backtestResultRepository := repository.NewBacktestResultRepository(dbConn)
	workloadRepository := repository.NewWorkloadRepository(dbConn)
	securityRepository := repository.NewSecurityRepository(dbConn)
	stocksDailyRepository := repository.NewStocksDailyRepository(dbConn)
	financialsRepository := repository.NewFinancialsRepository(dbConn)
	fundamentalsRepository := repository.NewFundamentalsRepository(dbConn)

	inferenceClient, err := inference.NewClient(secrets.InferenceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to construct inference client: %w", err)
	}

	gptRepository, err := repository.NewGptRepository(secrets.ChatGPTApiKey)
	if err != nil {
		return nil, err
	}

	backtestService := service.NewBacktestService(
		universeRepository,
		mlModelRepository,
		backtestResultRepository,
		calculator.NewScoringService(),
		inferenceClient,
	)
	workloadService := service.NewWorkloadService(
		universeRepository,
		workloadRepository,
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)
	ingestService := service.NewIngestService(
		marketdata.NewYahooClient(),
		universeRepository,
		securityRepository,
		stocksDailyRepository,
		financialsRepository,
		fundamentalsRepository,
	)

	apiHandler := &api.ApiHandler{
		Db:                          dbConn,
		BacktestService:             backtestService,
		WorkloadService:             workloadService,
		StrategyConstructionService: service.NewStrategyConstructionService(gptRepository),
		IngestService:               ingestService,
		ApiRequestRepository:        repository.ApiRequestRepositoryHandler{},
	}

	return apiHandler, nil
}
