package integration_tests

import (
	"context"
	"testing"

	"quantlab/internal/db/models/postgres/public/model"
	"quantlab/internal/domain"
	"quantlab/internal/repository"
	"quantlab/internal/service"
	"quantlab/internal/util"
	"quantlab/pkg/marketdata"

	"github.com/stretchr/testify/require"
)

func Test_fundamentalsIngestFlow(t *testing.T) {
	db := newTestDb(t)

	require.NoError(t, cleanupResults(db))
	require.NoError(t, cleanupMarketData(db))

	asOf := util.NewDate(2021, 3, 31)

	securityRepository := repository.NewSecurityRepository(db)
	require.NoError(t, securityRepository.Add([]model.Security{{
		Ticker:       "005930",
		CompanyName:  "Samsung Electronics",
		Market:       "KOSPI",
		ListedShares: int64Pointer(1_000),
	}}))

	financialsRepository := repository.NewFinancialsRepository(db)
	require.NoError(t, financialsRepository.Add([]model.FinancialsQuarterly{
		{Ticker: "005930", PeriodEnd: util.NewDate(2020, 12, 31), ItemName: "Net Income", Value: floatPointer(50_000)},
		{Ticker: "005930", PeriodEnd: util.NewDate(2020, 12, 31), ItemName: "Stockholders Equity", Value: floatPointer(200_000)},
		{Ticker: "005930", PeriodEnd: util.NewDate(2020, 12, 31), ItemName: "Dividends Per Share", Value: floatPointer(5)},
	}))

	stocksDailyRepository := repository.NewStocksDailyRepository(db)
	require.NoError(t, stocksDailyRepository.Add([]model.StocksDailyInfo{{
		EventDate:  asOf,
		Ticker:     "005930",
		Market:     "KOSPI",
		ClosePrice: floatPointer(100),
	}}))

	universeRepository := repository.NewUniverseRepository(db)
	ingestService := service.NewIngestService(
		marketdata.NewYahooClient(),
		universeRepository,
		securityRepository,
		stocksDailyRepository,
		financialsRepository,
		repository.NewFundamentalsRepository(db),
	)

	count, err := ingestService.IngestFundamentals(context.Background(), asOf)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	rows, err := universeRepository.List(domain.UniverseQuery{
		Start:              asOf,
		End:                asOf,
		FundamentalColumns: []string{"eps", "per", "pbr", "dividend_yield"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// 50,000 income over 1,000 shares at a 100 close
	require.InDelta(t, 50.0, *rows[0].Value("eps"), 1e-9)
	require.InDelta(t, 2.0, *rows[0].Value("per"), 1e-9)
	require.InDelta(t, 0.5, *rows[0].Value("pbr"), 1e-9)
	require.InDelta(t, 5.0, *rows[0].Value("dividend_yield"), 1e-9)
}
