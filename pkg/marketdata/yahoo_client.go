package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"golang.org/x/time/rate"
)

// Bar is one day of market data as served by the bar source. Close carries
// the adjusted close so derived returns survive splits and dividends.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// BarSource returns daily bars for one listed symbol, oldest first. The
// Yahoo client satisfies this; tests substitute fixtures.
type BarSource interface {
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error)
}

type YahooClient struct {
	limiter *rate.Limiter
}

func NewYahooClient() *YahooClient {
	// yahoo tolerates roughly two chart calls per second before throttling
	return &YahooClient{
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

func (c *YahooClient) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]Bar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	bars := []Bar{}
	for iter.Next() {
		bar := iter.Bar()
		bars = append(bars, Bar{
			Date:   time.Unix(int64(bar.Timestamp), 0).UTC().Truncate(24 * time.Hour),
			Open:   bar.Open.InexactFloat64(),
			High:   bar.High.InexactFloat64(),
			Low:    bar.Low.InexactFloat64(),
			Close:  bar.AdjClose.InexactFloat64(),
			Volume: int64(bar.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get bars for %s: %w", symbol, err)
	}

	return bars, nil
}
