package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidStrategy marks every strategy validation failure. Callers can use
// errors.Is against this to map the whole family to a 400-class response.
var ErrInvalidStrategy = errors.New("invalid strategy")

var (
	ErrInvalidMarket           = fmt.Errorf("%w: unsupported market", ErrInvalidStrategy)
	ErrInvalidNumeric          = fmt.Errorf("%w: min_market_cap must be a non-negative number", ErrInvalidStrategy)
	ErrInvalidListField        = fmt.Errorf("%w: field must be a list", ErrInvalidStrategy)
	ErrEmptyFactorSet          = fmt.Errorf("%w: at least one factor must be supplied", ErrInvalidStrategy)
	ErrUnsupportedFactor       = fmt.Errorf("%w: unsupported factor", ErrInvalidStrategy)
	ErrInvalidDirection        = fmt.Errorf("%w: unsupported factor direction", ErrInvalidStrategy)
	ErrInvalidWeight           = fmt.Errorf("%w: factor weight must be numeric", ErrInvalidStrategy)
	ErrMissingModelReference   = fmt.Errorf("%w: ml model factor requires a model_id", ErrInvalidStrategy)
	ErrInvalidModelReference   = fmt.Errorf("%w: malformed ml model id", ErrInvalidStrategy)
	ErrInvalidTopN             = fmt.Errorf("%w: portfolio.top_n must be positive", ErrInvalidStrategy)
	ErrUnsupportedWeightMethod = fmt.Errorf("%w: unsupported weight method", ErrInvalidStrategy)
	ErrUnsupportedFrequency    = fmt.Errorf("%w: unsupported rebalancing frequency", ErrInvalidStrategy)
	ErrInvalidDateRange        = fmt.Errorf("%w: start date must be before end date", ErrInvalidStrategy)
	ErrInvalidCapital          = fmt.Errorf("%w: initial capital must be positive", ErrInvalidStrategy)

	// ErrModelNotFound is raised before any data fetch when the referenced
	// model does not exist. Treated as validation-class by the API layer.
	ErrModelNotFound = fmt.Errorf("%w: requested ml model not found", ErrInvalidStrategy)
)

// ErrNoSimulatableResult marks domain data failures: the strategy plus horizon
// plus stored data produced nothing to simulate. Nothing is persisted when one
// of these is returned.
var ErrNoSimulatableResult = errors.New("no simulatable result")

var (
	ErrEmptyUniverse       = fmt.Errorf("%w: no universe rows for the given strategy and period", ErrNoSimulatableResult)
	ErrNoAllocations       = fmt.Errorf("%w: rebalancing produced no allocations", ErrNoSimulatableResult)
	ErrNoPriceData         = fmt.Errorf("%w: no price data available to simulate equity curve", ErrNoSimulatableResult)
	ErrStaleOrMissingPrice = fmt.Errorf("%w: held position has no usable price", ErrNoSimulatableResult)
)
