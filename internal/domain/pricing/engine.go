package pricing

import (
	"fmt"
	"math"

	"github.com/sotsvc/service-estimate/internal/domain"
)

// Quote is an immutable computed price for one configuration. A new Quote
// replaces the old one whenever any input changes; it is never mutated.
type Quote struct {
	ServiceType ServiceType `json:"service_type"`
	// BilledSqft is the area actually billed, after the minimum-charge floor.
	BilledSqft int       `json:"billed_sqft"`
	Frequency  Frequency `json:"frequency"`
	AddOns     []AddOn   `json:"add_ons"`
	// Total is the price in whole currency units.
	Total int64 `json:"total"`
}

// Engine computes price quotes against a rate table. Pure and deterministic:
// identical inputs always yield identical quotes.
type Engine struct {
	table RateTable
}

// NewEngine creates an Engine over a validated rate table.
func NewEngine(table RateTable) (*Engine, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Engine{table: table}, nil
}

// Quote computes the price for the given configuration.
//
// Flat mode:
//   - area below the minimum bills at the minimum (a minimum-charge policy,
//     not a validation error)
//   - raw = base + billed * rate, then raw *= 1 - discount[frequency]
//   - an unknown frequency for the service means no discount applies,
//     never an error
//   - add-ons are flat prices added after the discount
//
// Per-area mode prices as area * rate; minimums and discounts do not apply.
//
// The result is rounded half-up to whole currency units. The only error
// condition is an unknown service type, which indicates a caller bug or a
// corrupt rate table rather than a data condition.
func (e *Engine) Quote(serviceType ServiceType, sqft int, frequency Frequency, addOns []AddOn) (Quote, error) {
	cfg, ok := e.table[serviceType]
	if !ok {
		return Quote{}, domain.NewConfigurationError(fmt.Sprintf("no rate configured for service type %q", serviceType))
	}

	selected := NormalizeAddOns(addOns)

	if cfg.Mode == ModePerArea {
		return Quote{
			ServiceType: serviceType,
			BilledSqft:  sqft,
			Frequency:   frequency,
			AddOns:      selected,
			Total:       roundHalfUp(float64(sqft) * cfg.PricePerSqft),
		}, nil
	}

	billed := sqft
	if billed < cfg.MinSqft {
		billed = cfg.MinSqft
	}

	raw := cfg.BasePrice + float64(billed)*cfg.PricePerSqft
	raw *= 1 - cfg.FrequencyDiscounts[frequency]

	total := raw
	for _, a := range selected {
		total += float64(a.Price())
	}

	return Quote{
		ServiceType: serviceType,
		BilledSqft:  billed,
		Frequency:   frequency,
		AddOns:      selected,
		Total:       roundHalfUp(total),
	}, nil
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
