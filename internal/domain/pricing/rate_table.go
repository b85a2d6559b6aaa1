package pricing

import (
	"fmt"

	"github.com/sotsvc/service-estimate/internal/domain"
)

// RateConfig holds the pricing parameters for one service type.
type RateConfig struct {
	Mode         PricingMode `json:"mode"`
	BasePrice    float64     `json:"base_price"`
	PricePerSqft float64     `json:"price_per_sqft"`
	// MinSqft is the minimum-charge floor: jobs below it bill at MinSqft.
	MinSqft            int                   `json:"min_sqft"`
	FrequencyDiscounts map[Frequency]float64 `json:"frequency_discounts"`
}

// RateTable maps each service type to its rate configuration.
type RateTable map[ServiceType]RateConfig

// DefaultRateTable returns the published rate card.
func DefaultRateTable() RateTable {
	standard := map[Frequency]float64{
		FrequencyOneTime:  0,
		FrequencyWeekly:   0.20,
		FrequencyBiWeekly: 0.15,
		FrequencyMonthly:  0.10,
	}
	commercial := map[Frequency]float64{
		FrequencyOneTime:  0,
		FrequencyWeekly:   0.25,
		FrequencyBiWeekly: 0.20,
		FrequencyMonthly:  0.15,
	}
	// Move in/out is a one-time service; no recurring discounts apply.
	oneTimeOnly := map[Frequency]float64{
		FrequencyOneTime: 0,
	}

	return RateTable{
		ServiceDeepCleaning: {
			Mode:               ModeFlat,
			BasePrice:          150,
			PricePerSqft:       0.20,
			MinSqft:            500,
			FrequencyDiscounts: standard,
		},
		ServiceResidential: {
			Mode:               ModeFlat,
			BasePrice:          100,
			PricePerSqft:       0.15,
			MinSqft:            500,
			FrequencyDiscounts: standard,
		},
		ServiceCommercial: {
			Mode:               ModeFlat,
			BasePrice:          200,
			PricePerSqft:       0.12,
			MinSqft:            1000,
			FrequencyDiscounts: commercial,
		},
		ServiceMoveInOut: {
			Mode:               ModeFlat,
			BasePrice:          200,
			PricePerSqft:       0.25,
			MinSqft:            500,
			FrequencyDiscounts: oneTimeOnly,
		},
	}
}

// Validate checks the table's invariants: known modes, positive minimum
// areas, and discount fractions in [0, 1). A violation is a configuration
// fault, checked once at startup.
func (t RateTable) Validate() error {
	if len(t) == 0 {
		return domain.NewConfigurationError("rate table is empty")
	}
	for st, cfg := range t {
		if !st.IsValid() {
			return domain.NewConfigurationError(fmt.Sprintf("rate table has unknown service type: %s", st))
		}
		if !cfg.Mode.IsValid() {
			return domain.NewConfigurationError(fmt.Sprintf("rate table %s: unknown pricing mode %q", st, cfg.Mode))
		}
		if cfg.Mode == ModeFlat && cfg.MinSqft <= 0 {
			return domain.NewConfigurationError(fmt.Sprintf("rate table %s: minimum area must be positive", st))
		}
		if cfg.PricePerSqft < 0 || cfg.BasePrice < 0 {
			return domain.NewConfigurationError(fmt.Sprintf("rate table %s: rates must be non-negative", st))
		}
		for f, d := range cfg.FrequencyDiscounts {
			if !f.IsValid() {
				return domain.NewConfigurationError(fmt.Sprintf("rate table %s: unknown frequency %q", st, f))
			}
			if d < 0 || d >= 1 {
				return domain.NewConfigurationError(fmt.Sprintf("rate table %s: discount for %s out of [0,1): %v", st, f, d))
			}
		}
	}
	return nil
}
