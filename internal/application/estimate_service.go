package application

import (
	"github.com/sotsvc/service-estimate/internal/domain"
	"github.com/sotsvc/service-estimate/internal/domain/pricing"
	"github.com/sotsvc/service-estimate/internal/metrics"
)

// EstimateRequest holds the inputs for a stateless price estimate.
type EstimateRequest struct {
	ServiceType string   `json:"service_type" binding:"required"`
	Sqft        int      `json:"sqft" binding:"required"`
	Frequency   string   `json:"frequency" binding:"required"`
	AddOns      []string `json:"add_ons"`
}

// QuoteDTO is the response representation of a computed quote.
type QuoteDTO struct {
	ServiceType string   `json:"service_type"`
	BilledSqft  int      `json:"billed_sqft"`
	Frequency   string   `json:"frequency"`
	AddOns      []string `json:"add_ons"`
	Total       int64    `json:"total"`
}

// EstimateService answers anonymous calculator requests. No draft, no
// session: the same inputs always produce the same quote.
type EstimateService struct {
	engine *pricing.Engine
}

// NewEstimateService creates a new EstimateService.
func NewEstimateService(engine *pricing.Engine) *EstimateService {
	return &EstimateService{engine: engine}
}

// Estimate validates the request and computes a quote.
func (s *EstimateService) Estimate(req EstimateRequest) (*QuoteDTO, error) {
	serviceType, sqft, frequency, addOns, err := parseQuoteInputs(req.ServiceType, req.Sqft, req.Frequency, req.AddOns)
	if err != nil {
		return nil, err
	}

	quote, err := s.engine.Quote(serviceType, sqft, frequency, addOns)
	if err != nil {
		return nil, err
	}
	metrics.QuotesComputedTotal.WithLabelValues(string(serviceType)).Inc()

	dto := toQuoteDTO(quote)
	return &dto, nil
}

// parseQuoteInputs validates raw calculator inputs into domain values.
func parseQuoteInputs(serviceType string, sqft int, frequency string, addOns []string) (pricing.ServiceType, int, pricing.Frequency, []pricing.AddOn, error) {
	st, err := pricing.ParseServiceType(serviceType)
	if err != nil {
		return "", 0, "", nil, domain.NewValidationError(err.Error())
	}
	if sqft <= 0 {
		return "", 0, "", nil, domain.NewValidationError("square footage must be positive")
	}
	freq, err := pricing.ParseFrequency(frequency)
	if err != nil {
		return "", 0, "", nil, domain.NewValidationError(err.Error())
	}
	parsed := make([]pricing.AddOn, len(addOns))
	for i, a := range addOns {
		ao, err := pricing.ParseAddOn(a)
		if err != nil {
			return "", 0, "", nil, domain.NewValidationError(err.Error())
		}
		parsed[i] = ao
	}
	return st, sqft, freq, parsed, nil
}

func toQuoteDTO(q pricing.Quote) QuoteDTO {
	addOns := make([]string, len(q.AddOns))
	for i, a := range q.AddOns {
		addOns[i] = string(a)
	}
	return QuoteDTO{
		ServiceType: string(q.ServiceType),
		BilledSqft:  q.BilledSqft,
		Frequency:   string(q.Frequency),
		AddOns:      addOns,
		Total:       q.Total,
	}
}
