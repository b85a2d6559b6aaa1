package pricing

import "fmt"

// ServiceType identifies a cleaning service offering.
type ServiceType string

const (
	ServiceDeepCleaning ServiceType = "deep-cleaning"
	ServiceResidential  ServiceType = "residential"
	ServiceCommercial   ServiceType = "commercial"
	ServiceMoveInOut    ServiceType = "move-in-out"
)

// IsValid returns true if the service type is recognized.
func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceDeepCleaning, ServiceResidential, ServiceCommercial, ServiceMoveInOut:
		return true
	}
	return false
}

// String returns the string representation of the service type.
func (s ServiceType) String() string { return string(s) }

// ParseServiceType converts a string to a ServiceType, returning an error if invalid.
func ParseServiceType(s string) (ServiceType, error) {
	st := ServiceType(s)
	if !st.IsValid() {
		return "", fmt.Errorf("invalid service type: %s", s)
	}
	return st, nil
}

// Frequency identifies how often a recurring service is performed.
type Frequency string

const (
	FrequencyOneTime  Frequency = "one-time"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiWeekly Frequency = "bi-weekly"
	FrequencyMonthly  Frequency = "monthly"
)

// IsValid returns true if the frequency is recognized.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyOneTime, FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// String returns the string representation of the frequency.
func (f Frequency) String() string { return string(f) }

// ParseFrequency converts a string to a Frequency, returning an error if invalid.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid frequency: %s", s)
	}
	return f, nil
}

// AddOn identifies an optional extra service with a flat price.
type AddOn string

const (
	AddOnWindows  AddOn = "windows"
	AddOnFridge   AddOn = "fridge"
	AddOnOven     AddOn = "oven"
	AddOnCabinets AddOn = "cabinets"
)

// addOnPrices is the fixed catalog of extras. Flat whole-dollar prices,
// added after the frequency discount.
var addOnPrices = map[AddOn]int64{
	AddOnWindows:  50,
	AddOnFridge:   30,
	AddOnOven:     25,
	AddOnCabinets: 40,
}

// IsValid returns true if the add-on is in the catalog.
func (a AddOn) IsValid() bool {
	_, ok := addOnPrices[a]
	return ok
}

// Price returns the flat price for the add-on, or 0 if unknown.
func (a AddOn) Price() int64 { return addOnPrices[a] }

// ParseAddOn converts a string to an AddOn, returning an error if invalid.
func ParseAddOn(s string) (AddOn, error) {
	a := AddOn(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid add-on: %s", s)
	}
	return a, nil
}

// NormalizeAddOns deduplicates a selection into a stable set. Order is
// irrelevant to pricing; duplicates never double-charge.
func NormalizeAddOns(addOns []AddOn) []AddOn {
	seen := make(map[AddOn]struct{}, len(addOns))
	out := make([]AddOn, 0, len(addOns))
	for _, a := range addOns {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

// PricingMode selects how a service is priced.
type PricingMode string

const (
	// ModeFlat prices as base + billed area * rate with a minimum-area floor
	// and frequency discounts.
	ModeFlat PricingMode = "flat"
	// ModePerArea prices as area * rate only; minimums and discounts do not
	// apply.
	ModePerArea PricingMode = "per_area"
)

// IsValid returns true if the pricing mode is recognized.
func (m PricingMode) IsValid() bool {
	return m == ModeFlat || m == ModePerArea
}
