package booking

import "fmt"

// FlowState represents where a booking draft sits in the calculator ->
// calendar -> checkout -> payment flow.
type FlowState string

const (
	StateConfiguring   FlowState = "configuring"
	StateQuoted        FlowState = "quoted"
	StateSlotSelected  FlowState = "slot_selected"
	StateCheckoutReady FlowState = "checkout_ready"
	StateSubmitting    FlowState = "submitting"
	StateSucceeded     FlowState = "succeeded"
	StateFailed        FlowState = "failed"
)

// validTransitions defines the state machine for the booking flow. Any edit
// before submission drops the draft back to configuring; a retryable payment
// failure returns to checkout_ready.
var validTransitions = map[FlowState][]FlowState{
	StateConfiguring:   {StateQuoted},
	StateQuoted:        {StateSlotSelected, StateConfiguring},
	StateSlotSelected:  {StateCheckoutReady, StateConfiguring},
	StateCheckoutReady: {StateSubmitting, StateConfiguring},
	StateSubmitting:    {StateSucceeded, StateFailed},
	StateFailed:        {StateCheckoutReady, StateSubmitting, StateConfiguring},
	StateSucceeded:     {},
}

// IsValid returns true if the state is a recognized flow state.
func (s FlowState) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this state to the target is allowed.
func (s FlowState) CanTransitionTo(target FlowState) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this state.
func (s FlowState) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// String returns the string representation of the state.
func (s FlowState) String() string {
	return string(s)
}

// ParseFlowState converts a string to a FlowState, returning an error if invalid.
func ParseFlowState(s string) (FlowState, error) {
	state := FlowState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid flow state: %s", s)
	}
	return state, nil
}
