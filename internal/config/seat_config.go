package config

import "time"

const (
	defaultSeatPolicy        = "exclusiveAny"
	defaultSubscriptionModel = "expiry"
)

// SeatConfig selects the deployment-time gating behavior of the authority.
type SeatConfig interface {
	GetSeatPolicy() string
	GetSubscriptionModel() string
	GetDefaultTrialPeriod() time.Duration
}

type Seat struct{}

var _ SeatConfig = Seat{}

// GetSeatPolicy returns "exclusiveAny" (strict: one session, period) or
// "deviceBound" (relaxed: the bound device may re-authenticate).
func (Seat) GetSeatPolicy() string {
	return v.GetString("seat.policy")
}

// GetSubscriptionModel returns "expiry" or "boolean".
func (Seat) GetSubscriptionModel() string {
	return v.GetString("seat.subscription_model")
}

func (Seat) GetDefaultTrialPeriod() time.Duration {
	return v.GetDuration("seat.default_trial_period")
}
