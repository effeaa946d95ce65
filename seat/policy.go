package seat

import (
	"fmt"
	"time"
)

// SubscriptionModel selects how the validity window is interpreted.
type SubscriptionModel string

const (
	// SubscriptionModelExpiry treats the account's expiry timestamp as a
	// window: valid while the expiry lies in the future.
	SubscriptionModelExpiry SubscriptionModel = "expiry"
	// SubscriptionModelBoolean is the degenerate model of early deployments:
	// an account is valid whenever an expiry has been set at all.
	SubscriptionModelBoolean SubscriptionModel = "boolean"
)

// SeatPolicy selects when an Authenticate attempt conflicts with the seat.
type SeatPolicy string

const (
	// SeatPolicyExclusiveAny refuses any Authenticate while a session is
	// active, including from the device that holds it. The holder must log
	// out first.
	SeatPolicyExclusiveAny SeatPolicy = "exclusiveAny"
	// SeatPolicyDeviceBound only refuses devices other than the bound one;
	// the bound device may re-authenticate freely.
	SeatPolicyDeviceBound SeatPolicy = "deviceBound"
)

func ParseSubscriptionModel(s string) (SubscriptionModel, error) {
	switch SubscriptionModel(s) {
	case SubscriptionModelExpiry, SubscriptionModelBoolean:
		return SubscriptionModel(s), nil
	case "":
		return SubscriptionModelExpiry, nil
	}
	return "", fmt.Errorf("unknown subscription model %q", s)
}

func ParseSeatPolicy(s string) (SeatPolicy, error) {
	switch SeatPolicy(s) {
	case SeatPolicyExclusiveAny, SeatPolicyDeviceBound:
		return SeatPolicy(s), nil
	case "":
		return SeatPolicyExclusiveAny, nil
	}
	return "", fmt.Errorf("unknown seat policy %q", s)
}

// Policy is the deployment-time configuration of the authority's gating
// behavior.
type Policy struct {
	SubscriptionModel SubscriptionModel
	SeatPolicy        SeatPolicy
	// DefaultTrialPeriod is granted to every new registration. Zero means
	// accounts start unactivated and need an explicit admin activation.
	DefaultTrialPeriod time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		SubscriptionModel: SubscriptionModelExpiry,
		SeatPolicy:        SeatPolicyExclusiveAny,
	}
}
