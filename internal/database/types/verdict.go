package types

import "time"

// IneligibilityReason is a machine-readable reason code for a failed
// eligibility check. Message formatting is an external collaborator's job.
type IneligibilityReason string

const (
	ReasonNeedMoreLoss             IneligibilityReason = "NEED_MORE_LOSS"
	ReasonCooldown                 IneligibilityReason = "COOLDOWN"
	ReasonLimitReached             IneligibilityReason = "LIMIT_REACHED"
	ReasonInsufficientMeasurements IneligibilityReason = "INSUFFICIENT_MEASUREMENTS"
	ReasonAnomaly                  IneligibilityReason = "ANOMALY"
)

// ReasonParams carries the numbers a caller needs to render a reason code.
type ReasonParams struct {
	// Additional loss in kg still required, rounded to 2 decimals.
	KgNeeded float64 `json:"kgNeeded,omitempty"`
	// Whole days until the blocking condition expires, minimum 1.
	EtaDays int `json:"etaDays,omitempty"`
	// The cap that was hit.
	Limit int `json:"limit,omitempty"`
	// Distinct measurement days required within the window.
	Days int `json:"days,omitempty"`
}

// EligibilityVerdict is the outcome of an eligibility evaluation.
// Derived, never persisted; recomputed per request.
type EligibilityVerdict struct {
	Eligible        bool                `json:"eligible"`
	Reason          IneligibilityReason `json:"reason,omitempty"`
	Params          *ReasonParams       `json:"reasonParams,omitempty"`
	ProgressDeltaKg float64             `json:"progressDeltaKg,omitempty"`
	LastSpinAt      *time.Time          `json:"lastSpinAt,omitempty"`
}
