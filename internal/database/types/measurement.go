package types

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// MeasurementPoint is a single body measurement taken by a user.
// Points are immutable once recorded; multiple points may exist per day.
type MeasurementPoint struct {
	bun.BaseModel `bun:"table:measurement_points,alias:mp"`

	ID         int64               `bun:"id,pk,autoincrement"  json:"id"`
	UserID     int64               `bun:"user_id,notnull"      json:"userId"`
	OccurredAt time.Time           `bun:"occurred_at,notnull"  json:"occurredAt"`
	WeightKg   decimal.NullDecimal `bun:"weight_kg,type:numeric(6,2)"  json:"weightKg"`
	WaistCm    decimal.NullDecimal `bun:"waist_cm,type:numeric(6,2)"   json:"waistCm"`
	ChestCm    decimal.NullDecimal `bun:"chest_cm,type:numeric(6,2)"   json:"chestCm"`
	HipCm      decimal.NullDecimal `bun:"hip_cm,type:numeric(6,2)"     json:"hipCm"`
	ArmCm      decimal.NullDecimal `bun:"arm_cm,type:numeric(6,2)"     json:"armCm"`
	ThighCm    decimal.NullDecimal `bun:"thigh_cm,type:numeric(6,2)"   json:"thighCm"`
}

// Weight converts the stored decimal weight to a float.
// Returns false when the weight is absent or does not convert to a finite number.
func (m *MeasurementPoint) Weight() (float64, bool) {
	if !m.WeightKg.Valid {
		return 0, false
	}

	f, _ := m.WeightKg.Decimal.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}
