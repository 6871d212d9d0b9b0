// README: Profitability evaluator; margin classification over billing vs driver fee.
package profit

import "haulbase/internal/modules/dispatch"

type Status string

const (
	StatusProfit    Status = "PROFIT"
	StatusBreakEven Status = "BREAK_EVEN"
	StatusLoss      Status = "LOSS"
)

const (
	DefaultProfitThreshold    = 20.0
	DefaultBreakEvenThreshold = 0.0
)

type Evaluation struct {
	CenterBilling int64   `json:"center_billing"`
	DriverFee     int64   `json:"driver_fee"`
	Margin        int64   `json:"margin"`
	MarginRate    float64 `json:"margin_rate"`
	Status        Status  `json:"status"`
}

// Evaluator classifies margin rate against two percent thresholds. It is
// stateless; Evaluate never mutates anything.
type Evaluator struct {
	profitThreshold    float64
	breakEvenThreshold float64
}

func NewEvaluator(profitThreshold, breakEvenThreshold float64) *Evaluator {
	return &Evaluator{profitThreshold: profitThreshold, breakEvenThreshold: breakEvenThreshold}
}

func Default() *Evaluator {
	return NewEvaluator(DefaultProfitThreshold, DefaultBreakEvenThreshold)
}

// Evaluate derives margin and a tier from center billing vs driver fee.
// MarginRate is zero (not negative infinity) when there is no billing.
func (e *Evaluator) Evaluate(centerBilling, driverFee int64) Evaluation {
	margin := centerBilling - driverFee
	var rate float64
	if centerBilling > 0 {
		rate = float64(margin) / float64(centerBilling) * 100
	}

	status := StatusLoss
	switch {
	case rate >= e.profitThreshold:
		status = StatusProfit
	case rate >= e.breakEvenThreshold:
		status = StatusBreakEven
	}

	return Evaluation{
		CenterBilling: centerBilling,
		DriverFee:     driverFee,
		Margin:        margin,
		MarginRate:    rate,
		Status:        status,
	}
}

// Billing is the center-billing amount for a trip. An explicit stored
// total always wins over the component sum, so a trip carrying both is
// never double counted.
func Billing(t *dispatch.Trip) int64 {
	if t.TotalFare != nil {
		return *t.TotalFare
	}
	return t.BaseFare + t.ExtraStopFee + t.ExtraRegionFee + t.AdjustmentAmount
}

// EvaluateTrip runs the evaluator over a trip and one of its dispatches.
func (e *Evaluator) EvaluateTrip(t *dispatch.Trip, d *dispatch.Dispatch) Evaluation {
	return e.Evaluate(Billing(t), d.DriverFee)
}
