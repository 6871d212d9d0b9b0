// README: Settlement aggregate, status definitions, and transition table.
package settlement

import (
	"time"

	"haulbase/internal/types"
)

type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusPaid      Status = "PAID"
)

// AllowedTransitions represents the settlement lifecycle as code. There
// are no backward edges and no skips: DRAFT → CONFIRMED → PAID.
var AllowedTransitions = map[Status][]Status{
	StatusDraft:     {StatusConfirmed},
	StatusConfirmed: {StatusPaid},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// CanDelete: only an unconfirmed draft may be removed.
func CanDelete(s Status) bool {
	return s == StatusDraft
}

// Settlement aggregates one driver's dispatch fees for one calendar
// month. (DriverID, YearMonth) is unique; after creation only the engine
// writes the status field.
type Settlement struct {
	ID              types.ID
	DriverID        types.ID
	YearMonth       types.YearMonth
	TotalTrips      int
	TotalBaseFare   int64
	TotalDeductions int64
	TotalAdditions  int64
	FinalAmount     int64
	Status          Status
	Remarks         string
	ConfirmedBy     *types.ID
	ConfirmedAt     *time.Time
	PaidAt          *time.Time
	CreatedAt       time.Time
}

// UpdatePatch is a partial settlement update. Financial fields are only
// writable while DRAFT; remarks stay writable through CONFIRMED.
type UpdatePatch struct {
	TotalDeductions *int64
	TotalAdditions  *int64
	Remarks         *string
}

func (p UpdatePatch) HasFinancial() bool {
	return p.TotalDeductions != nil || p.TotalAdditions != nil
}

func (p UpdatePatch) IsEmpty() bool {
	return p.TotalDeductions == nil && p.TotalAdditions == nil && p.Remarks == nil
}
