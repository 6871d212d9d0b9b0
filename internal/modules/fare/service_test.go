// README: Quote service tests with a stub resolver.
package fare

import (
	"context"
	"testing"

	"haulbase/internal/modules/rate"
	"haulbase/internal/types"
)

type stubResolver struct {
	resolved   rate.Resolved
	regionRows []rate.CenterFare
	stopFeeRow *rate.CenterFare

	resolveCalls int
	regionCalls  int
	stopFeeCalls int
}

func (s *stubResolver) Resolve(ctx context.Context, centerName, tonnage string, regions []string) (rate.Resolved, error) {
	s.resolveCalls++
	return s.resolved, nil
}

func (s *stubResolver) RegionFares(ctx context.Context, loadingPointID types.ID, vehicleType string, regions []string) ([]rate.CenterFare, error) {
	s.regionCalls++
	return s.regionRows, nil
}

func (s *stubResolver) StopFeeRow(ctx context.Context, loadingPointID types.ID, vehicleType string) (rate.CenterFare, bool, error) {
	s.stopFeeCalls++
	if s.stopFeeRow == nil {
		return rate.CenterFare{}, false, nil
	}
	return *s.stopFeeRow, true, nil
}

func TestQuoteNegotiatedSkipsLookups(t *testing.T) {
	stub := &stubResolver{}
	svc := NewService(stub)
	fee := int64(500000)

	b, err := svc.Quote(context.Background(), QuoteCommand{
		LoadingPointID: "lp1",
		VehicleType:    "5t",
		Regions:        []string{"서울"},
		StopCount:      1,
		IsNegotiated:   true,
		NegotiatedFare: &fee,
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if b.Total != 500000 || !b.Negotiated {
		t.Errorf("breakdown = %+v, want negotiated total 500000", b)
	}
	if stub.regionCalls != 0 || stub.stopFeeCalls != 0 {
		t.Errorf("negotiated quote touched the rate store: region=%d stopFee=%d", stub.regionCalls, stub.stopFeeCalls)
	}
}

func TestQuoteValidationBeforeLookup(t *testing.T) {
	stub := &stubResolver{}
	svc := NewService(stub)

	_, err := svc.Quote(context.Background(), QuoteCommand{
		LoadingPointID: "lp1",
		VehicleType:    "5t",
		Regions:        []string{"서울", "부산"},
		StopCount:      3, // mismatch
	})
	if err != ErrStopCountMismatch {
		t.Fatalf("err = %v, want ErrStopCountMismatch", err)
	}
	if stub.regionCalls != 0 {
		t.Error("invalid request reached the rate store")
	}
}

func TestQuoteStopFeeFallback(t *testing.T) {
	stub := &stubResolver{
		regionRows: []rate.CenterFare{{Region: "서울", FareType: rate.FareTypeBasic, BaseFare: 200000}},
		stopFeeRow: &rate.CenterFare{FareType: rate.FareTypeStopFee, ExtraStopFee: 12000, ExtraRegionFee: 25000},
	}
	svc := NewService(stub)

	b, err := svc.Quote(context.Background(), QuoteCommand{
		LoadingPointID: "lp1",
		VehicleType:    "5t",
		Regions:        []string{"서울", "부산"},
		StopCount:      2,
		// no explicit extras: fall back to the STOP_FEE row
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if b.RegionFare != 25000 {
		t.Errorf("region fare = %d, want 25000 from STOP_FEE row", b.RegionFare)
	}
	if b.StopFare != 12000 {
		t.Errorf("stop fare = %d, want 12000 from STOP_FEE row", b.StopFare)
	}
	if b.Total != 200000+25000+12000 {
		t.Errorf("total = %d, want 237000", b.Total)
	}
}

func TestQuoteExplicitExtrasWin(t *testing.T) {
	stub := &stubResolver{
		regionRows: []rate.CenterFare{{Region: "서울", FareType: rate.FareTypeBasic, BaseFare: 200000}},
		stopFeeRow: &rate.CenterFare{FareType: rate.FareTypeStopFee, ExtraStopFee: 12000, ExtraRegionFee: 25000},
	}
	svc := NewService(stub)

	b, err := svc.Quote(context.Background(), QuoteCommand{
		LoadingPointID: "lp1",
		VehicleType:    "5t",
		Regions:        []string{"서울", "부산"},
		StopCount:      2,
		Extras:         Extras{RegionMove: 30000, StopExtra: 10000},
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if stub.stopFeeCalls != 0 {
		t.Error("explicit extras should skip the STOP_FEE lookup")
	}
	if b.RegionFare != 30000 || b.StopFare != 10000 {
		t.Errorf("extras = %d/%d, want caller-supplied 30000/10000", b.RegionFare, b.StopFare)
	}
}

func TestPriceDispatchesOnModel(t *testing.T) {
	stub := &stubResolver{
		resolved:   rate.Resolved{BaseFare: 120000, PerStop: 5000, PerWaypoint: 8000},
		regionRows: []rate.CenterFare{{Region: "서울", FareType: rate.FareTypeBasic, BaseFare: 200000}},
	}
	svc := NewService(stub)
	ctx := context.Background()

	b, err := svc.Price(ctx, PriceCommand{
		Model:      rate.ModelSimplified,
		CenterName: "쿠팡",
		Tonnage:    "5",
		Regions:    []string{"강남", "강남", "수원"},
		StopCount:  3,
	})
	if err != nil {
		t.Fatalf("simplified price: %v", err)
	}
	if b.Total != 138000 || stub.resolveCalls != 1 {
		t.Errorf("simplified: total=%d resolveCalls=%d", b.Total, stub.resolveCalls)
	}

	b, err = svc.Price(ctx, PriceCommand{
		Model:          rate.ModelCenterFare,
		LoadingPointID: "lp1",
		VehicleType:    "5t",
		Regions:        []string{"서울"},
		StopCount:      1,
	})
	if err != nil {
		t.Fatalf("charter price: %v", err)
	}
	if b.Total != 200000 || stub.regionCalls != 1 {
		t.Errorf("charter: total=%d regionCalls=%d", b.Total, stub.regionCalls)
	}

	if _, err := svc.Price(ctx, PriceCommand{Model: "spot"}); err != ErrUnknownModel {
		t.Fatalf("unknown model: err = %v, want ErrUnknownModel", err)
	}
}

func TestCalculateDelegatesToResolver(t *testing.T) {
	stub := &stubResolver{
		resolved: rate.Resolved{BaseFare: 120000, PerStop: 5000, PerWaypoint: 8000},
	}
	svc := NewService(stub)

	b, err := svc.Calculate(context.Background(), CalculateCommand{
		CenterName: "쿠팡",
		Tonnage:    "5",
		Regions:    []string{"강남", "강남", "수원"},
		StopsTotal: 3,
	})
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if b.Total != 138000 {
		t.Errorf("total = %d, want 138000", b.Total)
	}
	if stub.resolveCalls != 1 {
		t.Errorf("resolve calls = %d, want 1", stub.resolveCalls)
	}
}
