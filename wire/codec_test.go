package wire

import (
	"testing"

	"matchcore/domain"
)

func TestOrderSubmitRoundTrip(t *testing.T) {
	want := domain.Order{
		ProductID:  7,
		Side:       domain.Sell,
		PriceType:  domain.Limit,
		Price:      10250,
		Quantity:   300,
		OrderID:    998877,
		SubmitTime: 1_700_000_000_000,
		ExpireTime: 1_700_000_060_000,
	}
	buf := EncodeOrderSubmit(want, "exch1")
	got, err := DecodeOrderSubmit(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestOrderSubmitMarketHasNoPrice(t *testing.T) {
	want := domain.Order{
		ProductID: 1,
		Side:      domain.Buy,
		PriceType: domain.Market,
		Quantity:  50,
		OrderID:   5,
	}
	buf := EncodeOrderSubmit(want, "")
	got, err := DecodeOrderSubmit(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestOrderCancelRoundTrip(t *testing.T) {
	want := domain.CancelRequest{ProductID: 3, OrderID: 42}
	buf := EncodeOrderCancel(want, "exch1")
	got, err := DecodeOrderCancel(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestMatchResultRoundTrip(t *testing.T) {
	want := domain.MatchResult{
		ProductID:    4,
		TakerOrderID: 1001,
		MakerOrderID: 900,
		Price:        5000,
		Quantity:     25,
		ExecTime:     1_700_000_000_123,
		Sequence:     1<<40 - 1, // max representable in the 5-byte tail
	}
	buf := EncodeMatchResult(want)
	got, err := DecodeMatchResult(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestEngineStatusRoundTrip(t *testing.T) {
	want := domain.EngineStatus{
		ProductID:    9,
		Ready:        true,
		BestBid:      1000,
		HasBestBid:   true,
		BestAsk:      1005,
		HasBestAsk:   true,
		MatchedCount: 77,
		RestingCount: 12,
		LastSequence: 77,
		Timestamp:    1_700_000_000_000,
	}
	buf := EncodeEngineStatus(want)
	got, err := DecodeEngineStatus(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestEngineStatusNotReadyNoSides(t *testing.T) {
	want := domain.EngineStatus{ProductID: 1}
	buf := EncodeEngineStatus(want)
	got, err := DecodeEngineStatus(buf[:])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Ready || got.HasBestBid || got.HasBestAsk {
		t.Fatalf("expected all flags clear, got %+v", got)
	}
}

func TestDecodeRejectsBadFrameSize(t *testing.T) {
	if _, err := DecodeOrderSubmit(make([]byte, 10)); err != ErrBadFrameSize {
		t.Fatalf("got %v, want ErrBadFrameSize", err)
	}
}

func TestDecodeRejectsWrongMessageType(t *testing.T) {
	buf := EncodeOrderCancel(domain.CancelRequest{ProductID: 1, OrderID: 1}, "")
	if _, err := DecodeOrderSubmit(buf[:]); err != ErrUnknownMessageType {
		t.Fatalf("got %v, want ErrUnknownMessageType", err)
	}
}

func TestDecodeRejectsInvalidSideEnum(t *testing.T) {
	buf := EncodeOrderSubmit(domain.Order{ProductID: 1, Side: domain.Buy, PriceType: domain.Limit, Quantity: 1}, "")
	buf[offSide] = 9
	if _, err := DecodeOrderSubmit(buf[:]); err != ErrInvalidEnum {
		t.Fatalf("got %v, want ErrInvalidEnum", err)
	}
}

func TestDecodeRejectsInvalidPriceTypeEnum(t *testing.T) {
	buf := EncodeOrderSubmit(domain.Order{ProductID: 1, Side: domain.Buy, PriceType: domain.Limit, Quantity: 1}, "")
	buf[offPriceType] = 9
	if _, err := DecodeOrderSubmit(buf[:]); err != ErrInvalidEnum {
		t.Fatalf("got %v, want ErrInvalidEnum", err)
	}
}

func TestPeekMessageType(t *testing.T) {
	buf := EncodeOrderSubmit(domain.Order{ProductID: 1, Side: domain.Buy, PriceType: domain.Limit, Quantity: 1}, "")
	mt, err := PeekMessageType(buf[:])
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if mt != TypeOrderSubmit {
		t.Fatalf("got %v, want TypeOrderSubmit", mt)
	}
}

func TestPeekMessageTypeSnapshotEndSentinel(t *testing.T) {
	var zero [FrameSize]byte
	mt, err := PeekMessageType(zero[:])
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if mt != TypeSnapshotEnd {
		t.Fatalf("got %v, want TypeSnapshotEnd", mt)
	}
}
