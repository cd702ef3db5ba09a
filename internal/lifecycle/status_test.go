package lifecycle

import (
	"errors"
	"testing"
)

func TestTransition_HappyPath(t *testing.T) {
	steps := []struct {
		event Event
		want  OrderStatus
	}{
		{EventStartPreparing, OrderPreparing},
		{EventMarkReady, OrderReady},
		{EventServe, OrderServed},
		{EventRequestBill, OrderBillRequested},
		{EventComplete, OrderCompleted},
	}

	state := OrderPending
	for _, s := range steps {
		next, err := Transition(state, s.event)
		if err != nil {
			t.Fatalf("%s on %s: unexpected error %v", s.event, state, err)
		}
		if next != s.want {
			t.Fatalf("%s on %s: expected %s, got %s", s.event, state, s.want, next)
		}
		state = next
	}
}

func TestTransition_Rejects(t *testing.T) {
	tests := []struct {
		from  OrderStatus
		event Event
	}{
		{OrderPending, EventServe},
		{OrderPending, EventMarkReady},
		{OrderReady, EventStartPreparing},
		{OrderCompleted, EventCancel},
		{OrderCancelled, EventStartPreparing},
		{OrderCompleted, EventRequestBill},
		{OrderPending, EventComplete},
	}
	for _, tt := range tests {
		got, err := Transition(tt.from, tt.event)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s on %s: expected ErrInvalidTransition, got %v", tt.event, tt.from, err)
		}
		if got != tt.from {
			t.Errorf("%s on %s: expected state unchanged, got %s", tt.event, tt.from, got)
		}
	}
}

func TestTransition_CancelFromAnyNonTerminal(t *testing.T) {
	for _, s := range OrderStatuses {
		got, err := Transition(s, EventCancel)
		if s.Terminal() {
			if err == nil {
				t.Errorf("%s: expected cancel rejected on terminal state", s)
			}
			continue
		}
		if err != nil || got != OrderCancelled {
			t.Errorf("%s: expected cancelled, got %s (%v)", s, got, err)
		}
	}
}

func TestTransition_ResetGoesBackToPending(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderServed, OrderCompleted, OrderCancelled} {
		got, err := Transition(s, EventReset)
		if err != nil || got != OrderPending {
			t.Errorf("%s: expected reset to pending, got %s (%v)", s, got, err)
		}
	}
}

func TestEventFor(t *testing.T) {
	ev, err := EventFor(OrderServed, OrderBillRequested)
	if err != nil || ev != EventRequestBill {
		t.Errorf("expected request_bill, got %s (%v)", ev, err)
	}

	if _, err := EventFor(OrderCompleted, OrderPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected backward move rejected without reset, got %v", err)
	}
	if _, err := EventFor(OrderPending, OrderServed); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected skipping states rejected, got %v", err)
	}
}

func TestParseOrderStatus(t *testing.T) {
	if s, err := ParseOrderStatus("bill_requested"); err != nil || s != OrderBillRequested {
		t.Errorf("expected bill_requested, got %s (%v)", s, err)
	}
	if _, err := ParseOrderStatus("delivered"); !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestItemTransitions(t *testing.T) {
	s, err := TransitionItem(ItemPending, ItemEventPrepare)
	if err != nil || s != ItemPrepared {
		t.Fatalf("expected prepared, got %s (%v)", s, err)
	}
	s, err = TransitionItem(s, ItemEventServe)
	if err != nil || s != ItemServed {
		t.Fatalf("expected served, got %s (%v)", s, err)
	}
	if _, err := TransitionItem(ItemPending, ItemEventServe); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected pending -> served rejected, got %v", err)
	}
	if _, err := ItemEventFor(ItemServed, ItemPending); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected served -> pending rejected outside reset, got %v", err)
	}
	for _, from := range ItemStatuses {
		if s, err := TransitionItem(from, ItemEventReset); err != nil || s != ItemPending {
			t.Errorf("%s: expected reset to pending, got %s (%v)", from, s, err)
		}
	}
	if ev, err := ItemEventFor(ItemPending, ItemPrepared); err != nil || ev != ItemEventPrepare {
		t.Errorf("expected prepare, got %s (%v)", ev, err)
	}
}
