// Package lifecycle holds the order and order-item state machines. Every
// status change goes through Transition; there is no way to write an
// arbitrary status string.
package lifecycle

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrUnknownStatus = errors.New("unknown status")

type OrderStatus string

const (
	OrderPending       OrderStatus = "pending"
	OrderPreparing     OrderStatus = "preparing"
	OrderReady         OrderStatus = "ready"
	OrderServed        OrderStatus = "served"
	OrderBillRequested OrderStatus = "bill_requested"
	OrderCompleted     OrderStatus = "completed"
	OrderCancelled     OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderPending, OrderPreparing, OrderReady, OrderServed,
	OrderBillRequested, OrderCompleted, OrderCancelled,
}

type Event string

const (
	EventStartPreparing Event = "start_preparing"
	EventMarkReady      Event = "mark_ready"
	EventServe          Event = "serve"
	EventRequestBill    Event = "request_bill"
	EventComplete       Event = "complete"
	EventCancel         Event = "cancel"
	// EventReset is the administrative escape hatch. It is the only event
	// that moves a status backwards; on a pending order it only resets items.
	EventReset Event = "reset"
)

type orderKey struct {
	from  OrderStatus
	event Event
}

var orderTransitions = map[orderKey]OrderStatus{
	{OrderPending, EventStartPreparing}: OrderPreparing,
	{OrderPreparing, EventMarkReady}:    OrderReady,
	{OrderReady, EventServe}:            OrderServed,

	{OrderPending, EventRequestBill}:   OrderBillRequested,
	{OrderPreparing, EventRequestBill}: OrderBillRequested,
	{OrderReady, EventRequestBill}:     OrderBillRequested,
	{OrderServed, EventRequestBill}:    OrderBillRequested,

	{OrderReady, EventComplete}:         OrderCompleted,
	{OrderServed, EventComplete}:        OrderCompleted,
	{OrderBillRequested, EventComplete}: OrderCompleted,

	{OrderPending, EventCancel}:       OrderCancelled,
	{OrderPreparing, EventCancel}:     OrderCancelled,
	{OrderReady, EventCancel}:         OrderCancelled,
	{OrderServed, EventCancel}:        OrderCancelled,
	{OrderBillRequested, EventCancel}: OrderCancelled,

	{OrderPending, EventReset}:       OrderPending,
	{OrderPreparing, EventReset}:     OrderPending,
	{OrderReady, EventReset}:         OrderPending,
	{OrderServed, EventReset}:        OrderPending,
	{OrderBillRequested, EventReset}: OrderPending,
	{OrderCompleted, EventReset}:     OrderPending,
	{OrderCancelled, EventReset}:     OrderPending,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// Active reports whether the order still occupies its table.
func (s OrderStatus) Active() bool {
	return !s.Terminal()
}

// Transition returns the state reached by applying event to from.
func Transition(from OrderStatus, event Event) (OrderStatus, error) {
	to, ok := orderTransitions[orderKey{from, event}]
	if !ok {
		return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, from)
	}
	return to, nil
}

// EventFor finds the non-admin event that moves from to to. Used to validate
// requests that name a target status rather than an event.
func EventFor(from, to OrderStatus) (Event, error) {
	for k, v := range orderTransitions {
		if k.from == from && v == to && k.event != EventReset {
			return k.event, nil
		}
	}
	return "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

type ItemStatus string

const (
	ItemPending  ItemStatus = "pending"
	ItemPrepared ItemStatus = "prepared"
	ItemServed   ItemStatus = "served"
)

var ItemStatuses = []ItemStatus{ItemPending, ItemPrepared, ItemServed}

type ItemEvent string

const (
	ItemEventPrepare ItemEvent = "prepare"
	ItemEventServe   ItemEvent = "serve"
	ItemEventReset   ItemEvent = "reset"
)

type itemKey struct {
	from  ItemStatus
	event ItemEvent
}

var itemTransitions = map[itemKey]ItemStatus{
	{ItemPending, ItemEventPrepare}: ItemPrepared,
	{ItemPrepared, ItemEventServe}:  ItemServed,
	{ItemPending, ItemEventReset}:   ItemPending,
	{ItemPrepared, ItemEventReset}:  ItemPending,
	{ItemServed, ItemEventReset}:    ItemPending,
}

func ParseItemStatus(s string) (ItemStatus, error) {
	for _, st := range ItemStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func TransitionItem(from ItemStatus, event ItemEvent) (ItemStatus, error) {
	to, ok := itemTransitions[itemKey{from, event}]
	if !ok {
		return from, fmt.Errorf("%w: item %s on %s", ErrInvalidTransition, event, from)
	}
	return to, nil
}

func ItemEventFor(from, to ItemStatus) (ItemEvent, error) {
	for k, v := range itemTransitions {
		if k.from == from && v == to && k.event != ItemEventReset {
			return k.event, nil
		}
	}
	return "", fmt.Errorf("%w: item %s -> %s", ErrInvalidTransition, from, to)
}
