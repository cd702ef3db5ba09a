// Package realtime fans "something changed" notifications out to websocket
// viewers. A change carries no record payload; viewers re-fetch.
package realtime

import "time"

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

const (
	CollectionOrders        = "orders"
	CollectionBills         = "bills"
	CollectionCustomers     = "customers"
	CollectionRunningOrders = "running_orders"
	CollectionTables        = "tables"
	CollectionMenuItems     = "menu_items"
	CollectionSettlements   = "settlements"
	CollectionSettings      = "settings"
)

type Change struct {
	Collection string    `json:"collection"`
	Event      EventType `json:"event"`
	RecordID   uint      `json:"record_id"`
	TableID    *uint     `json:"table_id,omitempty"`
	At         time.Time `json:"at"`
}
