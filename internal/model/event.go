package model

import "time"

// Event types published after a state change.
const (
	EventSurfaceUpdated   = "surface.updated"
	EventSaleCommitted    = "sale.committed"
	EventSaleVoided       = "sale.voided"
	EventSaleCorrected    = "sale.corrected"
	EventShiftOpened      = "shift.opened"
	EventShiftClosed      = "shift.closed"
	EventCatalogChanged   = "catalog.changed"
	EventUsersChanged     = "users.changed"
	EventSessionChanged   = "session.changed"
	EventCheckoutRejected = "checkout.rejected"
)

// Event is the envelope fanned out to subscribers (snapshot writer, websocket
// hub, metrics).
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

// Mutates reports whether the event reflects a change that must be persisted.
func (e Event) Mutates() bool {
	return e.Type != EventCheckoutRejected
}
