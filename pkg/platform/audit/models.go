package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	id "marketlevy/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers money movement and dispute-relevant actions.
	// These require durable storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers read-side activity such as scans that did
	// not move money.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// Outcome is the machine-readable result: "ok" or a domain error code.
	Outcome string
	Reason  string

	AgentID   id.AgentID
	ActorID   id.UserID
	TraderID  id.TraderID
	MarketID  id.MarketID
	PaymentID id.PaymentID

	RequestID   string
	ClientIP    string
	DeviceLabel string
}

type AuditEvent string

const (
	// Verification gateway
	EventTraderScanned  AuditEvent = "trader_scanned"
	EventScanPayAttempt AuditEvent = "levy_collected"

	// Ledger administration
	EventLevyRecorded  AuditEvent = "levy_recorded"
	EventLevyConfirmed AuditEvent = "levy_confirmed"
	EventLevyRejected  AuditEvent = "levy_rejected"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventScanPayAttempt: CategoryCompliance,
	EventLevyRecorded:   CategoryCompliance,
	EventLevyConfirmed:  CategoryCompliance,
	EventLevyRejected:   CategoryCompliance,

	EventTraderScanned: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// OutcomeOK marks a successful action.
const OutcomeOK = "ok"

// Store is the write side of the audit sink plus the trader-scoped read used
// for dispute resolution.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByTrader(ctx context.Context, traderID id.TraderID) ([]Event, error)
}

// OutboxEntry is one outbox row awaiting relay to a broker. Payload is the
// JSON-encoded event.
type OutboxEntry struct {
	ID          uuid.UUID
	AggregateID string
	EventType   string
	Payload     []byte
}
