package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "marketlevy/pkg/domain"
	audit "marketlevy/pkg/platform/audit"
	txcontext "marketlevy/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Each event is written to audit_events for querying and to outbox for the
// relay, inside one transaction (or the caller's, when ctx carries one).
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Payload is the JSON structure published by the relay.
type Payload struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Timestamp   string `json:"timestamp"`
	Action      string `json:"action"`
	Outcome     string `json:"outcome"`
	Reason      string `json:"reason,omitempty"`
	AgentID     string `json:"agent_id,omitempty"`
	ActorID     string `json:"actor_id,omitempty"`
	TraderID    string `json:"trader_id,omitempty"`
	MarketID    string `json:"market_id,omitempty"`
	PaymentID   string `json:"payment_id,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
	DeviceLabel string `json:"device_label,omitempty"`
}

func payloadFor(event audit.Event) Payload {
	p := Payload{
		ID:          event.ID.String(),
		Category:    string(event.Category),
		Timestamp:   event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:      event.Action,
		Outcome:     event.Outcome,
		Reason:      event.Reason,
		RequestID:   event.RequestID,
		DeviceLabel: event.DeviceLabel,
	}
	if !event.AgentID.IsNil() {
		p.AgentID = event.AgentID.String()
	}
	if !event.ActorID.IsNil() {
		p.ActorID = event.ActorID.String()
	}
	if !event.TraderID.IsNil() {
		p.TraderID = event.TraderID.String()
	}
	if !event.MarketID.IsNil() {
		p.MarketID = event.MarketID.String()
	}
	if !event.PaymentID.IsNil() {
		p.PaymentID = event.PaymentID.String()
	}
	return p
}

func nullableUUID(isNil bool, u uuid.UUID) *uuid.UUID {
	if isNil {
		return nil
	}
	return &u
}

// Append writes an audit event and its outbox entry.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	// Always derive category from action; eventCategories is the source of truth.
	event.Category = audit.AuditEvent(event.Action).Category()

	payloadBytes, err := json.Marshal(payloadFor(event))
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := "audit"
	aggregateID := event.ID.String()
	if !event.TraderID.IsNil() {
		aggregateType = "trader"
		aggregateID = event.TraderID.String()
	}

	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)
		_, err := exec.ExecContext(ctx, `
			INSERT INTO audit_events (
				id, category, timestamp, action, outcome, reason,
				agent_id, actor_id, trader_id, market_id, payment_id,
				request_id, client_ip, device_label
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (id) DO NOTHING`,
			event.ID,
			string(event.Category),
			event.Timestamp,
			event.Action,
			event.Outcome,
			event.Reason,
			nullableUUID(event.AgentID.IsNil(), uuid.UUID(event.AgentID)),
			nullableUUID(event.ActorID.IsNil(), uuid.UUID(event.ActorID)),
			nullableUUID(event.TraderID.IsNil(), uuid.UUID(event.TraderID)),
			nullableUUID(event.MarketID.IsNil(), uuid.UUID(event.MarketID)),
			nullableUUID(event.PaymentID.IsNil(), uuid.UUID(event.PaymentID)),
			event.RequestID,
			event.ClientIP,
			event.DeviceLabel,
		)
		if err != nil {
			return fmt.Errorf("insert audit event: %w", err)
		}

		_, err = exec.ExecContext(ctx, `
			INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.New(),
			aggregateType,
			aggregateID,
			event.Action,
			payloadBytes,
			time.Now(),
		)
		if err != nil {
			return fmt.Errorf("insert outbox entry: %w", err)
		}
		return nil
	})
}

// ListByTrader returns events for one trader, newest first.
func (s *Store) ListByTrader(ctx context.Context, traderID id.TraderID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, timestamp, action, outcome, reason,
		       agent_id, actor_id, trader_id, market_id, payment_id,
		       request_id, client_ip, device_label
		FROM audit_events
		WHERE trader_id = $1
		ORDER BY timestamp DESC`, uuid.UUID(traderID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e                                             audit.Event
			category                                      string
			agentID, actorID, traderUUID, marketID, payID *uuid.UUID
		)
		if err := rows.Scan(&e.ID, &category, &e.Timestamp, &e.Action, &e.Outcome, &e.Reason,
			&agentID, &actorID, &traderUUID, &marketID, &payID,
			&e.RequestID, &e.ClientIP, &e.DeviceLabel); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		if agentID != nil {
			e.AgentID = id.AgentID(*agentID)
		}
		if actorID != nil {
			e.ActorID = id.UserID(*actorID)
		}
		if traderUUID != nil {
			e.TraderID = id.TraderID(*traderUUID)
		}
		if marketID != nil {
			e.MarketID = id.MarketID(*marketID)
		}
		if payID != nil {
			e.PaymentID = id.PaymentID(*payID)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

// FetchUnpublished returns up to limit unpublished entries in creation order,
// locking them for the current transaction so parallel relays skip them.
func (s *Store) FetchUnpublished(ctx context.Context, limit int) ([]audit.OutboxEntry, error) {
	rows, err := txcontext.Exec(ctx, s.db).QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch outbox: %w", err)
	}
	defer rows.Close()

	var entries []audit.OutboxEntry
	for rows.Next() {
		var e audit.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkPublished stamps the given entries as published.
func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, u := range ids {
		raw[i] = u.String()
	}
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx,
		`UPDATE outbox SET published_at = $2 WHERE id = ANY($1::uuid[])`,
		pq.Array(raw), at)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// WithinTx runs fn in a transaction shared by FetchUnpublished and MarkPublished.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return txcontext.Run(ctx, s.db, fn)
}
