package domain

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the engine. Manual overrides always produce an
// entry; classification ambiguity produces one for operator follow-up.
const (
	AuditManualOverride      = "MANUAL_OVERRIDE"
	AuditClassifierUnknown   = "CLASSIFICATION_UNKNOWN"
	AuditReconcileIncomplete = "RECONCILE_INCOMPLETE"
)

// AuditEntry is an append-only operator-facing record.
type AuditEntry struct {
	ID               string
	PaymentReference string
	Action           string
	Actor            string
	Detail           string
	CreatedAt        time.Time
}

func NewAuditEntry(paymentReference, action, actor, detail string) AuditEntry {
	return AuditEntry{
		ID:               uuid.New().String(),
		PaymentReference: paymentReference,
		Action:           action,
		Actor:            actor,
		Detail:           detail,
		CreatedAt:        time.Now(),
	}
}

// ScheduledCompletion is a persisted simulator job: one delayed evaluation
// per payment reference, consumed by the worker loop. Surviving process
// restarts is the point of persisting it.
type ScheduledCompletion struct {
	PaymentReference   string
	DueAt              time.Time
	SuccessProbability float64
	CreatedAt          time.Time
}
