package audit

import (
	"context"
	"time"
)

// TransactionType classifies a persisted audit record.
type TransactionType string

const (
	TransactionCreate     TransactionType = "CREATE"
	TransactionUpdate     TransactionType = "UPDATE"
	TransactionSoftDelete TransactionType = "SOFT_DELETE"
	TransactionDelete     TransactionType = "DELETE"
	TransactionLogin      TransactionType = "LOGIN"
	TransactionLogout     TransactionType = "LOGOUT"
)

// Record is the persisted projection of a domain event.
type Record struct {
	ID              string
	TransactionID   string
	TenantID        string
	ActorUserID     string
	Entity          string
	EntityID        string
	TransactionType TransactionType
	Payload         map[string]any
	ClientIP        string
	UserAgent       string
	OccurredAt      time.Time
}

// Query filters the audit trail. A zero field means no filter; Limit <= 0
// returns everything after Offset.
type Query struct {
	TenantID        string
	ActorUserID     string
	Entity          string
	TransactionType TransactionType
	From            time.Time
	To              time.Time
	Offset          int
	Limit           int
}

// Repository is the persistence contract for audit records. Append-only by
// design: no update or delete of individual rows, only retention purges.
type Repository interface {
	Append(ctx context.Context, record Record) error
	List(ctx context.Context, q Query) ([]Record, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
