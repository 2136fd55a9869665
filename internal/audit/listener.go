package audit

import (
	"context"
	"fmt"
	"log/slog"
)

// Listener projects domain events into audit records. It is the only
// subscriber the core registers; persistence failures stop at the bus
// boundary and never reach the emitter.
type Listener struct {
	repo   Repository
	logger *slog.Logger
}

// NewListener constructs a Listener over the given repository.
func NewListener(repo Repository, logger *slog.Logger) *Listener {
	return &Listener{repo: repo, logger: logger}
}

// Register subscribes the listener to every event kind on the bus.
func (l *Listener) Register(bus *Bus) {
	for _, kind := range Kinds() {
		bus.Subscribe(kind, l.Handle)
	}
}

// Handle maps one event to its record and persists it.
func (l *Listener) Handle(ctx context.Context, event Event) error {
	record, err := recordFromEvent(event)
	if err != nil {
		return err
	}
	if err := l.repo.Append(ctx, record); err != nil {
		return fmt.Errorf("audit: append record: %w", err)
	}
	if l.logger != nil {
		l.logger.Debug("audit record persisted",
			slog.String("kind", string(event.EventKind())),
			slog.String("transaction_id", record.TransactionID))
	}
	return nil
}

func recordFromEvent(event Event) (Record, error) {
	scope := event.EventScope()
	record := Record{
		TransactionID: scope.TransactionID,
		TenantID:      scope.TenantID,
		ActorUserID:   event.EventActor().ID,
		ClientIP:      scope.ClientIP,
		UserAgent:     scope.UserAgent,
		OccurredAt:    event.OccurredAt(),
	}

	switch e := event.(type) {
	case EntityCreated:
		record.Entity = e.Entity
		record.EntityID = e.EntityID
		record.TransactionType = TransactionCreate
		record.Payload = e.Data
	case EntityUpdated:
		record.Entity = e.Entity
		record.EntityID = e.EntityID
		record.TransactionType = TransactionUpdate
		record.Payload = map[string]any{"changes": e.Changes, "data": e.NewData}
	case EntityDeleted:
		record.Entity = e.Entity
		record.EntityID = e.EntityID
		record.TransactionType = TransactionDelete
		if e.SoftDelete {
			record.TransactionType = TransactionSoftDelete
		}
		record.Payload = e.DeletedData
	case UserLogin:
		record.Entity = "user"
		record.EntityID = e.UserID
		record.TransactionType = TransactionLogin
		record.Payload = map[string]any{"email": e.Email, "provider": e.Provider}
	case UserLogout:
		record.Entity = "user"
		record.EntityID = e.UserID
		record.TransactionType = TransactionLogout
	default:
		return Record{}, fmt.Errorf("audit: unhandled event kind %q", event.EventKind())
	}
	return record, nil
}
