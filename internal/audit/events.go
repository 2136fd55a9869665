// Package audit carries domain events from business code to the audit trail.
// Events are immutable once constructed; they snapshot the request scope at
// emission time so the persisted record stays accurate regardless of what
// happens to the request afterwards.
package audit

import (
	"context"
	"time"

	"github.com/inkwell-cms/inkwell/internal/shared"
)

// Kind tags an event variant.
type Kind string

const (
	KindEntityCreated Kind = "entity.created"
	KindEntityUpdated Kind = "entity.updated"
	KindEntityDeleted Kind = "entity.deleted"
	KindUserLogin     Kind = "user.login"
	KindUserLogout    Kind = "user.logout"
)

// Kinds lists every event kind, in a stable order.
func Kinds() []Kind {
	return []Kind{KindEntityCreated, KindEntityUpdated, KindEntityDeleted, KindUserLogin, KindUserLogout}
}

// Actor identifies who caused an event.
type Actor struct {
	ID    string
	Email string
}

// Snapshot captures the request scope at emission time.
type Snapshot struct {
	TransactionID string
	TenantID      string
	ClientIP      string
	UserAgent     string
}

// Event is the contract every domain event variant satisfies.
type Event interface {
	EventKind() Kind
	EventActor() Actor
	EventScope() Snapshot
	OccurredAt() time.Time
}

// Base holds the fields shared by all event variants.
type Base struct {
	Actor Actor
	Scope Snapshot
	At    time.Time
}

func (b Base) EventActor() Actor     { return b.Actor }
func (b Base) EventScope() Snapshot  { return b.Scope }
func (b Base) OccurredAt() time.Time { return b.At }

func newBase(ctx context.Context, actor Actor) Base {
	base := Base{Actor: actor, At: time.Now().UTC()}
	if scope, ok := shared.TryScopeFromContext(ctx); ok {
		base.Scope = Snapshot{
			TransactionID: scope.TransactionID,
			TenantID:      scope.TenantID,
			ClientIP:      scope.ClientIP,
			UserAgent:     scope.UserAgent,
		}
	}
	return base
}

// ActorFromContext derives the event actor from the request scope.
func ActorFromContext(ctx context.Context) Actor {
	if scope, ok := shared.TryScopeFromContext(ctx); ok && scope.Principal != nil {
		return Actor{ID: scope.Principal.ID, Email: scope.Principal.Email}
	}
	return Actor{}
}

// EntityCreated records the creation of a business entity.
type EntityCreated struct {
	Base
	Entity   string
	EntityID string
	Data     map[string]any
}

func (EntityCreated) EventKind() Kind { return KindEntityCreated }

// NewEntityCreated builds an EntityCreated event from the current request.
func NewEntityCreated(ctx context.Context, actor Actor, entity, entityID string, data map[string]any) EntityCreated {
	return EntityCreated{Base: newBase(ctx, actor), Entity: entity, EntityID: entityID, Data: data}
}

// EntityUpdated records a mutation, carrying both the change set and the
// resulting state.
type EntityUpdated struct {
	Base
	Entity   string
	EntityID string
	Changes  map[string]any
	NewData  map[string]any
}

func (EntityUpdated) EventKind() Kind { return KindEntityUpdated }

// NewEntityUpdated builds an EntityUpdated event from the current request.
func NewEntityUpdated(ctx context.Context, actor Actor, entity, entityID string, changes, newData map[string]any) EntityUpdated {
	return EntityUpdated{Base: newBase(ctx, actor), Entity: entity, EntityID: entityID, Changes: changes, NewData: newData}
}

// EntityDeleted records a removal. SoftDelete distinguishes a reversible
// tombstone from a hard delete.
type EntityDeleted struct {
	Base
	Entity      string
	EntityID    string
	DeletedData map[string]any
	SoftDelete  bool
}

func (EntityDeleted) EventKind() Kind { return KindEntityDeleted }

// NewEntityDeleted builds an EntityDeleted event from the current request.
func NewEntityDeleted(ctx context.Context, actor Actor, entity, entityID string, deletedData map[string]any, softDelete bool) EntityDeleted {
	return EntityDeleted{Base: newBase(ctx, actor), Entity: entity, EntityID: entityID, DeletedData: deletedData, SoftDelete: softDelete}
}

// UserLogin records a successful authentication.
type UserLogin struct {
	Base
	UserID   string
	Email    string
	Provider string
}

func (UserLogin) EventKind() Kind { return KindUserLogin }

// NewUserLogin builds a UserLogin event from the current request.
func NewUserLogin(ctx context.Context, userID, email, provider string) UserLogin {
	return UserLogin{Base: newBase(ctx, Actor{ID: userID, Email: email}), UserID: userID, Email: email, Provider: provider}
}

// UserLogout records a session termination.
type UserLogout struct {
	Base
	UserID string
}

func (UserLogout) EventKind() Kind { return KindUserLogout }

// NewUserLogout builds a UserLogout event from the current request.
func NewUserLogout(ctx context.Context, userID string) UserLogout {
	return UserLogout{Base: newBase(ctx, Actor{ID: userID}), UserID: userID}
}
