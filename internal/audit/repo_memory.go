package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory Repository for tests and local
// development.
type MemoryRepository struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Append stores the record.
func (r *MemoryRepository) Append(ctx context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	for _, existing := range r.records {
		if existing.ID == record.ID {
			return nil
		}
	}
	r.records = append(r.records, record)
	return nil
}

// List filters stored records, newest first.
func (r *MemoryRepository) List(ctx context.Context, q Query) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []Record
	for _, record := range r.records {
		if q.TenantID != "" && record.TenantID != q.TenantID {
			continue
		}
		if q.ActorUserID != "" && record.ActorUserID != q.ActorUserID {
			continue
		}
		if q.Entity != "" && record.Entity != q.Entity {
			continue
		}
		if q.TransactionType != "" && record.TransactionType != q.TransactionType {
			continue
		}
		if !q.From.IsZero() && record.OccurredAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && !record.OccurredAt.Before(q.To) {
			continue
		}
		matched = append(matched, record)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// PurgeOlderThan removes records before the cutoff.
func (r *MemoryRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.records[:0]
	var purged int64
	for _, record := range r.records {
		if record.OccurredAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, record)
	}
	r.records = kept
	return purged, nil
}

// All returns every stored record in insertion order. Test helper.
func (r *MemoryRepository) All() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
