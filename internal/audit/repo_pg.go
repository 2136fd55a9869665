package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// PGRepository persists audit records in the audit_logs table.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository returns a repository backed by the given pool.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Append inserts one record. Re-inserting an already persisted record id is
// treated as success so retried deliveries stay idempotent.
func (r *PGRepository) Append(ctx context.Context, record Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return fmt.Errorf("audit: marshal payload: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_logs (
			id, transaction_id, tenant_id, actor_user_id,
			entity, entity_id, transaction_type, payload,
			client_ip, user_agent, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		record.ID, record.TransactionID, record.TenantID, record.ActorUserID,
		record.Entity, record.EntityID, string(record.TransactionType), payload,
		record.ClientIP, record.UserAgent, record.OccurredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil
		}
		return fmt.Errorf("audit: insert record: %w", err)
	}
	return nil
}

// List returns records matching the query, newest first.
func (r *PGRepository) List(ctx context.Context, q Query) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, clause+"$"+strconv.Itoa(len(args)))
	}
	if q.TenantID != "" {
		add("tenant_id = ", q.TenantID)
	}
	if q.ActorUserID != "" {
		add("actor_user_id = ", q.ActorUserID)
	}
	if q.Entity != "" {
		add("entity = ", q.Entity)
	}
	if q.TransactionType != "" {
		add("transaction_type = ", string(q.TransactionType))
	}
	if !q.From.IsZero() {
		add("occurred_at >= ", q.From)
	}
	if !q.To.IsZero() {
		add("occurred_at < ", q.To)
	}

	query := `
		SELECT id, transaction_id, tenant_id, actor_user_id,
		       entity, entity_id, transaction_type, payload,
		       client_ip, user_agent, occurred_at
		FROM audit_logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY occurred_at DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			record  Record
			txnType string
			payload []byte
		)
		if err := rows.Scan(
			&record.ID, &record.TransactionID, &record.TenantID, &record.ActorUserID,
			&record.Entity, &record.EntityID, &txnType, &payload,
			&record.ClientIP, &record.UserAgent, &record.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("audit: scan record: %w", err)
		}
		record.TransactionType = TransactionType(txnType)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &record.Payload); err != nil {
				return nil, fmt.Errorf("audit: decode payload: %w", err)
			}
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// PurgeOlderThan deletes records past the retention cutoff and reports how
// many rows were removed.
func (r *PGRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("audit: purge records: %w", err)
	}
	return tag.RowsAffected(), nil
}
