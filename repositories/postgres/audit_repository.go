package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"github.com/timetrackerpro/backend/services"
	"go.uber.org/zap"
)

// AuditRepository implements the repositories.AuditRepository interface
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

const auditColumns = "id, actor_id, actor_email, actor_role, action, resource_type, resource_id, deciding_gate, details, ip_address, request_id, timestamp"

func scanAuditLog(row interface{ Scan(...interface{}) error }) (*models.AuditLog, error) {
	log := &models.AuditLog{}
	var details []byte
	err := row.Scan(
		&log.ID,
		&log.ActorID,
		&log.ActorEmail,
		&log.ActorRole,
		&log.Action,
		&log.ResourceType,
		&log.ResourceID,
		&log.DecidingGate,
		&details,
		&log.IPAddress,
		&log.RequestID,
		&log.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	log.Details = details
	return log, nil
}

// Insert inserts a new audit log entry. No scope parameter: the audit trail
// is written by the system on behalf of whatever happened, including denials.
func (r *AuditRepository) Insert(ctx context.Context, log *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, actor_id, actor_email, actor_role, action, resource_type, resource_id, deciding_gate, details, ip_address, request_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var details interface{}
	if len(log.Details) > 0 {
		details = []byte(log.Details)
	}

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		log.ID,
		log.ActorID,
		log.ActorEmail,
		log.ActorRole,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.DecidingGate,
		details,
		log.IPAddress,
		log.RequestID,
		log.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// GetByID retrieves an audit log by ID. Only admins read the trail.
func (r *AuditRepository) GetByID(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.AuditLog, error) {
	if !scope.CanManageSystem() {
		return nil, services.ErrAuditLogNotFound
	}

	query := `SELECT ` + auditColumns + ` FROM audit_logs WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	log, err := scanAuditLog(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrAuditLogNotFound
		}
		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}

	return log, nil
}

// List retrieves audit logs with pagination, newest first
func (r *AuditRepository) List(ctx context.Context, scope rbac.Scope, limit, offset int) ([]*models.AuditLog, error) {
	if !scope.CanManageSystem() {
		return nil, services.ErrInsufficientPermissions
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2
	`

	return r.queryAuditLogs(ctx, query, normalizeLimit(limit), offset)
}

// ListByActor retrieves audit logs for one actor with pagination
func (r *AuditRepository) ListByActor(ctx context.Context, scope rbac.Scope, actorID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	if !scope.CanManageSystem() {
		return nil, services.ErrInsufficientPermissions
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE actor_id = $1
		ORDER BY timestamp DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryAuditLogs(ctx, query, actorID, normalizeLimit(limit), offset)
}

func (r *AuditRepository) queryAuditLogs(ctx context.Context, query string, args ...interface{}) ([]*models.AuditLog, error) {
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.AuditLog
	for rows.Next() {
		log, err := scanAuditLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log rows: %w", err)
	}

	return logs, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

// WithTx returns a new repository instance bound to the transaction
func (r *AuditRepository) WithTx(tx repositories.Transaction) repositories.AuditRepository {
	return &AuditRepository{
		db:     r.db,
		logger: r.logger,
	}
}
