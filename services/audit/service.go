package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timetrackerpro/backend/models"
	"github.com/timetrackerpro/backend/rbac"
	"github.com/timetrackerpro/backend/repositories"
	"go.uber.org/zap"
)

// AuditEvent represents an event to be audited
type AuditEvent struct {
	Log      *models.AuditLog
	Priority int // Higher priority events are processed first (for future enhancements)
}

// AuditService handles asynchronous audit logging. Security-relevant events
// (denials, role changes, impersonation) and domain mutations are queued on a
// buffered channel and written by background workers, so the request path
// never blocks on the audit store.
type AuditService struct {
	auditRepo   repositories.AuditRepository
	logger      *zap.Logger
	eventChan   chan *AuditEvent
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	started     bool
	mu          sync.Mutex
}

// Config holds configuration for the AuditService
type Config struct {
	BufferSize  int // Size of the event buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  10000, // Buffer up to 10k events
		WorkerCount: 5,     // 5 concurrent workers
	}
}

// NewAuditService creates a new AuditService instance
func NewAuditService(auditRepo repositories.AuditRepository, logger *zap.Logger, config Config) *AuditService {
	ctx, cancel := context.WithCancel(context.Background())

	return &AuditService{
		auditRepo:   auditRepo,
		logger:      logger,
		eventChan:   make(chan *AuditEvent, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
		ctx:         ctx,
		cancel:      cancel,
		started:     false,
	}
}

// Start starts the background workers
func (s *AuditService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	// Start worker goroutines
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop gracefully stops the audit service
// Waits for all pending events to be processed
func (s *AuditService) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_events", len(s.eventChan)))

	// Close the event channel (no more events will be accepted)
	close(s.eventChan)

	// Wait for workers to finish with timeout
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped gracefully")
		s.cancel()
		return nil
	case <-time.After(timeout):
		s.cancel()
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// LogEvent logs an event asynchronously (non-blocking)
// Returns immediately, event is processed in background
func (s *AuditService) LogEvent(event *AuditEvent) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.mu.Unlock()

	// Try to send event to channel (non-blocking)
	select {
	case s.eventChan <- event:
		return nil
	default:
		// Channel is full, log warning and drop event
		s.logger.Warn("audit event channel full, dropping event",
			zap.String("action", string(event.Log.Action)),
			zap.String("actor_email", event.Log.ActorEmail))
		return fmt.Errorf("audit event buffer full")
	}
}

// LogEventBlocking logs an event synchronously (blocking)
// Waits until event is queued or context is cancelled
func (s *AuditService) LogEventBlocking(ctx context.Context, event *AuditEvent) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.mu.Unlock()

	select {
	case s.eventChan <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return fmt.Errorf("audit service stopped")
	}
}

// worker processes events from the channel
func (s *AuditService) worker(id int) {
	defer s.wg.Done()

	s.logger.Debug("audit worker started", zap.Int("worker_id", id))

	for event := range s.eventChan {
		if err := s.processEvent(event); err != nil {
			s.logger.Error("failed to process audit event",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(event.Log.Action)))
		}
	}

	s.logger.Debug("audit worker stopped", zap.Int("worker_id", id))
}

// processEvent processes a single audit event
func (s *AuditService) processEvent(event *AuditEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.auditRepo.Insert(ctx, event.Log); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// GetStats returns statistics about the audit service
func (s *AuditService) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		BufferSize:    s.bufferSize,
		PendingEvents: len(s.eventChan),
		WorkerCount:   s.workerCount,
		Started:       s.started,
	}
}

// Stats represents audit service statistics
type Stats struct {
	BufferSize    int
	PendingEvents int
	WorkerCount   int
	Started       bool
}

// List retrieves audit logs with pagination, newest first. Admin-only.
func (s *AuditService) List(ctx context.Context, scope rbac.Scope, limit, offset int) ([]*models.AuditLog, error) {
	return s.auditRepo.List(ctx, scope, limit, offset)
}

// ListByActor retrieves audit logs for one actor with pagination. Admin-only.
func (s *AuditService) ListByActor(ctx context.Context, scope rbac.Scope, actorID uuid.UUID, limit, offset int) ([]*models.AuditLog, error) {
	return s.auditRepo.ListByActor(ctx, scope, actorID, limit, offset)
}

// Get retrieves one audit log. Admin-only.
func (s *AuditService) Get(ctx context.Context, scope rbac.Scope, id uuid.UUID) (*models.AuditLog, error) {
	return s.auditRepo.GetByID(ctx, scope, id)
}

// Convenience methods for logging common events

// RecordDenial records an authorization denial with the gate that decided it.
// Satisfies the guard's denial-recorder contract; never blocks the request.
func (s *AuditService) RecordDenial(ctx context.Context, scope rbac.Scope, operation, gate string) {
	log := models.NewAuditLog(models.AuditActionAccessDenied, "route").
		WithActor(scope.UserID, scope.Email, string(scope.EffectiveRole())).
		WithGate(gate).
		WithDetails(map[string]interface{}{
			"operation": operation,
			"real_role": string(scope.Role),
		})

	if err := s.LogEvent(&AuditEvent{Log: log, Priority: 2}); err != nil {
		s.logger.Warn("failed to queue denial audit event", zap.Error(err))
	}
}

// LogRoleChangedTx writes a role-change trail line synchronously inside the
// caller's transaction. Role changes are the one event where the trail must
// not lag the write: the update and its audit line commit or roll back as one.
func (s *AuditService) LogRoleChangedTx(ctx context.Context, tx repositories.Transaction, actor rbac.Scope, targetID uuid.UUID, oldRole, newRole rbac.Role) error {
	log := models.NewAuditLog(models.AuditActionRoleChanged, "user").
		WithActor(actor.UserID, actor.Email, string(actor.Role)).
		WithResource(targetID).
		WithDetails(map[string]interface{}{
			"old_role": string(oldRole),
			"new_role": string(newRole),
		})

	return s.auditRepo.WithTx(tx).Insert(ctx, log)
}

// LogImpersonation records an admin assuming another role for a session.
// The persisted role is untouched; only the session's effective role changes.
func (s *AuditService) LogImpersonation(actor rbac.Scope, actingRole rbac.Role) error {
	log := models.NewAuditLog(models.AuditActionRoleImpersonate, "session").
		WithActor(actor.UserID, actor.Email, string(actor.Role)).
		WithDetails(map[string]interface{}{
			"acting_role": string(actingRole),
		})

	return s.LogEvent(&AuditEvent{Log: log, Priority: 2})
}

// LogLogin records a successful login
func (s *AuditService) LogLogin(user *models.User, requestID, ipAddress string) error {
	log := models.NewAuditLog(models.AuditActionLogin, "session").
		WithActor(user.ID, user.Email, string(user.Role)).
		WithRequest(requestID, ipAddress)

	return s.LogEvent(&AuditEvent{Log: log, Priority: 1})
}

// LogLogout records a logout
func (s *AuditService) LogLogout(scope rbac.Scope, requestID, ipAddress string) error {
	log := models.NewAuditLog(models.AuditActionLogout, "session").
		WithActor(scope.UserID, scope.Email, string(scope.Role)).
		WithRequest(requestID, ipAddress)

	return s.LogEvent(&AuditEvent{Log: log, Priority: 1})
}

// LogProjectMutation records a project create, update, or delete
func (s *AuditService) LogProjectMutation(action models.AuditAction, actor rbac.Scope, projectID uuid.UUID, details map[string]interface{}) error {
	log := models.NewAuditLog(action, "project").
		WithActor(actor.UserID, actor.Email, string(actor.EffectiveRole())).
		WithResource(projectID)
	if details != nil {
		log.WithDetails(details)
	}

	return s.LogEvent(&AuditEvent{Log: log, Priority: 1})
}

// LogTimeEntryMutation records a time-entry create, update, or delete
func (s *AuditService) LogTimeEntryMutation(action models.AuditAction, actor rbac.Scope, entryID uuid.UUID, details map[string]interface{}) error {
	log := models.NewAuditLog(action, "time_entry").
		WithActor(actor.UserID, actor.Email, string(actor.EffectiveRole())).
		WithResource(entryID)
	if details != nil {
		log.WithDetails(details)
	}

	return s.LogEvent(&AuditEvent{Log: log, Priority: 1})
}

// LogEmployeeMutation records an employee create or update
func (s *AuditService) LogEmployeeMutation(action models.AuditAction, actor rbac.Scope, employeeID uuid.UUID, details map[string]interface{}) error {
	log := models.NewAuditLog(action, "employee").
		WithActor(actor.UserID, actor.Email, string(actor.EffectiveRole())).
		WithResource(employeeID)
	if details != nil {
		log.WithDetails(details)
	}

	return s.LogEvent(&AuditEvent{Log: log, Priority: 1})
}
