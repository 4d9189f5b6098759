package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	AuditActionAccessDenied    AuditAction = "access_denied"
	AuditActionRoleChanged     AuditAction = "role_changed"
	AuditActionRoleImpersonate AuditAction = "role_impersonate"
	AuditActionLogin           AuditAction = "login"
	AuditActionLogout          AuditAction = "logout"
	AuditActionProjectCreated  AuditAction = "project_created"
	AuditActionProjectUpdated  AuditAction = "project_updated"
	AuditActionProjectDeleted  AuditAction = "project_deleted"
	AuditActionEntryCreated    AuditAction = "entry_created"
	AuditActionEntryUpdated    AuditAction = "entry_updated"
	AuditActionEntryDeleted    AuditAction = "entry_deleted"
	AuditActionEmployeeCreated AuditAction = "employee_created"
	AuditActionEmployeeUpdated AuditAction = "employee_updated"
)

// AuditLog represents an audit trail entry. Authorization denials record the
// deciding gate so the trail can answer "who was refused what, and why".
type AuditLog struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ActorID      *uuid.UUID      `json:"actor_id,omitempty" db:"actor_id"`
	ActorEmail   string          `json:"actor_email" db:"actor_email"`
	ActorRole    string          `json:"actor_role" db:"actor_role"`
	Action       AuditAction     `json:"action" db:"action"`
	ResourceType string          `json:"resource_type" db:"resource_type"`
	ResourceID   *uuid.UUID      `json:"resource_id,omitempty" db:"resource_id"`
	DecidingGate string          `json:"deciding_gate,omitempty" db:"deciding_gate"`
	Details      json.RawMessage `json:"details,omitempty" db:"details"`
	IPAddress    string          `json:"ip_address" db:"ip_address"`
	RequestID    string          `json:"request_id" db:"request_id"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog creates a new AuditLog instance
func NewAuditLog(action AuditAction, resourceType string) *AuditLog {
	return &AuditLog{
		ID:           uuid.New(),
		Action:       action,
		ResourceType: resourceType,
		Timestamp:    time.Now(),
	}
}

// WithActor sets the acting identity
func (a *AuditLog) WithActor(actorID uuid.UUID, email, role string) *AuditLog {
	a.ActorID = &actorID
	a.ActorEmail = email
	a.ActorRole = role
	return a
}

// WithResource sets the target record
func (a *AuditLog) WithResource(resourceID uuid.UUID) *AuditLog {
	a.ResourceID = &resourceID
	return a
}

// WithGate records the gate that decided the outcome (auth, role, permission, scope)
func (a *AuditLog) WithGate(gate string) *AuditLog {
	a.DecidingGate = gate
	return a
}

// WithDetails sets the details
func (a *AuditLog) WithDetails(details interface{}) *AuditLog {
	if data, err := json.Marshal(details); err == nil {
		a.Details = data
	}
	return a
}

// WithRequest sets request metadata
func (a *AuditLog) WithRequest(requestID, ipAddress string) *AuditLog {
	a.RequestID = requestID
	a.IPAddress = ipAddress
	return a
}
