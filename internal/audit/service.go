package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/loyaltyworks/loyalty-backend/pkg/db/models"
	"github.com/loyaltyworks/loyalty-backend/pkg/enums"
	"github.com/loyaltyworks/loyalty-backend/pkg/logger"
)

// Entry captures the immutable data an audit log entry requires. CustomerName
// is denormalized on purpose: it must survive later renames and deletion of
// the customer row.
type Entry struct {
	ActionType   enums.AuditAction `json:"action_type"`
	CustomerID   uuid.UUID         `json:"customer_id"`
	CustomerName string            `json:"customer_name"`
	PointsChange *int              `json:"points_change,omitempty"`
}

// Recorder appends audit log entries. Failures are returned to the caller so
// the mutation that triggered the write can decide how loudly to swallow them;
// recording is best-effort by contract, never a reason to roll back.
type Recorder interface {
	Record(ctx context.Context, entry Entry) (*models.AuditLog, error)
}

type recorder struct {
	repo Repository
}

// NewRecorder wires an audit recorder with the provided repository.
func NewRecorder(repo Repository) (Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &recorder{repo: repo}, nil
}

func (r *recorder) Record(ctx context.Context, entry Entry) (*models.AuditLog, error) {
	if !entry.ActionType.IsValid() {
		return nil, fmt.Errorf("invalid audit action %q", entry.ActionType)
	}
	if entry.CustomerName == "" {
		return nil, fmt.Errorf("customer name is required")
	}

	row := &models.AuditLog{
		ActionType:   entry.ActionType,
		CustomerName: entry.CustomerName,
		PointsChange: entry.PointsChange,
	}
	if entry.CustomerID != uuid.Nil {
		id := entry.CustomerID
		row.CustomerID = &id
	}

	if err := r.repo.Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Service defines read-only retrieval of audit history. All queries soft-fail:
// a store error is logged and an empty slice returned, so callers cannot
// distinguish "no entries" from "query failed".
type Service interface {
	RecentLogs(ctx context.Context, limit int) []models.AuditLog
	LogsForCustomer(ctx context.Context, customerID uuid.UUID) []models.AuditLog
	LogsByAction(ctx context.Context, action enums.AuditAction, limit int) []models.AuditLog
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires the audit query service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) RecentLogs(ctx context.Context, limit int) []models.AuditLog {
	if limit < 0 {
		return []models.AuditLog{}
	}
	entries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		s.logSwallowed(ctx, "list recent audit logs", err)
		return []models.AuditLog{}
	}
	return entries
}

func (s *service) LogsForCustomer(ctx context.Context, customerID uuid.UUID) []models.AuditLog {
	if customerID == uuid.Nil {
		return []models.AuditLog{}
	}
	entries, err := s.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logSwallowed(ctx, "list customer audit logs", err)
		return []models.AuditLog{}
	}
	return entries
}

func (s *service) LogsByAction(ctx context.Context, action enums.AuditAction, limit int) []models.AuditLog {
	if !action.IsValid() || limit < 0 {
		return []models.AuditLog{}
	}
	entries, err := s.repo.ListByAction(ctx, action, limit)
	if err != nil {
		s.logSwallowed(ctx, "list audit logs by action", err)
		return []models.AuditLog{}
	}
	return entries
}

func (s *service) logSwallowed(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, msg, err)
}
