package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loyaltyworks/loyalty-backend/internal/audit"
	"github.com/loyaltyworks/loyalty-backend/pkg/db"
	"github.com/loyaltyworks/loyalty-backend/pkg/db/models"
	"github.com/loyaltyworks/loyalty-backend/pkg/enums"
	pkgerrors "github.com/loyaltyworks/loyalty-backend/pkg/errors"
	"github.com/loyaltyworks/loyalty-backend/pkg/logger"
	"github.com/loyaltyworks/loyalty-backend/pkg/metrics"
	"github.com/loyaltyworks/loyalty-backend/pkg/tier"
)

// balanceUpdateAttempts bounds the optimistic retry loop in AdjustPoints.
const balanceUpdateAttempts = 3

// Service owns customer records and point bookkeeping. Every mutation keeps
// the tier invariant (tier == tier.Of(points)) and appends a best-effort audit
// entry after the primary write commits. List and Search soft-fail: a store
// error is logged and an empty slice returned, preserving the historical
// caller contract; mutations propagate coded errors.
type Service interface {
	List(ctx context.Context) []models.Customer
	Search(ctx context.Context, query string) []models.Customer
	PhoneExists(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*models.Customer, error)
	AdjustPoints(ctx context.Context, id uuid.UUID, delta int) (*models.Customer, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ServiceParams collects the ledger service dependencies.
type ServiceParams struct {
	Repo     Repository
	Recorder audit.Recorder
	Logger   *logger.Logger
	Metrics  *metrics.AuditMetrics
}

type service struct {
	repo     Repository
	recorder audit.Recorder
	logg     *logger.Logger
	metrics  *metrics.AuditMetrics
}

// NewService wires the customer ledger service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if params.Recorder == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	return &service{
		repo:     params.Repo,
		recorder: params.Recorder,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

func (s *service) List(ctx context.Context) []models.Customer {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logSwallowed(ctx, "list customers", err)
		return []models.Customer{}
	}
	return rows
}

func (s *service) Search(ctx context.Context, query string) []models.Customer {
	rows, err := s.repo.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		s.logSwallowed(ctx, "search customers", err)
		return []models.Customer{}
	}
	return rows
}

func (s *service) PhoneExists(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return false, nil
	}
	exists, err := s.repo.PhoneExists(ctx, trimmed, excludeID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check phone uniqueness")
	}
	return exists, nil
}

func (s *service) Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if input.InitialPoints < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "initial points cannot be negative")
	}

	exists, err := s.PhoneExists(ctx, phone, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "this phone number is already registered")
	}

	customer := &models.Customer{
		Name:           name,
		Phone:          phone,
		Points:         input.InitialPoints,
		PointsRedeemed: 0,
		Tier:           tier.Of(input.InitialPoints),
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		// The pre-check can race another create; the unique index is the backstop.
		if db.IsUniqueViolation(err, "idx_customers_phone") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "this phone number is already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create customer")
	}

	s.recordAudit(ctx, audit.Entry{
		ActionType:   enums.AuditActionCustomerCreated,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
	})
	if input.InitialPoints > 0 {
		delta := input.InitialPoints
		s.recordAudit(ctx, audit.Entry{
			ActionType:   enums.AuditActionPointsAdded,
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			PointsChange: &delta,
		})
	}

	return customer, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*models.Customer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	fields := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		fields["name"] = name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone cannot be empty")
		}
		exists, err := s.PhoneExists(ctx, phone, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "this phone number is already registered")
		}
		fields["phone"] = phone
	}

	customer, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update customer")
	}

	s.recordAudit(ctx, audit.Entry{
		ActionType:   enums.AuditActionCustomerUpdated,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
	})

	return customer, nil
}

func (s *service) AdjustPoints(ctx context.Context, id uuid.UUID, delta int) (*models.Customer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}

	customer, err := s.findCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	// Optimistic update guarded on the balance we read. Without the guard two
	// concurrent adjustments could silently lose one delta.
	for attempt := 0; attempt < balanceUpdateAttempts; attempt++ {
		update := BalanceUpdate{
			Points:         customer.Points + delta,
			PointsRedeemed: customer.PointsRedeemed,
			Tier:           tier.Of(customer.Points + delta),
		}
		if delta < 0 {
			update.PointsRedeemed = customer.PointsRedeemed - delta
		}

		applied, err := s.repo.UpdateBalance(ctx, id, customer.Points, update)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust points")
		}
		if applied {
			customer.Points = update.Points
			customer.PointsRedeemed = update.PointsRedeemed
			customer.Tier = update.Tier

			action := enums.AuditActionPointsAdded
			if delta < 0 {
				action = enums.AuditActionPointsRedeemed
			}
			change := delta
			s.recordAudit(ctx, audit.Entry{
				ActionType:   action,
				CustomerID:   customer.ID,
				CustomerName: customer.Name,
				PointsChange: &change,
			})
			return customer, nil
		}

		customer, err = s.findCustomer(ctx, id)
		if err != nil {
			return nil, err
		}
	}

	return nil, pkgerrors.New(pkgerrors.CodeConflict, "balance changed concurrently, retry the adjustment")
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	customer, err := s.findCustomer(ctx, id)
	if err != nil {
		return false, err
	}

	// Audit first: the entry must reference a still-present customer row so the
	// foreign key is satisfied at insertion time.
	s.recordAudit(ctx, audit.Entry{
		ActionType:   enums.AuditActionCustomerDeleted,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
	})

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete customer")
	}
	if affected == 0 {
		return false, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return true, nil
}

func (s *service) findCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}
	return customer, nil
}

// recordAudit appends an audit entry after a committed mutation. Failures are
// swallowed: they are logged and counted but never fail the mutation.
func (s *service) recordAudit(ctx context.Context, entry audit.Entry) {
	if _, err := s.recorder.Record(ctx, entry); err != nil {
		if s.logg != nil {
			ctx = s.logg.WithFields(ctx, map[string]any{
				"action":      string(entry.ActionType),
				"customer_id": entry.CustomerID.String(),
			})
			s.logg.Error(ctx, "audit write failed", err)
		}
		s.metrics.IncFailed(string(entry.ActionType))
		return
	}
	s.metrics.IncWritten(string(entry.ActionType))
}

func (s *service) logSwallowed(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(ctx, msg, err)
}
