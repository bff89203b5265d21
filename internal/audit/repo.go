package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loyaltyworks/loyalty-backend/internal/repo"
	"github.com/loyaltyworks/loyalty-backend/pkg/db/models"
	"github.com/loyaltyworks/loyalty-backend/pkg/enums"
)

// Repository manages persistence for audit log entries. Entries are
// append-only: there is no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.AuditLog, error)
	ListByAction(ctx context.Context, action enums.AuditAction, limit int) ([]models.AuditLog, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns an audit repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.base.DB(ctx).Create(entry).Error
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	if err := r.base.DB(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	if err := r.base.DB(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByAction(ctx context.Context, action enums.AuditAction, limit int) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	if err := r.base.DB(ctx).
		Where("action_type = ?", action).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
