package customers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/loyaltyworks/loyalty-backend/internal/repo"
	"github.com/loyaltyworks/loyalty-backend/pkg/db/models"
	"github.com/loyaltyworks/loyalty-backend/pkg/enums"
)

// Repository manages persistence for customer rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.Customer, error)
	Search(ctx context.Context, query string) ([]models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	PhoneExists(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, customer *models.Customer) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Customer, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, expectedPoints int, update BalanceUpdate) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// BalanceUpdate carries the three columns AdjustPoints writes together.
type BalanceUpdate struct {
	Points         int
	PointsRedeemed int
	Tier           enums.Tier
}

type repository struct {
	base repo.Base
}

// NewRepository returns a customer repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) List(ctx context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	if err := r.base.DB(ctx).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Search(ctx context.Context, query string) ([]models.Customer, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var rows []models.Customer
	if err := r.base.DB(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(phone) LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var row models.Customer
	if err := r.base.DB(ctx).
		Where("id = ?", id).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repository) PhoneExists(ctx context.Context, phone string, excludeID *uuid.UUID) (bool, error) {
	query := r.base.DB(ctx).
		Model(&models.Customer{}).
		Where("phone = ?", phone)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.base.DB(ctx).Create(customer).Error
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Customer, error) {
	result := r.base.DB(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}

// UpdateBalance persists points, points_redeemed and tier together, guarded on
// the balance the caller read. A false return means another writer got there
// first and the caller must re-read.
func (r *repository) UpdateBalance(ctx context.Context, id uuid.UUID, expectedPoints int, update BalanceUpdate) (bool, error) {
	result := r.base.DB(ctx).
		Model(&models.Customer{}).
		Where("id = ? AND points = ?", id, expectedPoints).
		Updates(map[string]any{
			"points":          update.Points,
			"points_redeemed": update.PointsRedeemed,
			"tier":            update.Tier,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.base.DB(ctx).
		Where("id = ?", id).
		Delete(&models.Customer{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
