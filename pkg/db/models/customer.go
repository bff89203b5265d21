package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/loyaltyworks/loyalty-backend/pkg/enums"
)

// Customer is a loyalty program member. Tier is derived from Points on every
// point mutation and is never set independently.
type Customer struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string     `gorm:"column:name;not null" json:"name"`
	Phone          string     `gorm:"column:phone;not null;uniqueIndex" json:"phone"`
	Points         int        `gorm:"column:points;not null;default:0" json:"points"`
	PointsRedeemed int        `gorm:"column:points_redeemed;not null;default:0" json:"points_redeemed"`
	Tier           enums.Tier `gorm:"column:tier;type:tier_enum;not null;default:standard" json:"tier"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
