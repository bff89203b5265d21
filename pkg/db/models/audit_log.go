package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/loyaltyworks/loyalty-backend/pkg/enums"
)

// AuditLog records an immutable administrative action against a customer.
// Rows are append-only: the application never updates or deletes them.
// CustomerID is nulled by the store when the customer row is removed;
// CustomerName keeps the name captured at write time.
type AuditLog struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActionType   enums.AuditAction `gorm:"column:action_type;type:audit_action_enum;not null" json:"action_type"`
	CustomerID   *uuid.UUID        `gorm:"column:customer_id;type:uuid" json:"customer_id,omitempty"`
	CustomerName string            `gorm:"column:customer_name;not null" json:"customer_name"`
	PointsChange *int              `gorm:"column:points_change" json:"points_change,omitempty"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
