package enums

import "fmt"

// AuditAction maps to the audit_action_enum enum in Postgres.
type AuditAction string

const (
	AuditActionCustomerCreated AuditAction = "customer_created"
	AuditActionCustomerUpdated AuditAction = "customer_updated"
	AuditActionCustomerDeleted AuditAction = "customer_deleted"
	AuditActionPointsAdded     AuditAction = "points_added"
	AuditActionPointsRedeemed  AuditAction = "points_redeemed"
	// AuditActionTierChanged is accepted by the schema but the ledger never
	// emits it today; the trigger semantics were never settled.
	AuditActionTierChanged AuditAction = "tier_changed"
)

var validAuditActions = []AuditAction{
	AuditActionCustomerCreated,
	AuditActionCustomerUpdated,
	AuditActionCustomerDeleted,
	AuditActionPointsAdded,
	AuditActionPointsRedeemed,
	AuditActionTierChanged,
}

// IsValid reports whether the value matches the canonical audit action enum.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
