package customers

// CreateCustomerInput holds creation-time data for a new loyalty customer.
// Name and phone arrive format-validated from the caller; the service re-checks
// only uniqueness, after trimming.
type CreateCustomerInput struct {
	Name          string
	Phone         string
	InitialPoints int
}

// UpdateCustomerInput captures the allowed profile fields for partial mutation.
// Point balances are owned by AdjustPoints and cannot be set through here.
type UpdateCustomerInput struct {
	Name  *string
	Phone *string
}

func (u UpdateCustomerInput) empty() bool {
	return u.Name == nil && u.Phone == nil
}
