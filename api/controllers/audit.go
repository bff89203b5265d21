package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/loyaltyworks/loyalty-backend/api/responses"
	"github.com/loyaltyworks/loyalty-backend/api/validators"
	"github.com/loyaltyworks/loyalty-backend/internal/audit"
	"github.com/loyaltyworks/loyalty-backend/pkg/enums"
	pkgerrors "github.com/loyaltyworks/loyalty-backend/pkg/errors"
	"github.com/loyaltyworks/loyalty-backend/pkg/logger"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// ListAuditLogs returns the newest audit entries, optionally filtered to one
// action type via ?action=.
func ListAuditLogs(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultAuditLimit, 1, maxAuditLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("action")); raw != "" {
			action, err := enums.ParseAuditAction(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown action type").WithDetails(map[string]any{"action": raw}))
				return
			}
			responses.WriteSuccess(w, svc.LogsByAction(r.Context(), action, limit))
			return
		}

		responses.WriteSuccess(w, svc.RecentLogs(r.Context(), limit))
	}
}

// ListCustomerAuditLogs returns the audit trail for one customer.
func ListCustomerAuditLogs(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		raw := chi.URLParam(r, "customerID")
		id, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		responses.WriteSuccess(w, svc.LogsForCustomer(r.Context(), id))
	}
}
