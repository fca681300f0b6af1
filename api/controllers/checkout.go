package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/modawear/modawear-backend/api/middleware"
	"github.com/modawear/modawear-backend/api/responses"
	checkoutsvc "github.com/modawear/modawear-backend/internal/checkout"
	pkgerrors "github.com/modawear/modawear-backend/pkg/errors"
	"github.com/modawear/modawear-backend/pkg/logger"
)

// Checkout materializes the caller's cart into an order and opens a payment
// session for it.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		ownerID := middleware.UserUUIDFromContext(r.Context())
		if ownerID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		result, err := svc.Checkout(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
