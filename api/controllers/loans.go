package controllers

import (
	"net/http"

	"github.com/andalib/andalib-backend/api/responses"
	"github.com/andalib/andalib-backend/api/validators"
	"github.com/andalib/andalib-backend/internal/loans"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
)

// BorrowBook opens an ACTIVE loan and takes one copy off the shelf.
func BorrowBook(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "loans service unavailable"))
			return
		}

		var body loans.BorrowRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		loan, err := svc.Borrow(r.Context(), body.Input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, loans.NewLoanDTO(*loan))
	}
}
