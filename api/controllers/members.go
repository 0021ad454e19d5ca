package controllers

import (
	"net/http"

	"github.com/andalib/andalib-backend/api/responses"
	"github.com/andalib/andalib-backend/api/validators"
	"github.com/andalib/andalib-backend/internal/members"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
)

func DeleteMember(svc members.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "members service unavailable"))
			return
		}
		memberID, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), memberID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "member deleted")
	}
}
