package controllers

import (
	"math"
	"net/http"
	"strings"

	"github.com/andalib/andalib-backend/api/middleware"
	"github.com/andalib/andalib-backend/api/responses"
	"github.com/andalib/andalib-backend/api/validators"
	"github.com/andalib/andalib-backend/internal/notifications"
	pkgerrors "github.com/andalib/andalib-backend/pkg/errors"
	"github.com/andalib/andalib-backend/pkg/logger"
	"github.com/andalib/andalib-backend/pkg/pagination"
)

// ListNotifications returns the caller's inbox, newest first. take above the
// page cap is clamped rather than rejected.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		adminID, ok := requireAdmin(w, r, logg)
		if !ok {
			return
		}

		take, err := validators.ParseQueryInt(r, "take", pagination.DefaultLimit, 1, math.MaxInt32)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly, err := validators.ParseQueryBool(r, "unreadOnly")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.List(r.Context(), notifications.ListParams{
			AdminID:    adminID,
			Limit:      take,
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
			UnreadOnly: unreadOnly,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// MarkNotificationRead flips one notification to read. Repeating the call
// keeps the original readAt.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		adminID, ok := requireAdmin(w, r, logg)
		if !ok {
			return
		}
		notificationID, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), adminID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"read": true})
	}
}

func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		adminID, ok := requireAdmin(w, r, logg)
		if !ok {
			return
		}

		count, err := svc.MarkAllRead(r.Context(), adminID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": count})
	}
}

func DeleteNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		adminID, ok := requireAdmin(w, r, logg)
		if !ok {
			return
		}
		notificationID, err := validators.ParsePathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), adminID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, "notification deleted")
	}
}

func requireAdmin(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (int64, bool) {
	adminID := middleware.AdminIDFromContext(r.Context())
	if adminID <= 0 {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin context missing"))
		return 0, false
	}
	return adminID, true
}
