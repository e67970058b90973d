package httpadapter

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxWebhookBody = 1 << 20

func (rt *Router) listNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := rt.svc.Notifications.List(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (rt *Router) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := rt.svc.Notifications.MarkRead(r.Context(), mustPrincipal(r), chi.URLParam(r, "notificationID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (rt *Router) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	updated, err := rt.svc.Notifications.MarkAllRead(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "All notifications marked as read", "updated": updated})
}

func (rt *Router) listPlans(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.svc.Subscriptions.Plans())
}

func (rt *Router) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := rt.decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := rt.svc.Subscriptions.Checkout(r.Context(), mustPrincipal(r), req.Plan, req.OriginURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (rt *Router) checkoutStatus(w http.ResponseWriter, r *http.Request) {
	status, err := rt.svc.Subscriptions.Status(r.Context(), mustPrincipal(r), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// stripeWebhook always acknowledges so the gateway does not redeliver
// logically failed events.
func (rt *Router) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		slog.Error("webhook_error", "stage", "read", "error", err)
		writeJSON(w, http.StatusOK, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	event, err := rt.svc.Subscriptions.HandleWebhook(r.Context(), body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "error", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":         "success",
		"event_type":     event.EventType,
		"session_id":     event.SessionID,
		"payment_status": string(event.PaymentStatus),
	})
}

func (rt *Router) referenceSectors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.svc.Catalog.Sectors())
}

func (rt *Router) referenceNations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.svc.Catalog.Nations())
}

func (rt *Router) referenceBusinessSizes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.svc.Catalog.BusinessSizes())
}

func (rt *Router) referenceCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.svc.Catalog.Categories())
}

func (rt *Router) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.svc.Insights.Dashboard(r.Context(), mustPrincipal(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
